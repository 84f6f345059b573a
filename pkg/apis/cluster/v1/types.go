// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package v1 holds a narrow, hand-trimmed subset of the CloudNativePG
// Cluster custom resource: only the fields the Cluster Renderer (C7) and
// the rest of the reconciliation core read or write. The full upstream
// CRD carries far more; this operator treats the remainder as opaque and
// never round-trips it, so it is not modeled here.
package v1

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// FencedInstancesAnnotation is the coordination channel between the
// Fencing Coordinator and the downstream cluster controller. Its value is
// a JSON-encoded array of pod names; absence, an empty array, and
// unparsable JSON are all read back as "no fenced pods".
const FencedInstancesAnnotation = "cnpg.io/fencedInstances"

// PodInitInjectAnnotation marks every rendered Cluster for mutation by the
// tembo-pod-init admission webhook (a collaborator; see CoreDB spec §1).
const PodInitInjectAnnotation = "tembo-pod-init.tembo.io/inject"

// RestartedAtAnnotation mirrors v1alpha1.RestartedAtAnnotation onto the
// downstream Cluster so a CoreDB restart token forces a Postgres restart.
const RestartedAtAnnotation = "coredbs.coredb.io/restartedAt"

// Cluster is the downstream, CloudNativePG-style Postgres cluster custom
// resource. CoreDB owns it via an owner reference; no other component
// authors it.
//
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
type Cluster struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ClusterSpec   `json:"spec"`
	Status ClusterStatus `json:"status,omitempty"`
}

// ClusterList is a list of Cluster resources.
//
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
type ClusterList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Cluster `json:"items"`
}

// ClusterStatus is the subset of the downstream controller's observed
// state the core reads.
type ClusterStatus struct {
	// LatestGeneratedNode is the highest pod ordinal ever created for this
	// cluster, including pods that have since been scaled down. The
	// Fencing Coordinator uses it to name newly-fenced replicas.
	LatestGeneratedNode *int32 `json:"latestGeneratedNode,omitempty"`
}

// ClusterSpec is the subset of the downstream Cluster spec the Cluster
// Renderer produces.
type ClusterSpec struct {
	Instances int32 `json:"instances"`

	Bootstrap        *ClusterBootstrap         `json:"bootstrap,omitempty"`
	ExternalClusters []ClusterExternalCluster  `json:"externalClusters,omitempty"`
	Backup           *ClusterBackup            `json:"backup,omitempty"`
	ServiceAccountTemplate *ClusterServiceAccountTemplate `json:"serviceAccountTemplate,omitempty"`
	Managed          *ClusterManaged           `json:"managed,omitempty"`
	Postgresql       ClusterPostgresql         `json:"postgresql,omitempty"`
	ReplicationSlots *ClusterReplicationSlots  `json:"replicationSlots,omitempty"`

	StorageConfiguration ClusterStorage              `json:"storage,omitempty"`
	Resources            corev1.ResourceRequirements `json:"resources,omitempty"`

	NodeMaintenanceWindow *ClusterNodeMaintenanceWindow `json:"nodeMaintenanceWindow,omitempty"`

	ImageName string `json:"imageName,omitempty"`
}

// ClusterBootstrap selects how the cluster's first instance comes up.
type ClusterBootstrap struct {
	InitDB   *ClusterBootstrapInitDB   `json:"initdb,omitempty"`
	Recovery *ClusterBootstrapRecovery `json:"recovery,omitempty"`
}

// ClusterBootstrapInitDB bootstraps a brand new, empty instance.
type ClusterBootstrapInitDB struct{}

// ClusterBootstrapRecovery bootstraps from an external source.
type ClusterBootstrapRecovery struct {
	Source         string                          `json:"source"`
	RecoveryTarget *ClusterBootstrapRecoveryTarget `json:"recoveryTarget,omitempty"`
}

// ClusterBootstrapRecoveryTarget pins a point-in-time recovery target.
// TargetTime, when non-nil, is always already normalized to
// "YYYY-MM-DD HH:MM:SS.ffffff±HH" by the Cluster Renderer.
type ClusterBootstrapRecoveryTarget struct {
	TargetTime *string `json:"targetTime,omitempty"`
}

// ClusterExternalCluster names a recovery/base-backup source and the
// credentials used to reach it.
type ClusterExternalCluster struct {
	Name               string                          `json:"name"`
	BarmanObjectStore  *ClusterBarmanObjectStore       `json:"barmanObjectStore,omitempty"`
}

// ClusterBarmanObjectStore is the object-store coordinates for backup or
// recovery traffic, shared by ClusterBackup and ClusterExternalCluster.
type ClusterBarmanObjectStore struct {
	DestinationPath string                     `json:"destinationPath"`
	EndpointURL     string                     `json:"endpointURL,omitempty"`
	S3Credentials   *ClusterS3Credentials      `json:"s3Credentials,omitempty"`
	Data            *ClusterBarmanData         `json:"data,omitempty"`
	Wal             *ClusterBarmanWal          `json:"wal,omitempty"`
}

// ClusterS3Credentials is a typed carrier for S3-style access credentials,
// shaped from the spec's backup/restore fields by the Credential
// Synthesizer (C10). Exactly one of the key-pair fields or InheritFromIAM
// is ever set.
type ClusterS3Credentials struct {
	AccessKeyID     *ClusterSecretKeySelector `json:"accessKeyId,omitempty"`
	SecretAccessKey *ClusterSecretKeySelector `json:"secretAccessKey,omitempty"`
	Region          *ClusterSecretKeySelector `json:"region,omitempty"`
	SessionToken    *ClusterSecretKeySelector `json:"sessionToken,omitempty"`
	InheritFromIAM  bool                       `json:"inheritFromIAMRole,omitempty"`
}

// ClusterSecretKeySelector points at a single key within a Secret, the
// idiom the downstream CRD uses everywhere it needs a credential value
// rather than accepting one inline.
type ClusterSecretKeySelector struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// ClusterBackupEncryption is the fixed enumeration of object-store
// encryption modes the renderer understands.
type ClusterBackupEncryption string

const (
	ClusterBackupEncryptionAES256 ClusterBackupEncryption = "AES256"
	ClusterBackupEncryptionAWSKMS ClusterBackupEncryption = "aws:kms"
)

// ClusterBarmanData configures base-backup compression/encryption.
type ClusterBarmanData struct {
	Compression        string                   `json:"compression,omitempty"`
	Encryption         ClusterBackupEncryption  `json:"encryption,omitempty"`
	ImmediateCheckpoint bool                    `json:"immediateCheckpoint,omitempty"`
}

// ClusterBarmanWal configures WAL-archive compression/encryption and the
// maximum number of concurrent WAL uploads.
type ClusterBarmanWal struct {
	Compression string                  `json:"compression,omitempty"`
	Encryption  ClusterBackupEncryption `json:"encryption,omitempty"`
	MaxParallel int                     `json:"maxParallel,omitempty"`
}

// ClusterBackup is present only when the CoreDB requests a backup
// destination.
type ClusterBackup struct {
	BarmanObjectStore *ClusterBarmanObjectStore `json:"barmanObjectStore,omitempty"`
	RetentionPolicy   string                    `json:"retentionPolicy,omitempty"`
}

// ClusterServiceAccountTemplate carries IAM-role annotations through to
// the instance's own service account, set only when IAM-role inheritance
// is requested.
type ClusterServiceAccountTemplate struct {
	Metadata metav1.ObjectMeta `json:"metadata,omitempty"`
}

// ClusterManaged declares extra Postgres roles the downstream controller
// must create and keep in sync.
type ClusterManaged struct {
	Roles []ClusterManagedRole `json:"roles,omitempty"`
}

// ClusterManagedRole is one managed Postgres role.
type ClusterManagedRole struct {
	Name           string                    `json:"name"`
	Ensure         string                    `json:"ensure"`
	Login          bool                      `json:"login"`
	InRoles        []string                  `json:"inRoles,omitempty"`
	PasswordSecret *ClusterSecretKeySelector `json:"passwordSecret,omitempty"`
}

// ClusterPostgresql carries the Postgres parameter set the PG-Config
// Merger (C1) and Shared-Preload Negotiator (C5) produce.
type ClusterPostgresql struct {
	Parameters              map[string]string `json:"parameters,omitempty"`
	SharedPreloadLibraries  []string          `json:"shared_preload_libraries,omitempty"`
}

// ClusterReplicationSlots turns on HA replication slots once the instance
// has more than one replica.
type ClusterReplicationSlots struct {
	HighAvailability *ClusterReplicationSlotsHA `json:"highAvailability,omitempty"`
	UpdateInterval   int                         `json:"updateInterval,omitempty"`
}

// ClusterReplicationSlotsHA enables HA slot tracking.
type ClusterReplicationSlotsHA struct {
	Enabled bool `json:"enabled"`
}

// ClusterStorage mirrors the CoreDB's requested volume size.
type ClusterStorage struct {
	Size string `json:"size,omitempty"`
}

// ClusterNodeMaintenanceWindow, when InProgress is true, allows a
// single-instance cluster to be drained during node turnover.
type ClusterNodeMaintenanceWindow struct {
	InProgress bool `json:"inProgress"`
}
