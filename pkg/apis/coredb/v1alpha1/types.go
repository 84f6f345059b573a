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

// Package v1alpha1 contains the CoreDB custom resource definition: the
// declarative instance unit the reconciler drives to convergence.
package v1alpha1

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// CoreDB describes a single managed Postgres instance.
//
// +genclient
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=cdb
type CoreDB struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   CoreDBSpec   `json:"spec"`
	Status CoreDBStatus `json:"status,omitempty"`
}

// CoreDBList is a list of CoreDB resources.
//
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
type CoreDBList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []CoreDB `json:"items"`
}

// FinalizerName is added to every CoreDB on first reconcile; its presence
// blocks garbage collection until the cleanup branch runs.
const FinalizerName = "coredbs.coredb.io"

// WatchAnnotation, when set to the literal string "false", gates the whole
// reconcile loop off for this instance (step 1 of the reconcile sequence).
const WatchAnnotation = "coredbs.coredb.io/watch"

// RestartedAtAnnotation carries a user- or conductor-supplied token used to
// force a Postgres restart by being forwarded onto the downstream cluster.
const RestartedAtAnnotation = "coredbs.coredb.io/restartedAt"

// CoreDBSpec is the user-controlled desired state of a CoreDB.
type CoreDBSpec struct {
	// Replicas is the desired number of Postgres instances. The CRD schema
	// enforces a minimum of 1; 0 is never a legal value.
	// +kubebuilder:validation:Minimum=1
	Replicas int32 `json:"replicas"`

	Resources corev1.ResourceRequirements `json:"resources,omitempty"`

	// Storage is the requested size of the main data volume, e.g. "10Gi".
	Storage string `json:"storage,omitempty"`

	PostgresExporterEnabled bool   `json:"postgresExporterEnabled,omitempty"`
	Image                   string `json:"image,omitempty"`
	PostgresExporterImage   string `json:"postgresExporterImage,omitempty"`
	Port                    int32  `json:"port,omitempty"`
	UID                     int64  `json:"uid,omitempty"`

	Extensions    []Extension    `json:"extensions,omitempty"`
	TrunkInstalls []TrunkInstall `json:"trunkInstalls,omitempty"`

	Stop bool `json:"stop,omitempty"`

	ServiceAccountTemplate ServiceAccountTemplate `json:"serviceAccountTemplate,omitempty"`

	Backup  Backup   `json:"backup,omitempty"`
	Restore *Restore `json:"restore,omitempty"`

	Metrics *PostgresMetrics `json:"metrics,omitempty"`

	ExtraDomainsRW []string `json:"extraDomainsRw,omitempty"`
	IPAllowList    []string `json:"ipAllowList,omitempty"`

	Stack *Stack `json:"stack,omitempty"`

	// RuntimeConfig holds dynamically-set Postgres parameters (e.g. set by
	// the operator when an extension is installed).
	RuntimeConfig []PgConfig `json:"runtimeConfig,omitempty"`
	// OverrideConfigs holds user-supplied parameters; highest precedence.
	OverrideConfigs []PgConfig `json:"overrideConfigs,omitempty"`

	ConnPooler *ConnPooler `json:"connPooler,omitempty"`

	AppServices []AppService `json:"appServices,omitempty"`
}

// ServiceAccountTemplate lets the user attach annotations (e.g. an AWS IAM
// role) to the Postgres instance's service account.
type ServiceAccountTemplate struct {
	Metadata *metav1.ObjectMeta `json:"metadata,omitempty"`
}

// Backup describes the backup destination and cadence for an instance.
type Backup struct {
	DestinationPath *string        `json:"destinationPath,omitempty"`
	Encryption      *string        `json:"encryption,omitempty"`
	RetentionPolicy *string        `json:"retentionPolicy,omitempty"`
	Schedule        *string        `json:"schedule,omitempty"`
	EndpointURL     *string        `json:"endpointURL,omitempty"`
	S3Credentials   *S3Credentials `json:"s3Credentials,omitempty"`
}

// Restore, when present, instructs the Cluster Renderer to bootstrap from
// a recovery source rather than initdb.
type Restore struct {
	ServerName    string         `json:"serverName,omitempty"`
	TargetTime    *string        `json:"targetTime,omitempty"`
	EndpointURL   *string        `json:"endpointURL,omitempty"`
	S3Credentials *S3Credentials `json:"s3Credentials,omitempty"`
}

// SecretKeySelector points at one key within a Kubernetes Secret; used
// everywhere a credential value is referenced rather than inlined.
type SecretKeySelector struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// S3Credentials describes how to authenticate to the backup/restore
// object store. When AccessKeyID and SecretAccessKey are both absent,
// the Credential Synthesizer (C10) treats this as a request to inherit
// credentials from the pod's IAM role.
type S3Credentials struct {
	AccessKeyID        *SecretKeySelector `json:"accessKeyId,omitempty"`
	SecretAccessKey    *SecretKeySelector `json:"secretAccessKey,omitempty"`
	Region             *SecretKeySelector `json:"region,omitempty"`
	SessionToken       *SecretKeySelector `json:"sessionToken,omitempty"`
	InheritFromIAMRole *bool              `json:"inheritFromIAMRole,omitempty"`
}

// ConnPooler configures an optional pgbouncer-style pooler in front of the
// instance.
type ConnPooler struct {
	Enabled bool   `json:"enabled,omitempty"`
	Pooler  Pooler `json:"pooler,omitempty"`
}

// Pooler is a subset of the downstream pooler CRD's spec that the user may
// configure.
type Pooler struct {
	PoolMode string `json:"poolMode,omitempty"`
	Instances int32 `json:"instances,omitempty"`
}

// AppService is a user-defined sidecar workload deployed alongside the
// Postgres instance (e.g. a REST API, a background worker).
type AppService struct {
	Name  string                      `json:"name"`
	Image string                      `json:"image"`
	Env   []corev1.EnvVar             `json:"env,omitempty"`
	Resources corev1.ResourceRequirements `json:"resources,omitempty"`
}

// Stack is a named bundle of default parameters and extensions.
type Stack struct {
	Name           string     `json:"name"`
	PostgresConfig []PgConfig `json:"postgresConfig,omitempty"`
}

// PostgresMetrics carries custom postgres_exporter queries, keyed by a
// short name, mirroring the upstream postgres_exporter YAML shape.
type PostgresMetrics map[string]MetricQuery

// MetricQuery is a single postgres_exporter custom query definition.
type MetricQuery struct {
	Query   string                 `json:"query"`
	Master  bool                   `json:"master,omitempty"`
	Metrics []map[string]MetricSpec `json:"metrics,omitempty"`
}

// MetricSpec describes how one returned column becomes a Prometheus metric.
type MetricSpec struct {
	Usage       string `json:"usage"`
	Description string `json:"description,omitempty"`
}

// Extension is a declared Postgres extension and where it should exist.
type Extension struct {
	Name        string             `json:"name"`
	Description *string            `json:"description,omitempty"`
	Locations   []ExtensionLocation `json:"locations,omitempty"`
}

// ExtensionLocation is one (database, schema) slot an extension may occupy.
type ExtensionLocation struct {
	Database string  `json:"database"`
	Schema   *string `json:"schema,omitempty"`
	Version  *string `json:"version,omitempty"`
	Enabled  bool    `json:"enabled"`
}

// TrunkInstall requests a package install of a named extension at an
// optional version. A missing version is a permanent (non-retried) error.
type TrunkInstall struct {
	Name    string  `json:"name"`
	Version *string `json:"version,omitempty"`
}

// CoreDBStatus is the reconciler-owned observed state of a CoreDB.
type CoreDBStatus struct {
	Running             bool   `json:"running"`
	ExtensionsUpdating  bool   `json:"extensionsUpdating,omitempty"`
	Extensions          []ExtensionStatus    `json:"extensions,omitempty"`
	TrunkInstalls       []TrunkInstallStatus `json:"trunkInstalls,omitempty"`
	Storage             string                      `json:"storage,omitempty"`
	Resources           corev1.ResourceRequirements `json:"resources,omitempty"`
	RuntimeConfig       []PgConfig                  `json:"runtimeConfig,omitempty"`
}

// ExtensionStatus mirrors Extension but adds per-location observed/error
// state. Locations are kept sorted by (database, schema); extensions by
// name, so repeated patches are idempotent.
type ExtensionStatus struct {
	Name        string                     `json:"name"`
	Description *string                    `json:"description,omitempty"`
	Locations   []ExtensionLocationStatus `json:"locations,omitempty"`
}

// ExtensionEnabled is a tri-valued enabled flag: true, false, or absent
// ("requested but not installed").
type ExtensionEnabled string

const (
	ExtensionEnabledTrue   ExtensionEnabled = "true"
	ExtensionEnabledFalse  ExtensionEnabled = "false"
	ExtensionEnabledAbsent ExtensionEnabled = "absent"
)

// ExtensionLocationStatus is the observed counterpart of ExtensionLocation.
type ExtensionLocationStatus struct {
	Database     string           `json:"database"`
	Schema       *string          `json:"schema,omitempty"`
	Version      *string          `json:"version,omitempty"`
	Enabled      ExtensionEnabled `json:"enabled"`
	Error        bool             `json:"error"`
	ErrorMessage *string          `json:"errorMessage,omitempty"`
}

// TrunkInstallStatus is the observed counterpart of TrunkInstall.
type TrunkInstallStatus struct {
	Name                 string   `json:"name"`
	Version              *string  `json:"version,omitempty"`
	Error                bool     `json:"error"`
	ErrorMessage         *string  `json:"errorMessage,omitempty"`
	InstalledToInstances []string `json:"installedToInstances,omitempty"`
}
