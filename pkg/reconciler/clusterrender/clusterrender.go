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

// Package clusterrender implements the Cluster Renderer (C7 of the
// reconciliation core): the pure function that turns a CoreDB, its fenced
// pod set, and its negotiated shared_preload_libraries into the downstream
// Cluster object applied via server-side apply.
package clusterrender

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	clusterv1 "github.com/tembo-io/coredb-operator/pkg/apis/cluster/v1"
	"github.com/tembo-io/coredb-operator/pkg/apis/coredb/v1alpha1"
	"github.com/tembo-io/coredb-operator/pkg/reconciler/credentials"
	"github.com/tembo-io/coredb-operator/pkg/reconciler/fencing"
	"github.com/tembo-io/coredb-operator/pkg/reconciler/pgconfig"
)

// DefaultStandardImage is used when spec.image is empty and no stack
// selects a different base image.
const DefaultStandardImage = "quay.io/tembo/standard-cnpg:15.3.0-1-0c19c7e"

// DefaultMachineLearningImage is used when spec.image is empty and
// spec.stack.name case-insensitively equals "MachineLearning".
const DefaultMachineLearningImage = "quay.io/tembo/ml-cnpg:15.3.0-1-0c19c7e"

const recoverySourceName = "tembo-recovery"

// EKSRoleARNAnnotation is the well-known annotation carrying an IAM role
// ARN on a service account, used to gate IAM-role inheritance.
const EKSRoleARNAnnotation = "eks.amazonaws.com/role-arn"

// Input bundles every precomputed value the renderer needs so it can stay
// a pure function of its arguments.
type Input struct {
	CoreDB          *v1alpha1.CoreDB
	FencedPods      []string
	RequiresLoad    []string
	RuntimeLibs     []string // C5's negotiated safe shared_preload_libraries
	RestartRequired bool
}

// Render computes the desired downstream Cluster for cdb.
func Render(in Input, logger log.Logger) *clusterv1.Cluster {
	cdb := in.CoreDB
	name := cdb.Name

	annotations := map[string]string{
		clusterv1.PodInitInjectAnnotation: "true",
	}
	if value, remove := fencing.EncodeFencedAnnotation(in.FencedPods); !remove {
		annotations[clusterv1.FencedInstancesAnnotation] = value
	}
	if restartedAt, ok := cdb.Annotations[v1alpha1.RestartedAtAnnotation]; ok {
		annotations[clusterv1.RestartedAtAnnotation] = restartedAt
	}

	bootstrap, externalClusters := renderBootstrap(cdb, logger)

	computed, err := pgconfig.Compute(&cdb.Spec, in.RequiresLoad)
	if err != nil {
		level.Error(logger).Log("msg", "failed to compute postgres parameters", "err", err)
	}
	parameters := make(map[string]string, len(computed))
	for _, c := range computed {
		if c.Name == "shared_preload_libraries" {
			continue
		}
		parameters[c.Name] = c.Value.String()
	}

	cluster := &clusterv1.Cluster{
		TypeMeta: metav1.TypeMeta{APIVersion: clusterv1.GroupName + "/" + clusterv1.Version, Kind: "Cluster"},
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Namespace:   cdb.Namespace,
			Annotations: annotations,
		},
		Spec: clusterv1.ClusterSpec{
			Instances:             cdb.Spec.Replicas,
			Bootstrap:             bootstrap,
			ExternalClusters:      externalClusters,
			Backup:                renderBackup(cdb),
			ServiceAccountTemplate: renderServiceAccountTemplate(cdb),
			Managed:               managedRoles(name),
			Postgresql: clusterv1.ClusterPostgresql{
				Parameters:             parameters,
				SharedPreloadLibraries: in.RuntimeLibs,
			},
			ReplicationSlots: &clusterv1.ClusterReplicationSlots{
				HighAvailability: &clusterv1.ClusterReplicationSlotsHA{Enabled: cdb.Spec.Replicas > 1},
				UpdateInterval:  30,
			},
			StorageConfiguration: clusterv1.ClusterStorage{Size: cdb.Spec.Storage},
			Resources:            cdb.Spec.Resources,
			NodeMaintenanceWindow: &clusterv1.ClusterNodeMaintenanceWindow{InProgress: true},
			ImageName:             selectImage(cdb),
		},
	}
	return cluster
}

func selectImage(cdb *v1alpha1.CoreDB) string {
	if cdb.Spec.Image != "" {
		return cdb.Spec.Image
	}
	if cdb.Spec.Stack != nil && strings.EqualFold(cdb.Spec.Stack.Name, "MachineLearning") {
		return DefaultMachineLearningImage
	}
	return DefaultStandardImage
}

func managedRoles(clusterName string) *clusterv1.ClusterManaged {
	return &clusterv1.ClusterManaged{
		Roles: []clusterv1.ClusterManagedRole{
			{
				Name:   "readonly",
				Ensure: "present",
				Login:  true,
				PasswordSecret: &clusterv1.ClusterSecretKeySelector{
					Name: fmt.Sprintf("%s-ro", clusterName),
					Key:  "password",
				},
				InRoles: []string{"pg_read_all_data"},
			},
			{
				Name:   "postgres_exporter",
				Ensure: "present",
				Login:  true,
				PasswordSecret: &clusterv1.ClusterSecretKeySelector{
					Name: fmt.Sprintf("%s-exporter", clusterName),
					Key:  "password",
				},
				InRoles: []string{"pg_read_all_stats", "pg_monitor"},
			},
		},
	}
}

func renderBootstrap(cdb *v1alpha1.CoreDB, logger log.Logger) (*clusterv1.ClusterBootstrap, []clusterv1.ClusterExternalCluster) {
	if cdb.Spec.Restore == nil {
		return &clusterv1.ClusterBootstrap{InitDB: &clusterv1.ClusterBootstrapInitDB{}}, nil
	}

	restore := cdb.Spec.Restore
	var recoveryTarget *clusterv1.ClusterBootstrapRecoveryTarget
	if restore.TargetTime != nil {
		if normalized, err := ParseTargetTime(*restore.TargetTime); err != nil {
			level.Error(logger).Log("msg", "failed to parse restore target time, falling back to full recovery", "err", err)
		} else {
			recoveryTarget = &clusterv1.ClusterBootstrapRecoveryTarget{TargetTime: &normalized}
		}
	}

	bootstrap := &clusterv1.ClusterBootstrap{
		Recovery: &clusterv1.ClusterBootstrapRecovery{
			Source:         recoverySourceName,
			RecoveryTarget: recoveryTarget,
		},
	}

	destinationPath := ""
	if cdb.Spec.Backup.DestinationPath != nil {
		destinationPath = generateRestoreDestinationPath(*cdb.Spec.Backup.DestinationPath)
	}

	restoreEndpoint := ""
	if restore.EndpointURL != nil {
		restoreEndpoint = *restore.EndpointURL
	}
	externalCluster := clusterv1.ClusterExternalCluster{
		Name: recoverySourceName,
		BarmanObjectStore: &clusterv1.ClusterBarmanObjectStore{
			DestinationPath: fmt.Sprintf("%s/%s", destinationPath, restore.ServerName),
			EndpointURL:     restoreEndpoint,
			S3Credentials:   credentials.Synthesize(restore.S3Credentials),
			Wal:             &clusterv1.ClusterBarmanWal{MaxParallel: 5},
		},
	}
	return bootstrap, []clusterv1.ClusterExternalCluster{externalCluster}
}

// generateRestoreDestinationPath derives the path barman should read
// base-backups from, stripping any trailing path separator from the
// configured backup destination so it joins cleanly with the server name.
func generateRestoreDestinationPath(backupPath string) string {
	return strings.TrimSuffix(backupPath, "/")
}

func renderBackup(cdb *v1alpha1.CoreDB) *clusterv1.ClusterBackup {
	if cdb.Spec.Backup.DestinationPath == nil {
		return nil
	}

	retention := "30d"
	if cdb.Spec.Backup.RetentionPolicy != nil {
		if days, err := strconv.Atoi(*cdb.Spec.Backup.RetentionPolicy); err == nil {
			retention = fmt.Sprintf("%dd", days)
		}
	}

	endpoint := ""
	if cdb.Spec.Backup.EndpointURL != nil {
		endpoint = *cdb.Spec.Backup.EndpointURL
	}

	var encryption clusterv1.ClusterBackupEncryption
	if cdb.Spec.Backup.Encryption != nil {
		encryption = clusterv1.ClusterBackupEncryption(*cdb.Spec.Backup.Encryption)
	}

	return &clusterv1.ClusterBackup{
		RetentionPolicy: retention,
		BarmanObjectStore: &clusterv1.ClusterBarmanObjectStore{
			DestinationPath: *cdb.Spec.Backup.DestinationPath,
			EndpointURL:     endpoint,
			S3Credentials:   credentials.Synthesize(cdb.Spec.Backup.S3Credentials),
			Data: &clusterv1.ClusterBarmanData{
				Compression:         "bzip2",
				Encryption:           encryption,
				ImmediateCheckpoint: false,
			},
			Wal: &clusterv1.ClusterBarmanWal{
				Compression: "bzip2",
				Encryption:  encryption,
				MaxParallel: 5,
			},
		},
	}
}

func renderServiceAccountTemplate(cdb *v1alpha1.CoreDB) *clusterv1.ClusterServiceAccountTemplate {
	creds := cdb.Spec.Backup.S3Credentials
	inheritRequested := creds == nil || (creds.AccessKeyID == nil && creds.SecretAccessKey == nil)
	if !inheritRequested {
		return nil
	}
	meta := cdb.Spec.ServiceAccountTemplate.Metadata
	if meta == nil || meta.Annotations == nil {
		return nil
	}
	roleARN, ok := meta.Annotations[EKSRoleARNAnnotation]
	if !ok {
		return nil
	}
	return &clusterv1.ClusterServiceAccountTemplate{
		Metadata: metav1.ObjectMeta{
			Annotations: map[string]string{EKSRoleARNAnnotation: roleARN},
		},
	}
}

// acceptedTargetTimeLayouts lists every input format parse_target_time
// accepts, tried in order; the first successful parse wins.
var acceptedTargetTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05.999999-07:00",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// ParseTargetTime normalizes a user-supplied recovery target time into
// CNPG's expected "YYYY-MM-DD HH:MM:SS.ffffff±HH" form.
func ParseTargetTime(raw string) (string, error) {
	for _, layout := range acceptedTargetTimeLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		_, offset := t.Zone()
		offsetHours := offset / 3600
		return fmt.Sprintf("%s.%06d%+03d", t.Format("2006-01-02 15:04:05"), t.Nanosecond()/1000, offsetHours), nil
	}
	return "", fmt.Errorf("unrecognized target time format: %q", raw)
}
