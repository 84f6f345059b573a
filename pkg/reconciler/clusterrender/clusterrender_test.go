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

package clusterrender

import (
	"testing"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/tembo-io/coredb-operator/pkg/apis/coredb/v1alpha1"
)

func strp(s string) *string { return &s }

func baseCoreDB() *v1alpha1.CoreDB {
	return &v1alpha1.CoreDB{
		ObjectMeta: metav1.ObjectMeta{Name: "mydb", Namespace: "ns1"},
		Spec: v1alpha1.CoreDBSpec{
			Replicas: 1,
			Storage:  "10Gi",
		},
	}
}

func TestRenderInitDBBootstrapWhenNoRestore(t *testing.T) {
	cdb := baseCoreDB()
	cluster := Render(Input{CoreDB: cdb}, log.NewNopLogger())
	require.NotNil(t, cluster.Spec.Bootstrap.InitDB)
	require.Nil(t, cluster.Spec.Bootstrap.Recovery)
	require.Empty(t, cluster.Spec.ExternalClusters)
}

func TestRenderRecoveryBootstrapWhenRestorePresent(t *testing.T) {
	cdb := baseCoreDB()
	cdb.Spec.Restore = &v1alpha1.Restore{ServerName: "mydb", TargetTime: strp("2023-09-26 21:15:42")}
	cdb.Spec.Backup.DestinationPath = strp("s3://bucket/mydb")
	cluster := Render(Input{CoreDB: cdb}, log.NewNopLogger())
	require.NotNil(t, cluster.Spec.Bootstrap.Recovery)
	require.Equal(t, "tembo-recovery", cluster.Spec.Bootstrap.Recovery.Source)
	require.NotNil(t, cluster.Spec.Bootstrap.Recovery.RecoveryTarget)
	require.Equal(t, "2023-09-26 21:15:42.000000+00", *cluster.Spec.Bootstrap.Recovery.RecoveryTarget.TargetTime)
	require.Len(t, cluster.Spec.ExternalClusters, 1)
	require.Equal(t, "s3://bucket/mydb/mydb", cluster.Spec.ExternalClusters[0].BarmanObjectStore.DestinationPath)
}

func TestRenderNoBackupWhenDestinationPathAbsent(t *testing.T) {
	cdb := baseCoreDB()
	cluster := Render(Input{CoreDB: cdb}, log.NewNopLogger())
	require.Nil(t, cluster.Spec.Backup)
}

func TestRenderBackupDefaultsRetention(t *testing.T) {
	cdb := baseCoreDB()
	cdb.Spec.Backup.DestinationPath = strp("s3://bucket/mydb")
	cluster := Render(Input{CoreDB: cdb}, log.NewNopLogger())
	require.NotNil(t, cluster.Spec.Backup)
	require.Equal(t, "30d", cluster.Spec.Backup.RetentionPolicy)
	require.Equal(t, "bzip2", cluster.Spec.Backup.BarmanObjectStore.Data.Compression)
}

func TestRenderBackupInvalidRetentionFallsBackToDefault(t *testing.T) {
	cdb := baseCoreDB()
	cdb.Spec.Backup.DestinationPath = strp("s3://bucket/mydb")
	cdb.Spec.Backup.RetentionPolicy = strp("not-a-number")
	cluster := Render(Input{CoreDB: cdb}, log.NewNopLogger())
	require.Equal(t, "30d", cluster.Spec.Backup.RetentionPolicy)
}

func TestRenderReplicationSlotsHAOnlyWhenMultiReplica(t *testing.T) {
	cdb := baseCoreDB()
	cdb.Spec.Replicas = 3
	cluster := Render(Input{CoreDB: cdb}, log.NewNopLogger())
	require.True(t, cluster.Spec.ReplicationSlots.HighAvailability.Enabled)
}

func TestRenderSelectsMachineLearningImage(t *testing.T) {
	cdb := baseCoreDB()
	cdb.Spec.Stack = &v1alpha1.Stack{Name: "machinelearning"}
	cluster := Render(Input{CoreDB: cdb}, log.NewNopLogger())
	require.Equal(t, DefaultMachineLearningImage, cluster.Spec.ImageName)
}

func TestRenderRespectsExplicitImage(t *testing.T) {
	cdb := baseCoreDB()
	cdb.Spec.Image = "custom/image:tag"
	cluster := Render(Input{CoreDB: cdb}, log.NewNopLogger())
	require.Equal(t, "custom/image:tag", cluster.Spec.ImageName)
}

func TestRenderFencedAnnotationOmittedWhenEmpty(t *testing.T) {
	cdb := baseCoreDB()
	cluster := Render(Input{CoreDB: cdb}, log.NewNopLogger())
	_, ok := cluster.Annotations["cnpg.io/fencedInstances"]
	require.False(t, ok)
}

func TestRenderFencedAnnotationSetWhenNonEmpty(t *testing.T) {
	cdb := baseCoreDB()
	cluster := Render(Input{CoreDB: cdb, FencedPods: []string{"mydb-2"}}, log.NewNopLogger())
	require.Equal(t, `["mydb-2"]`, cluster.Annotations["cnpg.io/fencedInstances"])
}

func TestParseTargetTimeRFC3339(t *testing.T) {
	got, err := ParseTargetTime("2023-09-26T21:15:42Z")
	require.NoError(t, err)
	require.Equal(t, "2023-09-26 21:15:42.000000+00", got)
}

func TestParseTargetTimeInvalidFormat(t *testing.T) {
	_, err := ParseTargetTime("invalid-format")
	require.Error(t, err)
}
