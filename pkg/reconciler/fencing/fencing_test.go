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

package fencing

import (
	"testing"

	"github.com/stretchr/testify/require"

	clusterv1 "github.com/tembo-io/coredb-operator/pkg/apis/cluster/v1"
)

func int32p(v int32) *int32 { return &v }

func TestPodsToFenceNoClusterBootstrapHA(t *testing.T) {
	got, err := PodsToFence("mydb", 3, false, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"mydb-2", "mydb-3"}, got)
}

func TestPodsToFenceNoClusterSingleInstance(t *testing.T) {
	got, err := PodsToFence("mydb", 1, false, nil)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestPodsToFenceScaleUpRequiresLatestGeneratedNode(t *testing.T) {
	cluster := &clusterv1.Cluster{Spec: clusterv1.ClusterSpec{Instances: 1}}
	_, err := PodsToFence("mydb", 3, true, cluster)
	require.ErrorIs(t, err, ErrLatestGeneratedNodeUnset)
}

func TestPodsToFenceScaleUp(t *testing.T) {
	cluster := &clusterv1.Cluster{
		Spec:   clusterv1.ClusterSpec{Instances: 1},
		Status: clusterv1.ClusterStatus{LatestGeneratedNode: int32p(1)},
	}
	got, err := PodsToFence("mydb", 3, true, cluster)
	require.NoError(t, err)
	require.Equal(t, []string{"mydb-2", "mydb-3"}, got)
}

func TestPodsToFenceSteadyStateCarriesForwardAnnotation(t *testing.T) {
	cluster := &clusterv1.Cluster{Spec: clusterv1.ClusterSpec{Instances: 3}}
	cluster.Annotations = map[string]string{
		clusterv1.FencedInstancesAnnotation: `["mydb-3"]`,
	}
	got, err := PodsToFence("mydb", 3, true, cluster)
	require.NoError(t, err)
	require.Equal(t, []string{"mydb-3"}, got)
}

func TestFencedFromAnnotationsAbsentAndMalformedAreEmpty(t *testing.T) {
	require.Nil(t, FencedFromAnnotations(nil))
	require.Nil(t, FencedFromAnnotations(map[string]string{clusterv1.FencedInstancesAnnotation: ""}))
	require.Nil(t, FencedFromAnnotations(map[string]string{clusterv1.FencedInstancesAnnotation: "not-json"}))
}

func TestEncodeFencedAnnotationEmptyMeansRemove(t *testing.T) {
	value, remove := EncodeFencedAnnotation(nil)
	require.True(t, remove)
	require.Empty(t, value)
}

func TestEncodeFencedAnnotationSortsAndEncodes(t *testing.T) {
	value, remove := EncodeFencedAnnotation([]string{"mydb-3", "mydb-2"})
	require.False(t, remove)
	require.Equal(t, `["mydb-2","mydb-3"]`, value)
}

func TestPodInitializedNotFoundIsFalse(t *testing.T) {
	require.False(t, PodInitialized(false, nil))
}

func TestPodInitializedTrueCondition(t *testing.T) {
	require.True(t, PodInitialized(true, []PodCondition{{Type: "Initialized", Status: "True"}}))
	require.False(t, PodInitialized(true, []PodCondition{{Type: "Initialized", Status: "False"}}))
}

func TestUnfenceRemovesOnlyNamedPod(t *testing.T) {
	got := Unfence([]string{"mydb-2", "mydb-3"}, "mydb-2")
	require.Equal(t, []string{"mydb-3"}, got)
}
