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

// Package fencing implements the Fencing Coordinator (C6 of the
// reconciliation core): it decides which downstream pods should be fenced
// on each reconcile, and how to safely unfence pods that have caught up.
package fencing

import (
	"encoding/json"
	"fmt"
	"sort"

	clusterv1 "github.com/tembo-io/coredb-operator/pkg/apis/cluster/v1"
)

// ErrLatestGeneratedNodeUnset signals a scale-up on a cluster that hasn't
// recorded status.latestGeneratedNode yet; the caller should requeue 30s.
var ErrLatestGeneratedNodeUnset = fmt.Errorf("latestGeneratedNode not yet set on cluster status")

// PodsToFence computes the list of pod names that should be fenced this
// reconcile. clusterExists distinguishes an existing downstream Cluster
// (whose Spec.Instances and Status.LatestGeneratedNode are read) from a
// brand new one (scaling logic can't run; pods are named from ordinal 2
// upward instead).
func PodsToFence(baseName string, desiredReplicas int32, clusterExists bool, cluster *clusterv1.Cluster) ([]string, error) {
	if !clusterExists {
		if desiredReplicas <= 1 {
			return nil, nil
		}
		names := make([]string, 0, desiredReplicas-1)
		for i := int32(2); i <= desiredReplicas; i++ {
			names = append(names, fmt.Sprintf("%s-%d", baseName, i))
		}
		return names, nil
	}

	actual := cluster.Spec.Instances
	if desiredReplicas > actual {
		if cluster.Status.LatestGeneratedNode == nil {
			return nil, ErrLatestGeneratedNodeUnset
		}
		latest := *cluster.Status.LatestGeneratedNode
		diff := desiredReplicas - actual
		names := make([]string, 0, diff)
		for i := int32(1); i <= diff; i++ {
			names = append(names, fmt.Sprintf("%s-%d", baseName, latest+i))
		}
		return names, nil
	}

	// desired == actual (desired < actual isn't a scale-down this
	// coordinator handles; scale-down fencing is out of scope): carry
	// forward whatever is already fenced.
	return FencedFromAnnotations(cluster.Annotations), nil
}

// FencedFromAnnotations reads the current fenced-pod list off a Cluster's
// annotations. A missing key, an empty array, and unparsable JSON are all
// read back identically as "no fenced pods".
func FencedFromAnnotations(annotations map[string]string) []string {
	raw, ok := annotations[clusterv1.FencedInstancesAnnotation]
	if !ok || raw == "" {
		return nil
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil
	}
	return names
}

// EncodeFencedAnnotation renders names as the annotation value to write.
// An empty slice means the key should be removed entirely, never written
// as "[]"; the caller is responsible for deleting the key in that case.
func EncodeFencedAnnotation(names []string) (value string, remove bool) {
	if len(names) == 0 {
		return "", true
	}
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	raw, _ := json.Marshal(sorted)
	return string(raw), false
}

// PodInitialized reports whether a fenced pod's Initialized condition is
// observed True. PodFound is false when the pod doesn't exist yet; a
// not-found pod is treated as "not yet initialized", not as an error,
// matching the upstream behavior of tolerating a pod that hasn't been
// created yet by the StatefulSet controller.
func PodInitialized(podFound bool, conditions []PodCondition) bool {
	if !podFound {
		return false
	}
	for _, c := range conditions {
		if c.Type == "Initialized" && c.Status == "True" {
			return true
		}
	}
	return false
}

// PodCondition is the narrow slice of corev1.PodCondition this package
// reads; kept separate from corev1 so callers can pass conditions without
// this package importing the full core/v1 pod type graph.
type PodCondition struct {
	Type   string
	Status string
}

// Unfence removes podName from the fenced list, returning the reduced
// list. It does not check readiness; callers must confirm
// PodInitialized(podName) is true before calling this.
func Unfence(current []string, podName string) []string {
	out := make([]string, 0, len(current))
	for _, n := range current {
		if n != podName {
			out = append(out, n)
		}
	}
	return out
}
