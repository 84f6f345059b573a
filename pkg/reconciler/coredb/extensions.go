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

package coredb

import (
	"context"
	"sort"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/labels"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/tembo-io/coredb-operator/pkg/apis/coredb/v1alpha1"
	"github.com/tembo-io/coredb-operator/pkg/reconciler/installer"
	"github.com/tembo-io/coredb-operator/pkg/reconciler/toggler"
)

const installerRequeue = 10 * time.Second

// reconcileExtensions runs the Extension Installer (C3) across every ready
// pod, then the Extension Toggler (C4) against the primary, and returns
// the merged status together with a non-zero requeueAfter when C3
// reported a transport failure.
func (r *Reconciler) reconcileExtensions(ctx context.Context, cdb *v1alpha1.CoreDB, primaryPod string) (time.Duration, []v1alpha1.TrunkInstallStatus, []v1alpha1.ExtensionStatus, error) {
	readyPods, err := r.readyPodNames(ctx, cdb.Namespace, cdb.Name)
	if err != nil {
		return 0, nil, nil, err
	}

	installStatus, requeue := installer.Reconcile(ctx, r.Exec, r.Logger, cdb.Namespace, readyPods, cdb.Spec.TrunkInstalls, cdb.Status.TrunkInstalls)
	if requeue {
		return installerRequeue, installStatus, cdb.Status.Extensions, nil
	}

	extensionStatus, err := r.reconcileToggles(ctx, cdb, primaryPod)
	if err != nil {
		return 0, nil, nil, err
	}
	return 0, installStatus, extensionStatus, nil
}

// reconcileToggles delegates to the Extension Toggler's own Reconcile,
// which computes the next status snapshot from what's actually observed
// on primaryPod (not from spec) and only issues CREATE/DROP EXTENSION for
// locations that snapshot says disagree with spec and carry no error.
func (r *Reconciler) reconcileToggles(ctx context.Context, cdb *v1alpha1.CoreDB, primaryPod string) ([]v1alpha1.ExtensionStatus, error) {
	return toggler.Reconcile(ctx, r.Exec, cdb.Namespace, primaryPod, cdb.Spec.Extensions, cdb.Status.Extensions)
}

func (r *Reconciler) readyPodNames(ctx context.Context, namespace, clusterName string) ([]string, error) {
	var pods corev1.PodList
	sel := labels.SelectorFromSet(labels.Set{"cnpg.io/cluster": clusterName})
	if err := r.Client.List(ctx, &pods, client.InNamespace(namespace), client.MatchingLabelsSelector{Selector: sel}); err != nil {
		return nil, err
	}
	var names []string
	for _, pod := range pods.Items {
		if podContainerReady(&pod, "postgres") {
			names = append(names, pod.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}
