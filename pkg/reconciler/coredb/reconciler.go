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

// Package coredb implements the Reconciler Loop (C8 of the reconciliation
// core): the controller-runtime Reconciler that drives a CoreDB to
// convergence with its downstream Cluster, ScheduledBackup, Pooler,
// exporter, and ingress resources.
package coredb

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	clusterv1 "github.com/tembo-io/coredb-operator/pkg/apis/cluster/v1"
	"github.com/tembo-io/coredb-operator/pkg/apis/coredb/v1alpha1"
	ingressv1alpha1 "github.com/tembo-io/coredb-operator/pkg/apis/ingress/v1alpha1"
	"github.com/tembo-io/coredb-operator/pkg/reconciler"
	"github.com/tembo-io/coredb-operator/pkg/reconciler/clusterrender"
	"github.com/tembo-io/coredb-operator/pkg/reconciler/fencing"
	"github.com/tembo-io/coredb-operator/pkg/reconciler/pgconfig"
	"github.com/tembo-io/coredb-operator/pkg/reconciler/podexec"
	"github.com/tembo-io/coredb-operator/pkg/reconciler/preload"
	"github.com/tembo-io/coredb-operator/pkg/reconciler/trunkcache"
)

// FieldOwner is the server-side apply field manager this reconciler uses
// for every downstream resource it owns outright.
const FieldOwner = "cntrlr"

const (
	steadyStateRequeue = 60 * time.Second
	jitterMax          = 30 * time.Second
	readinessRequeue   = 5 * time.Second
	stateMissingRequeue = 30 * time.Second
	fencingRequeue     = 10 * time.Second
	fallbackRequeue    = 5 * time.Minute
)

// Reconciler drives one CoreDB to convergence per call. It composes every
// component of the reconciliation core rather than implementing any of
// their algorithms itself.
type Reconciler struct {
	Client   client.Client
	Exec     podexec.Client
	Trunk    *trunkcache.Cache
	Recorder record.EventRecorder
	Logger   log.Logger
}

// SetupWithManager registers the controller with mgr, owning every
// downstream resource type this loop writes so their changes also
// trigger a reconcile of the owning CoreDB.
func (r *Reconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		Named("coredb").
		For(&v1alpha1.CoreDB{}).
		Owns(&clusterv1.Cluster{}).
		Owns(&clusterv1.ScheduledBackup{}).
		Owns(&clusterv1.Pooler{}).
		Owns(&ingressv1alpha1.IngressRouteTCP{}).
		Complete(r)
}

// Reconcile implements the 15-step state machine.
func (r *Reconciler) Reconcile(ctx context.Context, req reconcile.Request) (reconcile.Result, error) {
	logger := log.With(r.Logger, "coredb", req.NamespacedName)

	var cdb v1alpha1.CoreDB
	if err := r.Client.Get(ctx, req.NamespacedName, &cdb); err != nil {
		return reconcile.Result{}, client.IgnoreNotFound(err)
	}

	// Step 1: annotation gate.
	if cdb.Annotations[v1alpha1.WatchAnnotation] == "false" {
		return reconcile.Result{}, nil
	}

	// Step 2: finalizer / deletion.
	if cdb.DeletionTimestamp != nil {
		return r.cleanup(ctx, &cdb)
	}
	if !containsString(cdb.Finalizers, v1alpha1.FinalizerName) {
		cdb.Finalizers = append(cdb.Finalizers, v1alpha1.FinalizerName)
		if err := r.Client.Update(ctx, &cdb); err != nil {
			return reconcile.Result{}, errors.Wrap(err, "add finalizer")
		}
	}

	namespace := cdb.Namespace
	clusterName := cdb.Name

	// Step 3: trunk metadata refresh.
	if requeueAfter, err := r.Trunk.Refresh(ctx, namespace); err != nil {
		return reconcile.Result{}, err
	} else if requeueAfter > 0 {
		return reconcile.Result{RequeueAfter: requeueAfter}, nil
	}
	requiresLoad, err := r.Trunk.RequiresLoad(ctx, namespace)
	if err != nil {
		return reconcile.Result{}, err
	}

	// Step 4: ingress reconcile.
	if err := r.reconcileIngress(ctx, &cdb); err != nil {
		return reconcile.Result{}, err
	}

	// Step 5: AppService reconcile.
	if err := r.reconcileAppServices(ctx, &cdb); err != nil {
		return reconcile.Result{}, err
	}

	// Step 6: metrics config & secrets.
	if err := r.reconcileMetricsAndSecrets(ctx, &cdb); err != nil {
		return reconcile.Result{}, err
	}

	var existing clusterv1.Cluster
	clusterExists := true
	if err := r.Client.Get(ctx, types.NamespacedName{Namespace: namespace, Name: clusterName}, &existing); err != nil {
		if !apierrors.IsNotFound(err) {
			return reconcile.Result{}, errors.Wrap(err, "get cluster")
		}
		clusterExists = false
	}

	// Step 7: restart-at forwarding.
	restartedAt := cdb.Annotations[v1alpha1.RestartedAtAnnotation]
	if clusterExists && restartedAt != "" && existing.Annotations[clusterv1.RestartedAtAnnotation] != restartedAt {
		running := false
		if err := r.patchStatus(ctx, &cdb, func(s *v1alpha1.CoreDBStatus) { s.Running = running }); err != nil {
			return reconcile.Result{}, err
		}
	}

	// Fencing Coordinator (C6) feeds the Cluster Renderer (C7).
	fenced, err := fencing.PodsToFence(clusterName, cdb.Spec.Replicas, clusterExists, &existing)
	if err != nil {
		if errors.Is(err, fencing.ErrLatestGeneratedNodeUnset) {
			return reconcile.Result{RequeueAfter: stateMissingRequeue}, nil
		}
		return reconcile.Result{}, err
	}
	// Unfencing: drop any pod that has reported Initialized=True from the
	// fenced set before it's handed to the Cluster Renderer, so the SSA
	// patch below carries the reduced list (CoreDB spec §4.6).
	fenced, err = r.unfenceReady(ctx, namespace, fenced)
	if err != nil {
		return reconcile.Result{}, errors.Wrap(err, "check fenced pod readiness")
	}

	// Shared-Preload Negotiator (C5).
	desiredPreload, err := pgconfig.ByName(&cdb.Spec, requiresLoad, "shared_preload_libraries")
	if err != nil {
		return reconcile.Result{}, reconciler.NewUserInputError(err)
	}
	var currentPreload []string
	if clusterExists {
		currentPreload = existing.Spec.Postgresql.SharedPreloadLibraries
	}
	var desiredPreloadNames []string
	if desiredPreload != nil && desiredPreload.Value.String() != "" {
		desiredPreloadNames = strings.Split(desiredPreload.Value.String(), ",")
	}
	var primaryPod string
	if clusterExists {
		primaryPod = clusterName + "-1"
	}
	negotiation, err := preload.Negotiate(ctx, r.Exec, namespace, primaryPod, clusterExists, currentPreload, desiredPreloadNames)
	if err != nil {
		return reconcile.Result{}, reconciler.NewTransportError(err)
	}

	// Step 8: cluster patch (C5 + C7 + C9 + C10). C10 (credential
	// synthesis) runs inside clusterrender.Render itself.
	desired := clusterrender.Render(clusterrender.Input{
		CoreDB:          &cdb,
		FencedPods:      fenced,
		RequiresLoad:    requiresLoad,
		RuntimeLibs:     negotiation.Libraries,
		RestartRequired: negotiation.RestartRequired,
	}, logger)
	if err := ctrl.SetControllerReference(&cdb, desired, r.Client.Scheme()); err != nil {
		return reconcile.Result{}, errors.Wrap(err, "set owner reference on cluster")
	}
	if err := r.Client.Patch(ctx, desired, client.Apply, client.ForceOwnership, client.FieldOwner(FieldOwner)); err != nil {
		return reconcile.Result{}, reconciler.NewTransportError(errors.Wrap(err, "apply cluster"))
	}
	if len(fenced) > 0 {
		// At least one pod is still waiting to report Initialized=True;
		// requeue quickly rather than falling through to the rest of the
		// loop so unfencing converges without waiting a full steady-state
		// cycle (CoreDB spec §4.6).
		return reconcile.Result{RequeueAfter: fencingRequeue}, nil
	}

	// Step 9: scheduled backup.
	if cdb.Spec.Backup.Schedule != nil && cdb.Spec.Backup.DestinationPath != nil {
		if err := r.reconcileScheduledBackup(ctx, &cdb); err != nil {
			return reconcile.Result{}, err
		}
	}

	// Step 10: pooler.
	if cdb.Spec.ConnPooler != nil && cdb.Spec.ConnPooler.Enabled {
		if err := r.reconcilePooler(ctx, &cdb); err != nil {
			return reconcile.Result{}, err
		}
	}

	// Step 11: exporter deployment and service.
	if cdb.Spec.PostgresExporterEnabled {
		if err := r.reconcileExporter(ctx, &cdb); err != nil {
			return reconcile.Result{}, err
		}
	}

	// Step 12: readiness gate.
	if cdb.Spec.Stop {
		if err := r.patchStatus(ctx, &cdb, func(s *v1alpha1.CoreDBStatus) { s.Running = false }); err != nil {
			return reconcile.Result{}, err
		}
		return reconcile.Result{}, nil
	}

	primary, found, err := r.findPrimaryPod(ctx, namespace, clusterName)
	if err != nil {
		return reconcile.Result{}, errors.Wrap(err, "find primary pod")
	}
	if !found {
		return reconcile.Result{RequeueAfter: readinessRequeue}, nil
	}
	if !podContainerReady(primary, "postgres") {
		return reconcile.Result{RequeueAfter: readinessRequeue}, nil
	}

	// Step 13: extensions.
	installRequeue, installStatus, extensionStatus, err := r.reconcileExtensions(ctx, &cdb, primary.Name)
	if err != nil {
		return reconcile.Result{}, err
	}
	if installRequeue > 0 {
		if err := r.patchStatus(ctx, &cdb, func(s *v1alpha1.CoreDBStatus) { s.TrunkInstalls = installStatus }); err != nil {
			return reconcile.Result{}, err
		}
		return reconcile.Result{RequeueAfter: installRequeue}, nil
	}

	// Step 14: final composite status.
	if err := r.patchStatus(ctx, &cdb, func(s *v1alpha1.CoreDBStatus) {
		s.Running = true
		s.TrunkInstalls = installStatus
		s.Extensions = extensionStatus
		s.Storage = cdb.Spec.Storage
		s.Resources = cdb.Spec.Resources
		s.RuntimeConfig = cdb.Spec.RuntimeConfig
	}); err != nil {
		return reconcile.Result{}, err
	}

	level.Debug(logger).Log("msg", "reconcile complete")

	// Step 15: requeue with jitter.
	jitter := time.Duration(rand.Int63n(int64(jitterMax)))
	return reconcile.Result{RequeueAfter: steadyStateRequeue + jitter}, nil
}

// patchStatus applies mutate to a copy of cdb's status and merge-patches
// the status subresource, matching the single-writer policy: only this
// reconciler ever writes status.
func (r *Reconciler) patchStatus(ctx context.Context, cdb *v1alpha1.CoreDB, mutate func(*v1alpha1.CoreDBStatus)) error {
	original := cdb.DeepCopy()
	mutate(&cdb.Status)
	if err := r.Client.Status().Patch(ctx, cdb, client.MergeFrom(original)); err != nil {
		return reconciler.NewTransportError(errors.Wrap(err, "patch status"))
	}
	return nil
}

// unfenceReady checks every currently-fenced pod's Initialized condition
// and removes it from the list once the pod reports True, per the
// Unfencing procedure (CoreDB spec §4.6): never rewrite a pod out of the
// list without first confirming it's ready. A pod that doesn't exist yet
// is treated as not initialized, matching fencing.PodInitialized's
// tolerance of pods not yet created by the StatefulSet controller.
func (r *Reconciler) unfenceReady(ctx context.Context, namespace string, fenced []string) ([]string, error) {
	remaining := fenced
	for _, name := range fenced {
		var pod corev1.Pod
		err := r.Client.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, &pod)
		if err != nil && !apierrors.IsNotFound(err) {
			return nil, err
		}
		found := err == nil
		conds := make([]fencing.PodCondition, 0, len(pod.Status.Conditions))
		for _, c := range pod.Status.Conditions {
			conds = append(conds, fencing.PodCondition{Type: string(c.Type), Status: string(c.Status)})
		}
		if fencing.PodInitialized(found, conds) {
			remaining = fencing.Unfence(remaining, name)
		}
	}
	return remaining, nil
}

func (r *Reconciler) findPrimaryPod(ctx context.Context, namespace, clusterName string) (*corev1.Pod, bool, error) {
	var pods corev1.PodList
	sel := labels.SelectorFromSet(labels.Set{
		"cnpg.io/cluster": clusterName,
		"role":            "primary",
	})
	if err := r.Client.List(ctx, &pods, client.InNamespace(namespace), client.MatchingLabelsSelector{Selector: sel}); err != nil {
		return nil, false, err
	}
	if len(pods.Items) == 0 {
		return nil, false, nil
	}
	sort.Slice(pods.Items, func(i, j int) bool { return pods.Items[i].Name < pods.Items[j].Name })
	return &pods.Items[0], true, nil
}

func podContainerReady(pod *corev1.Pod, container string) bool {
	for _, cs := range pod.Status.ContainerStatuses {
		if cs.Name == container {
			return cs.Ready
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
