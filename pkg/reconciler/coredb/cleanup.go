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

	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	"github.com/tembo-io/coredb-operator/pkg/apis/coredb/v1alpha1"
)

// cleanup runs when a CoreDB carries a deletion timestamp. If its
// namespace is itself Terminating, no event is published (publishing into
// a terminating namespace wedges deletion, per CoreDB spec §4.8); the
// finalizer is removed either way, letting owner references reap the
// downstream Cluster, ScheduledBackup, Pooler, and ingress routes.
func (r *Reconciler) cleanup(ctx context.Context, cdb *v1alpha1.CoreDB) (reconcile.Result, error) {
	if !containsString(cdb.Finalizers, v1alpha1.FinalizerName) {
		return reconcile.Result{}, nil
	}

	var ns corev1.Namespace
	terminating := false
	if err := r.Client.Get(ctx, client.ObjectKey{Name: cdb.Namespace}, &ns); err == nil {
		terminating = ns.Status.Phase == corev1.NamespaceTerminating
	}

	if !terminating && r.Recorder != nil {
		r.Recorder.Event(cdb, corev1.EventTypeNormal, "DeleteCoreDB", "deleting CoreDB instance "+cdb.Name)
	}

	cdb.Finalizers = removeString(cdb.Finalizers, v1alpha1.FinalizerName)
	if err := r.Client.Update(ctx, cdb); err != nil {
		return reconcile.Result{}, errors.Wrap(err, "remove finalizer")
	}
	return reconcile.Result{}, nil
}
