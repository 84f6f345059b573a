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
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	clusterv1 "github.com/tembo-io/coredb-operator/pkg/apis/cluster/v1"
	"github.com/tembo-io/coredb-operator/pkg/apis/coredb/v1alpha1"
)

func poolerName(clusterName string) string {
	return clusterName + "-pooler"
}

const defaultPoolerInstances = 1

// reconcilePooler patches the Pooler CR fronting a CoreDB's Cluster with
// the pool mode declared in spec.connPooler.pooler. No delete path exists
// here: when connPooler.enabled flips false, the owner reference on the
// Pooler drives garbage collection instead.
func (r *Reconciler) reconcilePooler(ctx context.Context, cdb *v1alpha1.CoreDB) error {
	poolMode := cdb.Spec.ConnPooler.Pooler.PoolMode
	if poolMode == "" {
		poolMode = "transaction"
	}
	instances := cdb.Spec.ConnPooler.Pooler.Instances
	if instances <= 0 {
		instances = defaultPoolerInstances
	}

	p := &clusterv1.Pooler{
		ObjectMeta: metav1.ObjectMeta{Name: poolerName(cdb.Name), Namespace: cdb.Namespace},
	}
	_, err := controllerutil.CreateOrUpdate(ctx, r.Client, p, func() error {
		p.Spec = clusterv1.PoolerSpec{
			Cluster:   clusterv1.PoolerClusterRef{Name: cdb.Name},
			Type:      "rw",
			Instances: instances,
			PgBouncer: clusterv1.PoolerPgBouncer{PoolMode: poolMode},
		}
		return ctrl.SetControllerReference(cdb, p, r.Client.Scheme())
	})
	if err != nil {
		return errors.Wrap(err, "apply pooler")
	}
	return nil
}
