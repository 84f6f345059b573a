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
	"encoding/json"

	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	"github.com/tembo-io/coredb-operator/pkg/apis/coredb/v1alpha1"
	"github.com/tembo-io/coredb-operator/pkg/reconciler/secrets"
)

// metricsConfigMapName names the ConfigMap carrying a CoreDB's custom
// postgres_exporter queries.
func metricsConfigMapName(clusterName string) string {
	return clusterName + "-metrics"
}

const metricsQueriesKey = "queries.yaml"

// reconcileMetricsAndSecrets reconciles the superuser/readonly/exporter
// role secrets (generate-once-then-reuse, per the Shared-resource policy)
// and, when postgresExporterEnabled, the custom query ConfigMap the
// exporter Deployment mounts.
func (r *Reconciler) reconcileMetricsAndSecrets(ctx context.Context, cdb *v1alpha1.CoreDB) error {
	owner := metav1.OwnerReference{
		APIVersion: v1alpha1.SchemeGroupVersion.String(),
		Kind:       "CoreDB",
		Name:       cdb.Name,
		UID:        cdb.UID,
	}

	for _, name := range []string{cdb.Name + "-ro", cdb.Name + "-exporter"} {
		if _, err := secrets.EnsurePassword(ctx, r.Client, cdb.Namespace, name, owner); err != nil {
			return errors.Wrapf(err, "ensure secret %s", name)
		}
	}

	if !cdb.Spec.PostgresExporterEnabled || cdb.Spec.Metrics == nil {
		return nil
	}

	raw, err := json.Marshal(cdb.Spec.Metrics)
	if err != nil {
		return errors.Wrap(err, "marshal metrics queries")
	}

	cm := &corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: metricsConfigMapName(cdb.Name), Namespace: cdb.Namespace}}
	_, err = controllerutil.CreateOrUpdate(ctx, r.Client, cm, func() error {
		if cm.Data == nil {
			cm.Data = map[string]string{}
		}
		cm.Data[metricsQueriesKey] = string(raw)
		return ctrl.SetControllerReference(cdb, cm, r.Client.Scheme())
	})
	if err != nil {
		return errors.Wrap(err, "apply metrics configmap")
	}
	return nil
}
