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
	"github.com/tembo-io/coredb-operator/pkg/reconciler/schedule"
)

func scheduledBackupName(clusterName string) string {
	return clusterName + "-backup"
}

// reconcileScheduledBackup patches the ScheduledBackup CR whose cron
// schedule is the user's value normalized by the Schedule Validator (C9).
func (r *Reconciler) reconcileScheduledBackup(ctx context.Context, cdb *v1alpha1.CoreDB) error {
	raw := ""
	if cdb.Spec.Backup.Schedule != nil {
		raw = *cdb.Spec.Backup.Schedule
	}
	normalized := schedule.Validate(raw)

	sb := &clusterv1.ScheduledBackup{
		ObjectMeta: metav1.ObjectMeta{Name: scheduledBackupName(cdb.Name), Namespace: cdb.Namespace},
	}
	_, err := controllerutil.CreateOrUpdate(ctx, r.Client, sb, func() error {
		sb.Spec = clusterv1.ScheduledBackupSpec{
			Schedule: normalized,
			Cluster:  clusterv1.ScheduledBackupClusterRef{Name: cdb.Name},
		}
		return ctrl.SetControllerReference(cdb, sb, r.Client.Scheme())
	})
	if err != nil {
		return errors.Wrap(err, "apply scheduled backup")
	}
	return nil
}
