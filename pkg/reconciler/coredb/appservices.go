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
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	"github.com/tembo-io/coredb-operator/pkg/apis/coredb/v1alpha1"
)

// appServiceDeploymentName names the Deployment for one spec.appServices
// entry, keeping it distinct from the instance's own -rw/-ro workloads.
func appServiceDeploymentName(clusterName, appName string) string {
	return clusterName + "-app-" + appName
}

// reconcileAppServices deploys one Deployment per spec.app_services entry
// and deletes Deployments for entries no longer declared.
func (r *Reconciler) reconcileAppServices(ctx context.Context, cdb *v1alpha1.CoreDB) error {
	wanted := make(map[string]bool, len(cdb.Spec.AppServices))
	for _, svc := range cdb.Spec.AppServices {
		wanted[svc.Name] = true
		if err := r.applyAppService(ctx, cdb, svc); err != nil {
			return errors.Wrapf(err, "reconcile app service %s", svc.Name)
		}
	}

	var deployments appsv1.DeploymentList
	if err := r.Client.List(ctx, &deployments, client.InNamespace(cdb.Namespace), client.MatchingLabels{
		"coredb.io/app-service-owner": cdb.Name,
	}); err != nil {
		return errors.Wrap(err, "list app service deployments")
	}
	for i := range deployments.Items {
		dep := &deployments.Items[i]
		name := dep.Labels["coredb.io/app-service-name"]
		if wanted[name] {
			continue
		}
		if err := client.IgnoreNotFound(r.Client.Delete(ctx, dep)); err != nil {
			return errors.Wrapf(err, "delete stale app service deployment %s", dep.Name)
		}
	}
	return nil
}

func (r *Reconciler) applyAppService(ctx context.Context, cdb *v1alpha1.CoreDB, svc v1alpha1.AppService) error {
	dep := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      appServiceDeploymentName(cdb.Name, svc.Name),
			Namespace: cdb.Namespace,
		},
	}
	labels := map[string]string{
		"coredb.io/app-service-owner": cdb.Name,
		"coredb.io/app-service-name":  svc.Name,
	}
	_, err := controllerutil.CreateOrUpdate(ctx, r.Client, dep, func() error {
		dep.Labels = labels
		dep.Spec = appsv1.DeploymentSpec{
			Replicas: ptr.To(int32(1)),
			Selector: &metav1.LabelSelector{MatchLabels: labels},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{{
						Name:      svc.Name,
						Image:     svc.Image,
						Env:       svc.Env,
						Resources: svc.Resources,
					}},
				},
			},
		}
		return ctrl.SetControllerReference(cdb, dep, r.Client.Scheme())
	})
	return err
}
