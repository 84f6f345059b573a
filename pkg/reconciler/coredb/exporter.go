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
	"strconv"

	"github.com/pkg/errors"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	"github.com/tembo-io/coredb-operator/pkg/apis/coredb/v1alpha1"
)

// DefaultExporterImage is used when spec.postgresExporterImage is empty.
const DefaultExporterImage = "quay.io/prometheuscommunity/postgres-exporter:v0.15.0"

const exporterPort = 9187

func exporterName(clusterName string) string {
	return clusterName + "-exporter"
}

// reconcileExporter deploys postgres_exporter alongside the instance,
// configured against the -exporter role's secret and, when present, the
// custom query ConfigMap reconciled in step 6.
func (r *Reconciler) reconcileExporter(ctx context.Context, cdb *v1alpha1.CoreDB) error {
	name := exporterName(cdb.Name)
	labels := map[string]string{"coredb.io/exporter-owner": cdb.Name}

	image := cdb.Spec.PostgresExporterImage
	if image == "" {
		image = DefaultExporterImage
	}

	env := []corev1.EnvVar{
		{
			Name: "DATA_SOURCE_URI",
			Value: "127.0.0.1:" + portString(cdb.Spec.Port) + "/postgres?sslmode=disable",
		},
		{Name: "DATA_SOURCE_USER", Value: "postgres_exporter"},
		{
			Name: "DATA_SOURCE_PASS",
			ValueFrom: &corev1.EnvVarSource{
				SecretKeyRef: &corev1.SecretKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: name},
					Key:                  "password",
				},
			},
		},
	}
	var volumes []corev1.Volume
	var mounts []corev1.VolumeMount
	var args []string
	if cdb.Spec.Metrics != nil {
		volumes = append(volumes, corev1.Volume{
			Name: "queries",
			VolumeSource: corev1.VolumeSource{
				ConfigMap: &corev1.ConfigMapVolumeSource{
					LocalObjectReference: corev1.LocalObjectReference{Name: metricsConfigMapName(cdb.Name)},
				},
			},
		})
		mounts = append(mounts, corev1.VolumeMount{Name: "queries", MountPath: "/etc/exporter"})
		args = append(args, "--extend.query-path=/etc/exporter/"+metricsQueriesKey)
	}

	dep := &appsv1.Deployment{ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: cdb.Namespace}}
	if _, err := controllerutil.CreateOrUpdate(ctx, r.Client, dep, func() error {
		dep.Labels = labels
		dep.Spec = appsv1.DeploymentSpec{
			Replicas: ptr.To(int32(1)),
			Selector: &metav1.LabelSelector{MatchLabels: labels},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{{
						Name:         "exporter",
						Image:        image,
						Args:         args,
						Env:          env,
						Ports:        []corev1.ContainerPort{{Name: "metrics", ContainerPort: exporterPort}},
						VolumeMounts: mounts,
					}},
					Volumes: volumes,
				},
			},
		}
		return ctrl.SetControllerReference(cdb, dep, r.Client.Scheme())
	}); err != nil {
		return errors.Wrap(err, "apply exporter deployment")
	}

	svc := &corev1.Service{ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: cdb.Namespace}}
	if _, err := controllerutil.CreateOrUpdate(ctx, r.Client, svc, func() error {
		svc.Labels = labels
		svc.Spec.Selector = labels
		svc.Spec.Ports = []corev1.ServicePort{{
			Name:       "metrics",
			Port:       exporterPort,
			TargetPort: intstr.FromInt(exporterPort),
		}}
		return ctrl.SetControllerReference(cdb, svc, r.Client.Scheme())
	}); err != nil {
		return errors.Wrap(err, "apply exporter service")
	}
	return nil
}

func portString(port int32) string {
	if port == 0 {
		port = 5432
	}
	return strconv.Itoa(int(port))
}
