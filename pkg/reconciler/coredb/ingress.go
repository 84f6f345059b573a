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
	"sigs.k8s.io/controller-runtime/pkg/client"

	ingressv1alpha1 "github.com/tembo-io/coredb-operator/pkg/apis/ingress/v1alpha1"
	"github.com/tembo-io/coredb-operator/pkg/apis/coredb/v1alpha1"
	"github.com/tembo-io/coredb-operator/pkg/ingress"
)

// BaseDomain is the fixed parent domain every instance's primary route is
// built under (<instance>.<BaseDomain>). It mirrors the reference
// implementation's fixed tembo.io default; there is no per-spec override
// since CoreDB carries only spec.extra_domains_rw for additional domains.
const BaseDomain = "tembo.io"

const readWriteServicePort = 5432

func readWriteServiceName(clusterName string) string {
	return clusterName + "-rw"
}

// reconcileIngress guarantees the primary IngressRouteTCP and the single
// extra-domains route described in CoreDB spec §6.
func (r *Reconciler) reconcileIngress(ctx context.Context, cdb *v1alpha1.CoreDB) error {
	var existing ingressv1alpha1.IngressRouteTCPList
	if err := r.Client.List(ctx, &existing, client.InNamespace(cdb.Namespace)); err != nil {
		return errors.Wrap(err, "list ingress routes")
	}

	owner := metav1.NewControllerRef(cdb, v1alpha1.SchemeGroupVersion.WithKind("CoreDB"))
	serviceName := readWriteServiceName(cdb.Name)

	plan := ingress.PlanPrimary(existing.Items, cdb.Name, cdb.Namespace, owner, cdb.Name, BaseDomain, serviceName, readWriteServicePort)
	for _, route := range plan.ToApply {
		if err := r.Client.Patch(ctx, route, client.Apply, client.ForceOwnership, client.FieldOwner(FieldOwner)); err != nil {
			return errors.Wrapf(err, "apply ingress route %s", route.Name)
		}
	}

	extra := ingress.PlanExtra(cdb.Name, cdb.Namespace, owner, cdb.Spec.ExtraDomainsRW, serviceName, readWriteServicePort)
	extraName := ingress.ExtraRouteName(cdb.Name)
	if extra == nil {
		stale := &ingressv1alpha1.IngressRouteTCP{ObjectMeta: metav1.ObjectMeta{Name: extraName, Namespace: cdb.Namespace}}
		if err := client.IgnoreNotFound(r.Client.Delete(ctx, stale)); err != nil {
			return errors.Wrap(err, "delete extra-domains route")
		}
		return nil
	}
	if err := r.Client.Patch(ctx, extra, client.Apply, client.ForceOwnership, client.FieldOwner(FieldOwner)); err != nil {
		return errors.Wrap(err, "apply extra-domains route")
	}
	return nil
}
