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

package ingress

import (
	"testing"

	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	ingressv1alpha1 "github.com/tembo-io/coredb-operator/pkg/apis/ingress/v1alpha1"
)

func TestExtraDomainsMatcherSortsAndJoins(t *testing.T) {
	got := ExtraDomainsMatcher([]string{"b.example.com", "a.example.com"})
	require.Equal(t, "HostSNI(`a.example.com`) || HostSNI(`b.example.com`)", got)
}

func TestExtraDomainsMatcherEmpty(t *testing.T) {
	require.Equal(t, "", ExtraDomainsMatcher(nil))
}

func TestPlanPrimaryCreatesWhenAbsent(t *testing.T) {
	plan := PlanPrimary(nil, "mydb", "ns1", nil, "mydb", "example.com", "mydb-rw", 5432)
	require.Len(t, plan.ToApply, 1)
	require.Equal(t, "HostSNI(`mydb.example.com`)", plan.ToApply[0].Spec.Routes[0].Match)
	require.Equal(t, "mydb-rw-0", plan.ToApply[0].Name)
}

func TestPlanPrimaryNoOpWhenMatcherAndServiceCurrent(t *testing.T) {
	existing := []ingressv1alpha1.IngressRouteTCP{
		{
			ObjectMeta: metav1.ObjectMeta{Name: "mydb-rw-0"},
			Spec: ingressv1alpha1.IngressRouteTCPSpec{
				Routes: []ingressv1alpha1.IngressRouteTCPRoute{{
					Match:    "HostSNI(`mydb.example.com`)",
					Services: []ingressv1alpha1.IngressRouteTCPRouteService{{Name: "mydb-rw", Port: intstr.FromInt(5432)}},
				}},
			},
		},
	}
	plan := PlanPrimary(existing, "mydb", "ns1", nil, "mydb", "example.com", "mydb-rw", 5432)
	require.Empty(t, plan.ToApply)
}

func TestPlanPrimaryUpdatesServiceKeepingMatcher(t *testing.T) {
	existing := []ingressv1alpha1.IngressRouteTCP{
		{
			ObjectMeta: metav1.ObjectMeta{Name: "mydb-rw-0"},
			Spec: ingressv1alpha1.IngressRouteTCPSpec{
				Routes: []ingressv1alpha1.IngressRouteTCPRoute{{
					Match:    "HostSNI(`mydb.example.com`)",
					Services: []ingressv1alpha1.IngressRouteTCPRouteService{{Name: "mydb-old", Port: intstr.FromInt(5432)}},
				}},
			},
		},
	}
	plan := PlanPrimary(existing, "mydb", "ns1", nil, "mydb", "example.com", "mydb-rw", 5432)
	require.Len(t, plan.ToApply, 1)
	require.Equal(t, "HostSNI(`mydb.example.com`)", plan.ToApply[0].Spec.Routes[0].Match)
	require.Equal(t, "mydb-rw", plan.ToApply[0].Spec.Routes[0].Services[0].Name)
}

func TestPlanPrimaryPicksNextFreeNameWhenDifferentDomain(t *testing.T) {
	existing := []ingressv1alpha1.IngressRouteTCP{
		{
			ObjectMeta: metav1.ObjectMeta{Name: "mydb-rw-0"},
			Spec: ingressv1alpha1.IngressRouteTCPSpec{
				Routes: []ingressv1alpha1.IngressRouteTCPRoute{{
					Match:    "HostSNI(`mydb.coredb.io`)",
					Services: []ingressv1alpha1.IngressRouteTCPRouteService{{Name: "mydb-rw", Port: intstr.FromInt(5432)}},
				}},
			},
		},
	}
	plan := PlanPrimary(existing, "mydb", "ns1", nil, "mydb", "tembo.io", "mydb-rw", 5432)
	require.Len(t, plan.ToApply, 1)
	require.Equal(t, "mydb-rw-1", plan.ToApply[0].Name)
}

func TestPlanExtraNilWhenNoDomains(t *testing.T) {
	require.Nil(t, PlanExtra("mydb", "ns1", nil, nil, "mydb-rw", 5432))
}

func TestPlanExtraBuildsRoute(t *testing.T) {
	route := PlanExtra("mydb", "ns1", nil, []string{"z.example.com", "a.example.com"}, "mydb-rw", 5432)
	require.NotNil(t, route)
	require.Equal(t, "extra-mydb-rw", route.Name)
	require.Equal(t, "HostSNI(`a.example.com`) || HostSNI(`z.example.com`)", route.Spec.Routes[0].Match)
}
