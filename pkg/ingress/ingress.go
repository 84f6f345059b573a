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

// Package ingress computes the TCP ingress routes a CoreDB instance
// guarantees: one primary route whose matcher names the instance's
// subdomain, and one optional route covering any extra read-write domains.
// Matchers, once created, are never rewritten — only the target service
// name and port are ever updated in place — so existing connection
// strings never break.
package ingress

import (
	"fmt"
	"sort"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	ingressv1alpha1 "github.com/tembo-io/coredb-operator/pkg/apis/ingress/v1alpha1"
)

const entryPoint = "postgresql"

// PrimaryRoutePrefix is the name prefix used for every route this
// operator creates for an instance's primary (non-extra-domain) traffic.
func PrimaryRoutePrefix(clusterName string) string {
	return clusterName + "-rw-"
}

// ExtraRouteName is the fixed name of the single route covering
// spec.extra_domains_rw.
func ExtraRouteName(clusterName string) string {
	return "extra-" + clusterName + "-rw"
}

// Matcher builds the Traefik HostSNI matcher for a single domain.
func Matcher(domain string) string {
	return fmt.Sprintf("HostSNI(`%s`)", domain)
}

// ExtraDomainsMatcher builds the ||-joined, lexicographically sorted
// matcher for every domain in domains. An empty input yields an empty
// string, a signal to the caller to delete rather than apply the route.
func ExtraDomainsMatcher(domains []string) string {
	if len(domains) == 0 {
		return ""
	}
	sorted := append([]string(nil), domains...)
	sort.Strings(sorted)
	matchers := make([]string, len(sorted))
	for i, d := range sorted {
		matchers[i] = Matcher(d)
	}
	return strings.Join(matchers, " || ")
}

// BuildRoute renders the IngressRouteTCP object for name, pointed at
// serviceName/port with the given matcher.
func BuildRoute(name, namespace string, owner *metav1.OwnerReference, matcher, serviceName string, port int32) *ingressv1alpha1.IngressRouteTCP {
	meta := metav1.ObjectMeta{Name: name, Namespace: namespace}
	if owner != nil {
		meta.OwnerReferences = []metav1.OwnerReference{*owner}
	}
	return &ingressv1alpha1.IngressRouteTCP{
		ObjectMeta: meta,
		Spec: ingressv1alpha1.IngressRouteTCPSpec{
			EntryPoints: []string{entryPoint},
			Routes: []ingressv1alpha1.IngressRouteTCPRoute{
				{
					Match: matcher,
					Services: []ingressv1alpha1.IngressRouteTCPRouteService{
						{Name: serviceName, Port: intstr.FromInt(int(port))},
					},
				},
			},
			TLS: &ingressv1alpha1.IngressRouteTCPTLS{Passthrough: true},
		},
	}
}

// Plan is the pure-logic decision about which primary routes need
// applying, computed without touching the cluster. It never removes or
// rewrites an existing matcher; it only fixes up a stale service target
// or adds a brand new route when the desired matcher isn't present yet.
type Plan struct {
	ToApply []*ingressv1alpha1.IngressRouteTCP
}

// PlanPrimary decides the set of primary-route updates/creates needed for
// one instance, given every IngressRouteTCP currently in the namespace.
// clusterName is used both as the owning CoreDB's name (the legacy,
// unprefixed route name this operator may have created before the
// -rw-N naming scheme) and as the prefix for newer routes.
func PlanPrimary(existing []ingressv1alpha1.IngressRouteTCP, clusterName, namespace string, owner *metav1.OwnerReference, subdomain, basedomain, serviceName string, port int32) Plan {
	prefix := PrimaryRoutePrefix(clusterName)
	newestMatcher := Matcher(subdomain + "." + basedomain)

	var plan Plan
	var presentNames []string
	var presentMatchers []string

	for _, route := range existing {
		name := route.Name
		if !strings.HasPrefix(name, prefix) && name != clusterName {
			continue
		}
		presentNames = append(presentNames, name)
		if len(route.Spec.Routes) == 0 {
			continue
		}
		matcher := route.Spec.Routes[0].Match
		presentMatchers = append(presentMatchers, matcher)

		var currentService string
		var currentPort intstr.IntOrString
		if len(route.Spec.Routes[0].Services) > 0 {
			currentService = route.Spec.Routes[0].Services[0].Name
			currentPort = route.Spec.Routes[0].Services[0].Port
		}
		if currentService != serviceName || currentPort.IntValue() != int(port) {
			plan.ToApply = append(plan.ToApply, BuildRoute(name, namespace, owner, matcher, serviceName, port))
		}
	}

	if !contains(presentMatchers, newestMatcher) {
		name := nextFreeName(prefix, presentNames)
		plan.ToApply = append(plan.ToApply, BuildRoute(name, namespace, owner, newestMatcher, serviceName, port))
	}

	return plan
}

// PlanExtra decides the single extra-domains route's desired state.
// A nil route means the route should be deleted (no extra domains
// configured); a non-nil route should be applied.
func PlanExtra(clusterName, namespace string, owner *metav1.OwnerReference, extraDomains []string, serviceName string, port int32) *ingressv1alpha1.IngressRouteTCP {
	matcher := ExtraDomainsMatcher(extraDomains)
	if matcher == "" {
		return nil
	}
	return BuildRoute(ExtraRouteName(clusterName), namespace, owner, matcher, serviceName, port)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func nextFreeName(prefix string, present []string) string {
	for i := 0; ; i++ {
		candidate := fmt.Sprintf("%s%d", prefix, i)
		if !contains(present, candidate) {
			return candidate
		}
	}
}
