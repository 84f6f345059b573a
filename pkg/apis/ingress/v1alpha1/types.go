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

// Package v1alpha1 holds a narrow subset of Traefik's IngressRouteTCP
// custom resource: only the fields the ingress route reconciler reads or
// writes, mirroring the same trimming approach as pkg/apis/cluster/v1.
package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/intstr"
)

// IngressRouteTCP is a TCP routing rule matched against SNI.
//
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
type IngressRouteTCP struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec IngressRouteTCPSpec `json:"spec"`
}

// IngressRouteTCPList is a list of IngressRouteTCP resources.
//
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
type IngressRouteTCPList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []IngressRouteTCP `json:"items"`
}

type IngressRouteTCPSpec struct {
	EntryPoints []string                `json:"entryPoints,omitempty"`
	Routes      []IngressRouteTCPRoute  `json:"routes"`
	TLS         *IngressRouteTCPTLS     `json:"tls,omitempty"`
}

type IngressRouteTCPRoute struct {
	Match    string                           `json:"match"`
	Services []IngressRouteTCPRouteService    `json:"services,omitempty"`
}

type IngressRouteTCPRouteService struct {
	Name string             `json:"name"`
	Port intstr.IntOrString `json:"port"`
}

type IngressRouteTCPTLS struct {
	Passthrough bool `json:"passthrough,omitempty"`
}

func (in *IngressRouteTCP) DeepCopyInto(out *IngressRouteTCP) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	out.Spec = IngressRouteTCPSpec{
		EntryPoints: append([]string(nil), in.Spec.EntryPoints...),
		TLS:         in.Spec.TLS,
	}
	if in.Spec.Routes != nil {
		routes := make([]IngressRouteTCPRoute, len(in.Spec.Routes))
		for i, r := range in.Spec.Routes {
			routes[i] = IngressRouteTCPRoute{
				Match:    r.Match,
				Services: append([]IngressRouteTCPRouteService(nil), r.Services...),
			}
		}
		out.Spec.Routes = routes
	}
}

func (in *IngressRouteTCP) DeepCopy() *IngressRouteTCP {
	if in == nil {
		return nil
	}
	out := new(IngressRouteTCP)
	in.DeepCopyInto(out)
	return out
}

func (in *IngressRouteTCP) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

func (in *IngressRouteTCPList) DeepCopyInto(out *IngressRouteTCPList) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		l := make([]IngressRouteTCP, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&l[i])
		}
		out.Items = l
	}
}

func (in *IngressRouteTCPList) DeepCopy() *IngressRouteTCPList {
	if in == nil {
		return nil
	}
	out := new(IngressRouteTCPList)
	in.DeepCopyInto(out)
	return out
}

func (in *IngressRouteTCPList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}
