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

package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// Pooler fronts a Cluster with a pgbouncer-style connection pooler.
//
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
type Pooler struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec PoolerSpec `json:"spec"`
}

// PoolerList is a list of Pooler resources.
//
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
type PoolerList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Pooler `json:"items"`
}

// PoolerSpec configures pool mode and instance count for a Cluster's
// pooler.
type PoolerSpec struct {
	Cluster   PoolerClusterRef `json:"cluster"`
	Type      string           `json:"type,omitempty"`
	Instances int32            `json:"instances,omitempty"`
	PgBouncer PoolerPgBouncer  `json:"pgbouncer,omitempty"`
}

// PoolerClusterRef names the Cluster a Pooler fronts.
type PoolerClusterRef struct {
	Name string `json:"name"`
}

// PoolerPgBouncer carries pgbouncer's own pool_mode setting.
type PoolerPgBouncer struct {
	PoolMode string `json:"poolMode,omitempty"`
}

func (in *Pooler) DeepCopyInto(out *Pooler) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	out.Spec = in.Spec
}

func (in *Pooler) DeepCopy() *Pooler {
	if in == nil {
		return nil
	}
	out := new(Pooler)
	in.DeepCopyInto(out)
	return out
}

func (in *Pooler) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

func (in *PoolerList) DeepCopyInto(out *PoolerList) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		l := make([]Pooler, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&l[i])
		}
		out.Items = l
	}
}

func (in *PoolerList) DeepCopy() *PoolerList {
	if in == nil {
		return nil
	}
	out := new(PoolerList)
	in.DeepCopyInto(out)
	return out
}

func (in *PoolerList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}
