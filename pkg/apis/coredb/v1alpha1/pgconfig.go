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

package v1alpha1

import (
	"encoding/json"
	"fmt"
)

// PgConfig is a single postgresql.conf setting. Value is a tagged union
// (ConfigValue) rather than a plain string so that multi-valued settings
// keep their sort/dedup semantics across the merge pipeline.
//
// +k8s:deepcopy-gen=false
type PgConfig struct {
	Name  string       `json:"name"`
	Value ConfigValue  `json:"value"`
}

// ToPostgres renders the setting the way it is written into
// postgresql.conf: `name = 'value'`.
func (c PgConfig) ToPostgres() string {
	return fmt.Sprintf("%s = '%s'", c.Name, c.Value.String())
}

type pgConfigWire struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MarshalJSON renders Value via its String() form, regardless of variant.
func (c PgConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(pgConfigWire{Name: c.Name, Value: c.Value.String()})
}

// UnmarshalJSON decodes the wire {name,value} pair and promotes Value to a
// Multiple variant whenever Name is in the fixed multi-valued registry,
// mirroring the custom deserializer of the reference implementation.
func (c *PgConfig) UnmarshalJSON(data []byte) error {
	var w pgConfigWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	c.Name = w.Name
	c.Value = ConfigValueForName(w.Name, w.Value)
	return nil
}

// DeepCopy returns a deep copy of the PgConfig, required since +k8s:deepcopy-gen
// cannot generate code for the ConfigValue interface field.
func (c *PgConfig) DeepCopy() *PgConfig {
	if c == nil {
		return nil
	}
	out := new(PgConfig)
	out.Name = c.Name
	switch v := c.Value.(type) {
	case multiValue:
		cp := make(multiValue, len(v))
		for k := range v {
			cp[k] = struct{}{}
		}
		out.Value = cp
	case singleValue:
		out.Value = v
	}
	return out
}

// DeepCopyPgConfigSlice deep-copies a []PgConfig, used by the generated
// deepcopy code for every field holding a list of PgConfig.
func DeepCopyPgConfigSlice(in []PgConfig) []PgConfig {
	if in == nil {
		return nil
	}
	out := make([]PgConfig, len(in))
	for i := range in {
		out[i] = *in[i].DeepCopy()
	}
	return out
}
