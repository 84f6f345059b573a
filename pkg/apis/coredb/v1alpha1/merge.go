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

// multiValConfigNames lists the multi-valued registry in a stable order so
// merges are deterministic without depending on map iteration order.
var multiValConfigNames = []string{
	"shared_preload_libraries",
	"local_preload_libraries",
	"session_preload_libraries",
	"log_destination",
	"search_path",
}

// MergePgConfigs finds the entry named name in each of vec1 and vec2 and
// combines them. If only one side has the entry, that entry is returned
// unchanged. If neither has it, (nil, nil) is returned. Combining two
// Single values, or a Single with a Multiple, is a MergeError.
func MergePgConfigs(vec1, vec2 []PgConfig, name string) (*PgConfig, error) {
	c1 := findConfig(vec1, name)
	c2 := findConfig(vec2, name)

	switch {
	case c1 != nil && c2 != nil:
		combined, err := c1.Value.Combine(c2.Value)
		if err != nil {
			return nil, err
		}
		return &PgConfig{Name: c1.Name, Value: combined}, nil
	case c1 != nil:
		return c1, nil
	case c2 != nil:
		return c2, nil
	default:
		return nil, nil
	}
}

func findConfig(vec []PgConfig, name string) *PgConfig {
	for i := range vec {
		if vec[i].Name == name {
			c := vec[i]
			return &c
		}
	}
	return nil
}
