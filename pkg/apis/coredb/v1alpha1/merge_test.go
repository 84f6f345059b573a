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

import "testing"

func TestMergePgConfigsUnion(t *testing.T) {
	vec1 := []PgConfig{{Name: "test_configuration", Value: ParseConfigValue("a,b,c")}}
	vec2 := []PgConfig{{Name: "test_configuration", Value: ParseConfigValue("x,y,z")}}

	merged, err := MergePgConfigs(vec1, vec2, "test_configuration")
	if err != nil {
		t.Fatalf("MergePgConfigs: %v", err)
	}
	if merged == nil {
		t.Fatal("expected a merged config, got nil")
	}
	if got, want := merged.Value.String(), "a,b,c,x,y,z"; got != want {
		t.Errorf("merged value = %q, want %q", got, want)
	}
}

func TestMergePgConfigsSingleValueErrors(t *testing.T) {
	vec1 := []PgConfig{{Name: "test_configuration", Value: ParseConfigValue("a")}}
	vec2 := []PgConfig{{Name: "test_configuration", Value: ParseConfigValue("b")}}

	if _, err := MergePgConfigs(vec1, vec2, "test_configuration"); err == nil {
		t.Error("expected an error merging two single values, got nil")
	}
}

func TestMergePgConfigsOneSided(t *testing.T) {
	vec1 := []PgConfig{{Name: "test_configuration", Value: ParseConfigValue("a,b")}}
	var vec2 []PgConfig

	merged, err := MergePgConfigs(vec1, vec2, "test_configuration")
	if err != nil {
		t.Fatalf("MergePgConfigs: %v", err)
	}
	if merged == nil || merged.Value.String() != "a,b" {
		t.Errorf("expected the single-sided config to pass through unchanged, got %+v", merged)
	}
}

func TestMergePgConfigsNeitherSide(t *testing.T) {
	merged, err := MergePgConfigs(nil, nil, "test_configuration")
	if err != nil {
		t.Fatalf("MergePgConfigs: %v", err)
	}
	if merged != nil {
		t.Errorf("expected nil when neither side defines the config, got %+v", merged)
	}
}
