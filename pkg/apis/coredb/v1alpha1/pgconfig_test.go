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
	"testing"
)

func TestPgConfigToPostgres(t *testing.T) {
	single := PgConfig{Name: "max_parallel_workers", Value: NewSingleValue("32")}
	if got, want := single.ToPostgres(), "max_parallel_workers = '32'"; got != want {
		t.Errorf("ToPostgres() = %q, want %q", got, want)
	}

	multi := PgConfig{Name: "shared_preload_libraries", Value: NewMultiValue("pg_cron", "pg_stat_statements")}
	if got, want := multi.ToPostgres(), "shared_preload_libraries = 'pg_cron,pg_stat_statements'"; got != want {
		t.Errorf("ToPostgres() = %q, want %q", got, want)
	}
}

func TestPgConfigJSONRoundTrip(t *testing.T) {
	in := PgConfig{Name: "shared_preload_libraries", Value: NewMultiValue("pg_cron", "pg_stat_statements")}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if got, want := string(data), `{"name":"shared_preload_libraries","value":"pg_cron,pg_stat_statements"}`; got != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}

	var out PgConfig
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Name != in.Name {
		t.Errorf("Name = %q, want %q", out.Name, in.Name)
	}
	if got, want := out.Value.String(), "pg_cron,pg_stat_statements"; got != want {
		t.Errorf("Value after round trip = %q, want %q", got, want)
	}
	if _, ok := out.Value.(multiValue); !ok {
		t.Errorf("Value after unmarshal should be promoted to multiValue, got %T", out.Value)
	}
}

func TestPgConfigDeepCopyIndependence(t *testing.T) {
	in := PgConfig{Name: "shared_preload_libraries", Value: NewMultiValue("pg_cron", "pg_stat_statements")}
	out := in.DeepCopy()
	combined, err := out.Value.Combine(NewMultiValue("pg_partman_bgw"))
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	out.Value = combined

	if got, want := in.Value.String(), "pg_cron,pg_stat_statements"; got != want {
		t.Errorf("original mutated by copy's combine: got %q, want %q", got, want)
	}
	if got, want := out.Value.String(), "pg_cron,pg_partman_bgw,pg_stat_statements"; got != want {
		t.Errorf("copy value = %q, want %q", got, want)
	}
}
