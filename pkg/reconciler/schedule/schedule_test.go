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

package schedule

import "testing"

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty uses default", "", Default},
		{"five field gets seconds prefix", "30 4 * * *", "0 30 4 * * *"},
		{"already six field passes through", "0 30 4 * * *", "0 30 4 * * *"},
		{"wrong field count falls back", "* * *", Default},
		{"non integer non star falls back", "x 4 * * *", Default},
		{"cron/v3 rejects out-of-range minute", "99 4 * * * *", Default},
		{"all stars", "* * * * * *", "* * * * * *"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Validate(tc.in); got != tc.want {
				t.Errorf("Validate(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
