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

// Package schedule validates and normalizes a ScheduledBackup cron
// expression (C9 of the reconciliation core). It never errors: an
// unparsable schedule degrades to a safe default rather than blocking
// the reconcile.
package schedule

import (
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
)

// Default is the fallback schedule: daily at midnight, as a six-field
// (seconds-first) cron expression.
const Default = "0 0 0 * * *"

var secondParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Validate normalizes raw into a six-field cron expression. It accepts
// both five-field (standard) and six-field (seconds-first) input,
// prepending "0" for the seconds field when only five terms are given.
// Every term must be either "*" or parse as an integer; any other
// violation — including a value cron/v3 itself rejects as out of range,
// which the naive per-term check can't catch — falls back to Default.
func Validate(raw string) string {
	if raw == "" {
		return Default
	}
	terms := strings.Fields(raw)
	if len(terms) == 5 {
		terms = append([]string{"0"}, terms...)
	}
	if len(terms) != 6 {
		return Default
	}
	for _, term := range terms {
		if term == "*" {
			continue
		}
		if _, err := strconv.Atoi(term); err != nil {
			return Default
		}
	}
	normalized := strings.Join(terms, " ")
	if _, err := secondParser.Parse(normalized); err != nil {
		return Default
	}
	return normalized
}
