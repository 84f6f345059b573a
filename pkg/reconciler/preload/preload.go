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

// Package preload implements the Shared-Preload Negotiator (C5 of the
// reconciliation core): it decides which desired shared_preload_libraries
// entries are actually safe to write given what .so files are present in
// the primary pod's library directory, and whether applying them requires
// a restart.
package preload

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/tembo-io/coredb-operator/pkg/reconciler/podexec"
)

const postgresContainer = "postgres"

// Negotiation is the outcome of negotiating a desired preload list against
// what's actually installed in the primary pod.
type Negotiation struct {
	Libraries       []string
	RestartRequired bool
}

// Negotiate computes the safe shared_preload_libraries list.
//
// clusterExists distinguishes initial bootstrap (no current cluster) from a
// steady-state reconcile: on bootstrap the entire desired list is dropped,
// since Postgres hasn't started yet and no .so file has been installed by
// C3 into a running instance. current is the cluster's
// postgresql.shared_preload_libraries as it stands today; desired is what
// C1/C2 computed should be loaded.
func Negotiate(ctx context.Context, exec podexec.Client, namespace, primaryPod string, clusterExists bool, current, desired []string) (Negotiation, error) {
	if !clusterExists {
		return Negotiation{}, nil
	}

	out, err := exec.Exec(ctx, namespace, primaryPod, postgresContainer,
		[]string{"sh", "-c", "ls $(pg_config --pkglibdir)"})
	if err != nil {
		return Negotiation{}, errors.Wrap(err, "list pkglibdir")
	}
	if !out.Success() {
		return Negotiation{}, errors.Errorf("list pkglibdir: exit %d: %s", out.ExitCode, out.Combined())
	}

	present := make(map[string]struct{})
	for _, line := range strings.Fields(out.Stdout) {
		if name, ok := strings.CutSuffix(line, ".so"); ok {
			present[name] = struct{}{}
		}
	}

	currentSet := make(map[string]struct{}, len(current))
	for _, c := range current {
		currentSet[c] = struct{}{}
	}

	safe := make([]string, 0, len(desired))
	restart := false
	for _, name := range desired {
		if _, ok := present[name]; !ok {
			continue
		}
		safe = append(safe, name)
		if _, ok := currentSet[name]; !ok {
			restart = true
		}
	}
	sort.Strings(safe)

	return Negotiation{Libraries: safe, RestartRequired: restart}, nil
}
