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

// Package toggler implements the Extension Toggler (C4 of the
// reconciliation core): it queries every database for its actually
// installed/enabled extensions, reconciles that into status, then issues
// CREATE/DROP EXTENSION against whichever locations disagree with spec.
package toggler

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lib/pq"

	"github.com/tembo-io/coredb-operator/pkg/apis/coredb/v1alpha1"
	"github.com/tembo-io/coredb-operator/pkg/reconciler/podexec"
)

const postgresContainer = "postgres"

// ListDatabasesQuery enumerates every non-template database.
const ListDatabasesQuery = `SELECT datname FROM pg_database WHERE datistemplate = false;`

// ListExtensionsQuery enumerates every extension available in the current
// database along with its installed/enabled state.
const ListExtensionsQuery = `select
distinct on
(name) *
from
(
select
    name,
    version,
    enabled,
    schema,
    description
from
    (
    select
        t0.extname as name,
        t0.extversion as version,
        true as enabled,
        t1.nspname as schema,
        comment as description
    from
        (
        select
            extnamespace,
            extname,
            extversion
        from
            pg_extension
) t0,
        (
        select
            oid,
            nspname
        from
            pg_namespace
) t1,
        (
        select
            name,
            comment
        from
            pg_catalog.pg_available_extensions
) t2
    where
        t1.oid = t0.extnamespace
        and t2.name = t0.extname
) installed
union
select
    name,
    default_version as version,
    false as enabled,
    'public' as schema,
    comment as description
from
    pg_catalog.pg_available_extensions
order by
    enabled asc
) combined
order by
name asc,
enabled desc
`

// validIdentifier matches a safe, unquoted SQL bareword: letters, digits,
// hyphens and underscores, anchored so partial matches can't smuggle a
// statement terminator through.
var validIdentifier = regexp.MustCompile(`^[a-zA-Z]([a-zA-Z0-9]*[-_]?)*[a-zA-Z0-9]+$`)

// CheckInput reports whether s is safe to interpolate into a DDL statement
// that identifier quoting alone can't protect (e.g. a bare schema name in
// a SCHEMA clause, or a database name used to select the exec target).
func CheckInput(s string) bool {
	return validIdentifier.MatchString(s)
}

// Row is one parsed extension/location observation.
type Row struct {
	Name, Description, Version, Schema string
	Enabled                            bool
}

// ParseExtensions parses psql's aligned table output (header, separator,
// then data rows, no trailing row count in the slice we read since psql is
// invoked with -t -A elsewhere in the pipeline) into Rows.
func ParseExtensions(out string) []Row {
	var rows []Row
	lines := strings.Split(out, "\n")
	if len(lines) > 2 {
		lines = lines[2:]
	} else {
		lines = nil
	}
	for _, line := range lines {
		fields := splitTrim(line, "|")
		if len(fields) < 5 {
			continue
		}
		rows = append(rows, Row{
			Name:        fields[0],
			Version:     fields[1],
			Enabled:     fields[2] == "t",
			Schema:      fields[3],
			Description: fields[4],
		})
	}
	return rows
}

// ParseDatabases parses the output of ListDatabasesQuery into database
// names, skipping the header/separator rows and the trailing "(N rows)"
// footer psql appends.
func ParseDatabases(out string) []string {
	var names []string
	lines := strings.Split(out, "\n")
	if len(lines) > 2 {
		lines = lines[2:]
	} else {
		lines = nil
	}
	for _, line := range lines {
		fields := splitTrim(line, "|")
		if len(fields) == 0 || fields[0] == "" || strings.Contains(fields[0], "row)") || strings.Contains(fields[0], "rows)") {
			continue
		}
		names = append(names, fields[0])
	}
	return names
}

func splitTrim(line, sep string) []string {
	parts := strings.Split(line, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// runPsql execs psql non-interactively inside the target pod against the
// given database, the same transport C3 uses.
func runPsql(ctx context.Context, exec podexec.Client, namespace, pod, database, query string) (podexec.Output, error) {
	return exec.Exec(ctx, namespace, pod, postgresContainer,
		[]string{"psql", "-d", database, "-c", query})
}

// ListDatabases returns every non-template database in the instance.
func ListDatabases(ctx context.Context, exec podexec.Client, namespace, pod string) ([]string, error) {
	out, err := runPsql(ctx, exec, namespace, pod, "postgres", ListDatabasesQuery)
	if err != nil {
		return nil, err
	}
	return ParseDatabases(out.Stdout), nil
}

// ListExtensions returns every extension visible in database.
func ListExtensions(ctx context.Context, exec podexec.Client, namespace, pod, database string) ([]Row, error) {
	out, err := runPsql(ctx, exec, namespace, pod, database, ListExtensionsQuery)
	if err != nil {
		return nil, err
	}
	return ParseExtensions(out.Stdout), nil
}

// GetAllExtensions lists every database, then every extension within each,
// and reshapes the result keyed by extension name rather than by database
// — the same pivot the declarative Extension type stores.
func GetAllExtensions(ctx context.Context, exec podexec.Client, namespace, pod string) ([]v1alpha1.Extension, error) {
	databases, err := ListDatabases(ctx, exec, namespace, pod)
	if err != nil {
		return nil, err
	}

	type key struct{ name, description string }
	byExt := make(map[key][]v1alpha1.ExtensionLocation)
	var order []key

	for _, db := range databases {
		rows, err := ListExtensions(ctx, exec, namespace, pod, db)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			k := key{row.Name, row.Description}
			version := row.Version
			schema := row.Schema
			loc := v1alpha1.ExtensionLocation{Database: db, Version: &version, Schema: &schema, Enabled: row.Enabled}
			if _, ok := byExt[k]; !ok {
				order = append(order, k)
			}
			byExt[k] = append(byExt[k], loc)
		}
	}

	out := make([]v1alpha1.Extension, 0, len(order))
	for _, k := range order {
		name, description := k.name, k.description
		out = append(out, v1alpha1.Extension{Name: name, Description: &description, Locations: byExt[k]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ToggleTarget is one (extension, location) pair whose observed enabled
// bit disagrees with spec and is safe to act on.
type ToggleTarget struct {
	ExtName  string
	Location v1alpha1.ExtensionLocation
}

// ComputeStatus is the pure status-evolution function (CoreDB spec §9
// "Dynamic status evolution"): given the desired extensions, the
// actually-observed extensions (as returned by GetAllExtensions), and the
// prior status, it folds them into the next full status snapshot. It
// issues no SQL and has no side effects, so it's testable in isolation.
//
// For every desired location with a matching observation, the computed
// enabled bit reflects what was observed; any prior error is carried
// forward only while the observed enabled bit still disagrees with the
// desired one, and cleared the moment they agree. For every desired,
// enabled location with no observation at all, the location is reported
// absent and in error — nothing has been installed for it yet.
func ComputeStatus(desired []v1alpha1.Extension, observed []v1alpha1.Extension, prior []v1alpha1.ExtensionStatus) []v1alpha1.ExtensionStatus {
	observedByName := make(map[string]v1alpha1.Extension, len(observed))
	for _, ext := range observed {
		observedByName[ext.Name] = ext
	}

	type priorKey struct{ name, database, schema string }
	priorByKey := make(map[priorKey]v1alpha1.ExtensionLocationStatus)
	for _, s := range prior {
		for _, loc := range s.Locations {
			priorByKey[priorKey{s.Name, loc.Database, schemaOf(loc.Schema)}] = loc
		}
	}

	out := make([]v1alpha1.ExtensionStatus, 0, len(desired))
	for _, ext := range desired {
		status := v1alpha1.ExtensionStatus{Name: ext.Name, Description: ext.Description}
		obs := observedByName[ext.Name]
		obsByDB := make(map[string]v1alpha1.ExtensionLocation, len(obs.Locations))
		for _, loc := range obs.Locations {
			obsByDB[loc.Database] = loc
		}

		for _, loc := range ext.Locations {
			actual, seen := obsByDB[loc.Database]
			if !seen {
				if !loc.Enabled {
					// Not installed, not wanted: nothing to report.
					continue
				}
				msg := "Extension is not installed"
				status.Locations = append(status.Locations, v1alpha1.ExtensionLocationStatus{
					Database:     loc.Database,
					Schema:       loc.Schema,
					Version:      loc.Version,
					Enabled:      v1alpha1.ExtensionEnabledAbsent,
					Error:        true,
					ErrorMessage: &msg,
				})
				continue
			}

			enabled := v1alpha1.ExtensionEnabledFalse
			if actual.Enabled {
				enabled = v1alpha1.ExtensionEnabledTrue
			}
			actualSchema := actual.Schema
			if actualSchema == nil {
				actualSchema = loc.Schema
			}
			ls := v1alpha1.ExtensionLocationStatus{
				Database: loc.Database,
				Schema:   actualSchema,
				Version:  actual.Version,
				Enabled:  enabled,
			}
			if prev, ok := priorByKey[priorKey{ext.Name, loc.Database, schemaOf(actualSchema)}]; ok && prev.Error && actual.Enabled != loc.Enabled {
				ls.Error = true
				ls.ErrorMessage = prev.ErrorMessage
			}
			status.Locations = append(status.Locations, ls)
		}

		sort.Slice(status.Locations, func(i, j int) bool {
			a, b := status.Locations[i], status.Locations[j]
			if a.Database != b.Database {
				return a.Database < b.Database
			}
			return schemaOf(a.Schema) < schemaOf(b.Schema)
		})
		out = append(out, status)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ExtensionsToToggle returns every (extension, location) pair the status
// snapshot just computed by ComputeStatus says is safe to act on: the
// location must have an actual observation, carry no error, and disagree
// with the desired enabled bit (CoreDB spec §4.4 step 4). Locations with
// no observation (absent) are never toggled — there is nothing installed
// yet for Toggle to flip.
func ExtensionsToToggle(desired []v1alpha1.Extension, observed []v1alpha1.Extension, status []v1alpha1.ExtensionStatus) []ToggleTarget {
	observedByName := make(map[string]v1alpha1.Extension, len(observed))
	for _, ext := range observed {
		observedByName[ext.Name] = ext
	}
	type statusKey struct{ name, database, schema string }
	errorByKey := make(map[statusKey]bool)
	for _, s := range status {
		for _, loc := range s.Locations {
			errorByKey[statusKey{s.Name, loc.Database, schemaOf(loc.Schema)}] = loc.Error
		}
	}

	var out []ToggleTarget
	for _, ext := range desired {
		obs := observedByName[ext.Name]
		obsByDB := make(map[string]v1alpha1.ExtensionLocation, len(obs.Locations))
		for _, loc := range obs.Locations {
			obsByDB[loc.Database] = loc
		}
		for _, loc := range ext.Locations {
			actual, seen := obsByDB[loc.Database]
			if !seen || actual.Enabled == loc.Enabled {
				continue
			}
			actualSchema := actual.Schema
			if actualSchema == nil {
				actualSchema = loc.Schema
			}
			if errorByKey[statusKey{ext.Name, loc.Database, schemaOf(actualSchema)}] {
				continue
			}
			out = append(out, ToggleTarget{ExtName: ext.Name, Location: loc})
		}
	}
	return out
}

func schemaOf(s *string) string {
	if s == nil {
		return "public"
	}
	return *s
}

// Reconcile runs the full Extension Toggler procedure (CoreDB spec §4.4)
// against the primary pod: it lists every database and extension to build
// the observed view, computes the next status snapshot, issues CREATE/DROP
// for every location that disagrees with spec, and attributes any
// per-location SQL failure back into that location's status without
// aborting the rest.
func Reconcile(ctx context.Context, exec podexec.Client, namespace, pod string, desired []v1alpha1.Extension, prior []v1alpha1.ExtensionStatus) ([]v1alpha1.ExtensionStatus, error) {
	observed, err := GetAllExtensions(ctx, exec, namespace, pod)
	if err != nil {
		return nil, err
	}

	status := ComputeStatus(desired, observed, prior)
	statusByKey := make(map[[3]string]*v1alpha1.ExtensionLocationStatus)
	for i := range status {
		for j := range status[i].Locations {
			loc := &status[i].Locations[j]
			statusByKey[[3]string{status[i].Name, loc.Database, schemaOf(loc.Schema)}] = loc
		}
	}

	for _, target := range ExtensionsToToggle(desired, observed, status) {
		if err := Toggle(ctx, exec, namespace, pod, target.ExtName, target.Location); err != nil {
			if ls, ok := statusByKey[[3]string{target.ExtName, target.Location.Database, schemaOf(target.Location.Schema)}]; ok {
				msg := err.Error()
				ls.Error = true
				ls.ErrorMessage = &msg
			}
		}
	}
	return status, nil
}

// Toggle issues CREATE EXTENSION or DROP EXTENSION for one (extension,
// location) pair, matching the enabled flag on loc. Identifier inputs are
// validated with CheckInput (a malformed name is never interpolated into
// SQL) and the extension name is additionally wrapped with
// pq.QuoteIdentifier for defense in depth.
func Toggle(ctx context.Context, exec podexec.Client, namespace, pod, extName string, loc v1alpha1.ExtensionLocation) error {
	if !CheckInput(extName) {
		return fmt.Errorf("extension name is not formatted properly")
	}
	if !CheckInput(loc.Database) {
		return fmt.Errorf("database name is not formatted properly")
	}
	schema := "public"
	if loc.Schema != nil {
		schema = *loc.Schema
	}
	if !CheckInput(schema) {
		return fmt.Errorf("schema name is not formatted properly")
	}

	var stmt string
	if loc.Enabled {
		stmt = fmt.Sprintf("CREATE EXTENSION IF NOT EXISTS %s SCHEMA %s CASCADE;", pq.QuoteIdentifier(extName), schema)
	} else {
		stmt = fmt.Sprintf("DROP EXTENSION IF EXISTS %s CASCADE;", pq.QuoteIdentifier(extName))
	}

	out, err := runPsql(ctx, exec, namespace, pod, loc.Database, stmt)
	if err != nil {
		return err
	}
	if !out.Success() {
		return fmt.Errorf("toggle extension %s in %s: %s", extName, loc.Database, out.Combined())
	}
	return nil
}
