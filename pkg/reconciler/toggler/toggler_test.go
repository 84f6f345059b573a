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

package toggler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tembo-io/coredb-operator/pkg/apis/coredb/v1alpha1"
	"github.com/tembo-io/coredb-operator/pkg/reconciler/podexec"
)

func TestCheckInput(t *testing.T) {
	require.True(t, CheckInput("pg_cron"))
	require.True(t, CheckInput("my-schema"))
	require.False(t, CheckInput("pg_cron; DROP TABLE users"))
	require.False(t, CheckInput(""))
	require.False(t, CheckInput("1abc"))
}

func TestParseDatabases(t *testing.T) {
	out := " datname \n----------\n postgres\n template1\n(2 rows)\n"
	got := ParseDatabases(out)
	require.Equal(t, []string{"postgres", "template1"}, got)
}

func TestParseExtensions(t *testing.T) {
	out := " name | version | enabled | schema | description \n------+---------+---------+--------+-------------\n pg_cron | 1.5 | t | public | job scheduler\n"
	got := ParseExtensions(out)
	require.Len(t, got, 1)
	require.Equal(t, "pg_cron", got[0].Name)
	require.True(t, got[0].Enabled)
	require.Equal(t, "public", got[0].Schema)
}

func TestToggleRejectsMalformedExtensionName(t *testing.T) {
	fake := &podexec.Fake{}
	err := Toggle(context.Background(), fake, "ns1", "mydb-1", "bad;name", v1alpha1.ExtensionLocation{Database: "postgres", Enabled: true})
	require.Error(t, err)
	require.Empty(t, fake.Calls)
}

func TestToggleEnabledIssuesCreate(t *testing.T) {
	fake := &podexec.Fake{}
	err := Toggle(context.Background(), fake, "ns1", "mydb-1", "pg_cron", v1alpha1.ExtensionLocation{Database: "postgres", Enabled: true})
	require.NoError(t, err)
	require.Len(t, fake.Calls, 1)
	require.Contains(t, fake.Calls[0].Command, "CREATE EXTENSION IF NOT EXISTS \"pg_cron\" SCHEMA public CASCADE;")
}

func TestToggleDisabledIssuesDrop(t *testing.T) {
	fake := &podexec.Fake{}
	err := Toggle(context.Background(), fake, "ns1", "mydb-1", "pg_cron", v1alpha1.ExtensionLocation{Database: "postgres", Enabled: false})
	require.NoError(t, err)
	require.Contains(t, fake.Calls[0].Command, "DROP EXTENSION IF EXISTS \"pg_cron\" CASCADE;")
}

func TestToggleCommandFailurePropagates(t *testing.T) {
	fake := &podexec.Fake{Results: []podexec.ScriptedResult{
		{CommandContains: "CREATE EXTENSION", Output: podexec.Output{ExitCode: 1, Stderr: "permission denied"}},
	}}
	err := Toggle(context.Background(), fake, "ns1", "mydb-1", "pg_cron", v1alpha1.ExtensionLocation{Database: "postgres", Enabled: true})
	require.Error(t, err)
}

func strPtr(s string) *string { return &s }

func TestComputeStatusAbsentWhenNeverObserved(t *testing.T) {
	desired := []v1alpha1.Extension{
		{Name: "pg_cron", Locations: []v1alpha1.ExtensionLocation{{Database: "postgres", Enabled: true}}},
	}
	status := ComputeStatus(desired, nil, nil)
	require.Len(t, status, 1)
	require.Len(t, status[0].Locations, 1)
	loc := status[0].Locations[0]
	require.Equal(t, v1alpha1.ExtensionEnabledAbsent, loc.Enabled)
	require.True(t, loc.Error)
	require.Equal(t, "Extension is not installed", *loc.ErrorMessage)
}

func TestComputeStatusNotObservedAndNotWantedIsOmitted(t *testing.T) {
	desired := []v1alpha1.Extension{
		{Name: "pg_cron", Locations: []v1alpha1.ExtensionLocation{{Database: "postgres", Enabled: false}}},
	}
	status := ComputeStatus(desired, nil, nil)
	require.Len(t, status, 1)
	require.Empty(t, status[0].Locations)
}

func TestComputeStatusReflectsObservedEnabledBit(t *testing.T) {
	desired := []v1alpha1.Extension{
		{Name: "pg_cron", Locations: []v1alpha1.ExtensionLocation{{Database: "postgres", Enabled: true}}},
	}
	observed := []v1alpha1.Extension{
		{Name: "pg_cron", Locations: []v1alpha1.ExtensionLocation{{Database: "postgres", Enabled: false, Version: strPtr("1.5"), Schema: strPtr("public")}}},
	}
	status := ComputeStatus(desired, observed, nil)
	require.Len(t, status[0].Locations, 1)
	require.Equal(t, v1alpha1.ExtensionEnabledFalse, status[0].Locations[0].Enabled)
	require.False(t, status[0].Locations[0].Error)
}

func TestComputeStatusCarriesForwardErrorUntilResolved(t *testing.T) {
	desired := []v1alpha1.Extension{
		{Name: "pg_cron", Locations: []v1alpha1.ExtensionLocation{{Database: "postgres", Enabled: true}}},
	}
	observed := []v1alpha1.Extension{
		{Name: "pg_cron", Locations: []v1alpha1.ExtensionLocation{{Database: "postgres", Enabled: false, Schema: strPtr("public")}}},
	}
	priorMsg := "permission denied"
	prior := []v1alpha1.ExtensionStatus{
		{Name: "pg_cron", Locations: []v1alpha1.ExtensionLocationStatus{
			{Database: "postgres", Schema: strPtr("public"), Enabled: v1alpha1.ExtensionEnabledFalse, Error: true, ErrorMessage: &priorMsg},
		}},
	}
	status := ComputeStatus(desired, observed, prior)
	require.True(t, status[0].Locations[0].Error)
	require.Equal(t, priorMsg, *status[0].Locations[0].ErrorMessage)

	observed[0].Locations[0].Enabled = true
	resolved := ComputeStatus(desired, observed, prior)
	require.False(t, resolved[0].Locations[0].Error)
}

func TestExtensionsToToggleSkipsAbsentAndErrored(t *testing.T) {
	desired := []v1alpha1.Extension{
		{Name: "pg_cron", Locations: []v1alpha1.ExtensionLocation{
			{Database: "postgres", Enabled: true},
			{Database: "app", Enabled: true},
		}},
	}
	observed := []v1alpha1.Extension{
		{Name: "pg_cron", Locations: []v1alpha1.ExtensionLocation{
			{Database: "app", Enabled: false, Schema: strPtr("public")},
		}},
	}
	status := ComputeStatus(desired, observed, nil)
	targets := ExtensionsToToggle(desired, observed, status)
	require.Len(t, targets, 1)
	require.Equal(t, "app", targets[0].Location.Database)
}
