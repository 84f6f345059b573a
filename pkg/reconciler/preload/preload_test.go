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

package preload

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tembo-io/coredb-operator/pkg/reconciler/podexec"
)

func TestNegotiateNoClusterDropsEverything(t *testing.T) {
	fake := &podexec.Fake{}
	got, err := Negotiate(context.Background(), fake, "ns1", "ns1-1", false, nil, []string{"pg_cron"})
	require.NoError(t, err)
	require.Empty(t, got.Libraries)
	require.False(t, got.RestartRequired)
	require.Empty(t, fake.Calls)
}

func TestNegotiateKeepsOnlyPresentLibraries(t *testing.T) {
	fake := &podexec.Fake{Results: []podexec.ScriptedResult{
		{CommandContains: "pkglibdir", Output: podexec.Output{ExitCode: 0, Stdout: "pg_cron.so\npg_stat_statements.so\nother.so\n"}},
	}}
	got, err := Negotiate(context.Background(), fake, "ns1", "ns1-1", true, []string{"pg_cron"}, []string{"pg_cron", "vectorize"})
	require.NoError(t, err)
	require.Equal(t, []string{"pg_cron"}, got.Libraries)
	require.False(t, got.RestartRequired)
}

func TestNegotiateNewLibraryRequiresRestart(t *testing.T) {
	fake := &podexec.Fake{Results: []podexec.ScriptedResult{
		{CommandContains: "pkglibdir", Output: podexec.Output{ExitCode: 0, Stdout: "pg_cron.so\nvectorize.so\n"}},
	}}
	got, err := Negotiate(context.Background(), fake, "ns1", "ns1-1", true, []string{"pg_cron"}, []string{"pg_cron", "vectorize"})
	require.NoError(t, err)
	require.Equal(t, []string{"pg_cron", "vectorize"}, got.Libraries)
	require.True(t, got.RestartRequired)
}

func TestNegotiateExecFailureErrors(t *testing.T) {
	fake := &podexec.Fake{Results: []podexec.ScriptedResult{
		{CommandContains: "pkglibdir", Output: podexec.Output{ExitCode: 1, Stderr: "no such file"}},
	}}
	_, err := Negotiate(context.Background(), fake, "ns1", "ns1-1", true, nil, []string{"pg_cron"})
	require.Error(t, err)
}
