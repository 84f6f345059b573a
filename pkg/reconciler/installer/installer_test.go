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

package installer

import (
	"context"
	"testing"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/require"

	"github.com/tembo-io/coredb-operator/pkg/apis/coredb/v1alpha1"
	"github.com/tembo-io/coredb-operator/pkg/reconciler/podexec"
)

func strp(s string) *string { return &s }

func TestReconcileMissingVersionIsPermanentError(t *testing.T) {
	fake := &podexec.Fake{}
	status, requeue := Reconcile(context.Background(), fake, log.NewNopLogger(), "ns1",
		[]string{"mydb-1"},
		[]v1alpha1.TrunkInstall{{Name: "pg_cron"}},
		nil)
	require.False(t, requeue)
	require.Len(t, status, 1)
	require.True(t, status[0].Error)
	require.Equal(t, "Missing version", *status[0].ErrorMessage)
	require.Empty(t, fake.Calls)
}

func TestReconcileInstallsAndRecordsSuccess(t *testing.T) {
	fake := &podexec.Fake{Results: []podexec.ScriptedResult{
		{CommandContains: "trunk install", Output: podexec.Output{ExitCode: 0, Stdout: "ok"}},
	}}
	status, requeue := Reconcile(context.Background(), fake, log.NewNopLogger(), "ns1",
		[]string{"mydb-1"},
		[]v1alpha1.TrunkInstall{{Name: "pg_cron", Version: strp("1.0.0")}},
		nil)
	require.False(t, requeue)
	require.Len(t, status, 1)
	require.False(t, status[0].Error)
	require.Equal(t, []string{"mydb-1"}, status[0].InstalledToInstances)
}

func TestReconcileTransportFailureRequeues(t *testing.T) {
	fake := &podexec.Fake{Results: []podexec.ScriptedResult{
		{CommandContains: "trunk install", Err: assertErr{}},
	}}
	_, requeue := Reconcile(context.Background(), fake, log.NewNopLogger(), "ns1",
		[]string{"mydb-1"},
		[]v1alpha1.TrunkInstall{{Name: "pg_cron", Version: strp("1.0.0")}},
		nil)
	require.True(t, requeue)
}

func TestReconcileSkipsAlreadyInstalled(t *testing.T) {
	fake := &podexec.Fake{}
	status, requeue := Reconcile(context.Background(), fake, log.NewNopLogger(), "ns1",
		[]string{"mydb-1"},
		[]v1alpha1.TrunkInstall{{Name: "pg_cron", Version: strp("1.0.0")}},
		[]v1alpha1.TrunkInstallStatus{{Name: "pg_cron", Version: strp("1.0.0")}})
	require.False(t, requeue)
	require.Empty(t, fake.Calls)
	require.Len(t, status, 1)
}

func TestReconcileDropsStatusForRemovedSpecEntries(t *testing.T) {
	fake := &podexec.Fake{}
	status, _ := Reconcile(context.Background(), fake, log.NewNopLogger(), "ns1",
		[]string{"mydb-1"},
		nil,
		[]v1alpha1.TrunkInstallStatus{{Name: "pg_cron", Version: strp("1.0.0")}})
	require.Empty(t, status)
}

type assertErr struct{}

func (assertErr) Error() string { return "exec transport failure" }
