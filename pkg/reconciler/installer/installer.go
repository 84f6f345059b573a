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

// Package installer implements the Extension Installer (C3 of the
// reconciliation core): it runs `trunk install` across every ready pod for
// extensions declared in spec.trunkInstalls but not yet reflected in
// status, and reconciles the observed TrunkInstallStatus list.
package installer

import (
	"context"
	"sort"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/tembo-io/coredb-operator/pkg/apis/coredb/v1alpha1"
	"github.com/tembo-io/coredb-operator/pkg/reconciler/podexec"
)

const postgresContainer = "postgres"

const registryFlag = "-r https://registry.pgtrunk.io"

// Reconcile installs every spec.trunkInstalls entry not yet present in
// currentStatus across all given pods, and drops stale status entries for
// extensions no longer declared in spec. It returns the merged status list
// and whether any pod-exec transport failure occurred (the caller should
// requeue 10s on true, matching the reference implementation's retry for
// kube-exec-channel errors as opposed to a failed `trunk install` command,
// which is recorded in status rather than retried).
func Reconcile(ctx context.Context, exec podexec.Client, logger log.Logger, namespace string, pods []string, desired []v1alpha1.TrunkInstall, currentStatus []v1alpha1.TrunkInstallStatus) ([]v1alpha1.TrunkInstallStatus, bool) {
	statusByName := make(map[string]v1alpha1.TrunkInstallStatus, len(currentStatus))
	for _, s := range currentStatus {
		statusByName[s.Name] = s
	}

	desiredByName := make(map[string]struct{}, len(desired))
	for _, d := range desired {
		desiredByName[d.Name] = struct{}{}
	}
	for name := range statusByName {
		if _, ok := desiredByName[name]; !ok {
			delete(statusByName, name)
		}
	}

	var toInstall []v1alpha1.TrunkInstall
	for _, d := range desired {
		if _, done := statusByName[d.Name]; !done {
			toInstall = append(toInstall, d)
		}
	}

	requeue := false
	if len(toInstall) > 0 {
		for _, pod := range pods {
			for _, ext := range toInstall {
				status := installOne(ctx, exec, logger, namespace, pod, ext, &requeue)
				statusByName[ext.Name] = status
			}
		}
	}

	out := make([]v1alpha1.TrunkInstallStatus, 0, len(statusByName))
	for _, s := range statusByName {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, requeue
}

func installOne(ctx context.Context, exec podexec.Client, logger log.Logger, namespace, pod string, ext v1alpha1.TrunkInstall, requeue *bool) v1alpha1.TrunkInstallStatus {
	if ext.Version == nil {
		msg := "Missing version"
		level.Error(logger).Log("msg", "trunk install missing version", "extension", ext.Name, "pod", pod)
		return v1alpha1.TrunkInstallStatus{
			Name:                 ext.Name,
			Error:                true,
			ErrorMessage:         &msg,
			InstalledToInstances: []string{pod},
		}
	}

	cmd := []string{"trunk", "install", registryFlag, ext.Name, "--version", *ext.Version}
	out, err := exec.Exec(ctx, namespace, pod, postgresContainer, cmd)
	if err != nil {
		level.Error(logger).Log("msg", "kube exec failed installing extension", "extension", ext.Name, "pod", pod, "err", err)
		*requeue = true
		return v1alpha1.TrunkInstallStatus{Name: ext.Name, Version: ext.Version}
	}

	if out.Success() {
		level.Info(logger).Log("msg", "installed extension", "extension", ext.Name, "pod", pod)
		return v1alpha1.TrunkInstallStatus{
			Name:                 ext.Name,
			Version:              ext.Version,
			InstalledToInstances: []string{pod},
		}
	}

	combined := out.Combined()
	level.Error(logger).Log("msg", "failed to install extension", "extension", ext.Name, "pod", pod, "output", combined)
	return v1alpha1.TrunkInstallStatus{
		Name:                 ext.Name,
		Version:              ext.Version,
		Error:                true,
		ErrorMessage:         &combined,
		InstalledToInstances: []string{pod},
	}
}
