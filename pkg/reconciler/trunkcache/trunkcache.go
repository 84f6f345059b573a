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

// Package trunkcache implements the Trunk Metadata Cache (C1.2 / "C2" of
// the reconciliation core): a per-namespace, stale-tolerant cache of the
// extensions that require loading via shared_preload_libraries, refreshed
// from an external registry.
package trunkcache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// ConfigMapName is the namespace-scoped object the refreshed library list
// is persisted to. Multiple CoreDBs in the same namespace share one copy.
const ConfigMapName = "trunk-metadata"

// librariesKey is the single data key holding the comma-joined list.
const librariesKey = "libraries"

// DefaultRegistryDomain is used when no override is configured.
const DefaultRegistryDomain = "registry.pgtrunk.io"

// FieldOwner is the field manager used for the idempotent server-side
// apply of the shared per-namespace ConfigMap.
const FieldOwner = "cntrlr"

// Cache refreshes and reads the per-namespace trunk metadata.
type Cache struct {
	client       client.Client
	httpClient   *http.Client
	registryHost string
	logger       log.Logger
}

// New constructs a Cache. registryHost overrides DefaultRegistryDomain when
// non-empty, mirroring the TRUNK_REGISTRY_DOMAIN environment override of
// the reference implementation.
func New(c client.Client, httpClient *http.Client, registryHost string, logger log.Logger) *Cache {
	if registryHost == "" {
		registryHost = DefaultRegistryDomain
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Cache{client: c, httpClient: httpClient, registryHost: registryHost, logger: logger}
}

// Refresh fetches the current library list from the registry and persists
// it into the namespace's trunk-metadata ConfigMap.
//
// On a fetch failure: if the ConfigMap already exists, the stale cache is
// kept and nil is returned (the reconcile continues). If no ConfigMap
// exists yet, a 30s RequeueAfter is returned since the reconciler cannot
// proceed without any notion of which extensions require preloading.
func (c *Cache) Refresh(ctx context.Context, namespace string) (requeueAfter time.Duration, err error) {
	libraries, fetchErr := c.fetchLibraries(ctx)
	if fetchErr != nil {
		level.Error(c.logger).Log("msg", "failed to refresh trunk extensions library list", "err", fetchErr)
		var existing corev1.ConfigMap
		getErr := c.client.Get(ctx, types.NamespacedName{Namespace: namespace, Name: ConfigMapName}, &existing)
		if getErr == nil {
			return 0, nil
		}
		return 30 * time.Second, nil
	}

	cm := &corev1.ConfigMap{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "ConfigMap"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      ConfigMapName,
			Namespace: namespace,
		},
		Data: map[string]string{
			librariesKey: strings.Join(libraries, ","),
		},
	}
	if applyErr := c.client.Patch(ctx, cm, client.Apply, client.ForceOwnership, client.FieldOwner(FieldOwner)); applyErr != nil {
		level.Error(c.logger).Log("msg", "failed to persist trunk metadata configmap", "err", applyErr)
		return 300 * time.Second, errors.Wrap(applyErr, "apply trunk-metadata configmap")
	}
	return 0, nil
}

// RequiresLoad returns the cached set of extension names that require
// shared_preload_libraries for namespace, parsed from the comma-joined
// ConfigMap value. A missing ConfigMap or key yields an empty set, not an
// error: the caller (the reconcile loop) is responsible for having called
// Refresh first and handling its requeue signal.
func (c *Cache) RequiresLoad(ctx context.Context, namespace string) ([]string, error) {
	var cm corev1.ConfigMap
	err := c.client.Get(ctx, types.NamespacedName{Namespace: namespace, Name: ConfigMapName}, &cm)
	if apierrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get trunk-metadata configmap")
	}
	return ParseLibraries(cm.Data[librariesKey]), nil
}

// ParseLibraries splits the comma-joined ConfigMap value into a sorted,
// deduplicated slice of names.
func ParseLibraries(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (c *Cache) fetchLibraries(ctx context.Context) ([]string, error) {
	url := fmt.Sprintf("https://%s/extensions/libraries", c.registryHost)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build trunk registry request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "GET trunk registry")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("trunk registry returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read trunk registry response")
	}
	var libraries []string
	if err := json.Unmarshal(body, &libraries); err != nil {
		return nil, errors.Wrap(err, "decode trunk registry response")
	}
	return libraries, nil
}
