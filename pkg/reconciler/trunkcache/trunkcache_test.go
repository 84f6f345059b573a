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

package trunkcache

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
)

func newScheme(t *testing.T) *runtime.Scheme {
	t.Helper()
	scheme := runtime.NewScheme()
	require.NoError(t, corev1.AddToScheme(scheme))
	return scheme
}

func TestParseLibraries(t *testing.T) {
	require.Nil(t, ParseLibraries(""))
	require.Equal(t, []string{"pg_cron", "pg_stat_statements"}, ParseLibraries("pg_stat_statements,pg_cron"))
	require.Equal(t, []string{"pg_cron"}, ParseLibraries("pg_cron,pg_cron"))
}

func TestRequiresLoadNoConfigMapReturnsEmpty(t *testing.T) {
	c := fake.NewClientBuilder().WithScheme(newScheme(t)).Build()
	cache := New(c, nil, "", log.NewNopLogger())

	libs, err := cache.RequiresLoad(context.Background(), "ns1")
	require.NoError(t, err)
	require.Nil(t, libs)
}

func TestRefreshSuccessPersistsConfigMap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]string{"pg_cron", "pg_stat_statements"})
	}))
	defer server.Close()

	c := fake.NewClientBuilder().WithScheme(newScheme(t)).Build()
	cache := New(c, server.Client(), server.URL[len("http://"):], log.NewNopLogger())

	requeue, err := cache.Refresh(context.Background(), "ns1")
	require.NoError(t, err)
	require.Zero(t, requeue)

	var cm corev1.ConfigMap
	require.NoError(t, c.Get(context.Background(), types.NamespacedName{Namespace: "ns1", Name: ConfigMapName}, &cm))
	require.Equal(t, "pg_cron,pg_stat_statements", cm.Data["libraries"])
}

func TestRefreshFailureWithoutExistingCacheRequeues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := fake.NewClientBuilder().WithScheme(newScheme(t)).Build()
	cache := New(c, server.Client(), server.URL[len("http://"):], log.NewNopLogger())

	requeue, err := cache.Refresh(context.Background(), "ns1")
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, requeue)
}

func TestRefreshFailureWithExistingCacheKeepsIt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	existing := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: ConfigMapName, Namespace: "ns1"},
		Data:       map[string]string{"libraries": "pg_cron"},
	}
	c := fake.NewClientBuilder().WithScheme(newScheme(t)).WithObjects(existing).Build()
	cache := New(c, server.Client(), server.URL[len("http://"):], log.NewNopLogger())

	requeue, err := cache.Refresh(context.Background(), "ns1")
	require.NoError(t, err)
	require.Zero(t, requeue)

	libs, err := cache.RequiresLoad(context.Background(), "ns1")
	require.NoError(t, err)
	require.Equal(t, []string{"pg_cron"}, libs)
}
