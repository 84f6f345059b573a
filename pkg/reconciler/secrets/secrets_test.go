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

package secrets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
)

func TestGeneratePasswordLengthAndAlphabet(t *testing.T) {
	pw, err := GeneratePassword()
	require.NoError(t, err)
	require.Len(t, pw, passwordLength)
	for _, r := range pw {
		require.Contains(t, passwordAlphabet, string(r))
	}
}

func TestEnsurePasswordCreatesThenReuses(t *testing.T) {
	scheme := runtime.NewScheme()
	require.NoError(t, corev1.AddToScheme(scheme))
	c := fake.NewClientBuilder().WithScheme(scheme).Build()
	owner := metav1.OwnerReference{Name: "mydb"}

	pw1, err := EnsurePassword(context.Background(), c, "ns1", "mydb-ro", owner)
	require.NoError(t, err)
	require.Len(t, pw1, passwordLength)

	pw2, err := EnsurePassword(context.Background(), c, "ns1", "mydb-ro", owner)
	require.NoError(t, err)
	require.Equal(t, pw1, pw2)
}
