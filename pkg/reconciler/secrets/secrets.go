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

// Package secrets creates and reads the per-role password Secrets the
// superuser, readonly, and exporter roles authenticate with. A password is
// generated only the first time a Secret is created; every later reconcile
// reuses whatever is already stored, so rotating a role's password is
// exclusively a user action (deleting the Secret), never an automatic one.
package secrets

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

const passwordKey = "password"
const passwordLength = 16
const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GeneratePassword returns a random alphanumeric password, matching the
// reference generator's length and character set (no symbols or spaces,
// so the value is always safe inside a connection URI without escaping).
func GeneratePassword() (string, error) {
	out := make([]byte, passwordLength)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordAlphabet))))
		if err != nil {
			return "", errors.Wrap(err, "generate random password")
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}

// EnsurePassword returns the password for a role's secret, creating the
// secret with a freshly generated password if it doesn't exist yet.
func EnsurePassword(ctx context.Context, c client.Client, namespace, name string, owner metav1.OwnerReference) (string, error) {
	var secret corev1.Secret
	err := c.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, &secret)
	if err == nil {
		return string(secret.Data[passwordKey]), nil
	}
	if !apierrors.IsNotFound(err) {
		return "", errors.Wrapf(err, "get secret %s/%s", namespace, name)
	}

	password, err := GeneratePassword()
	if err != nil {
		return "", err
	}
	secret = corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:            name,
			Namespace:       namespace,
			OwnerReferences: []metav1.OwnerReference{owner},
		},
		Type: corev1.SecretTypeOpaque,
		Data: map[string][]byte{passwordKey: []byte(password)},
	}
	if err := c.Create(ctx, &secret); err != nil {
		return "", errors.Wrapf(err, "create secret %s/%s", namespace, name)
	}
	return password, nil
}
