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

package credentials

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	clusterv1 "github.com/tembo-io/coredb-operator/pkg/apis/cluster/v1"
	"github.com/tembo-io/coredb-operator/pkg/apis/coredb/v1alpha1"
)

func TestSynthesizeNilInheritsFromIAM(t *testing.T) {
	got := Synthesize(nil)
	want := &clusterv1.ClusterS3Credentials{InheritFromIAM: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Synthesize(nil) mismatch (-want +got):\n%s", diff)
	}
}

func TestSynthesizeEmptyInheritsFromIAM(t *testing.T) {
	got := Synthesize(&v1alpha1.S3Credentials{
		Region: &v1alpha1.SecretKeySelector{Name: "s3-creds", Key: "region"},
	})
	want := &clusterv1.ClusterS3Credentials{InheritFromIAM: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Synthesize(region-only) mismatch (-want +got):\n%s", diff)
	}
}

func TestSynthesizeExplicitKeys(t *testing.T) {
	in := &v1alpha1.S3Credentials{
		AccessKeyID:     &v1alpha1.SecretKeySelector{Name: "s3-creds", Key: "access_key_id"},
		SecretAccessKey: &v1alpha1.SecretKeySelector{Name: "s3-creds", Key: "secret_access_key"},
		Region:          &v1alpha1.SecretKeySelector{Name: "s3-creds", Key: "region"},
	}
	got := Synthesize(in)
	want := &clusterv1.ClusterS3Credentials{
		AccessKeyID:     &clusterv1.ClusterSecretKeySelector{Name: "s3-creds", Key: "access_key_id"},
		SecretAccessKey: &clusterv1.ClusterSecretKeySelector{Name: "s3-creds", Key: "secret_access_key"},
		Region:          &clusterv1.ClusterSecretKeySelector{Name: "s3-creds", Key: "region"},
		InheritFromIAM:  false,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Synthesize(explicit) mismatch (-want +got):\n%s", diff)
	}
}

func TestSynthesizeSessionToken(t *testing.T) {
	in := &v1alpha1.S3Credentials{
		AccessKeyID:     &v1alpha1.SecretKeySelector{Name: "sts-creds", Key: "key"},
		SecretAccessKey: &v1alpha1.SecretKeySelector{Name: "sts-creds", Key: "secret"},
		SessionToken:    &v1alpha1.SecretKeySelector{Name: "sts-creds", Key: "token"},
	}
	got := Synthesize(in)
	if got.SessionToken == nil || got.SessionToken.Key != "token" {
		t.Errorf("Synthesize(session-token) = %+v, want SessionToken.Key = token", got)
	}
	if got.InheritFromIAM {
		t.Errorf("Synthesize(session-token) InheritFromIAM = true, want false")
	}
}
