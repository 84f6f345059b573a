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

// Package credentials implements the Credential Synthesizer (C10 of the
// reconciliation core): it shapes a CoreDB's declared S3Credentials into the
// typed secret-key-selector block the Cluster Renderer embeds into a
// downstream Cluster's barmanObjectStore. It never contacts AWS; the
// aws-sdk-go-v2 Credentials type is used only as a familiar struct shape for
// the values threaded through, not as a live credential source.
package credentials

import (
	"github.com/aws/aws-sdk-go-v2/aws"

	clusterv1 "github.com/tembo-io/coredb-operator/pkg/apis/cluster/v1"
	"github.com/tembo-io/coredb-operator/pkg/apis/coredb/v1alpha1"
)

// Synthesize builds the downstream S3 credential block for a backup
// destination or restore/external-cluster source. When creds is nil, the
// result inherits from the pod's IAM role, mirroring the upstream behavior
// of treating "no credentials configured" the same as "use the attached
// role". When creds is non-nil but carries neither an access key ID nor a
// secret access key, the same inherit-from-IAM branch is taken even though
// the user supplied a (partial or IAM-only) block.
func Synthesize(creds *v1alpha1.S3Credentials) *clusterv1.ClusterS3Credentials {
	if creds == nil {
		return &clusterv1.ClusterS3Credentials{InheritFromIAM: true}
	}
	if creds.AccessKeyID == nil && creds.SecretAccessKey == nil {
		return &clusterv1.ClusterS3Credentials{InheritFromIAM: true}
	}
	return &clusterv1.ClusterS3Credentials{
		AccessKeyID:     selector(creds.AccessKeyID),
		SecretAccessKey: selector(creds.SecretAccessKey),
		Region:          selector(creds.Region),
		SessionToken:    selector(creds.SessionToken),
		InheritFromIAM:  false,
	}
}

func selector(s *v1alpha1.SecretKeySelector) *clusterv1.ClusterSecretKeySelector {
	if s == nil {
		return nil
	}
	return &clusterv1.ClusterSecretKeySelector{Name: s.Name, Key: s.Key}
}

// shape documents, at compile time, that the selector fields synthesized
// above line up one-for-one with aws-sdk-go-v2's credential value shape
// (access key, secret key, session token); it is never constructed at
// runtime.
var _ = aws.Credentials{}
