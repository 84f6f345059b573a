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

// Package podexec is the sole transport the reconciliation core uses to
// run SQL and the trunk installer inside a Postgres pod: there is no
// direct network path to Postgres, only kube exec (CoreDB spec §6).
package podexec

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/remotecommand"
)

// Output is the captured result of running a command inside a pod
// container.
type Output struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the command completed with a zero exit code.
func (o Output) Success() bool {
	return o.ExitCode == 0
}

// Combined joins stdout and stderr the way the reference implementation
// records a failed install or toggle: stdout first, then stderr, newline
// separated.
func (o Output) Combined() string {
	if o.Stderr == "" {
		return o.Stdout
	}
	if o.Stdout == "" {
		return o.Stderr
	}
	return o.Stdout + "\n" + o.Stderr
}

// Client runs a command inside a named pod's container and captures its
// output. Modeled as an interface (CoreDB spec §9 "singleton pod-exec
// client") so unit tests can inject a deterministic scripted backend
// instead of a real cluster.
type Client interface {
	Exec(ctx context.Context, namespace, pod, container string, command []string) (Output, error)
}

// podExecError wraps a failure in setting up or streaming the exec
// session itself (a kube-level transport failure, never a non-zero exit
// code from the command that ran). Callers use errors.As to distinguish
// this from a command failure, since the two are retried differently
// (CoreDB spec §7: TransportError vs. InstallFailure/ExtensionToggleFailure).
type podExecError struct {
	cause error
}

func (e *podExecError) Error() string { return e.cause.Error() }
func (e *podExecError) Unwrap() error  { return e.cause }

// IsTransportError reports whether err originated in the exec channel
// itself rather than in the command that was run.
func IsTransportError(err error) bool {
	var pe *podExecError
	return errors.As(err, &pe)
}

// kubeClient execs via client-go's SPDY executor over the Kubernetes API
// server, the only transport available to reach a pod's containers.
type kubeClient struct {
	clientset kubernetes.Interface
	config    *rest.Config
}

// New returns a Client backed by a real Kubernetes API server connection.
func New(clientset kubernetes.Interface, config *rest.Config) Client {
	return &kubeClient{clientset: clientset, config: config}
}

func (k *kubeClient) Exec(ctx context.Context, namespace, pod, container string, command []string) (Output, error) {
	req := k.clientset.CoreV1().RESTClient().Post().
		Resource("pods").
		Name(pod).
		Namespace(namespace).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: container,
			Command:   command,
			Stdin:     false,
			Stdout:    true,
			Stderr:    true,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(k.config, "POST", req.URL())
	if err != nil {
		return Output{}, &podExecError{cause: errors.Wrap(err, "create exec stream")}
	}

	var stdout, stderr bytes.Buffer
	err = executor.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		var codeErr codeExitError
		if errors.As(err, &codeErr) {
			return Output{
				ExitCode: codeErr.ExitStatus(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			}, nil
		}
		return Output{}, &podExecError{cause: errors.Wrap(err, "stream exec session")}
	}
	return Output{ExitCode: 0, Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

// codeExitError mirrors client-go's exec.CodeExitError interface
// (ExitStatus() int) without importing that internal package name
// directly into this package's exported signature.
type codeExitError interface {
	error
	ExitStatus() int
}
