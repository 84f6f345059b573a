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

// Package reconciler defines the error taxonomy shared by every component
// of the reconciliation core, so callers can classify an error with
// errors.As instead of string-matching it.
package reconciler

import "github.com/pkg/errors"

// TransportError wraps a Kubernetes API or pod-exec channel failure. It is
// always retried via requeue; it never reaches the status subresource.
type TransportError struct {
	cause error
}

func NewTransportError(cause error) *TransportError { return &TransportError{cause: cause} }
func (e *TransportError) Error() string             { return "transport error: " + e.cause.Error() }
func (e *TransportError) Unwrap() error              { return e.cause }

// UserInputError is a malformed or incomplete spec value (a missing trunk
// version, an unsafe identifier, a single/multiple config mismatch). It is
// surfaced into status and never retried on its own; only a spec edit
// re-triggers the attempt.
type UserInputError struct {
	cause error
}

func NewUserInputError(cause error) *UserInputError { return &UserInputError{cause: cause} }
func (e *UserInputError) Error() string             { return e.cause.Error() }
func (e *UserInputError) Unwrap() error             { return e.cause }

// InstallFailure records a trunk install whose command exited non-zero. It
// is recorded per pod in status.trunk_installs and retried only when the
// user edits the TrunkInstall entry that produced it.
type InstallFailure struct {
	cause error
}

func NewInstallFailure(cause error) *InstallFailure { return &InstallFailure{cause: cause} }
func (e *InstallFailure) Error() string             { return e.cause.Error() }
func (e *InstallFailure) Unwrap() error             { return e.cause }

// ExtensionToggleFailure records a CREATE/DROP EXTENSION statement that
// failed. It is recorded per location in status and re-attempted every
// reconcile until it succeeds or the user changes spec.
type ExtensionToggleFailure struct {
	cause error
}

func NewExtensionToggleFailure(cause error) *ExtensionToggleFailure {
	return &ExtensionToggleFailure{cause: cause}
}
func (e *ExtensionToggleFailure) Error() string { return e.cause.Error() }
func (e *ExtensionToggleFailure) Unwrap() error { return e.cause }

// StateMissing means a piece of state the reconcile needs (the downstream
// cluster, its status, a ready pod) has not appeared yet. It is never
// fatal and always resolves to a short requeue.
type StateMissing struct {
	cause error
}

func NewStateMissing(cause error) *StateMissing { return &StateMissing{cause: cause} }
func (e *StateMissing) Error() string           { return e.cause.Error() }
func (e *StateMissing) Unwrap() error           { return e.cause }

// IsTransport reports whether err is, or wraps, a TransportError.
func IsTransport(err error) bool {
	var t *TransportError
	return errors.As(err, &t)
}

// IsStateMissing reports whether err is, or wraps, a StateMissing.
func IsStateMissing(err error) bool {
	var s *StateMissing
	return errors.As(err, &s)
}
