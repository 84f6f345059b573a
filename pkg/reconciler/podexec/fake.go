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

package podexec

import (
	"context"
	"strings"
)

// ScriptedResult is one canned response for a Fake Client, matched by a
// substring of the joined command.
type ScriptedResult struct {
	CommandContains string
	Output          Output
	Err             error
}

// Fake is a deterministic, scripted Client for tests: each call records
// its invocation and returns the first matching ScriptedResult, or a
// zero-value success if nothing matches.
type Fake struct {
	Results []ScriptedResult
	Calls   []FakeCall
}

// FakeCall records one Exec invocation for test assertions.
type FakeCall struct {
	Namespace, Pod, Container string
	Command                  []string
}

func (f *Fake) Exec(_ context.Context, namespace, pod, container string, command []string) (Output, error) {
	f.Calls = append(f.Calls, FakeCall{Namespace: namespace, Pod: pod, Container: container, Command: command})
	joined := strings.Join(command, " ")
	for _, r := range f.Results {
		if strings.Contains(joined, r.CommandContains) {
			return r.Output, r.Err
		}
	}
	return Output{ExitCode: 0}, nil
}
