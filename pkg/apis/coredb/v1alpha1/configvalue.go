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

package v1alpha1

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// multiValConfigs is the fixed registry of postgresql.conf parameter names
// that must be merged across configuration layers rather than overwritten.
var multiValConfigs = map[string]bool{
	"shared_preload_libraries":  true,
	"local_preload_libraries":   true,
	"session_preload_libraries": true,
	"log_destination":           true,
	"search_path":               true,
}

// IsMultiValued reports whether name belongs to the fixed multi-valued
// parameter registry.
func IsMultiValued(name string) bool {
	return multiValConfigs[name]
}

// disallowedConfigs is the fixed registry of parameter names that are
// silently stripped from any merged result.
var disallowedConfigs = map[string]bool{
	"listen_addresses":      true,
	"port":                  true,
	"cluster_name":          true,
	"hot_standby":           true,
	"archive_command":       true,
	"archive_mode":          true,
	"unix_socket_directories": true,
}

// IsDisallowed reports whether name belongs to the fixed disallowed
// parameter registry.
func IsDisallowed(name string) bool {
	return disallowedConfigs[name]
}

// ErrSingleValueNotAllowed is returned when combining a ConfigValue that is
// not Multiple with anything else. Single-plus-multi is a programming
// error, never user input.
var ErrSingleValueNotAllowed = errors.New("cannot combine a single-valued config with another value")

// ConfigValue is a tagged union over a plain postgresql.conf value
// (Single) and a set of values that render comma-joined (Multiple).
// It must never be modeled as a raw string: doing so loses the
// sort/dedup invariant multi-valued settings depend on.
type ConfigValue interface {
	// String renders the value the way it is written into postgresql.conf:
	// verbatim for Single, sorted and comma-joined for Multiple.
	String() string
	// Combine unions two multi-valued configs. It is an error to call this
	// on, or with, a Single value.
	Combine(other ConfigValue) (ConfigValue, error)

	isConfigValue()
}

type singleValue string

func (s singleValue) String() string { return string(s) }

func (s singleValue) Combine(ConfigValue) (ConfigValue, error) {
	return nil, ErrSingleValueNotAllowed
}

func (singleValue) isConfigValue() {}

type multiValue map[string]struct{}

func (m multiValue) String() string {
	vals := make([]string, 0, len(m))
	for v := range m {
		vals = append(vals, v)
	}
	sort.Strings(vals)
	return strings.Join(vals, ",")
}

func (m multiValue) Combine(other ConfigValue) (ConfigValue, error) {
	o, ok := other.(multiValue)
	if !ok {
		return nil, ErrSingleValueNotAllowed
	}
	out := make(multiValue, len(m)+len(o))
	for v := range m {
		out[v] = struct{}{}
	}
	for v := range o {
		out[v] = struct{}{}
	}
	return out, nil
}

func (multiValue) isConfigValue() {}

// NewSingleValue constructs a single-valued ConfigValue.
func NewSingleValue(v string) ConfigValue {
	return singleValue(v)
}

// NewMultiValue constructs a multi-valued ConfigValue from a set of names.
func NewMultiValue(vals ...string) ConfigValue {
	m := make(multiValue, len(vals))
	for _, v := range vals {
		if v == "" {
			continue
		}
		m[v] = struct{}{}
	}
	return m
}

// ParseConfigValue splits a raw comma-containing string into a Multiple
// value, or returns a Single value otherwise. Used when reading values
// whose name is not yet known to be multi-valued (e.g. override configs
// keyed only by name+value strings).
func ParseConfigValue(s string) ConfigValue {
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		return NewMultiValue(parts...)
	}
	return singleValue(s)
}

// ConfigValueForName builds the ConfigValue of the correct variant for a
// given parameter name and raw string, following the registry in
// multiValConfigs. A multi-valued name's raw string is split on "," so
// that round-tripping through String() and back reproduces the same set.
func ConfigValueForName(name, raw string) ConfigValue {
	if IsMultiValued(name) {
		if raw == "" {
			return NewMultiValue()
		}
		return NewMultiValue(strings.Split(raw, ",")...)
	}
	return singleValue(raw)
}
