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

// Package pgconfig assembles a CoreDB's final postgresql.conf parameter
// set out of its several independent sources: a stack's defaults, the
// operator's own runtime settings, the shared_preload_libraries entries
// that installed extensions require, and user overrides.
package pgconfig

import (
	"sort"

	v1alpha1 "github.com/tembo-io/coredb-operator/pkg/apis/coredb/v1alpha1"
)

const sharedPreloadLibraries = "shared_preload_libraries"

// multiValConfigNames lists, in the order merges are attempted, every
// parameter name that must be combined across layers instead of
// overwritten wholesale.
var multiValConfigNames = []string{
	sharedPreloadLibraries,
	"local_preload_libraries",
	"session_preload_libraries",
	"log_destination",
	"search_path",
}

// Compute builds the final, sorted-by-name parameter set for spec. requiresLoad
// lists the extension names that, when enabled at any location, must be
// added to shared_preload_libraries. A nil return with a nil error means
// there are no configs to render at all.
func Compute(spec *v1alpha1.CoreDBSpec, requiresLoad []string) ([]v1alpha1.PgConfig, error) {
	stackConfigs := []v1alpha1.PgConfig{}
	if spec.Stack != nil {
		stackConfigs = append(stackConfigs, spec.Stack.PostgresConfig...)
	}

	runtimeConfigs := append([]v1alpha1.PgConfig{}, spec.RuntimeConfig...)

	needsLoad := map[string]struct{}{}
	for _, ext := range spec.Extensions {
		if containsName(requiresLoad, ext.Name) && extensionEnabledSomewhere(ext) {
			needsLoad[ext.Name] = struct{}{}
		}
	}
	names := make([]string, 0, len(needsLoad))
	for n := range needsLoad {
		names = append(names, n)
	}
	extensionSettings := []v1alpha1.PgConfig{
		{Name: sharedPreloadLibraries, Value: v1alpha1.NewMultiValue(names...)},
	}

	merged, err := v1alpha1.MergePgConfigs(runtimeConfigs, extensionSettings, sharedPreloadLibraries)
	if err != nil {
		return nil, err
	}
	if merged != nil {
		replaceOrAppend(&runtimeConfigs, *merged)
	}

	var mergedMultival []v1alpha1.PgConfig
	for _, name := range multiValConfigNames {
		m, err := v1alpha1.MergePgConfigs(stackConfigs, runtimeConfigs, name)
		if err != nil {
			return nil, err
		}
		if m != nil {
			mergedMultival = append(mergedMultival, *m)
		}
	}

	byName := map[string]v1alpha1.PgConfig{}
	order := []string{}
	put := func(p v1alpha1.PgConfig) {
		if _, ok := byName[p.Name]; !ok {
			order = append(order, p.Name)
		}
		byName[p.Name] = p
	}
	for _, p := range stackConfigs {
		put(p)
	}
	for _, p := range runtimeConfigs {
		put(p)
	}
	for _, p := range mergedMultival {
		put(p)
	}
	for _, p := range spec.OverrideConfigs {
		put(p)
	}

	out := make([]v1alpha1.PgConfig, 0, len(byName))
	for _, name := range order {
		p, ok := byName[name]
		if !ok || v1alpha1.IsDisallowed(name) {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, nil
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func replaceOrAppend(configs *[]v1alpha1.PgConfig, p v1alpha1.PgConfig) {
	for i := range *configs {
		if (*configs)[i].Name == p.Name {
			(*configs)[i] = p
			return
		}
	}
	*configs = append(*configs, p)
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func extensionEnabledSomewhere(ext v1alpha1.Extension) bool {
	for _, loc := range ext.Locations {
		if loc.Enabled {
			return true
		}
	}
	return false
}

// ByName looks up a single computed config by name, used by callers that
// only care about one setting (e.g. the preload negotiator checking
// whether a given extension already made it into shared_preload_libraries).
func ByName(spec *v1alpha1.CoreDBSpec, requiresLoad []string, name string) (*v1alpha1.PgConfig, error) {
	all, err := Compute(spec, requiresLoad)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Name == name {
			return &all[i], nil
		}
	}
	return nil, nil
}
