/*
Copyright 2026 The Quantbench Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package validation

import (
	"fmt"

	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
	"github.com/quantbench/quantbench/pkg/quantbench/util"
)

var validEncodings = []string{"auto", "utf-8", "gbk"}

// Process checks a config for semantic errors and returns all of them.
func Process(config *latest.QuantbenchConfig) []error {
	var errs []error
	errs = append(errs, validatePorts(config)...)
	errs = append(errs, validateAgent(&config.Agent)...)
	errs = append(errs, validateRetrieval(&config.Retrieval)...)
	errs = append(errs, validateImport(&config.Import)...)
	errs = append(errs, validateProfiles(config.Profiles)...)
	return errs
}

func validatePorts(config *latest.QuantbenchConfig) []error {
	var errs []error
	for _, port := range []struct {
		name  string
		value int
	}{
		{"gateway.port", config.Gateway.Port},
		{"engine.port", config.Engine.Port},
	} {
		if port.value < 0 || port.value > 65535 {
			errs = append(errs, fmt.Errorf("invalid %s %d: must be between 0 and 65535", port.name, port.value))
		}
	}
	return errs
}

func validateAgent(a *latest.AgentConfig) []error {
	var errs []error
	if a.Temperature != nil && (*a.Temperature < 0 || *a.Temperature > 2) {
		errs = append(errs, fmt.Errorf("invalid agent.temperature %v: must be between 0 and 2", *a.Temperature))
	}
	if a.MaxTurns < 0 {
		errs = append(errs, fmt.Errorf("invalid agent.maxTurns %d: must be positive", a.MaxTurns))
	}
	return errs
}

func validateRetrieval(r *latest.RetrievalConfig) []error {
	var errs []error
	if r.TopK < 0 {
		errs = append(errs, fmt.Errorf("invalid retrieval.topK %d: must be positive", r.TopK))
	}
	if r.Dimensions < 0 {
		errs = append(errs, fmt.Errorf("invalid retrieval.dimensions %d: must be positive", r.Dimensions))
	}
	return errs
}

func validateImport(i *latest.ImportConfig) []error {
	var errs []error
	if i.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("invalid import.batchSize %d: must be positive", i.BatchSize))
	}
	if i.Workers < 0 {
		errs = append(errs, fmt.Errorf("invalid import.workers %d: must be positive", i.Workers))
	}
	if i.Encoding != "" && !util.StrSliceContains(validEncodings, i.Encoding) {
		errs = append(errs, fmt.Errorf("invalid import.encoding %q: must be one of %v", i.Encoding, validEncodings))
	}
	return errs
}

func validateProfiles(profiles []latest.Profile) []error {
	var errs []error
	seen := map[string]bool{}
	for _, profile := range profiles {
		if profile.Name == "" {
			errs = append(errs, fmt.Errorf("found a profile without a name"))
			continue
		}
		if seen[profile.Name] {
			errs = append(errs, fmt.Errorf("found duplicate profile name %q", profile.Name))
		}
		seen[profile.Name] = true
	}
	return errs
}
