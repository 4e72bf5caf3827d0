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

package instrumentation

import (
	"io"

	"github.com/quantbench/quantbench/pkg/quantbench/config"
	"github.com/quantbench/quantbench/pkg/quantbench/output"
)

const Prompt = `To help improve the quality of this product, we collect anonymized usage data. You may choose to opt out of this collection by running the following command:
	quantbench config set --global collect-metrics false`

var (
	// for testing
	getConfig    = config.GetConfigForCurrentDatabase
	updateConfig = config.UpdateGlobalCollectMetrics
	isStdOut     = output.IsStdout
	setStatus    = setMetricsStatus
)

// ShouldDisplayMetricsPrompt returns true when the user has not yet chosen
// whether to share anonymized usage metrics.
func ShouldDisplayMetricsPrompt(configfile string) bool {
	cfg, err := getConfig(configfile)
	if err != nil {
		return false
	}
	if cfg == nil || cfg.CollectMetrics == nil {
		return true
	}
	setStatus(*cfg.CollectMetrics)
	return false
}

// DisplayMetricsPrompt records the default collection choice and tells the
// user how to opt out.
func DisplayMetricsPrompt(configfile string, out io.Writer) error {
	if isStdOut(out) {
		output.Green.Fprintln(out, Prompt)
		return updateConfig(configfile, true)
	}
	return nil
}

func setMetricsStatus(collect bool) {
	shouldExportMetrics = shouldExportMetrics || collect
}
