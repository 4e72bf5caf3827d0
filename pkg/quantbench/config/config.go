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

package config

// GlobalConfig is the top level struct of the global config stored in
// ~/.quantbench/config. It holds per-user defaults that apply across
// projects.
type GlobalConfig struct {
	Global          *ContextConfig   `yaml:"global,omitempty"`
	DatabaseConfigs []*ContextConfig `yaml:"databases,omitempty"`
}

// ContextConfig holds the user defaults for a single database context.
// The `Database` pattern is matched against the resolved Postgres URI, so
// different desks can carry different engine endpoints or collections.
type ContextConfig struct {
	// Database matches the Postgres URI this context applies to. Supports
	// regex matching.
	Database string `yaml:"database,omitempty"`

	// EngineURL is the user-level default backtest engine endpoint.
	EngineURL string `yaml:"engine-url,omitempty"`

	// Collection is the user-level default knowledge base collection.
	Collection string `yaml:"collection,omitempty"`

	// TickTable is the user-level default tick data table.
	TickTable string `yaml:"tick-table,omitempty"`

	// CollectMetrics reports anonymized usage metrics when set.
	CollectMetrics *bool `yaml:"collect-metrics,omitempty"`
}
