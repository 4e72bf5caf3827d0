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

import (
	"testing"

	"github.com/quantbench/quantbench/pkg/quantbench/config"
	"github.com/quantbench/quantbench/testutil"
)

const existingConfig = `global:
  collect-metrics: true
databases:
  - database: postgres://localhost:5432/quant
    engine-url: http://localhost:8001
`

func setupConfig(t *testutil.T, contents string) {
	cfg := t.NewTempDir().Write("config", contents)
	t.Override(&configFile, cfg.Path("config"))
	t.Override(&database, "")
	t.Override(&global, false)
	t.Override(&showAll, false)
}

func TestSetConfigValue(t *testing.T) {
	tests := []struct {
		description string
		database    string
		global      bool
		key         string
		value       string
		shouldErr   bool
		check       func(t *testutil.T, cfg *config.GlobalConfig)
	}{
		{
			description: "set engine-url for an existing database",
			database:    "postgres://localhost:5432/quant",
			key:         "engine-url",
			value:       "http://engine:8001",
			check: func(t *testutil.T, cfg *config.GlobalConfig) {
				t.CheckDeepEqual("http://engine:8001", cfg.DatabaseConfigs[0].EngineURL)
			},
		},
		{
			description: "set for an unknown database appends a context",
			database:    "postgres://other:5432/quant",
			key:         "tick-table",
			value:       "futures_tick_data",
			check: func(t *testutil.T, cfg *config.GlobalConfig) {
				t.CheckDeepEqual(2, len(cfg.DatabaseConfigs))
				t.CheckDeepEqual("futures_tick_data", cfg.DatabaseConfigs[1].TickTable)
			},
		},
		{
			description: "set a global boolean",
			global:      true,
			key:         "collect-metrics",
			value:       "false",
			check: func(t *testutil.T, cfg *config.GlobalConfig) {
				t.CheckFalse(*cfg.Global.CollectMetrics)
			},
		},
		{
			description: "unknown key fails",
			global:      true,
			key:         "cluster",
			value:       "x",
			shouldErr:   true,
		},
		{
			description: "bad boolean fails",
			global:      true,
			key:         "collect-metrics",
			value:       "yep",
			shouldErr:   true,
		},
	}
	for _, test := range tests {
		testutil.Run(t, test.description, func(t *testutil.T) {
			setupConfig(t, existingConfig)
			t.Override(&database, test.database)
			t.Override(&global, test.global)

			err := setConfigValue(test.key, test.value)

			t.CheckError(test.shouldErr, err)
			if test.check != nil {
				cfg, cfgErr := config.ReadConfigFileNoCache(configFile)
				t.CheckNoError(cfgErr)
				test.check(t, cfg)
			}
		})
	}
}

func TestUnsetConfigValue(t *testing.T) {
	testutil.Run(t, "unset clears the value", func(t *testutil.T) {
		setupConfig(t, existingConfig)
		t.Override(&database, "postgres://localhost:5432/quant")

		t.CheckNoError(setConfigValue("engine-url", ""))

		cfg, err := config.ReadConfigFileNoCache(configFile)
		t.CheckNoError(err)
		t.CheckDeepEqual("", cfg.DatabaseConfigs[0].EngineURL)
	})
}
