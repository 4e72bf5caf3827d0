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

package schema

import (
	"testing"

	cfg "github.com/quantbench/quantbench/pkg/quantbench/config"
	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
	"github.com/quantbench/quantbench/pkg/quantbench/util"
	"github.com/quantbench/quantbench/testutil"
)

func TestApplyProfiles(t *testing.T) {
	tests := []struct {
		description string
		config      *latest.QuantbenchConfig
		profile     string
		expected    *latest.QuantbenchConfig
		shouldErr   bool
	}{
		{
			description: "unknown profile",
			config:      config(),
			profile:     "profile",
			shouldErr:   true,
		},
		{
			description: "profile overrides a field",
			profile:     "paper",
			config: config(
				withEngine(latest.EngineConfig{Address: "127.0.0.1", Port: 8001}),
				withProfiles(latest.Profile{
					Name: "paper",
					Pipeline: latest.Pipeline{
						Engine: latest.EngineConfig{Port: 9001},
					},
				}),
			),
			expected: config(
				withEngine(latest.EngineConfig{Address: "127.0.0.1", Port: 9001}),
			),
		},
		{
			description: "config fills fields the profile leaves unset",
			profile:     "cheap-model",
			config: config(
				withAgent(latest.AgentConfig{Model: "deepseek-chat", Temperature: util.Float64Ptr(0.7)}),
				withProfiles(latest.Profile{
					Name: "cheap-model",
					Pipeline: latest.Pipeline{
						Agent: latest.AgentConfig{Model: "deepseek-coder"},
					},
				}),
			),
			expected: config(
				withAgent(latest.AgentConfig{Model: "deepseek-coder", Temperature: util.Float64Ptr(0.7)}),
			),
		},
		{
			description: "pointer fields set by the profile win",
			profile:     "small-account",
			config: config(
				withEngine(latest.EngineConfig{Port: 8001, StartCash: util.Float64Ptr(100000)}),
				withProfiles(latest.Profile{
					Name: "small-account",
					Pipeline: latest.Pipeline{
						Engine: latest.EngineConfig{StartCash: util.Float64Ptr(5000)},
					},
				}),
			),
			expected: config(
				withEngine(latest.EngineConfig{Port: 8001, StartCash: util.Float64Ptr(5000)}),
			),
		},
		{
			description: "untouched sections survive",
			profile:     "paper",
			config: config(
				withGateway(latest.GatewayConfig{Address: "0.0.0.0", Port: 8000}),
				withRetrieval(latest.RetrievalConfig{Collection: "knowledge_base", TopK: 1}),
				withProfiles(latest.Profile{
					Name: "paper",
					Pipeline: latest.Pipeline{
						Database: latest.DatabaseConfig{URI: "postgres://localhost:5432/paper"},
					},
				}),
			),
			expected: config(
				withGateway(latest.GatewayConfig{Address: "0.0.0.0", Port: 8000}),
				withRetrieval(latest.RetrievalConfig{Collection: "knowledge_base", TopK: 1}),
				withDatabase(latest.DatabaseConfig{URI: "postgres://localhost:5432/paper"}),
			),
		},
	}
	for _, test := range tests {
		testutil.Run(t, test.description, func(t *testutil.T) {
			applied, err := ApplyProfiles(test.config, cfg.Options{
				Profiles: []string{test.profile},
			})

			if test.shouldErr {
				t.CheckError(test.shouldErr, err)
			} else {
				t.CheckNoError(err)
				t.CheckDeepEqual([]string{test.profile}, applied)
				t.CheckDeepEqual(test.expected, test.config)
			}
		})
	}
}

func TestActivatedProfiles(t *testing.T) {
	tests := []struct {
		description string
		profiles    []latest.Profile
		opts        cfg.Options
		envs        map[string]string
		expected    []string
		shouldErr   bool
	}{
		{
			description: "Selected on the command line",
			opts: cfg.Options{
				ProfileAutoActivation: true,
				Command:               "gateway",
				Profiles:              []string{"activated", "also-activated"},
			},
			profiles: []latest.Profile{
				{Name: "activated"},
				{Name: "not-activated"},
				{Name: "also-activated"},
			},
			expected: []string{"activated", "also-activated"},
		},
		{
			description: "Auto-activated by command",
			opts: cfg.Options{
				ProfileAutoActivation: true,
				Command:               "engine",
			},
			profiles: []latest.Profile{
				{Name: "activated", Activation: []latest.Activation{{Command: "engine"}}},
				{Name: "not-activated", Activation: []latest.Activation{{Command: "gateway"}}},
			},
			expected: []string{"activated"},
		},
		{
			description: "Auto-activated by env variable",
			envs:        map[string]string{"KEY": "VALUE"},
			opts: cfg.Options{
				ProfileAutoActivation: true,
			},
			profiles: []latest.Profile{
				{Name: "activated", Activation: []latest.Activation{{Env: "KEY=VALUE"}}},
				{Name: "not-activated", Activation: []latest.Activation{{Env: "KEY=OTHER"}}},
			},
			expected: []string{"activated"},
		},
		{
			description: "Auto-activated by env variable regex",
			envs:        map[string]string{"KEY": "VALUE"},
			opts: cfg.Options{
				ProfileAutoActivation: true,
			},
			profiles: []latest.Profile{
				{Name: "activated", Activation: []latest.Activation{{Env: "KEY=V.*E"}}},
				{Name: "not-activated", Activation: []latest.Activation{{Env: "KEY=other.*"}}},
			},
			expected: []string{"activated"},
		},
		{
			description: "Empty env pattern matches unset variable",
			opts: cfg.Options{
				ProfileAutoActivation: true,
			},
			profiles: []latest.Profile{
				{Name: "activated", Activation: []latest.Activation{{Env: "UNSET_KEY="}}},
			},
			expected: []string{"activated"},
		},
		{
			description: "Invalid env variable format",
			opts: cfg.Options{
				ProfileAutoActivation: true,
			},
			profiles: []latest.Profile{
				{Name: "activated", Activation: []latest.Activation{{Env: "KEY:VALUE"}}},
			},
			shouldErr: true,
		},
		{
			description: "Auto-activated by command and env variable",
			envs:        map[string]string{"KEY": "VALUE"},
			opts: cfg.Options{
				ProfileAutoActivation: true,
				Command:               "import",
			},
			profiles: []latest.Profile{
				{Name: "activated", Activation: []latest.Activation{{Env: "KEY=VALUE", Command: "import"}}},
				{Name: "not-activated", Activation: []latest.Activation{{Env: "KEY=VALUE", Command: "gateway"}}},
			},
			expected: []string{"activated"},
		},
		{
			description: "Any activation criteria triggers the profile",
			opts: cfg.Options{
				ProfileAutoActivation: true,
				Command:               "gateway",
			},
			profiles: []latest.Profile{
				{Name: "activated", Activation: []latest.Activation{{Command: "engine"}, {Command: "gateway"}}},
			},
			expected: []string{"activated"},
		},
		{
			description: "Disabled on the command line",
			opts: cfg.Options{
				ProfileAutoActivation: true,
				Command:               "gateway",
				Profiles:              []string{"-activated"},
			},
			profiles: []latest.Profile{
				{Name: "activated", Activation: []latest.Activation{{Command: "gateway"}}},
				{Name: "also-activated", Activation: []latest.Activation{{Command: "gateway"}}},
			},
			expected: []string{"also-activated"},
		},
		{
			description: "Auto-activation disabled",
			opts: cfg.Options{
				ProfileAutoActivation: false,
				Command:               "gateway",
				Profiles:              []string{"explicit"},
			},
			profiles: []latest.Profile{
				{Name: "explicit"},
				{Name: "not-activated", Activation: []latest.Activation{{Command: "gateway"}}},
			},
			expected: []string{"explicit"},
		},
	}
	for _, test := range tests {
		testutil.Run(t, test.description, func(t *testutil.T) {
			if test.envs != nil {
				t.SetEnvs(test.envs)
			}

			activated, err := activatedProfiles(test.profiles, test.opts)

			t.CheckErrorAndDeepEqual(test.shouldErr, err, test.expected, activated)
		})
	}
}

func config(ops ...func(*latest.QuantbenchConfig)) *latest.QuantbenchConfig {
	cfg := &latest.QuantbenchConfig{APIVersion: latest.Version, Kind: "Config"}
	for _, op := range ops {
		op(cfg)
	}
	return cfg
}

func withGateway(g latest.GatewayConfig) func(*latest.QuantbenchConfig) {
	return func(cfg *latest.QuantbenchConfig) { cfg.Gateway = g }
}

func withAgent(a latest.AgentConfig) func(*latest.QuantbenchConfig) {
	return func(cfg *latest.QuantbenchConfig) { cfg.Agent = a }
}

func withRetrieval(r latest.RetrievalConfig) func(*latest.QuantbenchConfig) {
	return func(cfg *latest.QuantbenchConfig) { cfg.Retrieval = r }
}

func withEngine(e latest.EngineConfig) func(*latest.QuantbenchConfig) {
	return func(cfg *latest.QuantbenchConfig) { cfg.Engine = e }
}

func withDatabase(d latest.DatabaseConfig) func(*latest.QuantbenchConfig) {
	return func(cfg *latest.QuantbenchConfig) { cfg.Database = d }
}

func withProfiles(profiles ...latest.Profile) func(*latest.QuantbenchConfig) {
	return func(cfg *latest.QuantbenchConfig) { cfg.Profiles = profiles }
}
