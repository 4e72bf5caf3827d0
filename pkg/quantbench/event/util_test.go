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

package event

import (
	"testing"

	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
	"github.com/quantbench/quantbench/testutil"
)

func TestInitializeMetadata(t *testing.T) {
	tests := []struct {
		description string
		pipeline    latest.Pipeline
		expected    *Metadata
	}{
		{
			description: "empty pipeline",
			pipeline:    latest.Pipeline{},
			expected:    &Metadata{},
		},
		{
			description: "resolved pipeline",
			pipeline: latest.Pipeline{
				Gateway:   latest.GatewayConfig{EngineURL: "http://localhost:8001"},
				Agent:     latest.AgentConfig{Model: "deepseek-chat"},
				Retrieval: latest.RetrievalConfig{Collection: "knowledge_base"},
				Import:    latest.ImportConfig{Table: "futures_tick_data"},
			},
			expected: &Metadata{
				Model:      "deepseek-chat",
				Collection: "knowledge_base",
				TickTable:  "futures_tick_data",
				EngineURL:  "http://localhost:8001",
			},
		},
	}
	for _, test := range tests {
		testutil.Run(t, test.description, func(t *testutil.T) {
			t.CheckDeepEqual(test.expected, initializeMetadata(test.pipeline))
		})
	}
}
