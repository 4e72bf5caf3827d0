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

package backtest

import (
	"testing"

	"github.com/quantbench/quantbench/testutil"
)

const smaCrossDoc = `{
	"name": "SmaCross",
	"params": {"fast": 5, "slow": 20},
	"indicators": [
		{"id": "fast_sma", "type": "sma", "source": "close", "period": 5},
		{"id": "slow_sma", "type": "sma", "source": "close", "period": 20}
	],
	"rules": [
		{"when": {"crossover": ["fast_sma", "slow_sma"]}, "do": {"action": "buy", "size": 1}},
		{"when": {"crossunder": ["fast_sma", "slow_sma"]}, "do": {"action": "close"}}
	],
	"log": true
}`

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		description string
		doc         string
		shouldErr   bool
		errContains string
	}{
		{
			description: "full document",
			doc:         smaCrossDoc,
		},
		{
			description: "minimal document",
			doc:         `{"rules": [{"when": {"gt": ["close", 0]}, "do": {"action": "buy"}}]}`,
		},
		{
			description: "combinators nest",
			doc: `{"rules": [{"when": {"and": [
				{"gt": ["close", 100]},
				{"not": {"or": [{"lt": ["volume", 10]}, {"ge": ["high", 200]}]}}
			]}, "do": {"action": "sell", "size": 2}}]}`,
		},
		{
			description: "not json",
			doc:         `strategy: nope`,
			shouldErr:   true,
			errContains: "parsing document",
		},
		{
			description: "missing rules",
			doc:         `{"name": "Empty"}`,
			shouldErr:   true,
			errContains: "invalid strategy document",
		},
		{
			description: "empty rules",
			doc:         `{"rules": []}`,
			shouldErr:   true,
			errContains: "invalid strategy document",
		},
		{
			description: "unknown indicator type",
			doc:         `{"indicators": [{"id": "w", "type": "wma", "period": 5}], "rules": [{"when": {"gt": ["w", 1]}, "do": {"action": "buy"}}]}`,
			shouldErr:   true,
			errContains: "invalid strategy document",
		},
		{
			description: "zero period",
			doc:         `{"indicators": [{"id": "s", "type": "sma", "period": 0}], "rules": [{"when": {"gt": ["s", 1]}, "do": {"action": "buy"}}]}`,
			shouldErr:   true,
			errContains: "invalid strategy document",
		},
		{
			description: "unknown top level field",
			doc:         `{"rules": [{"when": {"gt": ["close", 0]}, "do": {"action": "buy"}}], "leverage": 10}`,
			shouldErr:   true,
			errContains: "invalid strategy document",
		},
		{
			description: "condition with two comparisons",
			doc:         `{"rules": [{"when": {"gt": ["close", 0], "lt": ["close", 9]}, "do": {"action": "buy"}}]}`,
			shouldErr:   true,
			errContains: "invalid strategy document",
		},
		{
			description: "operand must be string or number",
			doc:         `{"rules": [{"when": {"gt": [{"field": "close"}, 0]}, "do": {"action": "buy"}}]}`,
			shouldErr:   true,
			errContains: "invalid strategy document",
		},
		{
			description: "zero size",
			doc:         `{"rules": [{"when": {"gt": ["close", 0]}, "do": {"action": "buy", "size": 0}}]}`,
			shouldErr:   true,
			errContains: "invalid strategy document",
		},
		{
			description: "unknown action",
			doc:         `{"rules": [{"when": {"gt": ["close", 0]}, "do": {"action": "hedge"}}]}`,
			shouldErr:   true,
			errContains: "invalid strategy document",
		},
	}
	for _, test := range tests {
		testutil.Run(t, test.description, func(t *testutil.T) {
			strategy, err := ParseStrategy([]byte(test.doc))

			t.CheckError(test.shouldErr, err)
			if test.errContains != "" {
				t.CheckErrorContains(test.errContains, err)
			}
			if !test.shouldErr {
				t.CheckNotNil(strategy)
			}
		})
	}
}

func TestParseStrategyDefaults(t *testing.T) {
	testutil.Run(t, "name and indicator source", func(t *testutil.T) {
		strategy, err := ParseStrategy([]byte(`{
			"indicators": [{"id": "s", "type": "sma", "period": 3}],
			"rules": [{"when": {"gt": ["s", 1]}, "do": {"action": "buy"}}]
		}`))

		t.CheckNoError(err)
		t.CheckDeepEqual(DefaultStrategyName, strategy.Name)
		t.CheckDeepEqual("close", strategy.Indicators[0].Source)
	})

	testutil.Run(t, "explicit name kept", func(t *testutil.T) {
		strategy, err := ParseStrategy([]byte(smaCrossDoc))

		t.CheckNoError(err)
		t.CheckDeepEqual("SmaCross", strategy.Name)
	})
}

func TestOperandRoundTrip(t *testing.T) {
	tests := []struct {
		description string
		json        string
		expected    Operand
	}{
		{
			description: "reference",
			json:        `"fast_sma"`,
			expected:    Operand{Ref: "fast_sma", IsRef: true},
		},
		{
			description: "literal",
			json:        `20500.5`,
			expected:    Operand{Literal: 20500.5},
		},
	}
	for _, test := range tests {
		testutil.Run(t, test.description, func(t *testutil.T) {
			var operand Operand
			t.CheckNoError(operand.UnmarshalJSON([]byte(test.json)))
			t.CheckDeepEqual(test.expected, operand)

			encoded, err := operand.MarshalJSON()
			t.CheckNoError(err)
			t.CheckDeepEqual(test.json, string(encoded))
		})
	}
}
