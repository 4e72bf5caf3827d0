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

package agent

import (
	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
	"github.com/quantbench/quantbench/pkg/quantbench/util"
)

// defaultSystemPrompt spells out the strategy document contract so the model
// emits something the engine's schema accepts.
const defaultSystemPrompt = `You are a quantitative trading assistant for futures markets.

When the user asks you to evaluate a trading idea, express it as a strategy
document and call the execute_backtest tool. A strategy document is a JSON
object with:
- "indicators": a list of {"id", "type": "sma"|"ema"|"rsi", "source": "open"|"high"|"low"|"close"|"volume", "period"}
- "rules": a list of {"when": <condition>, "do": {"action": "buy"|"sell"|"close", "size"}}
- conditions are {"crossover"|"crossunder"|"gt"|"lt"|"ge"|"le": [a, b]} or
  {"and"|"or": [<condition>, ...]} or {"not": <condition>}, where operands name
  an indicator id, a price field, a param, or are numeric literals.

Report the backtest numbers (initial cash, final value, PnL) back to the user
and answer in the user's language.`

// systemPrompt renders the configured prompt template against the process
// environment, falling back to the built-in prompt.
func systemPrompt(cfg latest.AgentConfig) (string, error) {
	if cfg.SystemPrompt == "" {
		return defaultSystemPrompt, nil
	}
	return util.ExpandEnvTemplate(cfg.SystemPrompt, nil)
}
