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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	"github.com/quantbench/quantbench/pkg/quantbench/engine"
	"github.com/quantbench/quantbench/pkg/quantbench/llm"
)

// Tool is a function the model can call during a chat turn. Exec's string is
// handed to the model verbatim; the error only feeds events and logs, so a
// failing tool must render its own failure into the string.
type Tool interface {
	Spec() llm.Tool
	Exec(ctx context.Context, arguments string) (string, error)
}

// BacktestToolName is the function name the model calls backtests by.
const BacktestToolName = "execute_backtest"

const backtestToolDescription = "Run a strategy backtest on the engine and " +
	"return initial cash, final value, PnL and the strategy's execution log."

// backtestToolParameters describes the tool arguments to the model. The
// strategy object itself is validated by the engine, not here.
const backtestToolParameters = `{
	"type": "object",
	"properties": {
		"strategy": {
			"type": "object",
			"description": "Strategy document with indicators (sma/ema/rsi) and when/do rules."
		},
		"start_cash": {
			"type": "number",
			"description": "Starting cash. Defaults to 100000."
		}
	},
	"required": ["strategy"]
}`

// BacktestRunner is the slice of the engine client the tool needs.
type BacktestRunner interface {
	Run(ctx context.Context, req engine.RunRequest) (*engine.RunResult, error)
}

// BacktestTool lets the model run strategy documents through the engine.
type BacktestTool struct {
	Runner BacktestRunner
}

func (t *BacktestTool) Spec() llm.Tool {
	return llm.Tool{
		Type: "function",
		Function: llm.FunctionDefinition{
			Name:        BacktestToolName,
			Description: backtestToolDescription,
			Parameters:  json.RawMessage(backtestToolParameters),
		},
	}
}

func (t *BacktestTool) Exec(ctx context.Context, arguments string) (string, error) {
	var args struct {
		Strategy  json.RawMessage `json:"strategy"`
		StartCash float64         `json:"start_cash"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		err = fmt.Errorf("invalid %s arguments: %w", BacktestToolName, err)
		return err.Error(), err
	}
	if args.StartCash <= 0 {
		args.StartCash = constants.DefaultStartCash
	}

	// Models occasionally double-encode the document as a JSON string.
	doc := string(args.Strategy)
	if strings.HasPrefix(doc, `"`) {
		var unquoted string
		if err := json.Unmarshal(args.Strategy, &unquoted); err == nil {
			doc = unquoted
		}
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DefaultEngineTimeoutSeconds*time.Second)
	defer cancel()

	result, err := t.Runner.Run(ctx, engine.RunRequest{Code: doc, StartCash: args.StartCash})
	if err != nil {
		var statusErr *engine.StatusError
		if errors.As(err, &statusErr) {
			return fmt.Sprintf("backtest service error: %s", statusErr.Body), err
		}
		return fmt.Sprintf("cannot reach backtest engine: %v", err), err
	}

	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("cannot render backtest result: %v", err), err
	}
	return string(b), nil
}
