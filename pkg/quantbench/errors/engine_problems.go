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

package errors

import (
	"github.com/quantbench/quantbench/pkg/quantbench/config"
)

// Engine problems are errors reaching or running the backtest engine.
var knownEngineProblems = []problem{
	{
		regexp:  re("(?i)(connection refused|no such host|EOF)"),
		errCode: EngineUnreachable,
		description: func(error) string {
			return "Could not reach the backtest engine"
		},
		suggestion: suggestEngineUnreachableAction,
	},
	{
		regexp:  re("(?i)(context deadline exceeded|Client.Timeout exceeded)"),
		errCode: EngineTimeout,
		description: func(error) string {
			return "The backtest engine did not answer in time"
		},
		suggestion: func(config.Options) []*Suggestion {
			return []*Suggestion{{
				SuggestionCode: CheckEngineLogs,
				Action:         "Check the engine logs; long backtests can exceed the request timeout",
			}}
		},
	},
	{
		regexp:  re("(?i)(invalid strategy|strategy document|unknown indicator|unknown rule)"),
		errCode: BacktestStrategyInvalid,
		description: func(error) string {
			return "The strategy document was rejected"
		},
		suggestion: func(config.Options) []*Suggestion {
			return []*Suggestion{{
				SuggestionCode: CheckStrategyDoc,
				Action:         "Check the strategy fields and indicator names against `quantbench backtest --help`",
			}}
		},
	},
	{
		regexp:  re("internal engine error"),
		errCode: BacktestUnknown,
		description: func(error) string {
			return "The backtest engine hit an internal error"
		},
		suggestion: reportIssueSuggestion,
	},
}

func suggestEngineUnreachableAction(opts config.Options) []*Suggestion {
	if engineURL := opts.EngineURL.Value(); engineURL != nil {
		return []*Suggestion{{
			SuggestionCode: CheckEngineURLFlag,
			Action:         "Check your `--engine-url` value",
		}}
	}

	if cfg, err := getConfigForCurrentDatabase(opts.GlobalConfig); err == nil && cfg.EngineURL != "" {
		return []*Suggestion{{
			SuggestionCode: CheckEngineURLGlobalConfig,
			Action:         "Check the engine-url setting in your quantbench config",
		}}
	}

	return []*Suggestion{{
		SuggestionCode: StartEngine,
		Action:         "Start the engine with `quantbench engine`",
	}}
}
