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
	"fmt"
	"testing"

	"github.com/quantbench/quantbench/pkg/quantbench/config"
	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	"github.com/quantbench/quantbench/pkg/quantbench/util"
	"github.com/quantbench/quantbench/testutil"
)

func TestShowAIError(t *testing.T) {
	tests := []struct {
		description string
		opts        config.Options
		context     *config.ContextConfig
		err         error
		expected    string
	}{
		{
			description: "rejected api key",
			context:     &config.ContextConfig{},
			err:         fmt.Errorf("chat completion: Incorrect API key provided"),
			expected:    "Chat failed. The language model rejected the API key. Set the DEEPSEEK_API_KEY environment variable to a valid key.",
		},
		{
			description: "rate limited",
			context:     &config.ContextConfig{},
			err:         fmt.Errorf("chat completion: status code 429: please slow down"),
			expected:    "Chat failed. The language model is rate limiting requests. Wait a moment and send the message again.",
		},
		{
			description: "missing pgvector extension",
			context:     &config.ContextConfig{},
			err:         fmt.Errorf(`creating collection: pq: type "vector" does not exist`),
			expected:    "The pgvector extension is not installed. Run `CREATE EXTENSION vector` on the database as a superuser.",
		},
		{
			description: "missing relation names the table",
			context:     &config.ContextConfig{},
			err:         fmt.Errorf(`querying ticks: pq: relation "futures_tick_data" does not exist`),
			expected:    "Table \"futures_tick_data\" does not exist. Start the gateway once to create its tables, or run `quantbench import` to create the tick table.",
		},
		{
			description: "corrupt archive",
			context:     &config.ContextConfig{},
			err:         fmt.Errorf("opening 2023.zip: zip: not a valid zip file"),
			expected:    "Import failed. An archive is corrupt. Re-download the archive named in the log and run the import again.",
		},
		{
			description: "cancelled chat is returned unchanged",
			context:     &config.ContextConfig{},
			err:         fmt.Errorf("reading response: context canceled"),
			expected:    "reading response: context canceled",
		},
		{
			description: "unknown error is returned unchanged",
			context:     &config.ContextConfig{},
			err:         fmt.Errorf("something went wrong"),
			expected:    "something went wrong",
		},
	}
	for _, test := range tests {
		testutil.Run(t, test.description, func(t *testutil.T) {
			t.Override(&quantbenchOpts, test.opts)
			t.Override(&getConfigForCurrentDatabase, func(string) (*config.ContextConfig, error) { return test.context, nil })

			actual := ShowAIError(test.err)

			t.CheckDeepEqual(test.expected, actual.Error())
		})
	}
}

func TestNewActionableErr(t *testing.T) {
	tests := []struct {
		description string
		opts        config.Options
		context     *config.ContextConfig
		phase       constants.Phase
		err         error
		expected    *ActionableErr
	}{
		{
			description: "db connection refused without any config",
			context:     &config.ContextConfig{},
			phase:       constants.DB,
			err:         fmt.Errorf("dial tcp 127.0.0.1:5432: connect: connection refused"),
			expected: &ActionableErr{
				ErrCode: DBConnectionRefused,
				Message: "dial tcp 127.0.0.1:5432: connect: connection refused",
				Suggestions: []*Suggestion{{
					SuggestionCode: SetDBURIEnv,
					Action:         "Set the DB_URI environment variable or try running with `--db-uri`",
				}},
			},
		},
		{
			description: "db connection refused with --db-uri flag",
			opts:        config.Options{DBURI: config.NewStringOrUndefined(util.StringPtr("postgres://custom/db"))},
			context:     &config.ContextConfig{},
			phase:       constants.DB,
			err:         fmt.Errorf("dial tcp 127.0.0.1:5432: connect: connection refused"),
			expected: &ActionableErr{
				ErrCode: DBConnectionRefused,
				Message: "dial tcp 127.0.0.1:5432: connect: connection refused",
				Suggestions: []*Suggestion{{
					SuggestionCode: CheckDBURIFlag,
					Action:         "Check your `--db-uri` value",
				}},
			},
		},
		{
			description: "db connection refused with user-level database config",
			context:     &config.ContextConfig{Database: "postgres://desk/db"},
			phase:       constants.DB,
			err:         fmt.Errorf("dial tcp 127.0.0.1:5432: connect: connection refused"),
			expected: &ActionableErr{
				ErrCode: DBConnectionRefused,
				Message: "dial tcp 127.0.0.1:5432: connect: connection refused",
				Suggestions: []*Suggestion{{
					SuggestionCode: CheckDBURIGlobalConfig,
					Action:         "Check the database setting in your quantbench config",
				}},
			},
		},
		{
			description: "engine unreachable without any config",
			context:     &config.ContextConfig{},
			phase:       constants.Tool,
			err:         fmt.Errorf("Post \"http://localhost:8001/run_backtest\": dial tcp 127.0.0.1:8001: connect: connection refused"),
			expected: &ActionableErr{
				ErrCode: EngineUnreachable,
				Message: "Post \"http://localhost:8001/run_backtest\": dial tcp 127.0.0.1:8001: connect: connection refused",
				Suggestions: []*Suggestion{{
					SuggestionCode: StartEngine,
					Action:         "Start the engine with `quantbench engine`",
				}},
			},
		},
		{
			description: "engine timeout",
			context:     &config.ContextConfig{},
			phase:       constants.Backtest,
			err:         fmt.Errorf("running backtest: context deadline exceeded"),
			expected: &ActionableErr{
				ErrCode: EngineTimeout,
				Message: "running backtest: context deadline exceeded",
				Suggestions: []*Suggestion{{
					SuggestionCode: CheckEngineLogs,
					Action:         "Check the engine logs; long backtests can exceed the request timeout",
				}},
			},
		},
		{
			description: "unknown chat error",
			context:     &config.ContextConfig{},
			phase:       constants.Chat,
			err:         fmt.Errorf("something went wrong"),
			expected: &ActionableErr{
				ErrCode: ChatUnknown,
				Message: "something went wrong",
			},
		},
		{
			description: "unknown phase",
			context:     &config.ContextConfig{},
			phase:       constants.Phase("Bogus"),
			err:         fmt.Errorf("something went wrong"),
			expected: &ActionableErr{
				ErrCode: UnknownError,
				Message: "something went wrong",
			},
		},
	}
	for _, test := range tests {
		testutil.Run(t, test.description, func(t *testutil.T) {
			t.Override(&quantbenchOpts, test.opts)
			t.Override(&getConfigForCurrentDatabase, func(string) (*config.ContextConfig, error) { return test.context, nil })

			actual := NewActionableErr(test.phase, test.err)

			t.CheckDeepEqual(test.expected, actual)
		})
	}
}
