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

	"github.com/quantbench/quantbench/pkg/quantbench/config"
	"github.com/quantbench/quantbench/pkg/quantbench/constants"
)

var (
	// for testing
	getConfigForCurrentDatabase = config.GetConfigForCurrentDatabase
)

// Database problems are errors talking to Postgres.
var knownDBProblems = []problem{
	{
		regexp:  re("(?i)(connection refused|no such host|connection reset by peer|the database system is starting up)"),
		errCode: DBConnectionRefused,
		description: func(error) string {
			return "Could not connect to the database"
		},
		suggestion: suggestDBConnectionFailedAction,
	},
	{
		regexp:  re("pq: password authentication failed"),
		errCode: DBAuthFailed,
		description: func(error) string {
			return "The database rejected the credentials"
		},
		suggestion: func(config.Options) []*Suggestion {
			return []*Suggestion{{
				SuggestionCode: CheckDBCredentials,
				Action:         "Check the user and password in your connection string",
			}}
		},
	},
	{
		regexp:  re(`pq: type "vector" does not exist`),
		errCode: DBVectorMissing,
		description: func(error) string {
			return "The pgvector extension is not installed"
		},
		suggestion: func(config.Options) []*Suggestion {
			return []*Suggestion{{
				SuggestionCode: InstallPGVector,
				Action:         "Run `CREATE EXTENSION vector` on the database as a superuser",
			}}
		},
	},
	{
		regexp:  re(`pq: relation "(.*)" does not exist`),
		errCode: DBRelationMissing,
		description: func(err error) string {
			matchExp := re(`pq: relation "(.*)" does not exist`)
			if match := matchExp.FindStringSubmatch(err.Error()); len(match) >= 2 {
				return fmt.Sprintf("Table %q does not exist", match[1])
			}
			return "A required table does not exist"
		},
		suggestion: func(config.Options) []*Suggestion {
			return []*Suggestion{{
				SuggestionCode: CreateTables,
				Action:         "Start the gateway once to create its tables, or run `quantbench import` to create the tick table",
			}}
		},
	},
}

func suggestDBConnectionFailedAction(opts config.Options) []*Suggestion {
	if dbURI := opts.DBURI.Value(); dbURI != nil {
		return []*Suggestion{{
			SuggestionCode: CheckDBURIFlag,
			Action:         "Check your `--db-uri` value",
		}}
	}

	// check if a database is configured in the user-level config
	if cfg, err := getConfigForCurrentDatabase(opts.GlobalConfig); err == nil && cfg.Database != "" {
		return []*Suggestion{{
			SuggestionCode: CheckDBURIGlobalConfig,
			Action:         "Check the database setting in your quantbench config",
		}}
	}

	return []*Suggestion{{
		SuggestionCode: SetDBURIEnv,
		Action:         fmt.Sprintf("Set the %s environment variable or try running with `--db-uri`", constants.DBURIEnvironmentVariable),
	}}
}
