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

// Options are set by command line arguments and are not part of the
// project configuration file itself.
type Options struct {
	// ConfigurationFile is the path to the quantbench.yaml project config.
	ConfigurationFile string

	// GlobalConfig overrides the path of the user-level config file.
	GlobalConfig string

	// EnvFile is an optional dotenv file loaded before anything else.
	EnvFile string

	// Command is the quantbench command that is being run, used for
	// profile auto-activation.
	Command string

	// Profiles to activate, in addition to auto-activated ones. A profile
	// prefixed with `-` is explicitly disabled.
	Profiles []string

	// ProfileAutoActivation disables profile activation rules when false.
	ProfileAutoActivation bool

	// Address to bind the service on. Overrides the project config.
	Address string

	// Port to bind the service on. Overrides the project config.
	Port IntOrUndefined

	// EngineURL points the gateway at a backtest engine. Overrides both
	// the project config and the user-level config.
	EngineURL StringOrUndefined

	// DBURI overrides the Postgres connection string.
	DBURI StringOrUndefined

	// NoDatabase runs the gateway without Postgres, keeping knowledge and
	// transcripts in memory.
	NoDatabase bool

	// StartCash is the initial cash for a one-off backtest run.
	StartCash float64

	// StrategyFile is the strategy document for a one-off backtest run.
	StrategyFile string

	// Source is the tick data location to import, a directory or a GCS
	// `gs://` URL.
	Source string

	// Watch keeps the importer running and picks up new files.
	Watch bool

	// WatchPollInterval is the watch polling interval in milliseconds.
	WatchPollInterval int

	// Workers caps the number of concurrent import workers. Zero picks a
	// sensible default.
	Workers int

	// BatchSize overrides the number of files committed per transaction.
	BatchSize int

	// EventLogFile saves the event stream of this run to a file.
	EventLogFile string

	// Muted silences the per-request log lines, keeping only warnings.
	Muted bool

	// ForceColors forces color output even on non-terminal writers.
	ForceColors bool

	// DefaultColor is the ANSI color code used for output lines.
	DefaultColor int

	// Timestamps adds timestamps to log lines.
	Timestamps bool
}
