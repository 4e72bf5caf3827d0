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

package cmd

import (
	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	flag "github.com/spf13/pflag"
)

// Command flags live in per-concern flag sets. Each flag carries a `cmds`
// annotation naming the commands it is defined on; AddFlags copies the
// matching ones onto a command's flag set.
var AllFlags = []*flag.FlagSet{
	serviceFlagSet(),
	databaseFlagSet(),
	gatewayFlagSet(),
	importFlagSet(),
	backtestFlagSet(),
}

func serviceFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("service", flag.ContinueOnError)
	fs.StringVar(&opts.Address, "address", "", "Interface to bind on (overrides the project config; default 0.0.0.0)")
	fs.Var(&opts.Port, "port", "Port to listen on (overrides the project config)")
	fs.StringVar(&opts.EventLogFile, "event-log-file", "", "Save the event stream of this run to a file")
	annotate(fs, "gateway", "engine")
	return fs
}

func databaseFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("database", flag.ContinueOnError)
	fs.Var(&opts.DBURI, "db-uri", "Postgres connection string (beats the DB_URI environment variable and the project config)")
	annotate(fs, "gateway", "engine", "import")
	return fs
}

func gatewayFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	fs.Var(&opts.EngineURL, "engine-url", "Backtest engine endpoint for the agent's tool calls (beats project and global config)")
	fs.BoolVar(&opts.NoDatabase, "no-db", false, "Run without Postgres, keeping knowledge and chat transcripts in memory (lost on restart)")
	annotate(fs, "gateway")
	return fs
}

func importFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.StringVar(&opts.Source, "source", "", "Directory or gs:// location of the tick archives (overrides the project config)")
	fs.BoolVar(&opts.Watch, "watch", false, "Keep running and import new archives as they land")
	fs.IntVar(&opts.WatchPollInterval, "watch-poll-interval", 1000, "Watch polling interval in milliseconds")
	fs.IntVar(&opts.Workers, "workers", 0, "Concurrent import batches (defaults to the number of CPUs)")
	fs.IntVar(&opts.BatchSize, "batch-size", 0, "CSV files committed per transaction (default 100)")
	annotate(fs, "import")
	return fs
}

func backtestFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("backtest", flag.ContinueOnError)
	fs.Float64Var(&opts.StartCash, "cash", constants.DefaultStartCash, "Starting cash for the broker")
	fs.StringVar(&feedSpec, "feed", "", "Candle feed, `csv:PATH` for a CSV file (default: the synthetic feed)")
	annotate(fs, "backtest")
	return fs
}

func annotate(fs *flag.FlagSet, cmds ...string) {
	fs.VisitAll(func(f *flag.Flag) {
		if f.Annotations == nil {
			f.Annotations = map[string][]string{}
		}
		f.Annotations["cmds"] = cmds
	})
}

// AddFlags adds to the command the flags that are annotated with its name.
func AddFlags(fs *flag.FlagSet, cmdName string) {
	for _, set := range AllFlags {
		set.VisitAll(func(f *flag.Flag) {
			for _, cmd := range f.Annotations["cmds"] {
				if cmd == cmdName || cmd == "all" {
					fs.AddFlag(f)
					return
				}
			}
		})
	}
}
