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
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/quantbench/quantbench/pkg/quantbench/config"
	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	qErrors "github.com/quantbench/quantbench/pkg/quantbench/errors"
	"github.com/quantbench/quantbench/pkg/quantbench/instrumentation"
	"github.com/quantbench/quantbench/pkg/quantbench/output"
	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
	"github.com/quantbench/quantbench/pkg/quantbench/version"
)

var (
	opts config.Options
	v    string
)

// NewQuantbenchCommand builds the quantbench command tree.
func NewQuantbenchCommand(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "quantbench",
		Short:         "A workbench for LLM-assisted futures strategy research: chat gateway, backtest engine and tick data importer.",
		SilenceErrors: true,
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.Root().SilenceUsage = true
		opts.Command = cmd.Use

		if err := SetUpLogs(errOut, v, opts.Timestamps); err != nil {
			return err
		}
		if err := loadEnvFile(); err != nil {
			return err
		}

		instrumentation.SetCommand(cmd.Use)
		if _, _, err := instrumentation.InitTraceFromEnvVar(); err != nil {
			log.Entry(cmd.Context()).Debugf("error initializing tracing: %v", err)
		}
		qErrors.SetOptions(opts)

		// Record which flags were set, not their values.
		cmd.Flags().Visit(func(f *flag.Flag) {
			instrumentation.AddFlag(f)
		})

		log.Entry(cmd.Context()).Infof("quantbench %+v", version.Get())
		return nil
	}

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if instrumentation.ShouldDisplayMetricsPrompt(opts.GlobalConfig) {
			if err := instrumentation.DisplayMetricsPrompt(opts.GlobalConfig, output.GetUnderlyingWriter(out)); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "could not display metrics prompt: %v\n", err)
			}
		}
	}

	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.AddCommand(NewCmdGateway(out))
	rootCmd.AddCommand(NewCmdEngine(out))
	rootCmd.AddCommand(NewCmdImport(out))
	rootCmd.AddCommand(NewCmdBacktest(out))
	rootCmd.AddCommand(NewCmdInit(out))
	rootCmd.AddCommand(NewCmdConfig(out))
	rootCmd.AddCommand(NewCmdVersion(out))
	rootCmd.AddCommand(NewCmdCompletion(out))

	rootCmd.PersistentFlags().StringVarP(&v, "verbosity", "v", constants.DefaultLogLevel.String(), "Log level (debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVarP(&opts.ConfigurationFile, "filename", "f", "", fmt.Sprintf("Path to the project config (default %s)", constants.DefaultConfigFile))
	rootCmd.PersistentFlags().StringArrayVarP(&opts.Profiles, "profile", "p", nil, "Activate profiles by name (prefix with `-` to disable a profile)")
	rootCmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "Load environment variables from this dotenv file (default .env, when present)")
	rootCmd.PersistentFlags().BoolVar(&opts.Timestamps, "timestamps", false, "Print timestamps in logs")
	rootCmd.PersistentFlags().StringVarP(&opts.GlobalConfig, "config", "c", "", "File for global configurations (defaults to $HOME/.quantbench/config)")

	opts.ProfileAutoActivation = true
	return rootCmd
}

// SetUpLogs sets the logrus output and level from the --verbosity flag.
func SetUpLogs(stdErr io.Writer, level string, timestamps bool) error {
	logrus.SetOutput(stdErr)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	logrus.SetLevel(lvl)

	formatter := &logrus.TextFormatter{}
	if timestamps {
		formatter.FullTimestamp = true
		formatter.TimestampFormat = "2006-01-02 15:04:05"
	}
	logrus.SetFormatter(formatter)
	return nil
}

// loadEnvFile loads DB_URI, DEEPSEEK_API_KEY and friends from a dotenv file.
// A missing default .env is fine; a missing explicit --env-file is an error.
func loadEnvFile() error {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return fmt.Errorf("loading env file %q: %w", opts.EnvFile, err)
		}
		return nil
	}
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load(".env")
	}
	return nil
}
