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
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/quantbench/quantbench/pkg/quantbench/backtest"
	"github.com/quantbench/quantbench/pkg/quantbench/event"
	"github.com/quantbench/quantbench/pkg/quantbench/instrumentation"
	"github.com/quantbench/quantbench/pkg/quantbench/output"
	"github.com/quantbench/quantbench/pkg/quantbench/util"
)

var feedSpec string

// NewCmdBacktest describes the CLI command to run a strategy document
// locally, without the engine service.
func NewCmdBacktest(out io.Writer) *cobra.Command {
	return NewCmd(out, "backtest").
		WithDescription("Run a strategy document locally").
		WithLongDescription("Compile and run a declarative strategy document against a candle feed on this machine, printing the result the engine service would return.").
		WithCommonFlags().
		ExactArgs(1, runBacktest)
}

func runBacktest(ctx context.Context, out io.Writer, args []string) error {
	doc, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading strategy document: %w", err)
	}

	feed, err := feedFromSpec(feedSpec)
	if err != nil {
		return err
	}

	runID := util.RandomID()
	event.BacktestInProgress(runID)
	start := time.Now()
	result, err := backtest.Run(ctx, doc, feed, opts.StartCash)
	instrumentation.RecordBacktestDuration(time.Since(start))
	if err != nil {
		event.BacktestFailed(runID, err)
		return err
	}
	event.BacktestComplete(runID)
	instrumentation.AddBacktestRun()

	printResult(out, result)
	return nil
}

func feedFromSpec(spec string) (backtest.Feed, error) {
	switch {
	case spec == "":
		return backtest.SyntheticFeed{}, nil
	case strings.HasPrefix(spec, "csv:"):
		return backtest.CSVFeed{Path: strings.TrimPrefix(spec, "csv:")}, nil
	}
	return nil, fmt.Errorf("unknown feed %q, expected `csv:PATH` or nothing for the synthetic feed", spec)
}

func printResult(out io.Writer, result *backtest.Result) {
	if result.Logs != "" {
		fmt.Fprintln(out, result.Logs)
	}

	output.None.Fprintf(out, "Initial cash: %s\n", humanize.CommafWithDigits(result.InitialCash, 2))
	output.None.Fprintf(out, "Final value:  %s\n", humanize.CommafWithDigits(result.FinalValue, 2))
	output.None.Fprintf(out, "Trades:       %d\n", result.Trades)
	output.None.Fprintf(out, "Max drawdown: %.2f%%\n", result.MaxDrawdown)

	pnlColor := output.Green
	if result.PnL < 0 {
		pnlColor = output.Red
	}
	pnlColor.Fprintf(out, "PnL:          %s\n", humanize.CommafWithDigits(result.PnL, 2))
}
