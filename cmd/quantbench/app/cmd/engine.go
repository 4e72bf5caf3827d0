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
	"database/sql"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/quantbench/quantbench/pkg/quantbench/engine"
	"github.com/quantbench/quantbench/pkg/quantbench/event"
	"github.com/quantbench/quantbench/pkg/quantbench/output"
	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
	"github.com/quantbench/quantbench/pkg/quantbench/runcontext"
	"github.com/quantbench/quantbench/pkg/quantbench/server"
	"github.com/quantbench/quantbench/pkg/quantbench/storage/postgres"
	"github.com/quantbench/quantbench/pkg/quantbench/version"
)

// NewCmdEngine describes the CLI command to run the backtest engine service.
func NewCmdEngine(out io.Writer) *cobra.Command {
	return NewCmd(out, "engine").
		WithDescription("Run the backtest engine service").
		WithLongDescription("Run the backtest engine: accepts declarative strategy documents over HTTP, runs them against a candle feed through the simulated broker and returns the results.").
		WithCommonFlags().
		NoArgs(runEngine)
}

func runEngine(ctx context.Context, out io.Writer) error {
	runCtx, err := runcontext.GetRunContext(ctx, opts)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	event.InitializeState(runCtx.GetPipeline())
	event.LogQuantbenchMetadata(version.Get())

	// The engine only needs the database for the Postgres candle feed;
	// without a URI it still serves the synthetic and CSV feeds.
	var db *sql.DB
	if runCtx.DBURI() != "" {
		if db, err = postgres.Open(runCtx.GetPipeline().Database); err != nil {
			return err
		}
		defer db.Close()
	}

	svc := engine.NewService(db, runCtx.GetPipeline())
	shutdown, port, err := server.Start(ctx, "engine", runCtx.EngineAddress(), runCtx.EnginePort(), svc.Router())
	if err != nil {
		return fmt.Errorf("starting engine: %w", err)
	}
	output.Green.Fprintf(out, "Engine listening on %s:%d\n", runCtx.EngineAddress(), port)

	<-ctx.Done()
	log.Entry(ctx).Info("shutting down engine")
	saveEventLog(ctx)
	return shutdown()
}
