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

	"github.com/quantbench/quantbench/pkg/quantbench/agent"
	"github.com/quantbench/quantbench/pkg/quantbench/checkpoint"
	"github.com/quantbench/quantbench/pkg/quantbench/engine"
	"github.com/quantbench/quantbench/pkg/quantbench/event"
	"github.com/quantbench/quantbench/pkg/quantbench/gateway"
	"github.com/quantbench/quantbench/pkg/quantbench/instrumentation"
	"github.com/quantbench/quantbench/pkg/quantbench/llm"
	"github.com/quantbench/quantbench/pkg/quantbench/output"
	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
	"github.com/quantbench/quantbench/pkg/quantbench/rag"
	"github.com/quantbench/quantbench/pkg/quantbench/runcontext"
	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
	"github.com/quantbench/quantbench/pkg/quantbench/server"
	"github.com/quantbench/quantbench/pkg/quantbench/storage/postgres"
	"github.com/quantbench/quantbench/pkg/quantbench/version"
)

// NewCmdGateway describes the CLI command to run the chat API gateway.
func NewCmdGateway(out io.Writer) *cobra.Command {
	return NewCmd(out, "gateway").
		WithDescription("Run the chat API gateway").
		WithLongDescription("Run the JSON-over-HTTP chat gateway: agent chat turns with knowledge retrieval and backtest tool calls, knowledge ingestion, and the run state and event APIs.").
		WithCommonFlags().
		NoArgs(runGateway)
}

func runGateway(ctx context.Context, out io.Writer) error {
	runCtx, err := runcontext.GetRunContext(ctx, opts)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	event.InitializeState(runCtx.GetPipeline())
	event.LogQuantbenchMetadata(version.Get())
	instrumentation.InitMeterFromConfig(&latest.QuantbenchConfig{Pipeline: runCtx.GetPipeline()})

	embedder := llm.NewEmbeddingsClient(runCtx.GetPipeline().Retrieval)

	var (
		db       *sql.DB
		saver    checkpoint.Saver
		searcher agent.Searcher
		docs     gateway.DocumentStore
	)
	if opts.NoDatabase {
		log.Entry(ctx).Info("running without a database, knowledge and transcripts stay in memory")
		mem := rag.NewInMemoryStore(embedder)
		searcher, docs = mem, mem
		saver = checkpoint.NewInMemorySaver()
	} else {
		if db, err = postgres.Open(runCtx.GetPipeline().Database); err != nil {
			return err
		}
		store := rag.NewStore(db, embedder, runCtx.GetPipeline().Retrieval)
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("preparing knowledge base: %w", err)
		}
		searcher, docs = store, store

		pgSaver := checkpoint.NewPostgresSaver(db)
		if err := pgSaver.Setup(ctx); err != nil {
			return fmt.Errorf("preparing chat transcripts: %w", err)
		}
		saver = pgSaver
	}

	model := llm.NewClient(runCtx.GetPipeline().Agent)
	engineClient := engine.NewClient(runCtx.EngineURL())
	if err := engineClient.Ready(ctx); err != nil {
		log.Entry(ctx).Warnf("backtest engine at %s is not reachable, tool calls will fail until it is up: %v", runCtx.EngineURL(), err)
	}
	chatAgent, err := agent.New(model, searcher, saver, runCtx.GetPipeline(), &agent.BacktestTool{Runner: engineClient})
	if err != nil {
		return fmt.Errorf("building chat agent: %w", err)
	}

	srv := gateway.New(chatAgent, docs, db)
	shutdown, port, err := server.Start(ctx, "gateway", runCtx.GatewayAddress(), runCtx.GatewayPort(), srv.Router())
	if err != nil {
		return fmt.Errorf("starting gateway: %w", err)
	}
	output.Green.Fprintf(out, "Gateway listening on %s:%d\n", runCtx.GatewayAddress(), port)

	<-ctx.Done()
	log.Entry(ctx).Info("shutting down gateway")
	saveEventLog(ctx)
	if err := shutdown(); err != nil {
		return err
	}
	return srv.Close()
}

func saveEventLog(ctx context.Context) {
	if opts.EventLogFile == "" {
		return
	}
	if err := event.SaveEventsToFile(opts.EventLogFile); err != nil {
		log.Entry(ctx).Warnf("saving event log: %v", err)
	}
}
