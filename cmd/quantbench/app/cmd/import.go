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

	"github.com/spf13/cobra"

	"github.com/quantbench/quantbench/pkg/quantbench/event"
	"github.com/quantbench/quantbench/pkg/quantbench/importer"
	"github.com/quantbench/quantbench/pkg/quantbench/runcontext"
	"github.com/quantbench/quantbench/pkg/quantbench/storage/postgres"
)

// NewCmdImport describes the CLI command to bulk-load tick data.
func NewCmdImport(out io.Writer) *cobra.Command {
	return NewCmd(out, "import").
		WithDescription("Bulk-load futures tick data archives into Postgres").
		WithLongDescription("Walk a source tree (or gs:// location) of yearly tick archives, expand the zipped CSV exports and COPY their rows into the tick table in parallel batches. With --watch, keep polling for new archives.").
		WithCommonFlags().
		NoArgs(runImport)
}

func runImport(ctx context.Context, out io.Writer) error {
	runCtx, err := runcontext.GetRunContext(ctx, opts)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	event.InitializeState(runCtx.GetPipeline())

	db, err := postgres.Open(runCtx.GetPipeline().Database)
	if err != nil {
		return err
	}
	defer db.Close()

	store := postgres.NewTickStore(db, runCtx.GetPipeline().Import.Table)
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("preparing tick table: %w", err)
	}

	i := importer.New(store, runCtx.GetPipeline().Import, opts)
	if opts.Watch {
		defer saveEventLog(ctx)
		return i.Watch(ctx, out)
	}

	summary, err := i.Run(ctx, out)
	if err != nil {
		return err
	}
	summary.Print(out)
	saveEventLog(ctx)
	if summary.FailedBatches > 0 {
		return fmt.Errorf("%d of %d batches failed", summary.FailedBatches, summary.Batches)
	}
	return nil
}
