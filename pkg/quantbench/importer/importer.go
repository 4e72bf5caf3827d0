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

// Package importer bulk-loads futures tick data archives into the tick store.
// It walks a source tree of yearly folders, expands zipped CSV exports,
// batches files and copies their rows into Postgres, keeping going when a
// batch fails.
package importer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar"
	"github.com/dustin/go-humanize"
	"github.com/fatih/semgroup"
	"github.com/karrick/godirwalk"

	"github.com/quantbench/quantbench/pkg/quantbench/config"
	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	"github.com/quantbench/quantbench/pkg/quantbench/event"
	"github.com/quantbench/quantbench/pkg/quantbench/gcs"
	"github.com/quantbench/quantbench/pkg/quantbench/instrumentation"
	"github.com/quantbench/quantbench/pkg/quantbench/output"
	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
	"github.com/quantbench/quantbench/pkg/quantbench/tick"
)

// Sink receives the parsed tick rows. The Postgres tick store is the real
// implementation.
type Sink interface {
	CopyTicks(ctx context.Context, records []tick.Record) (int64, error)
}

// Importer drives one import run or a watch loop over a tick data source.
type Importer struct {
	sink Sink
	cfg  latest.ImportConfig
	opts config.Options
}

func New(sink Sink, cfg latest.ImportConfig, opts config.Options) *Importer {
	return &Importer{sink: sink, cfg: cfg, opts: opts}
}

// For testing
var syncObjects = gcs.SyncObjects

// Summary totals one import run.
type Summary struct {
	Files         int
	Rows          int64
	Batches       int
	FailedBatches int
	Elapsed       time.Duration
}

// Print writes a colored one-run summary. Failed batches turn the closing
// line red, matching how their rows are missing from the table.
func (s *Summary) Print(out io.Writer) {
	output.None.Fprintf(out, "Imported %s rows from %s files in %s\n",
		humanize.Comma(s.Rows), humanize.Comma(int64(s.Files)), s.Elapsed.Round(time.Millisecond))
	if s.FailedBatches > 0 {
		output.Red.Fprintf(out, "%d of %d batches failed and were rolled back\n", s.FailedBatches, s.Batches)
	} else {
		output.Green.Fprintf(out, "All %d batches committed\n", s.Batches)
	}
}

func (i *Importer) source() string {
	if i.opts.Source != "" {
		return i.opts.Source
	}
	return i.cfg.Source
}

// sourceDir resolves the import source to a local directory, mirroring
// `gs://` sources into the remote cache first.
func (i *Importer) sourceDir(ctx context.Context) (string, error) {
	source := i.source()
	if source == "" {
		return "", fmt.Errorf("no import source configured: set import.source in %s or pass --source", constants.DefaultConfigFile)
	}
	if gcs.IsGCSURI(source) {
		return syncObjects(ctx, source)
	}
	return source, nil
}

// Discover lists the tick files under the source that match the include
// patterns, sorted so batches are stable across runs.
func (i *Importer) Discover(ctx context.Context) ([]string, error) {
	root, err := i.sourceDir(ctx)
	if err != nil {
		return nil, err
	}

	patterns := i.cfg.Include
	if len(patterns) == 0 {
		patterns = []string{"**/*.csv", "**/*.csv.gz", "**/*.zip"}
	}

	var files []string
	err = godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			for _, pattern := range patterns {
				if ok, _ := doublestar.PathMatch(pattern, filepath.ToSlash(rel)); ok {
					files = append(files, path)
					break
				}
			}
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("walking import source %q: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// Run imports everything currently under the source.
func (i *Importer) Run(ctx context.Context, out io.Writer) (*Summary, error) {
	files, err := i.Discover(ctx)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		log.Entry(ctx).Warnf("no tick files found under %q", i.source())
		return &Summary{}, nil
	}
	return i.runFiles(ctx, out, files)
}

// runFiles imports the given files in batches with bounded parallelism. A
// failed batch is rolled back, counted and logged; the other batches keep
// going. Only a cancelled context aborts the run.
func (i *Importer) runFiles(ctx context.Context, out io.Writer, files []string) (*Summary, error) {
	encoding, err := tick.ParseEncoding(i.cfg.Encoding)
	if err != nil {
		return nil, err
	}

	batchSize := i.batchSize()
	var batches [][]string
	for start := 0; start < len(files); start += batchSize {
		end := start + batchSize
		if end > len(files) {
			end = len(files)
		}
		batches = append(batches, files[start:end])
	}

	event.ImportInProgress()
	start := time.Now()

	var mu sync.Mutex
	summary := &Summary{Batches: len(batches)}

	g := semgroup.NewGroup(ctx, int64(i.workers()))
	for _, batch := range batches {
		batch := batch
		g.Go(func() error {
			rows, err := i.runBatch(ctx, batch, encoding)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Entry(ctx).Warnf("batch of %d files failed and was rolled back: %v", len(batch), err)
				for _, file := range batch {
					event.ImportFileFailed(file, err)
				}
				instrumentation.AddFailedBatch()
				mu.Lock()
				summary.FailedBatches++
				mu.Unlock()
				return nil
			}

			for _, file := range batch {
				event.ImportFileComplete(file, rows)
			}
			instrumentation.AddImportedFiles(len(batch), rows)
			mu.Lock()
			summary.Files += len(batch)
			summary.Rows += rows
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		event.ImportFailed(err)
		return nil, err
	}

	summary.Elapsed = time.Since(start)
	event.ImportComplete()
	return summary, nil
}

// runBatch parses all files of one batch and copies their rows in a single
// transaction. Any file error fails the whole batch, the way a poisoned COPY
// would.
func (i *Importer) runBatch(ctx context.Context, files []string, encoding tick.Encoding) (int64, error) {
	var records []tick.Record
	for _, file := range files {
		rs, err := i.fileRecords(ctx, file, encoding)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", file, err)
		}
		records = append(records, rs...)
	}
	rows, err := i.sink.CopyTicks(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("copying %d rows: %w", len(records), err)
	}
	return rows, nil
}

func (i *Importer) batchSize() int {
	if i.opts.BatchSize > 0 {
		return i.opts.BatchSize
	}
	if i.cfg.BatchSize > 0 {
		return i.cfg.BatchSize
	}
	return constants.DefaultImportBatchSize
}

func (i *Importer) workers() int {
	if i.opts.Workers > 0 {
		return i.opts.Workers
	}
	if i.cfg.Workers > 0 {
		return i.cfg.Workers
	}
	return runtime.NumCPU()
}
