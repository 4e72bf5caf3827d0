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

package importer

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/quantbench/quantbench/pkg/quantbench/filemon"
	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
)

// DefaultPollInterval is how often watch mode checks the source for new or
// changed tick files.
const DefaultPollInterval = 1000 * time.Millisecond

// Watch imports everything currently under the source, then keeps polling
// for new or modified files and imports just those. Deleted files are left
// alone, the rows they produced stay in the table.
func (i *Importer) Watch(ctx context.Context, out io.Writer) error {
	var pending []string
	monitor := filemon.NewMonitor()
	if err := monitor.Register(
		func() ([]string, error) { return i.Discover(ctx) },
		func(e filemon.Events) {
			pending = append(pending, e.Added...)
			pending = append(pending, e.Modified...)
		},
	); err != nil {
		return err
	}

	summary, err := i.Run(ctx, out)
	if err != nil {
		return err
	}
	summary.Print(out)
	log.Entry(ctx).Infof("watching %q for new tick files", i.source())

	ticker := time.NewTicker(i.pollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// Debounced, so a year folder landing file by file is
			// imported in one run once the copy goes quiet.
			if err := monitor.Run(true); err != nil {
				log.Entry(ctx).Warnf("watch poll failed: %v", err)
				continue
			}
			if len(pending) == 0 {
				continue
			}
			files := pending
			pending = nil
			sort.Strings(files)

			summary, err := i.runFiles(ctx, out, files)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			summary.Print(out)
		}
	}
}

func (i *Importer) pollInterval() time.Duration {
	if i.opts.WatchPollInterval > 0 {
		return time.Duration(i.opts.WatchPollInterval) * time.Millisecond
	}
	return DefaultPollInterval
}
