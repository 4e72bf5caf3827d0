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
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
	"github.com/quantbench/quantbench/pkg/quantbench/tick"
)

// fileRecords parses the tick rows of one discovered file. Zip archives are
// expanded into a scratch directory that is dropped once their CSVs are
// parsed.
func (i *Importer) fileRecords(ctx context.Context, path string, encoding tick.Encoding) ([]tick.Record, error) {
	if !isArchive(path) {
		return tick.ParseFile(path, encoding)
	}

	scratch, err := os.MkdirTemp("", "quantbench-import-")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	entries, err := extractArchive(path, scratch)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		log.Entry(ctx).Warnf("archive %s holds no CSV files", path)
	}

	var records []tick.Record
	for _, entry := range entries {
		rs, err := tick.ParseFile(entry, encoding)
		if err != nil {
			return nil, fmt.Errorf("parsing %s from %s: %w", filepath.Base(entry), path, err)
		}
		records = append(records, rs...)
	}
	return records, nil
}

func isArchive(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".zip")
}

// extractArchive unpacks the CSV entries of a zip archive into dst and
// returns their paths, sorted. Entries that would escape dst fail the whole
// archive.
func extractArchive(path, dst string) ([]string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	defer reader.Close()

	var entries []string
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := filepath.Clean(filepath.FromSlash(f.Name))
		if name == ".." || strings.HasPrefix(name, ".."+string(os.PathSeparator)) || filepath.IsAbs(name) {
			return nil, fmt.Errorf("archive %s entry %q escapes the extraction directory", path, f.Name)
		}
		lower := strings.ToLower(name)
		if !strings.HasSuffix(lower, ".csv") && !strings.HasSuffix(lower, ".csv.gz") {
			continue
		}

		target := filepath.Join(dst, name)
		if err := extractEntry(f, target); err != nil {
			return nil, fmt.Errorf("extracting %q from %s: %w", f.Name, path, err)
		}
		entries = append(entries, target)
	}

	sort.Strings(entries)
	return entries, nil
}

func extractEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}
