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

package gcs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	cstorage "cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"

	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
)

const downloadConcurrency = 8

// native downloads objects through the Cloud Storage client libraries.
type native struct{}

func (n *native) DownloadRecursive(ctx context.Context, bucket, prefix, dst string) error {
	c, err := cstorage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating GCS client: %w", err)
	}
	defer c.Close()

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(downloadConcurrency)

	it := c.Bucket(bucket).Objects(ctx, &cstorage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("iterating objects in bucket %q: %w", bucket, err)
		}
		// Directory placeholders have no content.
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}
		name := attrs.Name
		g.Go(func() error {
			return downloadObject(gCtx, c, bucket, prefix, name, dst)
		})
	}
	return g.Wait()
}

func downloadObject(ctx context.Context, c *cstorage.Client, bucket, prefix, name, dst string) error {
	rel := strings.TrimPrefix(strings.TrimPrefix(name, prefix), "/")
	if rel == "" {
		rel = filepath.Base(name)
	}
	local := filepath.Join(dst, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(local), 0700); err != nil {
		return fmt.Errorf("creating directory for %q: %w", local, err)
	}

	reader, err := c.Bucket(bucket).Object(name).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("reading object %q: %w", name, err)
	}
	defer reader.Close()

	file, err := os.Create(local)
	if err != nil {
		return fmt.Errorf("creating file %q: %w", local, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("downloading object %q: %w", name, err)
	}
	log.Entry(ctx).Debugf("downloaded gs://%s/%s to %s", bucket, name, local)
	return nil
}
