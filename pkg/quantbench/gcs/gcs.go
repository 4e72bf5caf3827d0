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

// Package gcs mirrors tick data archives from Google Cloud Storage into a
// local cache so the importer can treat a `gs://` source like a directory.
package gcs

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
)

// URIPrefix marks a source as a Google Cloud Storage location.
const URIPrefix = "gs://"

// IsGCSURI reports whether source points at Google Cloud Storage.
func IsGCSURI(source string) bool {
	return strings.HasPrefix(source, URIPrefix)
}

// ParseURI splits a `gs://bucket/prefix` URI into bucket and object prefix.
func ParseURI(uri string) (bucket, prefix string, err error) {
	if !IsGCSURI(uri) {
		return "", "", fmt.Errorf("%q is not a Google Cloud Storage URI", uri)
	}
	trimmed := strings.TrimPrefix(uri, URIPrefix)
	bucket, prefix, _ = strings.Cut(trimmed, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("%q is missing a bucket name", uri)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

// Client mirrors a bucket prefix into a local directory.
type Client interface {
	DownloadRecursive(ctx context.Context, bucket, prefix, dst string) error
}

// GetClient returns the GCS client used for downloads.
// Can be overridden for tests.
var GetClient = func() Client {
	return &native{}
}

var remoteCacheDir = func() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("retrieving home directory: %w", err)
	}
	return filepath.Join(home, constants.DefaultQuantbenchDir, "remote-cache"), nil
}

// SyncObjects downloads the objects under the given `gs://` source into the
// per-user remote cache and returns the local directory holding them. Each
// source keeps its own cache directory, so repeated imports of the same
// bucket reuse one download location.
func SyncObjects(ctx context.Context, source string) (string, error) {
	bucket, prefix, err := ParseURI(source)
	if err != nil {
		return "", err
	}

	cacheRoot, err := remoteCacheDir()
	if err != nil {
		return "", fmt.Errorf("determining remote cache directory: %w", err)
	}
	sourceDir := filepath.Join(cacheRoot, sourceHash(source))
	if err := os.MkdirAll(sourceDir, 0700); err != nil {
		return "", fmt.Errorf("creating remote cache directory: %w", err)
	}

	log.Entry(ctx).Debugf("syncing %s to %s", source, sourceDir)
	if err := GetClient().DownloadRecursive(ctx, bucket, prefix, sourceDir); err != nil {
		return "", fmt.Errorf("downloading %s: %w", source, err)
	}
	return sourceDir, nil
}

func sourceHash(source string) string {
	hash := sha256.Sum256([]byte(source))
	return base64.URLEncoding.EncodeToString(hash[:])[:12]
}
