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

package initializer

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
	yamlutil "github.com/quantbench/quantbench/pkg/quantbench/yaml"
	"github.com/quantbench/quantbench/testutil"
)

func stubPrompts(t *testutil.T) {
	t.Override(&askProjectName, func() (string, error) { return "desk", nil })
	t.Override(&askChatModel, func() (string, error) { return "deepseek-chat", nil })
	t.Override(&askDatabaseURI, func() (string, error) { return "postgres://localhost/quant", nil })
	t.Override(&askEngineURL, func() (string, error) { return "http://engine:8001", nil })
}

func TestDoInit(t *testing.T) {
	testutil.Run(t, "writes the confirmed config", func(t *testutil.T) {
		tmpDir := t.NewTempDir()
		stubPrompts(t)
		t.Override(&confirmWrite, func(out io.Writer, generated []byte, filePath string) (bool, error) {
			return false, nil
		})

		var buf bytes.Buffer
		err := DoInit(context.Background(), &buf, Config{ConfigFile: tmpDir.Path("quantbench.yaml")})
		t.CheckNoError(err)

		content, err := os.ReadFile(tmpDir.Path("quantbench.yaml"))
		t.CheckNoError(err)

		var cfg latest.QuantbenchConfig
		t.CheckNoError(yamlutil.UnmarshalStrict(content, &cfg))
		t.CheckDeepEqual(latest.Version, cfg.APIVersion)
		t.CheckDeepEqual("desk", cfg.Metadata.Name)
		t.CheckDeepEqual("deepseek-chat", cfg.Agent.Model)
		t.CheckDeepEqual("postgres://localhost/quant", cfg.Database.URI)
		t.CheckDeepEqual("http://engine:8001", cfg.Gateway.EngineURL)
		t.CheckContains("was written", buf.String())
	})

	testutil.Run(t, "declined write leaves no file", func(t *testutil.T) {
		tmpDir := t.NewTempDir()
		stubPrompts(t)
		t.Override(&confirmWrite, func(out io.Writer, generated []byte, filePath string) (bool, error) {
			return true, nil
		})

		err := DoInit(context.Background(), io.Discard, Config{ConfigFile: tmpDir.Path("quantbench.yaml")})
		t.CheckNoError(err)

		_, statErr := os.Stat(tmpDir.Path("quantbench.yaml"))
		t.CheckTrue(os.IsNotExist(statErr))
	})

	testutil.Run(t, "existing config needs --force", func(t *testutil.T) {
		tmpDir := t.NewTempDir().Write("quantbench.yaml", "apiVersion: quantbench/v1\n")
		stubPrompts(t)

		err := DoInit(context.Background(), io.Discard, Config{ConfigFile: tmpDir.Path("quantbench.yaml")})

		t.CheckErrorContains("already exists", err)
	})

	testutil.Run(t, "--force overwrites without confirmation", func(t *testutil.T) {
		tmpDir := t.NewTempDir().Write("quantbench.yaml", "stale")
		stubPrompts(t)

		err := DoInit(context.Background(), io.Discard, Config{ConfigFile: tmpDir.Path("quantbench.yaml"), Force: true})
		t.CheckNoError(err)

		content, err := os.ReadFile(tmpDir.Path("quantbench.yaml"))
		t.CheckNoError(err)
		t.CheckContains("apiVersion: quantbench/v1", string(content))
	})
}
