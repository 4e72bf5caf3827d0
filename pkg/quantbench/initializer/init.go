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

// Package initializer bootstraps a quantbench.yaml for a new project by
// asking a handful of questions and writing the answers out as a versioned
// config.
package initializer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/quantbench/quantbench/pkg/quantbench/output"
	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
	yamlutil "github.com/quantbench/quantbench/pkg/quantbench/yaml"
)

// Config controls how the project config gets generated.
type Config struct {
	// ConfigFile is where the generated config is written.
	ConfigFile string

	// Force overwrites an existing config file without asking.
	Force bool
}

// DoInit generates a project config from the interactive prompts and writes
// it, after showing it to the user for confirmation.
func DoInit(ctx context.Context, out io.Writer, c Config) error {
	if !c.Force {
		if _, err := os.Stat(c.ConfigFile); err == nil {
			return fmt.Errorf("%s already exists, pass --force to overwrite it", c.ConfigFile)
		}
	}

	cfg, err := generateConfig()
	if err != nil {
		return err
	}

	generated, err := yamlutil.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling generated config: %w", err)
	}

	if !c.Force {
		declined, err := confirmWrite(out, generated, c.ConfigFile)
		if err != nil {
			return err
		}
		if declined {
			return nil
		}
	}

	if err := os.WriteFile(c.ConfigFile, generated, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", c.ConfigFile, err)
	}
	output.Green.Fprintf(out, "Configuration %s was written\n", c.ConfigFile)
	return nil
}

func generateConfig() (*latest.QuantbenchConfig, error) {
	name, err := askProjectName()
	if err != nil {
		return nil, fmt.Errorf("asking for the project name: %w", err)
	}

	model, err := askChatModel()
	if err != nil {
		return nil, fmt.Errorf("choosing the chat model: %w", err)
	}

	dbURI, err := askDatabaseURI()
	if err != nil {
		return nil, fmt.Errorf("asking for the database URI: %w", err)
	}

	engineURL, err := askEngineURL()
	if err != nil {
		return nil, fmt.Errorf("asking for the engine URL: %w", err)
	}

	cfg := &latest.QuantbenchConfig{
		APIVersion: latest.Version,
		Kind:       "Config",
		Metadata:   latest.Metadata{Name: name},
	}
	cfg.Agent.Model = model
	cfg.Database.URI = dbURI
	cfg.Gateway.EngineURL = engineURL
	return cfg, nil
}
