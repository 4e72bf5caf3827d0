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

package runcontext

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/quantbench/quantbench/pkg/quantbench/config"
	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
	"github.com/quantbench/quantbench/pkg/quantbench/schema"
	"github.com/quantbench/quantbench/pkg/quantbench/schema/defaults"
	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
	"github.com/quantbench/quantbench/pkg/quantbench/schema/validation"
	"github.com/quantbench/quantbench/pkg/quantbench/util"
)

// RunContext carries the resolved configuration of a single quantbench
// invocation. Command line flags always beat the project config, which in
// turn beats the user-level config in ~/.quantbench/config.
type RunContext struct {
	Opts       config.Options
	Pipeline   latest.Pipeline
	WorkingDir string
}

// GetRunContext parses the project config, applies profiles and defaults and
// resolves the values that can come from several places.
func GetRunContext(ctx context.Context, opts config.Options) (*RunContext, error) {
	cfg, err := parseOrDefaultConfig(ctx, opts)
	if err != nil {
		return nil, err
	}

	applied, err := schema.ApplyProfiles(cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("applying profiles: %w", err)
	}
	if len(applied) > 0 {
		log.Entry(ctx).Infof("applied profiles: %v", applied)
	}

	if err := resolveEngineURL(opts, &cfg.Gateway); err != nil {
		return nil, err
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("setting default values: %w", err)
	}

	if errs := validation.Process(cfg); len(errs) > 0 {
		var messages []string
		for _, err := range errs {
			messages = append(messages, err.Error())
		}
		return nil, fmt.Errorf("invalid config: %s", strings.Join(messages, "; "))
	}

	if err := resolveDBURI(opts, &cfg.Database); err != nil {
		return nil, err
	}

	if cfg.Agent.SystemPrompt != "" {
		prompt, err := util.ExpandEnvTemplate(cfg.Agent.SystemPrompt, nil)
		if err != nil {
			return nil, fmt.Errorf("expanding agent.systemPrompt template: %w", err)
		}
		cfg.Agent.SystemPrompt = prompt
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("finding current directory: %w", err)
	}

	return &RunContext{
		Opts:       opts,
		Pipeline:   cfg.Pipeline,
		WorkingDir: cwd,
	}, nil
}

// parseOrDefaultConfig reads the project config. A missing quantbench.yaml is
// only an error when the user named a config file explicitly.
func parseOrDefaultConfig(ctx context.Context, opts config.Options) (*latest.QuantbenchConfig, error) {
	configFile := opts.ConfigurationFile
	explicit := configFile != ""
	if !explicit {
		configFile = constants.DefaultConfigFile
	}

	parsed, err := schema.ParseConfigAndUpgrade(configFile)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			log.Entry(ctx).Debugf("no %s found: running with default configuration", constants.DefaultConfigFile)
			return &latest.QuantbenchConfig{APIVersion: latest.Version, Kind: "Config"}, nil
		}
		return nil, fmt.Errorf("parsing configuration file %q: %w", configFile, err)
	}

	return parsed.(*latest.QuantbenchConfig), nil
}

// resolveEngineURL layers the engine endpoint: the --engine-url flag beats
// the project config, which beats the user-level config. The default is
// filled in later with the other defaults.
func resolveEngineURL(opts config.Options, gw *latest.GatewayConfig) error {
	cliValue := opts.EngineURL.Value()
	if cliValue == nil && gw.EngineURL != "" {
		return nil
	}

	url, err := config.GetEngineURL(opts.GlobalConfig, cliValue)
	if err != nil {
		return fmt.Errorf("getting engine url: %w", err)
	}
	if url != "" {
		gw.EngineURL = url
	}
	return nil
}

// resolveDBURI layers the Postgres connection string: the --db-uri flag beats
// the DB_URI environment variable, which beats the project config. The
// project value supports env templates such as `{{.DB_URI}}`.
func resolveDBURI(opts config.Options, db *latest.DatabaseConfig) error {
	if cliValue := opts.DBURI.Value(); cliValue != nil {
		db.URI = *cliValue
		return nil
	}
	if env := os.Getenv(constants.DBURIEnvironmentVariable); env != "" {
		db.URI = env
		return nil
	}
	if db.URI == "" {
		// Services that need the database report an actionable error when
		// they first connect.
		return nil
	}

	expanded, err := util.ExpandEnvTemplate(db.URI, nil)
	if err != nil {
		return fmt.Errorf("expanding database.uri template: %w", err)
	}
	db.URI = expanded
	return nil
}

func (rc *RunContext) GetPipeline() latest.Pipeline { return rc.Pipeline }

func (rc *RunContext) GatewayAddress() string {
	if rc.Opts.Address != "" {
		return rc.Opts.Address
	}
	return rc.Pipeline.Gateway.Address
}

func (rc *RunContext) GatewayPort() int {
	if port := rc.Opts.Port.Value(); port != nil {
		return *port
	}
	return rc.Pipeline.Gateway.Port
}

func (rc *RunContext) EngineAddress() string {
	if rc.Opts.Address != "" {
		return rc.Opts.Address
	}
	return rc.Pipeline.Engine.Address
}

func (rc *RunContext) EnginePort() int {
	if port := rc.Opts.Port.Value(); port != nil {
		return *port
	}
	return rc.Pipeline.Engine.Port
}

func (rc *RunContext) EngineURL() string          { return rc.Pipeline.Gateway.EngineURL }
func (rc *RunContext) DBURI() string              { return rc.Pipeline.Database.URI }
func (rc *RunContext) ConfigurationFile() string  { return rc.Opts.ConfigurationFile }
func (rc *RunContext) GlobalConfig() string       { return rc.Opts.GlobalConfig }
func (rc *RunContext) EventLogFile() string       { return rc.Opts.EventLogFile }
func (rc *RunContext) WatchPollInterval() int     { return rc.Opts.WatchPollInterval }
func (rc *RunContext) Muted() bool                { return rc.Opts.Muted }
func (rc *RunContext) GetWorkingDir() string      { return rc.WorkingDir }
