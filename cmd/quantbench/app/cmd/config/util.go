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

package config

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/quantbench/quantbench/pkg/quantbench/config"
	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	"github.com/quantbench/quantbench/pkg/quantbench/util"
)

// resolveDatabase fills the --database flag from the environment. Without
// either, values apply to the global defaults.
func resolveDatabase() {
	if database != "" || global {
		return
	}
	database = os.Getenv(constants.DBURIEnvironmentVariable)
	if database == "" {
		logrus.Infof("no %s set, using global values", constants.DBURIEnvironmentVariable)
		global = true
	}
}

func readConfig() (*config.GlobalConfig, error) {
	resolved, err := config.ResolveConfigFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("resolving global config file: %w", err)
	}
	configFile = resolved
	return config.ReadConfigFileNoCache(configFile)
}

// getOrCreateConfigForDatabase returns the context config values apply to,
// creating an empty one when the database has none yet.
func getOrCreateConfigForDatabase() (*config.ContextConfig, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}
	if global {
		if cfg.Global == nil {
			cfg.Global = &config.ContextConfig{}
		}
		return cfg.Global, nil
	}
	for _, contextCfg := range cfg.DatabaseConfigs {
		if util.RegexEqual(contextCfg.Database, database) {
			return contextCfg, nil
		}
	}
	return &config.ContextConfig{Database: database}, nil
}

func writeConfig(cfg *config.ContextConfig) error {
	fullConfig, err := readConfig()
	if err != nil {
		return err
	}
	if global {
		fullConfig.Global = cfg
	} else {
		found := false
		for i, contextCfg := range fullConfig.DatabaseConfigs {
			if util.RegexEqual(contextCfg.Database, database) {
				fullConfig.DatabaseConfigs[i] = cfg
				found = true
			}
		}
		if !found {
			fullConfig.DatabaseConfigs = append(fullConfig.DatabaseConfigs, cfg)
		}
	}
	return config.WriteFullConfig(configFile, fullConfig)
}

func logSetConfigForUser(out io.Writer, key string, value string) {
	if global {
		fmt.Fprintf(out, "set global value %s to %s\n", key, value)
	} else {
		fmt.Fprintf(out, "set value %s to %s for database %s\n", key, value, database)
	}
}

func logUnsetConfigForUser(out io.Writer, key string) {
	if global {
		fmt.Fprintf(out, "unset global value %s\n", key)
	} else {
		fmt.Fprintf(out, "unset value %s for database %s\n", key, database)
	}
}
