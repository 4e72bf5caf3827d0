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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/imdario/mergo"
	"github.com/mitchellh/go-homedir"

	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
	"github.com/quantbench/quantbench/pkg/quantbench/util"
	yamlutil "github.com/quantbench/quantbench/pkg/quantbench/yaml"
)

const (
	defaultConfigDir  = ".quantbench"
	defaultConfigFile = "config"
)

var (
	// config-file content
	configFile     *GlobalConfig
	configFileErr  error
	configFileOnce sync.Once

	// config for a database context
	config     *ContextConfig
	configErr  error
	configOnce sync.Once

	ReadConfigFile              = readConfigFileCached
	GetConfigForCurrentDatabase = getConfigForCurrentDatabase

	// current database context, taken from the environment
	currentDatabase = func() string { return os.Getenv(constants.DBURIEnvironmentVariable) }
)

// readConfigFileCached reads the specified file and returns the contents
// parsed into a GlobalConfig struct.
// This function will always return the identical data from the first read.
func readConfigFileCached(filename string) (*GlobalConfig, error) {
	configFileOnce.Do(func() {
		filenameOrDefault, err := ResolveConfigFile(filename)
		if err != nil {
			configFileErr = err
			log.Entry(context.TODO()).Warnf("Could not load global Quantbench defaults. Error resolving config file %q", filenameOrDefault)
			return
		}
		configFile, configFileErr = ReadConfigFileNoCache(filenameOrDefault)
		if configFileErr == nil {
			log.Entry(context.TODO()).Infof("Loaded Quantbench defaults from %q", filenameOrDefault)
		}
	})
	return configFile, configFileErr
}

// ResolveConfigFile determines the default config location, if the configFile argument is empty.
func ResolveConfigFile(configFile string) (string, error) {
	if configFile == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", fmt.Errorf("retrieving home directory: %w", err)
		}
		configFile = filepath.Join(home, defaultConfigDir, defaultConfigFile)
	}
	return configFile, util.VerifyOrCreateFile(configFile)
}

// ReadConfigFileNoCache reads the given config yaml file and unmarshals the contents.
// Only visible for testing, use ReadConfigFile instead.
func ReadConfigFileNoCache(configFile string) (*GlobalConfig, error) {
	contents, err := os.ReadFile(configFile)
	if err != nil {
		log.Entry(context.TODO()).Warnf("Could not load global Quantbench defaults. Error encounter while reading file %q", configFile)
		return nil, fmt.Errorf("reading global config: %w", err)
	}
	config := GlobalConfig{}
	if err := yamlutil.Unmarshal(contents, &config); err != nil {
		log.Entry(context.TODO()).Warnf("Could not load global Quantbench defaults. Error encounter while unmarshalling the contents of file %q", configFile)
		return nil, fmt.Errorf("unmarshalling global quantbench config: %w", err)
	}
	return &config, nil
}

// getConfigForCurrentDatabase returns the specific config to be modified based
// on the database the process points at, or the global config when no database
// is configured.
func getConfigForCurrentDatabase(configFile string) (*ContextConfig, error) {
	configOnce.Do(func() {
		cfg, err := ReadConfigFile(configFile)
		if err != nil {
			configErr = err
			return
		}
		config, configErr = getConfigForDatabaseWithGlobalDefaults(cfg, currentDatabase())
	})

	return config, configErr
}

func getConfigForDatabaseWithGlobalDefaults(cfg *GlobalConfig, database string) (*ContextConfig, error) {
	if database == "" {
		if cfg.Global == nil {
			return &ContextConfig{}, nil
		}
		return cfg.Global, nil
	}

	var mergedConfig ContextConfig
	for _, databaseCfg := range cfg.DatabaseConfigs {
		if util.RegexEqual(databaseCfg.Database, database) {
			log.Entry(context.TODO()).Debugf("found config for database %q", database)
			mergedConfig = *databaseCfg
		}
	}
	// in case there was no config for this database in cfg.DatabaseConfigs
	mergedConfig.Database = database

	if cfg.Global != nil {
		// if values are unset for the current database, retrieve
		// the global config and use its values as a fallback.
		if err := mergo.Merge(&mergedConfig, cfg.Global, mergo.WithAppendSlice); err != nil {
			return nil, fmt.Errorf("merging database-specific and global config: %w", err)
		}
	}
	return &mergedConfig, nil
}

// GetEngineURL returns the backtest engine endpoint to use. The CLI flag
// takes precedence over the user-level config.
func GetEngineURL(configFile string, cliValue *string) (string, error) {
	// CLI flag takes precedence.
	if cliValue != nil {
		return *cliValue, nil
	}
	cfg, err := GetConfigForCurrentDatabase(configFile)
	if err != nil {
		return "", err
	}
	if cfg.EngineURL != "" {
		log.Entry(context.TODO()).Infof("Using engine-url=%s from config", cfg.EngineURL)
	}
	return cfg.EngineURL, nil
}

// GetCollection returns the user-level default knowledge base collection,
// or the empty string when none is configured.
func GetCollection(configFile string) (string, error) {
	cfg, err := GetConfigForCurrentDatabase(configFile)
	if err != nil {
		return "", err
	}
	if cfg.Collection != "" {
		log.Entry(context.TODO()).Infof("Using collection=%s from config", cfg.Collection)
	}
	return cfg.Collection, nil
}

// GetTickTable returns the user-level default tick data table,
// or the empty string when none is configured.
func GetTickTable(configFile string) (string, error) {
	cfg, err := GetConfigForCurrentDatabase(configFile)
	if err != nil {
		return "", err
	}
	if cfg.TickTable != "" {
		log.Entry(context.TODO()).Infof("Using tick-table=%s from config", cfg.TickTable)
	}
	return cfg.TickTable, nil
}

// GetCollectMetrics returns the user's metrics opt-in, or nil when the user
// never made a choice.
func GetCollectMetrics(configFile string) (*bool, error) {
	cfg, err := GetConfigForCurrentDatabase(configFile)
	if err != nil {
		return nil, err
	}
	return cfg.CollectMetrics, nil
}

func UpdateGlobalCollectMetrics(configFile string, collectMetrics bool) error {
	configFile, err := ResolveConfigFile(configFile)
	if err != nil {
		return err
	}
	fullConfig, err := ReadConfigFile(configFile)
	if err != nil {
		return err
	}
	if fullConfig.Global == nil {
		fullConfig.Global = &ContextConfig{}
	}
	fullConfig.Global.CollectMetrics = &collectMetrics
	err = WriteFullConfig(configFile, fullConfig)
	if err != nil {
		return err
	}
	return err
}

// UpdateGlobalEngineURL persists a user-level default engine endpoint.
func UpdateGlobalEngineURL(configFile string, engineURL string) error {
	configFile, err := ResolveConfigFile(configFile)
	if err != nil {
		return err
	}
	fullConfig, err := ReadConfigFile(configFile)
	if err != nil {
		return err
	}
	if fullConfig.Global == nil {
		fullConfig.Global = &ContextConfig{}
	}
	fullConfig.Global.EngineURL = engineURL
	return WriteFullConfig(configFile, fullConfig)
}

func WriteFullConfig(configFile string, cfg *GlobalConfig) error {
	contents, err := yamlutil.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	configFileOrDefault, err := ResolveConfigFile(configFile)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configFileOrDefault, contents, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
