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

	"github.com/spf13/cobra"

	yamlutil "github.com/quantbench/quantbench/pkg/quantbench/yaml"
)

// NewCmdList describes the CLI command to list the global config values.
func NewCmdList(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all values set in the global Quantbench config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(out)
		},
	}
	AddCommonFlags(cmd)
	AddListFlags(cmd)
	return cmd
}

func runList(out io.Writer) error {
	var toList interface{}

	if showAll {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		if cfg == nil || (cfg.Global == nil && len(cfg.DatabaseConfigs) == 0) {
			return nil
		}
		toList = cfg
	} else {
		resolveDatabase()
		cfg, err := getOrCreateConfigForDatabase()
		if err != nil {
			return err
		}
		toList = cfg
	}

	listYaml, err := yamlutil.Marshal(toList)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprintf(out, "%s\n%s\n", configFile, listYaml)
	return nil
}
