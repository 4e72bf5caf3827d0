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

package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/quantbench/quantbench/cmd/quantbench/app/cmd/config"
)

// NewCmdConfig describes the CLI command group for the user-level config in
// ~/.quantbench/config.
func NewCmdConfig(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Interact with the global Quantbench config file (defaults to $HOME/.quantbench/config)",
	}
	cmd.AddCommand(config.NewCmdSet(out))
	cmd.AddCommand(config.NewCmdUnset(out))
	cmd.AddCommand(config.NewCmdList(out))
	return cmd
}
