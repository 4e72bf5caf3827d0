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
	"io"

	"github.com/spf13/cobra"
)

// NewCmdUnset describes the CLI command to unset a value in the global
// config.
func NewCmdUnset(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unset",
		Short: "Unset a value in the global Quantbench config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolveDatabase()
			if err := setConfigValue(args[0], ""); err != nil {
				return err
			}
			logUnsetConfigForUser(out, args[0])
			return nil
		},
	}
	AddCommonFlags(cmd)
	AddSetUnsetFlags(cmd)
	return cmd
}
