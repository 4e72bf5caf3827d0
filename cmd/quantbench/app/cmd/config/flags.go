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

import "github.com/spf13/cobra"

var (
	configFile string
	database   string
	showAll    bool
	global     bool
)

func AddCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to the global config file (defaults to $HOME/.quantbench/config)")
	cmd.Flags().StringVarP(&database, "database", "d", "", "Database URI pattern to set values against")
}

func AddSetUnsetFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&global, "global", "g", false, "Set the value in the global defaults instead of a database context")
}

func AddListFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&showAll, "all", "a", false, "Show values for all database contexts")
}
