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
	"context"
	"io"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	"github.com/quantbench/quantbench/pkg/quantbench/initializer"
)

var initForce bool

// NewCmdInit describes the CLI command to bootstrap a project config.
func NewCmdInit(out io.Writer) *cobra.Command {
	return NewCmd(out, "init").
		WithDescription("Generate a quantbench.yaml for this project").
		WithLongDescription("Ask a few questions about the project and write the answers out as a versioned quantbench.yaml.").
		WithFlags(func(f *flag.FlagSet) {
			f.BoolVar(&initForce, "force", false, "Overwrite an existing config without asking")
		}).
		NoArgs(doInit)
}

func doInit(ctx context.Context, out io.Writer) error {
	configFile := opts.ConfigurationFile
	if configFile == "" {
		configFile = constants.DefaultConfigFile
	}
	return initializer.DoInit(ctx, out, initializer.Config{
		ConfigFile: configFile,
		Force:      initForce,
	})
}
