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
	"fmt"
	"io"
	"text/template"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/quantbench/quantbench/pkg/quantbench/version"
)

const defaultVersionTemplate = "{{.Version}}\n"

var versionFormat string

// NewCmdVersion describes the CLI command to print the binary's version.
func NewCmdVersion(out io.Writer) *cobra.Command {
	return NewCmd(out, "version").
		WithDescription("Print the version information").
		WithFlags(func(f *flag.FlagSet) {
			f.StringVarP(&versionFormat, "output", "o", defaultVersionTemplate, "Format output with a go template")
		}).
		NoArgs(runVersion)
}

func runVersion(_ context.Context, out io.Writer) error {
	tmpl, err := template.New("version").Parse(versionFormat)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}
	if err := tmpl.Execute(out, version.Get()); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	return nil
}
