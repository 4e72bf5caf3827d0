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
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

const longDescription = `
	Outputs quantbench shell completion for the given shell (bash or zsh).
	This depends on the bash-completion binary. Example installation instructions:

	# for bash users
	$ quantbench completion bash > ~/.quantbench-completion
	$ source ~/.quantbench-completion

	# for zsh users
	$ quantbench completion zsh > "${fpath[1]}/_quantbench"`

// NewCmdCompletion describes the CLI command to output shell completion.
func NewCmdCompletion(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:       "completion SHELL",
		Short:     "Output shell completion for the given shell (bash or zsh)",
		Long:      longDescription,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}
