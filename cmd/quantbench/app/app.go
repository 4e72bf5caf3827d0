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

package app

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/quantbench/quantbench/cmd/quantbench/app/cmd"
	qErrors "github.com/quantbench/quantbench/pkg/quantbench/errors"
)

// Run executes the quantbench command tree. SIGINT and SIGTERM cancel the
// command's context so long-running servers shut down cleanly.
func Run(out, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cmd.NewQuantbenchCommand(out, stderr)
	if err := c.ExecuteContext(ctx); err != nil {
		return qErrors.ShowAIError(err)
	}
	return nil
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}
