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

package output

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-colorable"

	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
	"github.com/quantbench/quantbench/pkg/quantbench/util"
)

// Default is the color used for headlines and summaries. SetupColors replaces
// it with the user-configured color, or None when colors are disabled.
var Default = Color(DefaultColorCode)

type colorableWriter struct {
	io.Writer
}

// SetupColors conditionally wraps out so the Color helpers emit ANSI escape
// codes through it. Colors are used when out is a terminal that supports
// them, or when forceColors is set.
func SetupColors(ctx context.Context, out io.Writer, defaultColor int, forceColors bool) io.Writer {
	_, isTerm := util.IsTerminal(out)
	supportsColor, err := util.SupportsColor()
	if err != nil {
		log.Entry(ctx).Debugf("error checking for color support: %v", err)
	}

	useColors := (isTerm && supportsColor) || forceColors
	if useColors {
		// Use EnableColorsStdout to enable use of color on Windows
		useColors = false // value is updated by colorable if color-enablement is successful
		colorable.EnableColorsStdout(&useColors)
	}

	if useColors {
		Default = Color(defaultColor)
		return colorableWriter{out}
	}

	Default = None
	return out
}

// IsColorable returns true when out was set up for colored output.
func IsColorable(out io.Writer) bool {
	_, ok := out.(colorableWriter)
	return ok
}

// GetUnderlyingWriter unwraps the writer returned by SetupColors.
func GetUnderlyingWriter(out io.Writer) io.Writer {
	for {
		cw, ok := out.(colorableWriter)
		if !ok {
			return out
		}
		out = cw.Writer
	}
}

// IsStdout returns true if out writes to os.Stdout, possibly through the
// colorable wrapper.
func IsStdout(out io.Writer) bool {
	return GetUnderlyingWriter(out) == os.Stdout
}

// WithEventContext returns a copy of ctx tagged with the given task and
// subtask, so log entries produced under it carry both fields.
func WithEventContext(ctx context.Context, task constants.Phase, subtaskID string) context.Context {
	return context.WithValue(ctx, log.ContextKey, log.EventContext{
		Task:    task,
		Subtask: subtaskID,
	})
}
