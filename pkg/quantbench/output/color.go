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
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Color can be used to format text so it can be printed to the terminal in color.
type Color int

var (
	// LightRed can format text to be displayed to the terminal in light red.
	LightRed = Color(91)
	// LightGreen can format text to be displayed to the terminal in light green.
	LightGreen = Color(92)
	// LightYellow can format text to be displayed to the terminal in light yellow.
	LightYellow = Color(93)
	// LightBlue can format text to be displayed to the terminal in light blue.
	LightBlue = Color(94)
	// LightPurple can format text to be displayed to the terminal in light purple.
	LightPurple = Color(95)
	// Red can format text to be displayed to the terminal in red.
	Red = Color(31)
	// Green can format text to be displayed to the terminal in green.
	Green = Color(32)
	// Yellow can format text to be displayed to the terminal in yellow.
	Yellow = Color(33)
	// Blue can format text to be displayed to the terminal in blue.
	Blue = Color(34)
	// Purple can format text to be displayed to the terminal in purple.
	Purple = Color(35)
	// Cyan can format text to be displayed to the terminal in cyan.
	Cyan = Color(36)
	// None uses the default terminal style.
	None = Color(0)

	// DefaultColorCode is the default color code for output.
	DefaultColorCode = 34
)

// Fprintln outputs the result to out, followed by a newline.
func (c Color) Fprintln(out io.Writer, a ...interface{}) {
	if c == None || !IsColorable(out) {
		fmt.Fprintln(out, a...)
		return
	}

	fmt.Fprintf(out, "\033[%dm%s\033[0m\n", c, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
}

// Fprintf applies formats according to the format specifier (and the optional
// interfaces provided), wraps the result in the color escape codes, and outputs
// the result to out. If out is not colorable the escape codes are elided.
func (c Color) Fprintf(out io.Writer, format string, a ...interface{}) {
	if c == None || !IsColorable(out) {
		fmt.Fprintf(out, format, a...)
		return
	}

	fmt.Fprintf(out, "\033[%dm%s\033[0m", c, fmt.Sprintf(format, a...))
}

// Sprintf applies formats according to the format specifier (and the optional
// interfaces provided) and wraps the result in the color escape codes.
func (c Color) Sprintf(format string, a ...interface{}) string {
	return fmt.Sprintf("\033[%dm%s\033[0m", c, fmt.Sprintf(format, a...))
}

// ParseColorCode validates a color flag value and returns the matching Color.
func ParseColorCode(code int) (Color, error) {
	switch code {
	case 0, 31, 32, 33, 34, 35, 36, 91, 92, 93, 94, 95:
		return Color(code), nil
	default:
		return None, fmt.Errorf("invalid color code: %s", strconv.Itoa(code))
	}
}
