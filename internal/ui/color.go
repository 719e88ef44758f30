// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides terminal output helpers for the rdftools CLIs.
//
// Output goes through a Printer bound to an io.Writer, so the shell and the
// one-shot tools can be driven against buffers in tests. Colors are off
// unless explicitly enabled (--use-color) and are always off when the
// NO_COLOR environment variable is set.
//
// Color usage guidelines:
//   - Red: Errors, failures
//   - Yellow: Warnings
//   - Cyan: Info, neutral messages
//   - Bold: Headers, labels
//   - Dim: Less important details, paths
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Pre-configured color attributes for consistent CLI output.
var (
	// Red is used for error messages and failures.
	Red = []color.Attribute{color.FgRed}

	// Yellow is used for warnings.
	Yellow = []color.Attribute{color.FgYellow}

	// Cyan is used for informational messages.
	Cyan = []color.Attribute{color.FgCyan}

	// Bold is used for headers and important labels.
	Bold = []color.Attribute{color.Bold}

	// Dim is used for less important details like paths.
	Dim = []color.Attribute{color.Faint}
)

// ColorEnabled reports whether colored output should be produced for the
// given --use-color setting.
func ColorEnabled(useColor bool) bool {
	return useColor && os.Getenv("NO_COLOR") == ""
}

// Printer writes user-facing messages to a single writer.
//
// The zero value is not usable; create one with NewPrinter.
type Printer struct {
	w        io.Writer
	useColor bool
}

// NewPrinter returns a Printer writing to w. Colors are used only when
// useColor is true and NO_COLOR is unset.
func NewPrinter(w io.Writer, useColor bool) *Printer {
	return &Printer{w: w, useColor: ColorEnabled(useColor)}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer { return p.w }

// UseColor reports whether the printer emits ANSI color codes.
func (p *Printer) UseColor() bool { return p.useColor }

func (p *Printer) paint(attrs []color.Attribute, text string) string {
	if !p.useColor {
		return text
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(text)
}

// Println writes msg followed by a newline, uncolored.
func (p *Printer) Println(msg string) {
	_, _ = fmt.Fprintln(p.w, msg)
}

// Printf writes a formatted message, uncolored.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}

// Info prints an informational message in cyan.
//
// Example output: "Graph updated, now 25 statements."
func (p *Printer) Info(msg string) {
	_, _ = fmt.Fprintln(p.w, p.paint(Cyan, msg))
}

// Infof prints a formatted informational message.
func (p *Printer) Infof(format string, args ...any) {
	p.Info(fmt.Sprintf(format, args...))
}

// Warning prints a warning message in yellow.
//
// Example output: "Warning, unknown command: frob."
func (p *Printer) Warning(msg string) {
	_, _ = fmt.Fprintln(p.w, p.paint(Yellow, msg))
}

// Error prints an error message in red.
func (p *Printer) Error(msg string) {
	_, _ = fmt.Fprintln(p.w, p.paint(Red, msg))
}

// Header prints a bold header with an underline separator.
//
// Example output:
//
//	Session statistics
//	==================
func (p *Printer) Header(text string) {
	_, _ = fmt.Fprintln(p.w, p.paint(Bold, text))
	_, _ = fmt.Fprintln(p.w, strings.Repeat("=", len(text)))
}

// Label returns a bold-formatted label string for inline use.
func (p *Printer) Label(text string) string {
	return p.paint(Bold, text)
}

// DimText returns a dim-formatted string for less important text.
func (p *Printer) DimText(text string) string {
	return p.paint(Dim, text)
}
