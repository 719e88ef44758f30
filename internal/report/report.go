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

// Package report renders query results as fixed-width text tables.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/kraklabs/rdftools/internal/i18n"
	"github.com/kraklabs/rdftools/internal/ui"
)

const (
	// DefaultWidth is used when the output is not a terminal.
	DefaultWidth = 80

	columnSep = "|"
	headerSep = "="
)

// Options controls table layout.
type Options struct {
	// Width is the total line width. Zero means the terminal width, or
	// DefaultWidth when stdout is not a terminal.
	Width int

	// Elapsed, when non-zero, is reported in the footer.
	Elapsed time.Duration

	// Color enables bold headers and dim separators.
	Color bool
}

// TerminalWidth returns the width of the terminal on f, or def.
func TerminalWidth(f *os.File, def int) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return def
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return def
	}
	return w
}

// ColumnWidth splits width evenly between n columns, leaving room for one
// separator per column.
func ColumnWidth(width, n int) int {
	if n <= 0 {
		return width
	}
	w := (width - n) / n
	if w < 1 {
		w = 1
	}
	return w
}

// Table writes a header row, a "=" rule, one line per row and a footer
// with the row count. Cells are left-aligned and padded to the column
// width; longer values are not truncated.
func Table(w io.Writer, cat *i18n.Catalog, columns []string, rows [][]string, opts Options) error {
	width := opts.Width
	if width <= 0 {
		width = TerminalWidth(os.Stdout, DefaultWidth)
	}
	colWidth := ColumnWidth(width, len(columns))
	p := ui.NewPrinter(w, opts.Color)
	sep := p.DimText(columnSep)

	var b strings.Builder
	for _, c := range columns {
		b.WriteString(p.Label(pad(c, colWidth)))
		b.WriteString(sep)
	}
	b.WriteString("\n")

	for range columns {
		b.WriteString(p.DimText(strings.Repeat(headerSep, colWidth)))
		b.WriteString(sep)
	}
	b.WriteString("\n")

	for _, row := range rows {
		for i := range columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(pad(cell, colWidth))
			b.WriteString(sep)
		}
		b.WriteString("\n")
	}

	b.WriteString(p.DimText(Footer(cat, len(rows), opts.Elapsed)))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// Footer returns the "N rows returned" line.
func Footer(cat *i18n.Catalog, n int, elapsed time.Duration) string {
	if elapsed > 0 {
		return cat.T("rdftools.report_timed", "len", n, "time", fmt.Sprintf("%.3f", elapsed.Seconds()))
	}
	return cat.T("rdftools.report", "len", n)
}

func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
