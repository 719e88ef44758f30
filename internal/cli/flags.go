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

// Package cli holds the pieces shared by every rdftools command: the common
// flags, logger construction and progress display.
package cli

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/pkg/rdfio"
)

// FormatValue is a pflag.Value that only accepts known format names.
type FormatValue struct {
	target *string
}

// NewFormatValue binds a format flag to target.
func NewFormatValue(target *string) *FormatValue {
	return &FormatValue{target: target}
}

func (f *FormatValue) String() string {
	if f.target == nil {
		return ""
	}
	return *f.target
}

// Set validates name against the registered formats.
func (f *FormatValue) Set(name string) error {
	if _, err := rdfio.Lookup(name); err != nil {
		return fmt.Errorf("invalid choice: %q (choose from %s)", name, strings.Join(rdfio.Names(), ", "))
	}
	*f.target = name
	return nil
}

// Type is shown in usage output.
func (f *FormatValue) Type() string { return "format" }

// Common holds the flags every one-shot tool accepts.
type Common struct {
	Verbose  int
	Base     string
	Inputs   []string
	Read     string
	UseColor bool
}

// NewFlagSet creates a flag set with the common flags registered. Usage
// and parse errors go to stderr.
func NewFlagSet(name, summary string, stderr io.Writer) (*flag.FlagSet, *Common) {
	c := &Common{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false

	fs.CountVarP(&c.Verbose, "verbose", "v", "increase log output (-v warn, -vv info, -vvv debug)")
	fs.StringVarP(&c.Base, "base", "b", "", "base URI for relative references")
	fs.StringArrayVarP(&c.Inputs, "input", "i", nil, "input file; repeatable, standard input when omitted")
	fs.VarP(NewFormatValue(&c.Read), "read", "r", "input format ("+strings.Join(rdfio.Names(), ", ")+")")
	fs.BoolVarP(&c.UseColor, "use-color", "c", false, "use color in output")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: %s [options] [FILE...]\n\n%s\n\nOptions:\n", name, summary)
		fs.PrintDefaults()
	}
	return fs, c
}

// Parse parses args. Positional arguments are appended to c.Inputs.
//
// A help request returns ErrHelp; other failures return a usage error
// (exit 2). pflag has already written the diagnostic and usage text.
func Parse(fs *flag.FlagSet, c *Common, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return ErrHelp
		}
		return errors.NewUsageError(err.Error(), "", "Run with --help for usage")
	}
	c.Inputs = append(c.Inputs, fs.Args()...)
	return nil
}

// ErrHelp is returned by Parse when -h/--help was given.
var ErrHelp = flag.ErrHelp

// ExitCode maps an error from Parse or a tool run to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil, err == ErrHelp:
		return errors.ExitSuccess
	}
	if ue, ok := err.(*errors.UserError); ok {
		return ue.ExitCode
	}
	return errors.KindOf(err).ExitCode()
}
