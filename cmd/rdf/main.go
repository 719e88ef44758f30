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

// Package main implements rdf, the front end for the RDF tools.
//
// Usage:
//
//	rdf validate [options] FILE...     Check that files parse
//	rdf convert [options] FILE...      Convert between serialization formats
//	rdf select [options] FILE...       List unique subjects, predicates, objects or types
//	rdf query -q SPARQL FILE...        Run a SPARQL query
//	rdf shell [options] [FILE...]      Start the interactive shell
//	rdf completion bash|zsh|fish       Print a shell completion script
package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/rdftools/internal/cli"
	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/internal/shell"
	"github.com/kraklabs/rdftools/internal/tools"
)

// forwardedVerbosity is the level a single -v on rdf turns into for the
// command it runs.
const forwardedVerbosity = 3

// command is one entry of the rdf command table.
type command struct {
	name    string
	summary string
	run     cli.Func
}

// commands lists the commands in the order usage shows them.
var commands = []command{
	{"validate", "Check that RDF files parse", tools.Validate},
	{"convert", "Convert RDF files between serialization formats", tools.Convert},
	{"select", "Select unique subjects, predicates, objects or types", tools.Select},
	{"query", "Run a SPARQL query over RDF files", tools.Query},
	{"shell", "Start the interactive RDF shell", shell.Main},
	{"completion", "Generate shell completion script (bash|zsh|fish)", runCompletion},
}

func main() {
	cli.Main(run)
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// run parses the global flags and runs the named command in-process.
//
// Global flags:
//   - -v, --verbose: run the command with debug logging
//   - --version: print the version and exit
func run(ctx context.Context, args []string, env cli.Env) int {
	fs := flag.NewFlagSet("rdf", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.SetInterspersed(false)
	verbose := fs.BoolP("verbose", "v", false, "run the command with debug logging")
	showVersion := fs.Bool("version", false, "show version and exit")
	fs.Usage = func() { usage(env.Stderr) }

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errors.ExitSuccess
		}
		return errors.Report(env.Stderr, errors.NewUsageError(err.Error(), "", "Run 'rdf --help' for usage"), false)
	}

	if *showVersion {
		_, _ = fmt.Fprintf(env.Stdout, "rdf version %s\n", cli.Version)
		return errors.ExitSuccess
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return errors.Report(env.Stderr, errors.NewUsageError(
			"Missing command",
			"rdf needs a command to run",
			"Run 'rdf <command> --help' for help on a command",
		), false)
	}

	name, cmdArgs := fs.Arg(0), fs.Args()[1:]
	cmd, ok := lookup(name)
	if !ok {
		fs.Usage()
		return errors.Report(env.Stderr, errors.NewUsageError(
			fmt.Sprintf("Unknown command: %s", name),
			fmt.Sprintf("Valid commands: %s", strings.Join(commandNames(), ", ")),
			"Run 'rdf --help' for usage",
		), false)
	}

	if *verbose {
		env.Verbose = forwardedVerbosity
	}
	cli.NewLogger(env.Stderr, env.Verbose).Debug("rdf.dispatch", "command", name, "args", strings.Join(cmdArgs, " "))
	return cmd.run(ctx, cmdArgs, env)
}

func commandNames() []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.name
	}
	return names
}

func usage(w io.Writer) {
	var b strings.Builder
	b.WriteString(`rdf - RDF tools

Usage:
  rdf [-v] <command> [options] [FILE...]

Commands:
`)
	for _, c := range commands {
		fmt.Fprintf(&b, "  %-12s%s\n", c.name, c.summary)
	}
	b.WriteString(`
Global Options:
  -v, --verbose   Run the command with debug logging
  --version       Show version and exit

Examples:
  rdf validate data.ttl
  rdf convert -w nt data.ttl
  rdf select -t data.ttl
  rdf query -q "SELECT ?s WHERE { ?s a ?type }" data.ttl
  rdf shell data.ttl
  source <(rdf completion bash)

Configuration is read from ~/.rdftools.yaml, or the file named by
RDFTOOLS_CONFIG.

For detailed command help: rdf <command> --help

`)
	_, _ = io.WriteString(w, b.String())
}
