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

package shell

import (
	stderrors "errors"
	"os/exec"
	"strings"
	"time"
	"unicode"

	"github.com/mattn/go-shellwords"

	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/internal/report"
	"github.com/kraklabs/rdftools/internal/tools"
	"github.com/kraklabs/rdftools/pkg/graph"
	"github.com/kraklabs/rdftools/pkg/rdfio"
	"github.com/kraklabs/rdftools/pkg/sparql"
)

// minQueryLength is the shortest text the query command will try to run.
const minQueryLength = 7

// builtinCommands returns the commands every shell starts with.
func builtinCommands() []Command {
	return []Command{
		{Name: execCommand, Usage: "! [command]", Summary: "Execute a command in a sub-shell.", Run: cmdExec},
		{Name: "base", Usage: "base [URI]", Summary: "Set the base URI to be used when parsing model files.", Run: cmdBase},
		{Name: "clear", Usage: "clear [base | prefix pre:]", Summary: "Clear the current context.", Run: cmdClear},
		{Name: "close", Usage: "close", Summary: "Close the current store connection, if one exists.", Run: cmdToDo},
		{Name: "connect", Usage: "connect URI", Summary: "Connect to a store (TBD).", Run: cmdToDo},
		{Name: "context", Usage: "context", Summary: "Display the current context.", Run: cmdContext},
		{Name: "echo", Usage: "echo text", Summary: "Echo back the following text.", Run: cmdEcho},
		{Name: "exit", Usage: "exit", Summary: "Exit the shell.", Run: cmdExit},
		{Name: "help", Usage: "help [command]", Summary: "Display help on built-in shell commands.", Run: cmdHelp},
		{Name: "objects", Usage: "objects", Summary: "Display objects in current context.", Run: selector(tools.SelectObjects)},
		{Name: "parse", Usage: "parse filename [format=n3]", Summary: "Read a file into the current context graph.", Run: cmdParse},
		{Name: "predicates", Usage: "predicates", Summary: "Display predicates in current context.", Run: selector(tools.SelectPredicates)},
		{Name: "prefix", Usage: "prefix [pre: URI]", Summary: "Set a prefix to represent a URI.", Run: cmdPrefix},
		{Name: "prompt", Usage: "prompt text", Summary: "Set the prompt used in the shell.", Run: cmdPrompt},
		{Name: "query", Usage: "query sparql", Summary: "Run SPARQL query.", Run: cmdQuery},
		{Name: "serialize", Usage: "serialize filename [format=n3]", Summary: "Write the current context graph into a file.", Run: cmdSerialize},
		{Name: "show", Usage: "show [format=n3]", Summary: "Display current context graph in format.", Run: cmdShow},
		{Name: "stats", Usage: "stats", Summary: "Display command counts and timings for this session.", Run: cmdStats},
		{Name: "subjects", Usage: "subjects", Summary: "Display subjects in current context.", Run: selector(tools.SelectSubjects)},
		{Name: "types", Usage: "types", Summary: "Display the rdf:type objects in current context.", Run: selector(tools.SelectTypes)},
	}
}

func cmdBase(sh *Shell, s *Session, args string) (*Session, error) {
	argv := strings.Fields(args)
	if len(argv) == 0 {
		if s.Base != "" {
			sh.infof("BASE <%s>", s.Base)
		}
		return s, nil
	}
	if uri, ok := sh.parseURI(argv[0]); ok {
		s.Base = uri
	}
	return s, nil
}

func cmdPrefix(sh *Shell, s *Session, args string) (*Session, error) {
	argv := strings.Fields(args)
	switch len(argv) {
	case 0:
		for _, name := range s.PrefixNames() {
			sh.infof("PREFIX %s: <%s>.", name, s.Prefixes[name])
		}
	case 2:
		pre, ok := sh.parsePrefix(argv[0])
		if !ok {
			return s, nil
		}
		uri, ok := sh.parseURI(argv[1])
		if !ok {
			return s, nil
		}
		s.Prefixes[pre] = uri
	default:
		sh.warn(sh.cat.T("shell.invalid_param_num", "count", 2))
	}
	return s, nil
}

func cmdParse(sh *Shell, s *Session, args string) (*Session, error) {
	argv, ok := sh.splitArgs(args)
	if !ok {
		return s, nil
	}
	if len(argv) == 0 {
		sh.warn(sh.cat.T("shell.invalid_params"))
		return s, nil
	}
	format, ok := sh.format(argv, 2)
	if !ok {
		return s, nil
	}
	sh.load(s, argv[0], format)
	return s, nil
}

// load reads path into the session graph and reports the new size.
func (sh *Shell) load(s *Session, path, format string) bool {
	sh.logger.Info("read.file", "name", path, "format", format)
	start := time.Now()
	n, err := rdfio.ReadFile(path, format, s.Graph, s.options())
	if err != nil {
		sh.ioFailure(err, path, format, false)
		return false
	}
	sh.metrics.RecordRead(n, time.Since(start))
	sh.info(sh.cat.T("shell.graph_updated", "len", s.Graph.Len()))
	return true
}

func cmdSerialize(sh *Shell, s *Session, args string) (*Session, error) {
	argv, ok := sh.splitArgs(args)
	if !ok {
		return s, nil
	}
	if len(argv) == 0 {
		sh.warn(sh.cat.T("shell.invalid_params"))
		return s, nil
	}
	format, ok := sh.format(argv, 2)
	if !ok {
		return s, nil
	}

	path := argv[0]
	sh.logger.Info("write.file", "name", path, "format", format)
	start := time.Now()
	if err := rdfio.WriteFile(path, s.Graph, format, s.options()); err != nil {
		sh.ioFailure(err, path, format, true)
		return s, nil
	}
	sh.metrics.RecordWrite(time.Since(start))
	return s, nil
}

func cmdShow(sh *Shell, s *Session, args string) (*Session, error) {
	argv, ok := sh.splitArgs(args)
	if !ok {
		return s, nil
	}
	format, ok := sh.format(argv, 1)
	if !ok {
		return s, nil
	}

	start := time.Now()
	if err := rdfio.Write(sh.out, s.Graph, format, s.options()); err != nil {
		sh.ioFailure(err, "-", format, true)
		return s, nil
	}
	sh.metrics.RecordWrite(time.Since(start))
	return s, nil
}

func cmdQuery(sh *Shell, s *Session, args string) (*Session, error) {
	text := strings.TrimSpace(args)
	if len(text) < minQueryLength || !hasQueryForm(text) {
		sh.warn(sh.cat.T("shell.query_form_err", "forms", formList()))
		return s, nil
	}

	start := time.Now()
	res, err := sparql.NewExecutor(s.Graph).ExecuteString(sh.ctx, text, sparql.ParseOptions{
		Base:     s.Base,
		Prefixes: s.Prefixes,
	})
	elapsed := time.Since(start)
	sh.metrics.RecordQuery(elapsed)
	if err != nil {
		if sh.abortOnQueryError {
			return s, errors.NewQueryError(
				"Query failed",
				err.Error(),
				"Fix the query, or set shell.query_errors to \"warn\" to keep the shell running",
				err,
			)
		}
		sh.warn(sh.cat.T("shell.query_err", "err", err))
		return s, nil
	}
	sh.logger.Debug("query.result", "form", string(res.Form), "len", res.Len(), "elapsed", elapsed)

	switch res.Form {
	case sparql.FormSelect:
		if len(res.Rows) == 0 {
			sh.info(sh.cat.T("shell.query_no_results"))
			return s, nil
		}
		rows := make([][]string, len(res.Rows))
		for i, row := range res.Rows {
			rows[i] = make([]string, len(res.Vars))
			for j, v := range res.Vars {
				if term, ok := row.Get(v); ok {
					rows[i][j] = graph.Display(term)
				}
			}
		}
		err = report.Table(sh.out, sh.cat, res.Vars, rows, report.Options{
			Width:   sh.cfg.Report.Width,
			Elapsed: elapsed,
			Color:   sh.printer.UseColor(),
		})
	case sparql.FormAsk:
		sh.info(sh.cat.T("shell.ask_results", "result", res.Boolean))
	default:
		err = rdfio.Write(sh.out, res.Graph, "nt", s.options())
	}
	if err != nil {
		sh.ioFailure(err, "-", "nt", true)
	}
	return s, nil
}

// hasQueryForm reports whether text starts with a query form keyword or a
// prologue declaration.
func hasQueryForm(text string) bool {
	word := strings.ToUpper(strings.Fields(text)[0])
	if word == "PREFIX" || word == "BASE" {
		return true
	}
	for _, f := range sparql.Forms {
		if word == string(f) || strings.HasPrefix(word, string(f)+"{") {
			return true
		}
	}
	return false
}

func formList() string {
	names := make([]string, len(sparql.Forms))
	for i, f := range sparql.Forms {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func selector(sel tools.Selection) HandlerFunc {
	return func(sh *Shell, s *Session, _ string) (*Session, error) {
		sh.logger.Info("select."+string(sel), "len", s.Graph.Len())
		for _, v := range tools.Terms(s.Graph, sel) {
			sh.printer.Println(graph.Display(v))
		}
		return s, nil
	}
}

func cmdContext(sh *Shell, s *Session, _ string) (*Session, error) {
	s, _ = cmdBase(sh, s, "")
	s, _ = cmdPrefix(sh, s, "")
	g := s.Graph
	sh.printer.Println("")
	sh.printer.Printf("Graph        ID %s\n", g.ID())
	sh.printer.Printf("|          type %s\n", "Graph")
	sh.printer.Printf("|         store %s\n", g.Store())
	sh.printer.Printf("|          size %d statements\n", g.Len())
	sh.printer.Printf("|context aware? %t\n", g.ContextAware())
	sh.printer.Printf("|formula aware? %t\n", g.FormulaAware())
	sh.printer.Printf("|default union? %t\n", g.DefaultUnion())
	sh.printer.Println("")
	return s, nil
}

func cmdClear(sh *Shell, _ *Session, _ string) (*Session, error) {
	return NewSession(sh.cfg.Shell.Prompt), nil
}

func cmdToDo(sh *Shell, s *Session, _ string) (*Session, error) {
	sh.warn(sh.cat.T("shell.to_do"))
	return s, nil
}

func cmdExec(sh *Shell, s *Session, args string) (*Session, error) {
	if args == "" {
		sh.warn(sh.cat.T("shell.invalid_params"))
		return s, nil
	}

	cmd := exec.CommandContext(sh.ctx, "sh", "-c", args) //nolint:gosec // G204: running the user's command is the point
	cmd.Stdin = sh.in
	cmd.Stdout = sh.out
	cmd.Stderr = sh.errOut

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case stderrors.As(err, &exitErr):
		sh.info(sh.cat.T("shell.exec_status", "code", exitErr.ExitCode()))
	default:
		sh.warn(sh.cat.T("shell.exec_err", "err", err))
	}
	return s, nil
}

// cmdHelp prints usage for one command or all of them. An unknown name
// prints nothing.
func cmdHelp(sh *Shell, s *Session, args string) (*Session, error) {
	names := sh.registry.Names()
	if args != "" {
		names = []string{args}
	}
	for _, name := range names {
		cmd, ok := sh.registry.Lookup(name)
		if !ok {
			continue
		}
		if cmd.Summary == "" {
			sh.printer.Println(" " + cmd.Name)
			continue
		}
		sh.printer.Printf(" %s\n        %s\n", cmd.Usage, cmd.Summary)
	}
	return s, nil
}

func cmdExit(sh *Shell, s *Session, _ string) (*Session, error) {
	sh.closeStore(s)
	sh.done = true
	return s, nil
}

// closeStore releases the session's store. Graphs are in memory, so there
// is nothing to release yet.
func (sh *Shell) closeStore(s *Session) {
	sh.logger.Debug("shell.store.close", "graph", s.Graph.ID())
}

func cmdEcho(sh *Shell, s *Session, args string) (*Session, error) {
	sh.printer.Println(args)
	return s, nil
}

func cmdPrompt(_ *Shell, s *Session, args string) (*Session, error) {
	if args != "" {
		s.Prompt = args + " "
	}
	return s, nil
}

func cmdStats(sh *Shell, s *Session, _ string) (*Session, error) {
	samples, err := sh.metrics.Snapshot()
	if err != nil {
		sh.warn(err.Error())
		return s, nil
	}
	sh.printer.Header(sh.cat.T("shell.stats_header"))
	for _, sample := range samples {
		name := sample.Name
		if sample.Labels != "" {
			name += "{" + sample.Labels + "}"
		}
		if sample.Histogram {
			sh.printer.Printf("%-40s count=%d sum=%.3fs\n", name, sample.Count, sample.Value)
			continue
		}
		sh.printer.Printf("%-40s %g\n", name, sample.Value)
	}
	return s, nil
}

// parseURI strips the brackets from "<uri>".
func (sh *Shell) parseURI(text string) (string, bool) {
	if len(text) > 2 && strings.HasPrefix(text, "<") && strings.HasSuffix(text, ">") {
		return text[1 : len(text)-1], true
	}
	sh.warn(sh.cat.T("shell.invalid_uri"))
	return "", false
}

// parsePrefix validates "pre:" and returns "pre". The empty prefix ":" is
// allowed.
func (sh *Shell) parsePrefix(text string) (string, bool) {
	if !strings.HasSuffix(text, ":") {
		sh.warn(sh.cat.T("shell.invalid_prefix"))
		return "", false
	}
	pre := strings.TrimSuffix(text, ":")
	for _, r := range pre {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			sh.warn(sh.cat.T("shell.invalid_prefix_char"))
			return "", false
		}
	}
	return pre, true
}

// splitArgs tokenizes args the way a POSIX shell would, so quoted paths
// may contain spaces.
func (sh *Shell) splitArgs(args string) ([]string, bool) {
	argv, err := shellwords.Parse(args)
	if err != nil {
		sh.warn(sh.cat.T("shell.invalid_args", "err", err))
		return nil, false
	}
	return argv, true
}

// format returns the format named at argv[place-1], or the default format
// when argv is shorter. An unknown name is a warning.
func (sh *Shell) format(argv []string, place int) (string, bool) {
	if len(argv) < place {
		if f := sh.cfg.Shell.DefaultFormat; f != "" {
			return f, true
		}
		return "n3", true
	}
	name := argv[place-1]
	if _, err := rdfio.Lookup(name); err != nil {
		sh.warn(sh.cat.T("shell.invalid_format", "format", name))
		return "", false
	}
	return name, true
}

// ioFailure reports a failed read or write with a message chosen by the
// error's kind.
func (sh *Shell) ioFailure(err error, path, format string, writing bool) {
	msg := strings.TrimPrefix(err.Error(), path+": ")
	switch kind := errors.KindOf(err); {
	case kind == errors.KindFormat:
		sh.fail(sh.cat.T("shell.file_format_err", "format", format, "err", msg))
	case kind == errors.KindParse:
		sh.fail(sh.cat.T("shell.file_parse_err", "path", path, "format", format, "err", msg))
	case writing:
		sh.fail(sh.cat.T("shell.file_write_err", "path", path, "err", msg))
	default:
		sh.fail(sh.cat.T("shell.file_read_err", "path", path, "err", msg))
	}
}
