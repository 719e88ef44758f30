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
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/kraklabs/rdftools/internal/config"
	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/internal/i18n"
	"github.com/kraklabs/rdftools/internal/metrics"
	"github.com/kraklabs/rdftools/internal/ui"
)

// LineReader is the input side of the loop.
type LineReader interface {
	// Readline returns the next line without its newline, or io.EOF.
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// Options configure a Shell.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Config  *config.Config
	Catalog *i18n.Catalog
	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// UseColor enables colored messages (still off with NO_COLOR).
	UseColor bool

	// AbortOnQueryError ends the loop when a query cannot be parsed or
	// run. Otherwise the failure is a warning.
	AbortOnQueryError bool
}

// Shell dispatches command lines against a Session.
type Shell struct {
	registry *Registry
	session  *Session

	in      io.Reader
	out     io.Writer
	errOut  io.Writer
	printer *ui.Printer

	cfg     *config.Config
	cat     *i18n.Catalog
	metrics *metrics.Metrics
	logger  *slog.Logger

	abortOnQueryError bool

	ctx  context.Context
	done bool
}

// New returns a shell with the built-in commands registered and a fresh
// session. Unset options get working defaults.
func New(opts Options) *Shell {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Catalog == nil {
		opts.Catalog = i18n.MustLoad(i18n.Fallback)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	registry := NewRegistry()
	for _, cmd := range builtinCommands() {
		registry.Register(cmd)
	}

	return &Shell{
		registry:          registry,
		session:           NewSession(opts.Config.Shell.Prompt),
		in:                opts.Stdin,
		out:               opts.Stdout,
		errOut:            opts.Stderr,
		printer:           ui.NewPrinter(opts.Stdout, opts.UseColor),
		cfg:               opts.Config,
		cat:               opts.Catalog,
		metrics:           opts.Metrics,
		logger:            opts.Logger,
		abortOnQueryError: opts.AbortOnQueryError,
		ctx:               context.Background(),
	}
}

// Registry returns the shell's command registry.
func (sh *Shell) Registry() *Registry { return sh.registry }

// Session returns the current session.
func (sh *Shell) Session() *Session { return sh.session }

// Done reports whether exit has been run.
func (sh *Shell) Done() bool { return sh.done }

// Context returns the context of the running loop, for handlers that
// block.
func (sh *Shell) Context() context.Context { return sh.ctx }

// Dispatch runs one input line. Blank lines do nothing and unknown
// commands produce a warning; neither is an error.
func (sh *Shell) Dispatch(line string) error {
	name, args, ok := ParseLine(line)
	if !ok {
		return nil
	}

	cmd, found := sh.registry.Lookup(name)
	if !found {
		sh.logger.Debug("shell.command.unknown", "command", name)
		sh.warn(sh.cat.T("shell.unknown_cmd", "command", name))
		return nil
	}

	sh.logger.Debug("shell.command.run", "command", name, "args", args)
	sh.metrics.RecordCommand(name)
	next, err := cmd.Run(sh, sh.session, args)
	if next != nil {
		sh.session = next
	}
	return err
}

// RunScript dispatches every line of the file at path. A missing file is
// not an error; other I/O problems are warnings. Only an error returned by
// a handler stops the script and is passed on.
func (sh *Shell) RunScript(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path) //nolint:gosec // G304: the startup script path is user configuration
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		sh.warn(sh.cat.T("shell.read_file_err", "name", path, "err", err))
		return nil
	}
	defer func() { _ = f.Close() }()

	sh.info(sh.cat.T("shell.read_file", "name", path))
	sc := bufio.NewScanner(f)
	for sc.Scan() && !sh.done {
		if err := sh.Dispatch(sc.Text()); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		sh.warn(sh.cat.T("shell.read_file_err", "name", path, "err", err))
	}
	return nil
}

// Run reads and dispatches lines until end of input, exit, or ctx is
// cancelled.
func (sh *Shell) Run(ctx context.Context, r LineReader) error {
	sh.ctx = ctx
	defer func() { sh.ctx = context.Background() }()

	for !sh.done {
		if ctx.Err() != nil {
			return nil
		}
		r.SetPrompt(sh.session.Prompt)
		line, err := r.Readline()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.WithKind(errors.KindInput, err)
		}
		if err := sh.Dispatch(line); err != nil {
			return err
		}
	}
	return nil
}

func (sh *Shell) info(msg string) {
	sh.printer.Info(msg)
}

func (sh *Shell) infof(format string, args ...any) {
	sh.printer.Infof(format, args...)
}

func (sh *Shell) warn(msg string) {
	sh.metrics.RecordWarning()
	sh.logger.Warn("shell.warning", "msg", msg)
	sh.printer.Warning(msg)
}

func (sh *Shell) fail(msg string) {
	sh.metrics.RecordWarning()
	sh.logger.Warn("shell.error", "msg", msg)
	sh.printer.Error(msg)
}

// lineReader reads plain lines, without editing or history. It is used
// when standard input is not a terminal.
type lineReader struct {
	sc *bufio.Scanner
}

// NewLineReader returns a LineReader over r that ignores the prompt.
func NewLineReader(r io.Reader) LineReader {
	return &lineReader{sc: bufio.NewScanner(r)}
}

func (r *lineReader) Readline() (string, error) {
	if r.sc.Scan() {
		return strings.TrimSuffix(r.sc.Text(), "\r"), nil
	}
	if err := r.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (r *lineReader) SetPrompt(string) {}

func (r *lineReader) Close() error { return nil }
