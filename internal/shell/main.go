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
	"context"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/kraklabs/rdftools/internal/cli"
	"github.com/kraklabs/rdftools/internal/config"
	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/pkg/rdfio"
)

// Main runs rdf-shell.
//
// Flags (besides the common ones):
//   - --abort-on-query-error: end the shell when a query fails
//   - --no-startup: skip the startup script
//   - --no-history: do not load or save history
//
// Inputs given with -i or as arguments are parsed before the startup
// script runs. Line editing is used only when standard input is a
// terminal; otherwise lines are read as they come, which allows
// "rdf-shell < script".
func Main(ctx context.Context, args []string, env cli.Env) int {
	fs, c := cli.NewFlagSet("rdf-shell", env.Catalog.T("scripts.shell_command"), env.Stderr)
	abort := fs.Bool("abort-on-query-error", false, "end the shell when a query fails (default from shell.query_errors)")
	noStartup := fs.Bool("no-startup", false, "skip the startup script")
	noHistory := fs.Bool("no-history", false, "do not load or save command history")

	if err := cli.Parse(fs, c, args); err != nil {
		return cli.ExitCode(err)
	}

	logger := cli.NewLogger(env.Stderr, c.Verbose+env.Verbose)
	logger.Info("tool.started", "tool", "rdf-shell", "level", cli.Level(c.Verbose+env.Verbose).String())
	if env.Config.Path != "" {
		logger.Info("config.loaded", "path", env.Config.Path)
	}

	sh := New(Options{
		Stdin:             env.Stdin,
		Stdout:            env.Stdout,
		Stderr:            env.Stderr,
		Config:            env.Config,
		Catalog:           env.Catalog,
		Metrics:           env.Metrics,
		Logger:            logger,
		UseColor:          c.UseColor || env.Config.Color,
		AbortOnQueryError: *abort || env.Config.Shell.QueryErrors == config.QueryErrorsAbort,
	})
	sh.Session().Base = c.Base

	sh.info(env.Catalog.T("shell.welcome", "version", cli.Version))
	for _, path := range c.Inputs {
		sh.load(sh.Session(), path, rdfio.Resolve(c.Read, path))
	}
	if !*noStartup {
		if err := sh.RunScript(env.Config.StartupPath()); err != nil {
			return errors.Report(env.Stderr, err, false)
		}
	}
	if sh.Done() {
		return errors.ExitSuccess
	}

	reader := sh.lineReader(env, *noHistory)
	defer func() { _ = reader.Close() }()

	if err := sh.Run(ctx, reader); err != nil {
		return errors.Report(env.Stderr, err, false)
	}
	sh.info(env.Catalog.T("shell.bye"))
	return errors.ExitSuccess
}

// lineReader picks the terminal editor when stdin is a terminal and falls
// back to plain lines when it is not, or when the editor fails to start.
func (sh *Shell) lineReader(env cli.Env, noHistory bool) LineReader {
	f, ok := env.Stdin.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return NewLineReader(env.Stdin)
	}

	history := env.Config.HistoryPath()
	if noHistory {
		history = ""
	}
	ed, err := NewEditor(sh.session.Prompt, history, sh.registry)
	if err != nil {
		sh.warn(sh.cat.T("shell.readline_err", "err", err))
		return NewLineReader(env.Stdin)
	}
	return ed
}
