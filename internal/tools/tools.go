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

// Package tools implements the one-shot commands: convert, query, select
// and validate.
//
// Each command follows the same pipeline: parse flags, read every input
// into one graph, act on it, then write or report. Failures are reported
// on stderr and mapped to an exit code; nothing here calls os.Exit.
package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/kraklabs/rdftools/internal/cli"
	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/internal/output"
	"github.com/kraklabs/rdftools/pkg/graph"
	"github.com/kraklabs/rdftools/pkg/rdfio"
)

// stdinName is the input name that stands for standard input.
const stdinName = "-"

// run carries the state of one command invocation.
type run struct {
	env      cli.Env
	common   *cli.Common
	logger   *slog.Logger
	progress cli.ProgressConfig
	json     bool
}

func newRun(name string, env cli.Env, c *cli.Common, jsonOutput bool) *run {
	logger := cli.NewLogger(env.Stderr, c.Verbose+env.Verbose)
	logger.Info("tool.started", "tool", name, "level", cli.Level(c.Verbose+env.Verbose).String())
	return &run{
		env:      env,
		common:   c,
		logger:   logger,
		progress: cli.NewProgressConfig(env.Stderr, jsonOutput, !c.UseColor),
		json:     jsonOutput,
	}
}

func (r *run) options() rdfio.Options {
	return rdfio.Options{Base: r.common.Base, Prefixes: graph.DefaultPrefixes()}
}

// readAll merges every input into a new graph. Without inputs, standard
// input is read.
func (r *run) readAll(ctx context.Context) (*graph.Graph, error) {
	g := graph.New()
	inputs := r.common.Inputs
	if len(inputs) == 0 {
		inputs = []string{stdinName}
	}

	bar := cli.NewProgressBar(r.progress, int64(len(inputs)), "reading")
	defer cli.Finish(bar)
	for _, name := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithKind(errors.KindRead, err)
		}
		if err := r.readInto(g, name); err != nil {
			return nil, err
		}
		cli.Step(bar)
	}
	return g, nil
}

// readInto reads one input into g.
func (r *run) readInto(g *graph.Graph, name string) error {
	var (
		n      int
		err    error
		format string
		start  = time.Now()
	)
	if name == stdinName {
		format = rdfio.Resolve(r.common.Read, "")
		r.logger.Info("read.stdin", "format", format)
		spinner := cli.NewSpinner(r.progress, "reading standard input")
		n, err = rdfio.Read(r.env.Stdin, format, g, r.options())
		cli.Finish(spinner)
	} else {
		format = rdfio.Resolve(r.common.Read, name)
		r.logger.Info("read.file", "name", name, "format", format)
		n, err = rdfio.ReadFile(name, format, g, r.options())
	}
	if err != nil {
		return err
	}

	elapsed := time.Since(start)
	r.env.Metrics.RecordRead(n, elapsed)
	r.logger.Info("read.complete", "len", g.Len(), "elapsed", elapsed)
	return nil
}

// write serializes g to path, or to stdout when path is empty.
func (r *run) write(g *graph.Graph, path, format string) error {
	format = rdfio.Resolve(format, path)
	r.logger.Debug("write.graph", "graph", g.ID(), "len", g.Len())
	start := time.Now()

	var err error
	if path == "" {
		r.logger.Info("write.stdout", "format", format)
		err = rdfio.Write(r.env.Stdout, g, format, r.options())
	} else {
		r.logger.Info("write.file", "name", path, "format", format)
		err = rdfio.WriteFile(path, g, format, r.options())
	}
	if err != nil {
		return err
	}

	elapsed := time.Since(start)
	r.env.Metrics.RecordWrite(elapsed)
	r.logger.Debug("write.complete", "elapsed", elapsed)
	return nil
}

// fail reports err and returns the exit code for it. Read and parse
// failures are wrapped so the user sees which input broke; unclassified
// errors are reported as internal.
func (r *run) fail(err error) int {
	switch errors.KindOf(err) {
	case errors.KindRead, errors.KindParse:
		if _, ok := err.(*errors.UserError); !ok {
			err = errors.NewReadError(
				r.env.Catalog.T("scripts.read_error", "message", err.Error()),
				"",
				"Check the input path and the format given with -r/--read",
				err,
			)
		}
	case errors.KindWrite:
		if _, ok := err.(*errors.UserError); !ok {
			err = errors.NewWriteError(
				r.env.Catalog.T("scripts.write_error", "message", err.Error()),
				"",
				"Check that the output directory exists and is writable",
				err,
			)
		}
	case errors.KindInternal:
		if _, ok := err.(*errors.UserError); !ok {
			err = errors.NewInternalError(
				"Unexpected internal error",
				err.Error(),
				"Please report this with the command line that triggered it",
				err,
			)
		}
	}

	if r.json {
		_ = output.JSONErrorTo(r.env.Stdout, err)
		return cli.ExitCode(err)
	}
	return errors.Report(r.env.Stderr, err, false)
}

// done logs the collected metrics at debug level and returns ExitSuccess.
func (r *run) done() int {
	samples, err := r.env.Metrics.Snapshot()
	if err == nil {
		for _, s := range samples {
			r.logger.Debug("metrics.sample", "name", s.Name, "labels", s.Labels, "value", s.Value, "count", s.Count)
		}
	}
	return errors.ExitSuccess
}
