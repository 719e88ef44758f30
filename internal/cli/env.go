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

package cli

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/kraklabs/rdftools/internal/config"
	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/internal/i18n"
	"github.com/kraklabs/rdftools/internal/metrics"
)

// Version is reported by rdf --version and the shell banner. Set with
// -ldflags "-X github.com/kraklabs/rdftools/internal/cli.Version=...".
var Version = "dev"

// Env is everything a command needs from its process: streams,
// configuration, messages and metrics. Tests build one around buffers.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Config  *config.Config
	Catalog *i18n.Catalog
	Metrics *metrics.Metrics

	// Verbose is added to the -v count a command parses itself. The rdf
	// dispatcher uses it to forward its own -v.
	Verbose int
}

// Func is the signature shared by every command so the rdf dispatcher can
// run them in-process.
type Func func(ctx context.Context, args []string, env Env) int

// NewEnv returns an Env on the process streams. The message locale comes
// from the configuration, then the environment.
func NewEnv(cfg *config.Config) (Env, error) {
	locale := cfg.Locale
	if locale == "" {
		locale = i18n.DetectLocale()
	}
	cat, err := i18n.Load(locale)
	if err != nil {
		return Env{}, err
	}
	return Env{
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Config:  cfg,
		Catalog: cat,
		Metrics: metrics.New(),
	}, nil
}

// Main loads the configuration, runs fn with the process arguments and
// exits with its status. Interrupts cancel the context passed to fn.
func Main(fn Func) {
	cfg, err := config.Load("")
	if err != nil {
		errors.FatalError(err, false)
	}
	env, err := NewEnv(cfg)
	if err != nil {
		errors.FatalError(err, false)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := fn(ctx, os.Args[1:], env)
	stop()
	os.Exit(code)
}
