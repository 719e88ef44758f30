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

package tools

import (
	"context"
	"fmt"

	"github.com/kraklabs/rdftools/internal/cli"
	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/pkg/graph"
)

// Validate parses each input into its own graph. The first input that
// fails is logged as a warning and reported as a validation error, which
// exits with status 1.
func Validate(ctx context.Context, args []string, env cli.Env) int {
	fs, c := cli.NewFlagSet("rdf-validate", env.Catalog.T("scripts.validate_command"), env.Stderr)
	if err := cli.Parse(fs, c, args); err != nil {
		return cli.ExitCode(err)
	}

	r := newRun("rdf-validate", env, c, false)
	inputs := c.Inputs
	if len(inputs) == 0 {
		inputs = []string{stdinName}
	}
	for _, name := range inputs {
		if err := ctx.Err(); err != nil {
			return r.fail(errors.WithKind(errors.KindRead, err))
		}
		r.logger.Info("validate.file", "name", name)
		if err := r.readInto(graph.New(), name); err != nil {
			r.logger.Warn("validate.failed", "name", name, "kind", errors.KindOf(err).String(), "err", err)
			return r.fail(errors.NewValidationError(
				fmt.Sprintf("Validation failed for %s", name),
				"",
				"Fix the syntax error or pass the right format with -r/--read",
				err,
			))
		}
		r.logger.Info("validate.ok", "name", name)
	}
	return r.done()
}
