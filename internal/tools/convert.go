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
	"strings"

	"github.com/kraklabs/rdftools/internal/cli"
	"github.com/kraklabs/rdftools/pkg/rdfio"
)

// Convert reads every input into one graph and writes it in another format.
//
// Flags (besides the common ones):
//   - -o/--output FILE: write to FILE instead of standard output
//   - -w/--write FORMAT: output format; guessed from FILE, else turtle
//
// Examples:
//
//	rdf-convert -i sample.n3 -r n3 -w nt
//	rdf-convert -o sample.rdf sample.ttl
func Convert(ctx context.Context, args []string, env cli.Env) int {
	fs, c := cli.NewFlagSet("rdf-convert", env.Catalog.T("scripts.convert_command"), env.Stderr)
	out := fs.StringP("output", "o", "", "write to FILE instead of standard output")
	var format string
	fs.VarP(cli.NewFormatValue(&format), "write", "w", "output format ("+strings.Join(rdfio.Names(), ", ")+")")

	if err := cli.Parse(fs, c, args); err != nil {
		return cli.ExitCode(err)
	}

	r := newRun("rdf-convert", env, c, false)
	g, err := r.readAll(ctx)
	if err != nil {
		return r.fail(err)
	}
	if err := r.write(g, *out, format); err != nil {
		return r.fail(err)
	}
	return r.done()
}
