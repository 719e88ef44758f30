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

	"github.com/cayleygraph/quad"

	"github.com/kraklabs/rdftools/internal/cli"
	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/internal/output"
	"github.com/kraklabs/rdftools/pkg/graph"
)

// Selection names one of the term sets rdf-select can list.
type Selection string

const (
	SelectSubjects   Selection = "subjects"
	SelectPredicates Selection = "predicates"
	SelectObjects    Selection = "objects"
	SelectTypes      Selection = "types"
)

// Terms returns the unique terms of g for sel, in first-seen order.
func Terms(g *graph.Graph, sel Selection) []quad.Value {
	switch sel {
	case SelectSubjects:
		return g.Subjects()
	case SelectPredicates:
		return g.Predicates()
	case SelectObjects:
		return g.Objects()
	case SelectTypes:
		return g.Types()
	}
	return nil
}

// Select lists the unique subjects (-s), predicates (-p), objects (-o) or
// rdf:type objects (-t) of the merged inputs, one per line. Exactly one
// selector must be given.
func Select(ctx context.Context, args []string, env cli.Env) int {
	fs, c := cli.NewFlagSet("rdf-select", env.Catalog.T("scripts.select_command"), env.Stderr)
	flags := []struct {
		sel   Selection
		short string
		set   *bool
	}{
		{sel: SelectSubjects, short: "s"},
		{sel: SelectPredicates, short: "p"},
		{sel: SelectObjects, short: "o"},
		{sel: SelectTypes, short: "t"},
	}
	for i := range flags {
		flags[i].set = fs.BoolP(string(flags[i].sel), flags[i].short, false, "select unique "+string(flags[i].sel))
	}
	jsonOutput := fs.Bool("json", false, "output results as JSON")

	if err := cli.Parse(fs, c, args); err != nil {
		return cli.ExitCode(err)
	}

	var chosen []Selection
	for _, f := range flags {
		if *f.set {
			chosen = append(chosen, f.sel)
		}
	}
	if len(chosen) != 1 {
		_, _ = fmt.Fprintln(env.Stderr, "Error: exactly one of -s, -p, -o or -t is required")
		fs.Usage()
		return errors.ExitUsage
	}
	sel := chosen[0]

	r := newRun("rdf-select", env, c, *jsonOutput)
	g, err := r.readAll(ctx)
	if err != nil {
		return r.fail(err)
	}

	r.logger.Info("select."+string(sel), "len", g.Len())
	terms := Terms(g, sel)
	if *jsonOutput {
		t := output.NewTable([]string{string(sel)})
		for _, v := range terms {
			t.Append([]string{graph.Display(v)})
		}
		if err := output.JSONTo(env.Stdout, t); err != nil {
			return r.fail(err)
		}
		return r.done()
	}
	for _, v := range terms {
		_, _ = fmt.Fprintln(env.Stdout, graph.Display(v))
	}
	return r.done()
}
