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
	"time"

	"github.com/kraklabs/rdftools/internal/cli"
	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/internal/output"
	"github.com/kraklabs/rdftools/pkg/graph"
	"github.com/kraklabs/rdftools/pkg/sparql"
)

// Query runs a SPARQL query over the merged inputs.
//
// SELECT results are printed as "var => value" lines, one per bound
// variable per row. ASK prints true or false. CONSTRUCT and DESCRIBE print
// the resulting graph as N-Triples. A malformed query ends the command
// with the parser's diagnostic and exit code 5.
//
// Examples:
//
//	rdf-query -i sample.n3 -q 'SELECT DISTINCT ?type WHERE { ?s a ?type }'
//	rdf-query -i sample.n3 --json -q 'SELECT ?s WHERE { ?s ?p ?o } LIMIT 3'
func Query(ctx context.Context, args []string, env cli.Env) int {
	fs, c := cli.NewFlagSet("rdf-query", env.Catalog.T("scripts.query_command"), env.Stderr)
	text := fs.StringP("query", "q", "", "SPARQL query text")
	jsonOutput := fs.Bool("json", false, "output results as JSON")

	if err := cli.Parse(fs, c, args); err != nil {
		return cli.ExitCode(err)
	}

	r := newRun("rdf-query", env, c, *jsonOutput)
	if *text == "" {
		return r.fail(errors.NewUsageError(
			"No query given",
			"rdf-query needs the SPARQL text to run",
			"Pass it with -q/--query",
		))
	}

	g, err := r.readAll(ctx)
	if err != nil {
		return r.fail(err)
	}

	r.logger.Info("query.execute")
	r.logger.Debug("query.text", "query", *text)
	start := time.Now()
	res, err := sparql.NewExecutor(g).ExecuteString(ctx, *text, sparql.ParseOptions{Base: c.Base})
	env.Metrics.RecordQuery(time.Since(start))
	if err != nil {
		return r.fail(err)
	}
	r.logger.Debug("query.result", "form", string(res.Form), "rows", res.Len(), "columns", res.Vars)

	if *jsonOutput {
		if err := output.JSONTo(env.Stdout, queryJSON(res)); err != nil {
			return r.fail(err)
		}
		return r.done()
	}

	switch res.Form {
	case sparql.FormSelect:
		if len(res.Rows) == 0 {
			_, _ = fmt.Fprintln(env.Stdout, env.Catalog.T("scripts.query_no_results"))
			break
		}
		for _, row := range res.Rows {
			for _, v := range res.Vars {
				if term, ok := row.Get(v); ok {
					_, _ = fmt.Fprintf(env.Stdout, "%s => %s\n", v, graph.Display(term))
				}
			}
		}
	case sparql.FormAsk:
		_, _ = fmt.Fprintln(env.Stdout, res.Boolean)
	default:
		if err := r.write(res.Graph, "", "nt"); err != nil {
			return r.fail(err)
		}
	}
	return r.done()
}

// queryJSON shapes a result for --json: a table for SELECT, a table of
// statements for CONSTRUCT and DESCRIBE, and {"boolean": b} for ASK.
func queryJSON(res *sparql.Result) any {
	switch res.Form {
	case sparql.FormAsk:
		return map[string]any{"boolean": res.Boolean}
	case sparql.FormSelect:
		t := output.NewTable(res.Vars)
		for _, row := range res.Rows {
			cells := make([]string, len(res.Vars))
			for i, v := range res.Vars {
				if term, ok := row.Get(v); ok {
					cells[i] = graph.Display(term)
				}
			}
			t.Append(cells)
		}
		return t
	}
	t := output.NewTable([]string{"subject", "predicate", "object"})
	for _, q := range res.Graph.Triples() {
		t.Append([]string{graph.Display(q.Subject), graph.Display(q.Predicate), graph.Display(q.Object)})
	}
	return t
}
