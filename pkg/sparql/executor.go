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

package sparql

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/pkg/graph"
)

// Row is one solution: variable name (without "?") to bound term.
// Unbound variables are absent.
type Row map[string]quad.Value

// Get returns the term bound to name.
func (r Row) Get(name string) (quad.Value, bool) {
	v, ok := r[name]
	return v, ok && v != nil
}

func (r Row) clone() Row {
	out := make(Row, len(r)+2)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Result is the outcome of a query. Which fields are set depends on Form:
// Vars and Rows for SELECT, Boolean for ASK, Graph for CONSTRUCT and
// DESCRIBE.
type Result struct {
	Form    Form
	Vars    []string
	Rows    []Row
	Boolean bool
	Graph   *graph.Graph
}

// Len returns the number of rows, statements, or 1/0 for ASK.
func (r *Result) Len() int {
	switch r.Form {
	case FormSelect:
		return len(r.Rows)
	case FormAsk:
		if r.Boolean {
			return 1
		}
		return 0
	}
	if r.Graph == nil {
		return 0
	}
	return r.Graph.Len()
}

// Executor evaluates queries against one graph.
type Executor struct {
	graph *graph.Graph
}

// NewExecutor creates an executor over g.
func NewExecutor(g *graph.Graph) *Executor {
	return &Executor{graph: g}
}

// ExecuteString parses and executes a query.
func (e *Executor) ExecuteString(ctx context.Context, text string, opts ParseOptions) (*Result, error) {
	q, err := ParseWith(text, opts)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, q)
}

// Execute evaluates a parsed query.
func (e *Executor) Execute(ctx context.Context, q *Query) (*Result, error) {
	rows, err := e.evalGroup(ctx, q.Where, []Row{{}})
	if err != nil {
		return nil, err
	}

	res := &Result{Form: q.Form}
	switch q.Form {
	case FormAsk:
		res.Boolean = len(rows) > 0
		return res, nil

	case FormSelect:
		rows = applyOrderBy(q.OrderBy, rows)
		res.Vars = q.ProjectedVars()
		rows = project(rows, res.Vars)
		if q.Distinct || q.Reduced {
			rows = applyDistinct(rows, res.Vars)
		}
		res.Rows = slice(rows, q.Offset, q.Limit)
		return res, nil

	case FormConstruct:
		rows = slice(applyOrderBy(q.OrderBy, rows), q.Offset, q.Limit)
		res.Graph = construct(q.Template, rows)
		return res, nil

	case FormDescribe:
		rows = slice(applyOrderBy(q.OrderBy, rows), q.Offset, q.Limit)
		res.Graph = e.describe(q, rows)
		return res, nil
	}
	return nil, errors.Errorf(errors.KindQuery, "unsupported query form %q", q.Form)
}

// evalGroup joins the group's elements, in order, onto each seed row and
// then applies the group's filters.
func (e *Executor) evalGroup(ctx context.Context, g *Group, seeds []Row) ([]Row, error) {
	rows := seeds
	for _, el := range g.Elements {
		select {
		case <-ctx.Done():
			return nil, errors.WithKind(errors.KindQuery, ctx.Err())
		default:
		}

		var err error
		switch el := el.(type) {
		case BGP:
			for _, pattern := range el {
				rows = e.matchPattern(pattern, rows)
				if len(rows) == 0 {
					break
				}
			}
		case *Optional:
			rows, err = e.processOptional(ctx, el.Group, rows)
		case *Union:
			var out []Row
			for _, alt := range el.Alternatives {
				altRows, err := e.evalGroup(ctx, alt, rows)
				if err != nil {
					return nil, err
				}
				out = append(out, altRows...)
			}
			rows = out
		case *Group:
			rows, err = e.evalGroup(ctx, el, rows)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, f := range g.Filters {
		rows = applyFilter(f, rows)
	}
	return rows, nil
}

// matchPattern extends every row with the triples matching pattern.
func (e *Executor) matchPattern(pattern TriplePattern, rows []Row) []Row {
	var out []Row
	for _, row := range rows {
		s := resolve(pattern.Subject, row)
		p := resolve(pattern.Predicate, row)
		o := resolve(pattern.Object, row)

		for _, t := range e.graph.Match(s, p, o) {
			next := row.clone()
			if bind(next, pattern.Subject, t.Subject) &&
				bind(next, pattern.Predicate, t.Predicate) &&
				bind(next, pattern.Object, t.Object) {
				out = append(out, next)
			}
		}
	}
	return out
}

// processOptional is a left outer join: rows the optional group cannot
// extend are kept as they are.
func (e *Executor) processOptional(ctx context.Context, g *Group, rows []Row) ([]Row, error) {
	var out []Row
	for _, row := range rows {
		extended, err := e.evalGroup(ctx, g, []Row{row})
		if err != nil {
			return nil, err
		}
		if len(extended) > 0 {
			out = append(out, extended...)
		} else {
			out = append(out, row)
		}
	}
	return out, nil
}

// resolve returns the term to match for t, or nil for an unbound variable.
func resolve(t Term, row Row) quad.Value {
	if !t.IsVar() {
		return t.Value
	}
	if v, ok := row.Get(t.Var); ok {
		return v
	}
	return nil
}

// bind records v for a variable term, failing on a conflicting binding.
func bind(row Row, t Term, v quad.Value) bool {
	if !t.IsVar() {
		return true
	}
	if existing, ok := row.Get(t.Var); ok {
		return graph.Key(existing) == graph.Key(v)
	}
	row[t.Var] = graph.Normalize(v)
	return true
}

func applyFilter(f Expr, rows []Row) []Row {
	var out []Row
	for _, row := range rows {
		if Test(f, row) {
			out = append(out, row)
		}
	}
	return out
}

// applyOrderBy sorts rows by the given keys. Unbound values sort first,
// then blank nodes, IRIs and literals.
func applyOrderBy(keys []OrderBy, rows []Row) []Row {
	if len(keys) == 0 {
		return rows
	}
	values := make([][]quad.Value, len(rows))
	for i, row := range rows {
		values[i] = make([]quad.Value, len(keys))
		for k, key := range keys {
			if v, err := key.Expr.eval(row); err == nil {
				values[i][k] = v
			}
		}
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		for k, key := range keys {
			c := orderCompare(values[idx[a]][k], values[idx[b]][k])
			if c == 0 {
				continue
			}
			if key.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	out := make([]Row, len(rows))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}

func termRank(v quad.Value) int {
	switch {
	case v == nil:
		return 0
	case graph.IsBlank(v):
		return 1
	case graph.IsIRI(v):
		return 2
	}
	return 3
}

func orderCompare(a, b quad.Value) int {
	ra, rb := termRank(a), termRank(b)
	if ra != rb {
		return ra - rb
	}
	if ra == 0 {
		return 0
	}
	if c, err := compare(a, b); err == nil {
		return c
	}
	return strings.Compare(graph.Lexical(a), graph.Lexical(b))
}

func project(rows []Row, vars []string) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		p := make(Row, len(vars))
		for _, v := range vars {
			if val, ok := row.Get(v); ok {
				p[v] = val
			}
		}
		out[i] = p
	}
	return out
}

func applyDistinct(rows []Row, vars []string) []Row {
	seen := make(map[string]bool, len(rows))
	var out []Row
	for _, row := range rows {
		parts := make([]string, len(vars))
		for i, v := range vars {
			parts[i] = graph.Key(row[v])
		}
		key := strings.Join(parts, "\x00")
		if !seen[key] {
			seen[key] = true
			out = append(out, row)
		}
	}
	return out
}

func slice(rows []Row, offset, limit int) []Row {
	if offset > 0 {
		if offset >= len(rows) {
			return nil
		}
		rows = rows[offset:]
	}
	if limit >= 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

// construct instantiates template once per row. Blank nodes in the
// template are fresh for every row; triples with unbound or ill-placed
// terms are skipped.
func construct(template []TriplePattern, rows []Row) *graph.Graph {
	out := graph.New()
	for i, row := range rows {
		inst := func(t Term) quad.Value {
			if !t.IsVar() {
				return t.Value
			}
			if isBlankVar(t.Var) {
				return quad.BNode(fmt.Sprintf("c%d_%s", i, strings.TrimPrefix(t.Var, blankVarPrefix)))
			}
			return resolve(t, row)
		}
		for _, tp := range template {
			s, p, o := inst(tp.Subject), inst(tp.Predicate), inst(tp.Object)
			if s == nil || p == nil || o == nil {
				continue
			}
			_, _ = out.AddTriple(s, p, o)
		}
	}
	return out
}

// describe returns the statements about each described resource, following
// blank-node objects.
func (e *Executor) describe(q *Query, rows []Row) *graph.Graph {
	resources := q.Resources
	if q.Star {
		for _, name := range q.mentioned {
			resources = append(resources, Term{Var: name})
		}
	}

	out := graph.New()
	visited := map[string]bool{}
	var add func(v quad.Value)
	add = func(v quad.Value) {
		k := graph.Key(v)
		if visited[k] {
			return
		}
		visited[k] = true
		for _, t := range e.graph.Match(v, nil, nil) {
			_, _ = out.Add(t)
			if graph.IsBlank(t.Object) {
				add(t.Object)
			}
		}
	}

	for _, r := range resources {
		if !r.IsVar() {
			add(r.Value)
			continue
		}
		for _, row := range rows {
			if v, ok := row.Get(r.Var); ok && !graph.IsLiteral(v) {
				add(v)
			}
		}
	}
	return out
}
