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

// Package sparql parses and evaluates a subset of SPARQL 1.1 queries over an
// in-memory graph.
//
// Supported: the SELECT, ASK, CONSTRUCT and DESCRIBE forms, PREFIX and BASE
// declarations, basic graph patterns (including "a", ";" and ","), OPTIONAL,
// UNION, nested groups, FILTER with the usual operators and string/term
// built-ins, DISTINCT/REDUCED, ORDER BY, LIMIT and OFFSET.
//
// Not supported: updates, aggregates, property paths, sub-queries, named
// graphs and federated queries.
package sparql

import (
	"github.com/cayleygraph/quad"
)

// Form is the kind of a query.
type Form string

const (
	FormSelect    Form = "SELECT"
	FormAsk       Form = "ASK"
	FormConstruct Form = "CONSTRUCT"
	FormDescribe  Form = "DESCRIBE"
)

// Forms lists the supported query forms in the order they are reported to
// users.
var Forms = []Form{FormSelect, FormAsk, FormDescribe, FormConstruct}

// Query is a parsed query.
type Query struct {
	Form     Form
	Base     string
	Prefixes map[string]string

	// SELECT projection. Star is set for "SELECT *".
	Vars     []string
	Star     bool
	Distinct bool
	Reduced  bool

	Template  []TriplePattern // CONSTRUCT
	Resources []Term          // DESCRIBE

	Where   *Group
	OrderBy []OrderBy
	Limit   int // -1 when absent
	Offset  int

	// mentioned holds every named variable in order of first appearance.
	mentioned []string
}

// Term is a pattern position: either a variable or a concrete RDF term.
type Term struct {
	Var   string
	Value quad.Value
}

// IsVar reports whether t is a variable.
func (t Term) IsVar() bool { return t.Var != "" }

func (t Term) String() string {
	if t.IsVar() {
		return "?" + t.Var
	}
	if t.Value == nil {
		return ""
	}
	return t.Value.String()
}

// TriplePattern is a triple whose positions may be variables.
type TriplePattern struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// OrderBy is one ORDER BY key.
type OrderBy struct {
	Expr       Expr
	Descending bool
}

// Group is a group graph pattern. Elements are joined in order; filters
// apply to the whole group.
type Group struct {
	Elements []Element
	Filters  []Expr
}

// Element is one member of a Group.
type Element interface {
	element()
}

// BGP is a basic graph pattern.
type BGP []TriplePattern

// Optional is an OPTIONAL { ... } block, evaluated as a left join.
type Optional struct {
	Group *Group
}

// Union holds the alternatives of a { ... } UNION { ... } chain.
type Union struct {
	Alternatives []*Group
}

func (BGP) element()       {}
func (*Optional) element() {}
func (*Union) element()    {}
func (*Group) element()    {}

// blankVarPrefix marks variables that stand for blank nodes written in a
// query pattern. They never appear in results.
const blankVarPrefix = "_:"

func isBlankVar(name string) bool {
	return len(name) > len(blankVarPrefix) && name[:len(blankVarPrefix)] == blankVarPrefix
}

// ProjectedVars returns the names of the result columns of a SELECT query.
func (q *Query) ProjectedVars() []string {
	if q.Star {
		out := make([]string, len(q.mentioned))
		copy(out, q.mentioned)
		return out
	}
	out := make([]string, len(q.Vars))
	copy(out, q.Vars)
	return out
}
