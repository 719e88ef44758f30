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
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/pkg/graph"
)

func TestParse_SimpleSelect(t *testing.T) {
	q, err := Parse(`
		PREFIX ex: <http://example.org/>
		SELECT ?s ?o WHERE {
			?s a ex:Thing ;
			   ex:name ?o .
		}`)
	require.NoError(t, err)

	assert.Equal(t, FormSelect, q.Form)
	assert.Equal(t, []string{"s", "o"}, q.Vars)
	assert.Equal(t, -1, q.Limit)
	require.Len(t, q.Where.Elements, 1)

	bgp, ok := q.Where.Elements[0].(BGP)
	require.True(t, ok)
	require.Len(t, bgp, 2)
	assert.Equal(t, TriplePattern{
		Subject:   Term{Var: "s"},
		Predicate: Term{Value: graph.RDFType},
		Object:    Term{Value: quad.IRI("http://example.org/Thing")},
	}, bgp[0])
	assert.Equal(t, quad.IRI("http://example.org/name"), bgp[1].Predicate.Value)
	assert.Equal(t, "o", bgp[1].Object.Var)
}

func TestParse_Forms(t *testing.T) {
	tests := []struct {
		name  string
		query string
		form  Form
	}{
		{"select star", `SELECT * { ?s ?p ?o }`, FormSelect},
		{"ask", `ASK { ?s ?p ?o }`, FormAsk},
		{"ask lowercase", `ask where { ?s ?p ?o }`, FormAsk},
		{"construct", `CONSTRUCT { ?o ?p ?s } WHERE { ?s ?p ?o }`, FormConstruct},
		{"construct where", `CONSTRUCT WHERE { ?s ?p ?o }`, FormConstruct},
		{"describe iri", `DESCRIBE <http://example.org/a>`, FormDescribe},
		{"describe var", `DESCRIBE ?s WHERE { ?s ?p ?o }`, FormDescribe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.form, q.Form)
			assert.NotNil(t, q.Where)
		})
	}
}

func TestParse_Modifiers(t *testing.T) {
	q, err := Parse(`SELECT DISTINCT ?s WHERE { ?s ?p ?o } ORDER BY DESC(?s) ?o LIMIT 5 OFFSET 2`)
	require.NoError(t, err)

	assert.True(t, q.Distinct)
	require.Len(t, q.OrderBy, 2)
	assert.True(t, q.OrderBy[0].Descending)
	assert.False(t, q.OrderBy[1].Descending)
	assert.Equal(t, 5, q.Limit)
	assert.Equal(t, 2, q.Offset)
}

func TestParse_Literals(t *testing.T) {
	q, err := Parse(`PREFIX xsd: <http://www.w3.org/2001/XMLSchema#>
		SELECT ?s WHERE {
			?s <http://ex.org/p> "plain", "hola"@es, "7"^^xsd:integer, 7, -2.5, true, """long
text""" .
		}`)
	require.NoError(t, err)

	bgp := q.Where.Elements[0].(BGP)
	var objects []quad.Value
	for _, tp := range bgp {
		objects = append(objects, tp.Object.Value)
	}
	assert.Equal(t, []quad.Value{
		quad.String("plain"),
		quad.LangString{Value: "hola", Lang: "es"},
		quad.TypedString{Value: "7", Type: graph.XSDInteger},
		quad.TypedString{Value: "7", Type: graph.XSDInteger},
		quad.TypedString{Value: "-2.5", Type: graph.XSDDecimal},
		quad.TypedString{Value: "true", Type: graph.XSDBoolean},
		quad.String("long\ntext"),
	}, objects)
}

func TestParse_GroupStructure(t *testing.T) {
	q, err := Parse(`SELECT ?x WHERE {
		?x a <http://ex.org/T> .
		OPTIONAL { ?x <http://ex.org/p> ?y }
		{ ?x <http://ex.org/a> ?z } UNION { ?x <http://ex.org/b> ?z }
		FILTER (bound(?y) || ?z != "n")
	}`)
	require.NoError(t, err)

	require.Len(t, q.Where.Elements, 3)
	assert.IsType(t, BGP{}, q.Where.Elements[0])
	assert.IsType(t, &Optional{}, q.Where.Elements[1])
	union, ok := q.Where.Elements[2].(*Union)
	require.True(t, ok)
	assert.Len(t, union.Alternatives, 2)
	assert.Len(t, q.Where.Filters, 1)
}

func TestParse_BaseAndOptions(t *testing.T) {
	q, err := ParseWith(`BASE <http://ex.org/dir/> SELECT ?s WHERE { ?s <rel> my:thing }`,
		ParseOptions{Prefixes: map[string]string{"my": "http://my.org/"}})
	require.NoError(t, err)

	bgp := q.Where.Elements[0].(BGP)
	assert.Equal(t, quad.IRI("http://ex.org/dir/rel"), bgp[0].Predicate.Value)
	assert.Equal(t, quad.IRI("http://my.org/thing"), bgp[0].Object.Value)
}

func TestParse_SelectStarVars(t *testing.T) {
	q, err := Parse(`SELECT * WHERE { ?b ?p ?a . _:x ?p ?c }`)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "p", "a", "c"}, q.ProjectedVars())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantMsg string
	}{
		{"not a query", "hello world", "expected SELECT, CONSTRUCT, DESCRIBE or ASK"},
		{"empty", "", "expected SELECT, CONSTRUCT, DESCRIBE or ASK"},
		{"no variables", "SELECT WHERE { ?s ?p ?o }", "expected variables"},
		{"unclosed group", "SELECT ?s WHERE { ?s ?p ?o", "expected \"}\""},
		{"unknown prefix", "SELECT ?s WHERE { ?s nope:p ?o }", `unknown prefix "nope"`},
		{"trailing tokens", "ASK { ?s ?p ?o } garbage", "after end of query"},
		{"unterminated string", `ASK { ?s ?p "abc }`, "unterminated string"},
		{"bad limit", "SELECT ?s { ?s ?p ?o } LIMIT x", "expected integer after LIMIT"},
		{"unknown function", "ASK { ?s ?p ?o FILTER(frob(?o)) }", "unknown function"},
		{"literal subject", `ASK { "x" ?p ?o }`, "literal cannot be a subject"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.query)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, errors.KindQuery, errors.KindOf(err))
		})
	}
}

func TestParse_ErrorPosition(t *testing.T) {
	_, err := Parse("SELECT ?s\nWHERE { ?s ?p }")
	require.Error(t, err)

	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Line)
	assert.Equal(t, 15, se.Column)
}
