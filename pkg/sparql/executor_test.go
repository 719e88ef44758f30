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
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/rdftools/internal/errors"
	rdftest "github.com/kraklabs/rdftools/internal/testing"
	"github.com/kraklabs/rdftools/pkg/graph"
)

const prologue = `
PREFIX people: <http://example.org/social/people/1.0/>
PREFIX topics: <http://example.org/social/topics/1.0/>
PREFIX profile: <http://example.org/social/profile/1.0/>
PREFIX rel: <http://example.org/social/relationship/1.0/>
`

func run(t *testing.T, g *graph.Graph, query string) *Result {
	t.Helper()
	res, err := NewExecutor(g).ExecuteString(context.Background(), prologue+query, ParseOptions{})
	require.NoError(t, err)
	return res
}

// column returns the lexical values bound to name, in row order.
func column(res *Result, name string) []string {
	out := make([]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		v, _ := row.Get(name)
		out = append(out, graph.Lexical(v))
	}
	return out
}

func TestExecute_SelectLikes(t *testing.T) {
	g := rdftest.SetupTestGraph(t)
	res := run(t, g, `SELECT ?who ?what WHERE { ?who rel:likes ?what } ORDER BY ?who ?what`)

	assert.Equal(t, FormSelect, res.Form)
	assert.Equal(t, []string{"who", "what"}, res.Vars)
	assert.Equal(t, 3, res.Len())
	assert.Equal(t, []string{
		rdftest.People + "Alice", rdftest.People + "Alice", rdftest.People + "Bob",
	}, column(res, "who"))
	assert.Equal(t, []string{
		rdftest.Topics + "Diving", rdftest.Topics + "Shoes", rdftest.Topics + "Diving",
	}, column(res, "what"))
}

func TestExecute_Select(t *testing.T) {
	g := rdftest.SetupTestGraph(t)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"all triples", `SELECT * WHERE { ?s ?p ?o }`, rdftest.SampleCount},
		{"distinct types", `SELECT DISTINCT ?t WHERE { ?s a ?t }`, 3},
		{"persons", `SELECT ?p WHERE { ?p a profile:Person }`, 8},
		{"join", `SELECT ?kid WHERE { people:Bob rel:spouse ?m . ?m rel:child ?kid }`, 2},
		{"same variable twice", `SELECT ?s WHERE { ?s rel:spouse ?s }`, 0},
		{"limit", `SELECT ?s WHERE { ?s ?p ?o } LIMIT 4`, 4},
		{"offset", `SELECT ?s WHERE { ?s ?p ?o } OFFSET 20`, 5},
		{"offset past end", `SELECT ?s WHERE { ?s ?p ?o } OFFSET 100`, 0},
		{"union", `SELECT ?x WHERE { { people:Alice rel:parent ?x } UNION { people:Alice rel:child ?x } }`, 3},
		{"filter not equal", `SELECT ?who WHERE { ?who rel:likes topics:Diving FILTER(?who != people:Alice) }`, 1},
		{"filter regex", `SELECT ?s WHERE { ?s a profile:Person FILTER regex(str(?s), "a(ve|rol)$", "i") }`, 2},
		{"filter strstarts", `SELECT ?o WHERE { ?s ?p ?o FILTER(STRSTARTS(STR(?o), STR(topics:))) }`, 5},
		{"filter isIRI", `SELECT ?o WHERE { ?s ?p ?o FILTER(!isIRI(?o)) }`, 0},
		{"no match", `SELECT ?s WHERE { ?s rel:enemy ?o }`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, g, tt.query).Len())
		})
	}
}

func TestExecute_Optional(t *testing.T) {
	g := rdftest.SetupTestGraph(t)
	res := run(t, g, `SELECT ?p ?sp WHERE {
		?p a profile:Person
		OPTIONAL { ?p rel:spouse ?sp }
	} ORDER BY ?p`)

	require.Equal(t, 8, res.Len())
	bound := 0
	for _, row := range res.Rows {
		if sp, ok := row.Get("sp"); ok {
			bound++
			assert.Equal(t, quad.IRI(rdftest.People+"Alice"), sp)
		}
	}
	assert.Equal(t, 1, bound)

	res = run(t, g, `SELECT ?p WHERE {
		?p a profile:Person
		OPTIONAL { ?p rel:spouse ?sp }
		FILTER(!BOUND(?sp))
	}`)
	assert.Equal(t, 7, res.Len())
}

func TestExecute_OrderDescending(t *testing.T) {
	g := rdftest.SetupTestGraph(t)
	res := run(t, g, `SELECT ?t WHERE { ?s a ?t } ORDER BY DESC(?t) LIMIT 1`)
	assert.Equal(t, []string{rdftest.Topics + "Topic"}, column(res, "t"))
}

func TestExecute_Ask(t *testing.T) {
	g := rdftest.SetupTestGraph(t)

	res := run(t, g, `ASK { people:Bob rel:spouse people:Alice }`)
	assert.Equal(t, FormAsk, res.Form)
	assert.True(t, res.Boolean)
	assert.Equal(t, 1, res.Len())

	res = run(t, g, `ASK { people:Alice rel:spouse people:Bob }`)
	assert.False(t, res.Boolean)
}

func TestExecute_Construct(t *testing.T) {
	g := rdftest.SetupTestGraph(t)
	res := run(t, g, `CONSTRUCT { ?b rel:spouse ?a . ?a rel:tag _:t } WHERE { ?a rel:spouse ?b }`)

	require.NotNil(t, res.Graph)
	assert.Equal(t, 2, res.Len())
	assert.True(t, res.Graph.Contains(
		quad.IRI(rdftest.People+"Alice"),
		quad.IRI(rdftest.Relationship+"spouse"),
		quad.IRI(rdftest.People+"Bob"),
	))
	tags := res.Graph.Match(quad.IRI(rdftest.People+"Bob"), quad.IRI(rdftest.Relationship+"tag"), nil)
	require.Len(t, tags, 1)
	assert.True(t, graph.IsBlank(tags[0].Object))
}

func TestExecute_Describe(t *testing.T) {
	g := rdftest.SetupTestGraph(t)

	res := run(t, g, `DESCRIBE people:Bob`)
	assert.Equal(t, FormDescribe, res.Form)
	assert.Equal(t, 7, res.Len())

	res = run(t, g, `DESCRIBE ?t WHERE { ?t a topics:Topic }`)
	assert.Equal(t, 2, res.Len())
}

func TestExecute_Literals(t *testing.T) {
	g := graph.New()
	ex := func(s string) quad.IRI { return quad.IRI("http://ex.org/" + s) }
	add := func(s string, p string, o quad.Value) {
		_, err := g.AddTriple(ex(s), ex(p), o)
		require.NoError(t, err)
	}
	add("ann", "age", quad.TypedString{Value: "31", Type: graph.XSDInteger})
	add("bob", "age", quad.TypedString{Value: "9", Type: graph.XSDInteger})
	add("cat", "age", quad.TypedString{Value: "42.5", Type: graph.XSDDecimal})
	add("ann", "name", quad.LangString{Value: "Ann", Lang: "en"})
	add("bob", "name", quad.String("Bob"))

	exec := NewExecutor(g)
	query := func(q string) *Result {
		res, err := exec.ExecuteString(context.Background(), q,
			ParseOptions{Prefixes: map[string]string{"ex": "http://ex.org/"}})
		require.NoError(t, err)
		return res
	}

	res := query(`SELECT ?s WHERE { ?s ex:age ?a FILTER(?a > 10) } ORDER BY ?a`)
	assert.Equal(t, []string{"http://ex.org/ann", "http://ex.org/cat"}, column(res, "s"))

	res = query(`SELECT ?s WHERE { ?s ex:age ?a } ORDER BY ?a`)
	assert.Equal(t, []string{"http://ex.org/bob", "http://ex.org/ann", "http://ex.org/cat"}, column(res, "s"))

	res = query(`SELECT ?s WHERE { ?s ex:age ?a FILTER(?a * 2 = 18) }`)
	assert.Equal(t, []string{"http://ex.org/bob"}, column(res, "s"))

	res = query(`SELECT ?s WHERE { ?s ex:age 31 }`)
	assert.Equal(t, []string{"http://ex.org/ann"}, column(res, "s"))

	res = query(`SELECT ?n WHERE { ?s ex:name ?n FILTER(lang(?n) = "en") }`)
	assert.Equal(t, []string{"Ann"}, column(res, "n"))

	res = query(`SELECT ?n WHERE { ?s ex:name ?n FILTER(langMatches(lang(?n), "*")) }`)
	assert.Equal(t, 1, res.Len())

	res = query(`SELECT ?n WHERE { ?s ex:name ?n FILTER(UCASE(?n) = "BOB" && isLiteral(?n)) }`)
	assert.Equal(t, []string{"Bob"}, column(res, "n"))

	res = query(`SELECT ?n WHERE { ?s ex:name ?n FILTER(CONTAINS(LCASE(STR(?n)), "an") || ?nope) }`)
	assert.Equal(t, []string{"Ann"}, column(res, "n"))
}

func TestExecute_ProjectsOnlySelected(t *testing.T) {
	g := rdftest.SetupTestGraph(t)
	res := run(t, g, `SELECT ?who WHERE { ?who rel:likes ?what } LIMIT 1`)
	require.Len(t, res.Rows, 1)
	_, ok := res.Rows[0].Get("what")
	assert.False(t, ok)
}

func TestExecute_Cancelled(t *testing.T) {
	g := rdftest.SetupTestGraph(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExecutor(g).ExecuteString(ctx, `SELECT * WHERE { ?s ?p ?o }`, ParseOptions{})
	require.Error(t, err)
	assert.Equal(t, errors.KindQuery, errors.KindOf(err))
}
