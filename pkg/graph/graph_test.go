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

package graph

import (
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/rdftools/internal/errors"
)

const ex = "http://example.org/"

func iri(local string) quad.IRI { return quad.IRI(ex + local) }

func sampleGraph(t *testing.T) *Graph {
	t.Helper()
	g := New()
	for _, q := range []quad.Quad{
		{Subject: iri("alice"), Predicate: RDFType, Object: iri("Person")},
		{Subject: iri("bob"), Predicate: RDFType, Object: iri("Person")},
		{Subject: iri("alice"), Predicate: iri("knows"), Object: iri("bob")},
		{Subject: iri("alice"), Predicate: iri("name"), Object: quad.String("Alice")},
		{Subject: quad.BNode("b0"), Predicate: RDFType, Object: iri("Group")},
	} {
		_, err := g.Add(q)
		require.NoError(t, err)
	}
	return g
}

func TestNew(t *testing.T) {
	g1, g2 := New(), New()

	assert.NotEmpty(t, g1.ID())
	assert.NotEqual(t, g1.ID(), g2.ID())
	assert.Equal(t, 0, g1.Len())
	assert.Equal(t, "Memory", g1.Store())
	assert.False(t, g1.ContextAware())
	assert.False(t, g1.FormulaAware())
	assert.False(t, g1.DefaultUnion())
}

func TestGraph_AddDeduplicates(t *testing.T) {
	g := New()

	added, err := g.AddTriple(iri("a"), iri("p"), quad.String("x"))
	require.NoError(t, err)
	assert.True(t, added)

	// Same triple with an explicit xsd:string datatype and a label.
	added, err = g.Add(quad.Quad{
		Subject:   iri("a"),
		Predicate: iri("p"),
		Object:    quad.TypedString{Value: "x", Type: XSDString},
		Label:     iri("g1"),
	})
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, g.Len())
	assert.Nil(t, g.Triples()[0].Label)
}

func TestGraph_AddInvalid(t *testing.T) {
	tests := []struct {
		name    string
		s, p, o quad.Value
	}{
		{"literal subject", quad.String("x"), iri("p"), iri("o")},
		{"blank predicate", iri("s"), quad.BNode("p"), iri("o")},
		{"nil object", iri("s"), iri("p"), nil},
		{"nil subject", nil, iri("p"), iri("o")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			_, err := g.AddTriple(tt.s, tt.p, tt.o)
			require.Error(t, err)
			assert.Equal(t, errors.KindInput, errors.KindOf(err))
			assert.Equal(t, 0, g.Len())
		})
	}
}

func TestGraph_Selections(t *testing.T) {
	g := sampleGraph(t)

	assert.Equal(t, []quad.Value{iri("alice"), iri("bob"), quad.BNode("b0")}, g.Subjects())
	assert.Equal(t, []quad.Value{RDFType, iri("knows"), iri("name")}, g.Predicates())
	assert.Equal(t, []quad.Value{iri("Person"), iri("bob"), quad.String("Alice"), iri("Group")}, g.Objects())
	assert.Equal(t, []quad.Value{iri("Person"), iri("Group")}, g.Types())
}

func TestGraph_Match(t *testing.T) {
	g := sampleGraph(t)

	tests := []struct {
		name    string
		s, p, o quad.Value
		want    int
	}{
		{"all", nil, nil, nil, 5},
		{"by subject", iri("alice"), nil, nil, 3},
		{"by predicate", nil, RDFType, nil, 3},
		{"by object", nil, nil, iri("Person"), 2},
		{"fully bound", iri("alice"), iri("knows"), iri("bob"), 1},
		{"literal object", nil, nil, quad.String("Alice"), 1},
		{"no match", iri("carol"), nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, g.Match(tt.s, tt.p, tt.o), tt.want)
		})
	}
}

func TestGraph_Merge(t *testing.T) {
	g := sampleGraph(t)
	other := New()
	_, _ = other.AddTriple(iri("alice"), RDFType, iri("Person")) // duplicate
	_, _ = other.AddTriple(iri("carol"), RDFType, iri("Person"))

	n := g.Merge(other)
	assert.Equal(t, 1, n)
	assert.Equal(t, 6, g.Len())
	assert.True(t, g.Contains(iri("carol"), RDFType, iri("Person")))
}

func TestGraph_TriplesIsCopy(t *testing.T) {
	g := sampleGraph(t)
	ts := g.Triples()
	ts[0] = quad.Quad{}
	assert.Equal(t, iri("alice"), g.Triples()[0].Subject)
}

func TestGraph_Contains(t *testing.T) {
	g := sampleGraph(t)
	assert.True(t, g.Contains(iri("alice"), iri("name"), quad.String("Alice")))
	assert.False(t, g.Contains(iri("alice"), iri("name"), quad.LangString{Value: "Alice", Lang: "en"}))
	assert.False(t, g.Contains(nil, iri("name"), quad.String("Alice")))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   quad.Value
		want quad.Value
	}{
		{"nil", nil, nil},
		{"iri", iri("x"), iri("x")},
		{"xsd string", quad.TypedString{Value: "a", Type: XSDString}, quad.String("a")},
		{"typed", quad.TypedString{Value: "1", Type: XSDInteger}, quad.TypedString{Value: "1", Type: XSDInteger}},
		{"lang", quad.LangString{Value: "hi", Lang: "en"}, quad.LangString{Value: "hi", Lang: "en"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestLexicalAndDatatype(t *testing.T) {
	tests := []struct {
		name     string
		in       quad.Value
		lexical  string
		datatype quad.IRI
		lang     string
	}{
		{"iri", iri("x"), ex + "x", "", ""},
		{"bnode", quad.BNode("b1"), "_:b1", "", ""},
		{"plain", quad.String("hello"), "hello", XSDString, ""},
		{"lang", quad.LangString{Value: "hola", Lang: "es"}, "hola", RDFLangString, "es"},
		{"typed", quad.TypedString{Value: "42", Type: XSDInteger}, "42", XSDInteger, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.lexical, Display(tt.in))
			assert.Equal(t, tt.datatype, Datatype(tt.in))
			assert.Equal(t, tt.lang, Language(tt.in))
		})
	}
}

func TestTermPredicates(t *testing.T) {
	assert.True(t, IsIRI(iri("x")))
	assert.True(t, IsBlank(quad.BNode("b")))
	assert.True(t, IsLiteral(quad.String("s")))
	assert.True(t, IsLiteral(quad.TypedString{Value: "1", Type: XSDInteger}))
	assert.False(t, IsLiteral(iri("x")))
	assert.Equal(t, Key(quad.String("a")), Key(quad.TypedString{Value: "a", Type: XSDString}))
}

func TestDefaultPrefixes(t *testing.T) {
	p := DefaultPrefixes()
	assert.Equal(t, RDFNamespace, p["rdf"])
	assert.Equal(t, XSDNamespace, p["xsd"])
	assert.Len(t, p, 4)
}
