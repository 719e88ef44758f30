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

package testing

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/cayleygraph/quad"

	"github.com/kraklabs/rdftools/pkg/graph"
)

// Namespaces used by the sample graph.
const (
	People       = "http://example.org/social/people/1.0/"
	Topics       = "http://example.org/social/topics/1.0/"
	Profile      = "http://example.org/social/profile/1.0/"
	Relationship = "http://example.org/social/relationship/1.0/"
)

// SampleCount is the number of triples in the sample graph.
const SampleCount = 25

// SampleN3 is the sample graph in Turtle/N3 syntax.
const SampleN3 = `@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .
@prefix people: <http://example.org/social/people/1.0/> .
@prefix topics: <http://example.org/social/topics/1.0/> .
@prefix profile: <http://example.org/social/profile/1.0/> .
@prefix rel: <http://example.org/social/relationship/1.0/> .

people:Alice a profile:Person ;
    rel:parent people:Dave ;
    rel:child people:Heidi, people:Grace ;
    rel:member people:OurFamily ;
    rel:likes topics:Diving, topics:Shoes .

people:Bob a profile:Person ;
    rel:parent people:Carol ;
    rel:spouse people:Alice ;
    rel:child people:Eve, people:Frank ;
    rel:member people:OurFamily ;
    rel:likes topics:Diving .

people:Carol a profile:Person .
people:Dave a profile:Person .
people:Eve a profile:Person .
people:Frank a profile:Person .

people:Grace a profile:Person ;
    rel:member people:OurFamily .

people:Heidi a profile:Person ;
    rel:member people:OurFamily .

people:OurFamily a profile:Family .

topics:Diving a topics:Topic .
topics:Shoes a topics:Topic .
`

// sampleTriples mirrors SampleN3; every term is an IRI.
var sampleTriples = [][3]string{
	{People + "Alice", graph.RDFNamespace + "type", Profile + "Person"},
	{People + "Alice", Relationship + "parent", People + "Dave"},
	{People + "Alice", Relationship + "child", People + "Heidi"},
	{People + "Alice", Relationship + "child", People + "Grace"},
	{People + "Alice", Relationship + "member", People + "OurFamily"},
	{People + "Alice", Relationship + "likes", Topics + "Diving"},
	{People + "Alice", Relationship + "likes", Topics + "Shoes"},
	{People + "Bob", graph.RDFNamespace + "type", Profile + "Person"},
	{People + "Bob", Relationship + "parent", People + "Carol"},
	{People + "Bob", Relationship + "spouse", People + "Alice"},
	{People + "Bob", Relationship + "child", People + "Eve"},
	{People + "Bob", Relationship + "child", People + "Frank"},
	{People + "Bob", Relationship + "member", People + "OurFamily"},
	{People + "Bob", Relationship + "likes", Topics + "Diving"},
	{People + "Carol", graph.RDFNamespace + "type", Profile + "Person"},
	{People + "Dave", graph.RDFNamespace + "type", Profile + "Person"},
	{People + "Eve", graph.RDFNamespace + "type", Profile + "Person"},
	{People + "Frank", graph.RDFNamespace + "type", Profile + "Person"},
	{People + "Grace", graph.RDFNamespace + "type", Profile + "Person"},
	{People + "Grace", Relationship + "member", People + "OurFamily"},
	{People + "Heidi", graph.RDFNamespace + "type", Profile + "Person"},
	{People + "Heidi", Relationship + "member", People + "OurFamily"},
	{People + "OurFamily", graph.RDFNamespace + "type", Profile + "Family"},
	{Topics + "Diving", graph.RDFNamespace + "type", Topics + "Topic"},
	{Topics + "Shoes", graph.RDFNamespace + "type", Topics + "Topic"},
}

// Distinct terms of the sample graph, sorted.
var (
	SampleSubjects = sorted(
		People+"Alice", People+"Bob", People+"Carol", People+"Dave", People+"Eve",
		People+"Frank", People+"Grace", People+"Heidi", People+"OurFamily",
		Topics+"Diving", Topics+"Shoes",
	)
	SamplePredicates = sorted(
		graph.RDFNamespace+"type", Relationship+"parent", Relationship+"child",
		Relationship+"spouse", Relationship+"member", Relationship+"likes",
	)
	SampleObjects = sorted(
		Profile+"Person", Profile+"Family", Topics+"Topic",
		People+"Alice", People+"Carol", People+"Dave", People+"Eve", People+"Frank",
		People+"Grace", People+"Heidi", People+"OurFamily",
		Topics+"Diving", Topics+"Shoes",
	)
	SampleTypes = sorted(Profile+"Person", Profile+"Family", Topics+"Topic")
)

func sorted(values ...string) []string {
	sort.Strings(values)
	return values
}

// SampleNTriples returns the sample graph as sorted N-Triples lines.
func SampleNTriples() []string {
	lines := make([]string, 0, len(sampleTriples))
	for _, t := range sampleTriples {
		lines = append(lines, "<"+t[0]+"> <"+t[1]+"> <"+t[2]+"> .")
	}
	sort.Strings(lines)
	return lines
}

// WriteTestFile writes content to name inside a per-test temporary directory
// and returns the full path.
func WriteTestFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// WriteSample writes SampleN3 to sample.n3 in a temporary directory.
func WriteSample(t *testing.T) string {
	t.Helper()
	return WriteTestFile(t, "sample.n3", SampleN3)
}

// SetupTestGraph returns a graph holding the sample triples.
func SetupTestGraph(t *testing.T) *graph.Graph {
	t.Helper()

	g := graph.New()
	for _, tr := range sampleTriples {
		InsertTestTriple(t, g, tr[0], tr[1], quad.IRI(tr[2]))
	}
	return g
}

// InsertTestTriple adds a triple with IRI subject and predicate to g.
//
// Example:
//
//	rdftest.InsertTestTriple(t, g, rdftest.People+"Ivan", graph.RDFNamespace+"type", quad.IRI(rdftest.Profile+"Person"))
func InsertTestTriple(t *testing.T, g *graph.Graph, subject, predicate string, object quad.Value) {
	t.Helper()

	if _, err := g.AddTriple(quad.IRI(subject), quad.IRI(predicate), object); err != nil {
		t.Fatalf("failed to insert test triple: %v", err)
	}
}
