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

// Package graph provides the in-memory triple store used by the rdftools
// CLIs and shell.
//
// A Graph is a set of triples held in insertion order. Terms are
// github.com/cayleygraph/quad values; quad labels are dropped on insert, so
// reading an N-Quads document yields the union of its graphs.
//
// Graph is not safe for concurrent use. Every tool and the shell own exactly
// one graph and use it from a single goroutine.
package graph

import (
	"fmt"

	"github.com/cayleygraph/quad"
	"github.com/google/uuid"

	"github.com/kraklabs/rdftools/internal/errors"
)

// StoreName is the store implementation tag reported by Store.
const StoreName = "Memory"

// Graph is an in-memory, duplicate-free set of triples.
type Graph struct {
	id      string
	triples []quad.Quad
	index   map[[3]string]struct{}
}

// New returns an empty graph with a fresh random identifier.
func New() *Graph {
	return NewWithID(uuid.NewString())
}

// NewWithID returns an empty graph with the given identifier.
func NewWithID(id string) *Graph {
	return &Graph{id: id, index: map[[3]string]struct{}{}}
}

// ID returns the graph identifier.
func (g *Graph) ID() string { return g.id }

// Store names the storage implementation backing the graph.
func (g *Graph) Store() string { return StoreName }

// ContextAware reports whether the store keeps quad labels. It does not.
func (g *Graph) ContextAware() bool { return false }

// FormulaAware reports whether the store supports N3 formulae. It does not.
func (g *Graph) FormulaAware() bool { return false }

// DefaultUnion reports whether the default graph is the union of named graphs.
func (g *Graph) DefaultUnion() bool { return false }

// Len returns the number of triples.
func (g *Graph) Len() int { return len(g.triples) }

// Add inserts a triple built from q's subject, predicate and object; the
// label is ignored. It reports whether the triple was new.
//
// Subjects must be IRIs or blank nodes and predicates IRIs.
func (g *Graph) Add(q quad.Quad) (bool, error) {
	s, p, o := Normalize(q.Subject), Normalize(q.Predicate), Normalize(q.Object)
	if err := validate(s, p, o); err != nil {
		return false, err
	}

	key := [3]string{s.String(), p.String(), o.String()}
	if _, ok := g.index[key]; ok {
		return false, nil
	}
	g.index[key] = struct{}{}
	g.triples = append(g.triples, quad.Quad{Subject: s, Predicate: p, Object: o})
	return true, nil
}

// AddTriple is a convenience wrapper around Add.
func (g *Graph) AddTriple(s, p, o quad.Value) (bool, error) {
	return g.Add(quad.Quad{Subject: s, Predicate: p, Object: o})
}

func validate(s, p, o quad.Value) error {
	switch s.(type) {
	case quad.IRI, quad.BNode:
	default:
		return errors.Errorf(errors.KindInput, "invalid subject %v: must be an IRI or blank node", s)
	}
	if _, ok := p.(quad.IRI); !ok {
		return errors.Errorf(errors.KindInput, "invalid predicate %v: must be an IRI", p)
	}
	if o == nil {
		return errors.Errorf(errors.KindInput, "missing object")
	}
	return nil
}

// Merge adds every triple of other to g and returns the number added.
func (g *Graph) Merge(other *Graph) int {
	n := 0
	for _, t := range other.triples {
		// Triples in other were validated on insert.
		if added, _ := g.Add(t); added {
			n++
		}
	}
	return n
}

// Contains reports whether the triple is in the graph.
func (g *Graph) Contains(s, p, o quad.Value) bool {
	s, p, o = Normalize(s), Normalize(p), Normalize(o)
	if s == nil || p == nil || o == nil {
		return false
	}
	_, ok := g.index[[3]string{s.String(), p.String(), o.String()}]
	return ok
}

// Triples returns a copy of all triples in insertion order.
func (g *Graph) Triples() []quad.Quad {
	out := make([]quad.Quad, len(g.triples))
	copy(out, g.triples)
	return out
}

// Match returns the triples matching the pattern. A nil term matches anything.
func (g *Graph) Match(s, p, o quad.Value) []quad.Quad {
	s, p, o = Normalize(s), Normalize(p), Normalize(o)
	var ks, kp, ko string
	if s != nil {
		ks = s.String()
	}
	if p != nil {
		kp = p.String()
	}
	if o != nil {
		ko = o.String()
	}

	var out []quad.Quad
	for _, t := range g.triples {
		if s != nil && t.Subject.String() != ks {
			continue
		}
		if p != nil && t.Predicate.String() != kp {
			continue
		}
		if o != nil && t.Object.String() != ko {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Subjects returns the distinct subjects in first-seen order.
func (g *Graph) Subjects() []quad.Value {
	return distinct(g.triples, func(q quad.Quad) quad.Value { return q.Subject })
}

// Predicates returns the distinct predicates in first-seen order.
func (g *Graph) Predicates() []quad.Value {
	return distinct(g.triples, func(q quad.Quad) quad.Value { return q.Predicate })
}

// Objects returns the distinct objects in first-seen order.
func (g *Graph) Objects() []quad.Value {
	return distinct(g.triples, func(q quad.Quad) quad.Value { return q.Object })
}

// Types returns the distinct objects of rdf:type triples in first-seen order.
func (g *Graph) Types() []quad.Value {
	return distinct(g.Match(nil, RDFType, nil), func(q quad.Quad) quad.Value { return q.Object })
}

func distinct(triples []quad.Quad, pick func(quad.Quad) quad.Value) []quad.Value {
	seen := make(map[string]struct{})
	var out []quad.Value
	for _, t := range triples {
		v := pick(t)
		k := v.String()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

// String implements fmt.Stringer.
func (g *Graph) String() string {
	return fmt.Sprintf("<Graph identifier=%s (%s) size=%d>", g.id, StoreName, len(g.triples))
}
