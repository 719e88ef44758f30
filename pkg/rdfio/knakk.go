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

package rdfio

import (
	"io"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/knakk/rdf"

	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/pkg/graph"
)

func decodeTurtle(r io.Reader, g *graph.Graph, opts Options) error {
	return decodeKnakk(r, rdf.Turtle, g, opts)
}

func decodeRDFXML(r io.Reader, g *graph.Graph, opts Options) error {
	return decodeKnakk(r, rdf.RDFXML, g, opts)
}

// decodeKnakk streams triples from a knakk/rdf decoder into g.
func decodeKnakk(r io.Reader, format rdf.Format, g *graph.Graph, opts Options) error {
	dec := rdf.NewTripleDecoder(r, format)
	if opts.Base != "" {
		if err := setBase(dec, opts.Base); err != nil {
			return err
		}
	}

	for {
		t, err := dec.Decode()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.WithKind(errors.KindParse, err)
		}
		q := quad.Quad{
			Subject:   fromKnakk(t.Subj),
			Predicate: fromKnakk(t.Pred),
			Object:    fromKnakk(t.Obj),
		}
		if _, err := g.Add(q); err != nil {
			return errors.WithKind(errors.KindParse, err)
		}
	}
}

func setBase(dec rdf.TripleDecoder, base string) error {
	iri, err := rdf.NewIRI(base)
	if err != nil {
		return errors.Errorf(errors.KindInput, "invalid base %q: %w", base, err)
	}
	setter, ok := dec.(interface {
		SetOption(rdf.ParseOption, interface{}) error
	})
	if !ok {
		return nil
	}
	if err := setter.SetOption(rdf.Base, iri); err != nil {
		return errors.WithKind(errors.KindInput, err)
	}
	return nil
}

// fromKnakk converts a knakk/rdf term into a quad value.
func fromKnakk(term rdf.Term) quad.Value {
	if term == nil {
		return nil
	}
	switch term.Type() {
	case rdf.TermIRI:
		return quad.IRI(term.String())
	case rdf.TermBlank:
		return quad.BNode(strings.TrimPrefix(term.String(), "_:"))
	case rdf.TermLiteral:
		lit, ok := term.(rdf.Literal)
		if !ok {
			return quad.String(term.String())
		}
		if lang := lit.Lang(); lang != "" {
			return quad.LangString{Value: quad.String(lit.String()), Lang: lang}
		}
		dt := lit.DataType.String()
		if dt == "" || quad.IRI(dt) == graph.XSDString {
			return quad.String(lit.String())
		}
		return quad.TypedString{Value: quad.String(lit.String()), Type: quad.IRI(dt)}
	}
	return quad.String(term.String())
}
