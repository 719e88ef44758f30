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
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/pkg/graph"
)

const trixNamespace = "http://www.w3.org/2004/03/trix/trix-1/"

// TriX documents hold any number of graphs. All of them are read into the
// single graph; graph names are ignored.
type trixDocument struct {
	XMLName xml.Name    `xml:"TriX"`
	Graphs  []trixGraph `xml:"graph"`
}

type trixGraph struct {
	Triples []trixTriple `xml:"triple"`
}

type trixTriple struct {
	Terms []trixTerm `xml:",any"`
}

type trixTerm struct {
	XMLName  xml.Name
	Lang     string `xml:"lang,attr"`
	Datatype string `xml:"datatype,attr"`
	Value    string `xml:",chardata"`
}

func (t trixTerm) value() (quad.Value, error) {
	switch t.XMLName.Local {
	case "uri":
		return quad.IRI(strings.TrimSpace(t.Value)), nil
	case "id":
		return quad.BNode(strings.TrimSpace(t.Value)), nil
	case "plainLiteral":
		if t.Lang != "" {
			return quad.LangString{Value: quad.String(t.Value), Lang: t.Lang}, nil
		}
		return quad.String(t.Value), nil
	case "typedLiteral":
		if t.Datatype == "" {
			return nil, errors.Errorf(errors.KindParse, "trix: typedLiteral without datatype")
		}
		return graph.Normalize(quad.TypedString{Value: quad.String(t.Value), Type: quad.IRI(t.Datatype)}), nil
	}
	return nil, errors.Errorf(errors.KindParse, "trix: unexpected element <%s> in triple", t.XMLName.Local)
}

func decodeTriX(r io.Reader, g *graph.Graph, _ Options) error {
	var doc trixDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return errors.WithKind(errors.KindParse, err)
	}

	for _, gr := range doc.Graphs {
		for _, t := range gr.Triples {
			if len(t.Terms) != 3 {
				return errors.Errorf(errors.KindParse, "trix: triple has %d terms, want 3", len(t.Terms))
			}
			var spo [3]quad.Value
			for i, term := range t.Terms {
				v, err := term.value()
				if err != nil {
					return err
				}
				spo[i] = v
			}
			if _, err := g.AddTriple(spo[0], spo[1], spo[2]); err != nil {
				return errors.WithKind(errors.KindParse, err)
			}
		}
	}
	return nil
}

// encodeTriX writes g as one unnamed graph.
func encodeTriX(w io.Writer, g *graph.Graph, _ Options) error {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, "<TriX xmlns=\"%s\">\n", trixNamespace)
	b.WriteString("  <graph>\n")
	for _, t := range g.Triples() {
		b.WriteString("    <triple>\n")
		for _, v := range []quad.Value{t.Subject, t.Predicate, t.Object} {
			b.WriteString("      " + trixElement(v) + "\n")
		}
		b.WriteString("    </triple>\n")
	}
	b.WriteString("  </graph>\n</TriX>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func trixElement(v quad.Value) string {
	switch t := graph.Normalize(v).(type) {
	case quad.IRI:
		return "<uri>" + xmlEscape(string(t)) + "</uri>"
	case quad.BNode:
		return "<id>" + xmlEscape(string(t)) + "</id>"
	case quad.String:
		return "<plainLiteral>" + xmlEscape(string(t)) + "</plainLiteral>"
	case quad.LangString:
		return fmt.Sprintf(`<plainLiteral xml:lang="%s">%s</plainLiteral>`, xmlEscape(t.Lang), xmlEscape(string(t.Value)))
	case quad.TypedString:
		return fmt.Sprintf(`<typedLiteral datatype="%s">%s</typedLiteral>`, xmlEscape(string(t.Type)), xmlEscape(string(t.Value)))
	default:
		return "<plainLiteral>" + xmlEscape(v.String()) + "</plainLiteral>"
	}
}
