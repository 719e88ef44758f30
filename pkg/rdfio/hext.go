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
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/pkg/graph"
)

// Hextuples datatype markers for non-literal objects.
const (
	hextGlobalID = "globalId"
	hextLocalID  = "localId"
)

// encodeHext writes one JSON array per triple:
// [subject, predicate, value, datatype, language, graph].
func encodeHext(w io.Writer, g *graph.Graph, _ Options) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, t := range g.Triples() {
		row := [6]string{hextNode(t.Subject), string(t.Predicate.(quad.IRI)), "", "", "", ""}
		switch o := graph.Normalize(t.Object).(type) {
		case quad.IRI:
			row[2], row[3] = string(o), hextGlobalID
		case quad.BNode:
			row[2], row[3] = o.String(), hextLocalID
		default:
			row[2] = graph.Lexical(o)
			row[3] = string(graph.Datatype(o))
			row[4] = graph.Language(o)
		}
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return nil
}

func hextNode(v quad.Value) string {
	if b, ok := v.(quad.BNode); ok {
		return b.String()
	}
	return graph.Lexical(v)
}

func hextResource(s string) quad.Value {
	if strings.HasPrefix(s, "_:") {
		return quad.BNode(strings.TrimPrefix(s, "_:"))
	}
	return quad.IRI(s)
}

func decodeHext(r io.Reader, g *graph.Graph, _ Options) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var row []string
		if err := json.Unmarshal([]byte(text), &row); err != nil {
			return errors.Errorf(errors.KindParse, "line %d: %w", line, err)
		}
		if len(row) != 6 {
			return errors.Errorf(errors.KindParse, "line %d: expected 6 elements, found %d", line, len(row))
		}

		var obj quad.Value
		switch row[3] {
		case hextGlobalID, hextLocalID:
			obj = hextResource(row[2])
		case "":
			obj = quad.String(row[2])
		default:
			if row[4] != "" {
				obj = quad.LangString{Value: quad.String(row[2]), Lang: row[4]}
			} else {
				obj = quad.TypedString{Value: quad.String(row[2]), Type: quad.IRI(row[3])}
			}
		}

		if _, err := g.AddTriple(hextResource(row[0]), quad.IRI(row[1]), obj); err != nil {
			return errors.Errorf(errors.KindParse, "line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return errors.WithKind(errors.KindRead, err)
	}
	return nil
}
