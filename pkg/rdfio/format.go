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

// Package rdfio reads and writes RDF graphs in the serialization formats
// supported by the rdftools CLIs.
//
// The format list is closed:
//
//	hext, json, json-ld, n3, nquads, nt, pquads, trig, trix, turtle, xml, pretty-xml
//
// Decoding is delegated to github.com/cayleygraph/quad (N-Triples, N-Quads,
// JSON-LD, cayley JSON, protobuf quads) and github.com/knakk/rdf (Turtle, N3,
// TriG, RDF/XML). Turtle, TriG, TriX, RDF/XML and hext output are produced by
// this package. Graph names in TriG, TriX and N-Quads input are dropped.
//
// Every error returned is classified with errors.Kind: unknown formats are
// KindFormat, unreadable inputs KindRead, malformed documents KindParse and
// output failures KindWrite.
package rdfio

import (
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/pkg/graph"
)

// Default is the format used when none is given and none can be guessed.
// Its reader also accepts N-Triples.
const Default = "turtle"

// Options carry the session context a codec may need.
type Options struct {
	// Base resolves relative IRIs while reading and is declared on output
	// by formats that support it.
	Base string

	// Prefixes maps prefix names to namespaces for compact output.
	Prefixes map[string]string
}

type decodeFunc func(r io.Reader, g *graph.Graph, opts Options) error
type encodeFunc func(w io.Writer, g *graph.Graph, opts Options) error

// Format describes one serialization.
type Format struct {
	Name       string
	Extensions []string
	MediaType  string

	decode decodeFunc
	encode encodeFunc
}

var registry = map[string]*Format{}

func register(f *Format) { registry[f.Name] = f }

func init() {
	register(&Format{Name: "turtle", Extensions: []string{".ttl"}, MediaType: "text/turtle",
		decode: decodeTurtle, encode: encodeTurtle})
	register(&Format{Name: "n3", Extensions: []string{".n3"}, MediaType: "text/n3",
		decode: decodeTurtle, encode: encodeTurtle})
	register(&Format{Name: "nt", Extensions: []string{".nt"}, MediaType: "application/n-triples",
		decode: decodeNQuads, encode: encodeNQuads})
	register(&Format{Name: "nquads", Extensions: []string{".nq", ".nquads"}, MediaType: "application/n-quads",
		decode: decodeNQuads, encode: encodeNQuads})
	register(&Format{Name: "xml", Extensions: []string{".rdf", ".xml", ".owl"}, MediaType: "application/rdf+xml",
		decode: decodeRDFXML, encode: encodeRDFXML})
	register(&Format{Name: "pretty-xml", MediaType: "application/rdf+xml",
		decode: decodeRDFXML, encode: encodePrettyRDFXML})
	register(&Format{Name: "json-ld", Extensions: []string{".jsonld", ".json-ld"}, MediaType: "application/ld+json",
		decode: quadDecoder("jsonld"), encode: quadEncoder("jsonld")})
	register(&Format{Name: "json", Extensions: []string{".json"}, MediaType: "application/json",
		decode: quadDecoder("json"), encode: quadEncoder("json")})
	register(&Format{Name: "pquads", Extensions: []string{".pq"}, MediaType: "application/x-protobuf",
		decode: quadDecoder("pquads"), encode: quadEncoder("pquads")})
	register(&Format{Name: "trig", Extensions: []string{".trig"}, MediaType: "application/trig",
		decode: decodeTriG, encode: encodeTriG})
	register(&Format{Name: "trix", Extensions: []string{".trix"}, MediaType: "application/trix",
		decode: decodeTriX, encode: encodeTriX})
	register(&Format{Name: "hext", Extensions: []string{".hext"}, MediaType: "application/x-ndjson",
		decode: decodeHext, encode: encodeHext})
}

// Names returns the supported format names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the format registered under name.
func Lookup(name string) (*Format, error) {
	if f, ok := registry[name]; ok {
		return f, nil
	}
	return nil, errors.Errorf(errors.KindFormat, "unknown format %q (choose from %s)", name, strings.Join(Names(), ", "))
}

// Guess returns the format implied by path's extension.
func Guess(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "", false
	}
	for _, f := range registry {
		for _, e := range f.Extensions {
			if e == ext {
				return f.Name, true
			}
		}
	}
	return "", false
}

// Resolve applies the format policy shared by all tools: an explicit format
// wins, then the extension of path, then Default.
func Resolve(explicit, path string) string {
	if explicit != "" {
		return explicit
	}
	if path != "" {
		if name, ok := Guess(path); ok {
			return name
		}
	}
	return Default
}
