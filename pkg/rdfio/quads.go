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

	"github.com/cayleygraph/quad"
	_ "github.com/cayleygraph/quad/json"   // registers the "json" format
	_ "github.com/cayleygraph/quad/jsonld" // registers the "jsonld" format
	"github.com/cayleygraph/quad/nquads"
	_ "github.com/cayleygraph/quad/pquads" // registers the "pquads" format

	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/pkg/graph"
)

type quadReader interface {
	ReadQuad() (quad.Quad, error)
}

type quadWriter interface {
	WriteQuad(quad.Quad) error
	Close() error
}

// copyQuads drains r into g.
func copyQuads(r quadReader, g *graph.Graph) error {
	for {
		q, err := r.ReadQuad()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.WithKind(errors.KindParse, err)
		}
		if _, err := g.Add(q); err != nil {
			return errors.WithKind(errors.KindParse, err)
		}
	}
}

// writeQuads writes every triple of g to w and closes it. Formats that
// buffer (JSON-LD, cayley JSON) only emit their document on Close.
func writeQuads(w quadWriter, g *graph.Graph) error {
	for _, t := range g.Triples() {
		if err := w.WriteQuad(t); err != nil {
			_ = w.Close()
			return err
		}
	}
	return w.Close()
}

func decodeNQuads(r io.Reader, g *graph.Graph, _ Options) error {
	// raw keeps typed literals as TypedString instead of native Go values.
	return copyQuads(nquads.NewReader(r, true), g)
}

func encodeNQuads(w io.Writer, g *graph.Graph, _ Options) error {
	return writeQuads(nquads.NewWriter(w), g)
}

// quadFormat looks up a codec registered with the quad package.
func quadFormat(name string) (*quad.Format, error) {
	f := quad.FormatByName(name)
	if f == nil {
		return nil, errors.Errorf(errors.KindFormat, "quad format %q is not registered", name)
	}
	return f, nil
}

func quadDecoder(name string) decodeFunc {
	return func(r io.Reader, g *graph.Graph, _ Options) error {
		f, err := quadFormat(name)
		if err != nil {
			return err
		}
		if f.Reader == nil {
			return errors.Errorf(errors.KindFormat, "format %q cannot be read", name)
		}
		qr := f.Reader(r)
		defer func() { _ = qr.Close() }()
		return copyQuads(qr, g)
	}
}

func quadEncoder(name string) encodeFunc {
	return func(w io.Writer, g *graph.Graph, _ Options) error {
		f, err := quadFormat(name)
		if err != nil {
			return err
		}
		if f.Writer == nil {
			return errors.Errorf(errors.KindFormat, "format %q cannot be written", name)
		}
		return writeQuads(f.Writer(w), g)
	}
}
