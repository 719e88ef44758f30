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
	"io"
	"os"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/google/uuid"

	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/pkg/graph"
)

// Read decodes r in the named format and merges the result into g.
//
// Decoding happens into a scratch graph, so g is left untouched when the
// document is malformed. Blank node labels are scoped to the document:
// two reads never share a blank node, even when their labels match.
// Read returns the number of new triples.
func Read(r io.Reader, format string, g *graph.Graph, opts Options) (int, error) {
	f, err := Lookup(format)
	if err != nil {
		return 0, err
	}

	scratch := graph.New()
	if err := f.decode(bufio.NewReader(r), scratch, opts); err != nil {
		if errors.KindOf(err) == errors.KindInternal {
			err = errors.WithKind(errors.KindParse, err)
		}
		return 0, err
	}
	return g.Merge(scopeBlankNodes(scratch)), nil
}

// scopeBlankNodes returns doc with every blank node label prefixed by a
// fresh per-document tag.
func scopeBlankNodes(doc *graph.Graph) *graph.Graph {
	tag := "b" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	scope := func(v quad.Value) quad.Value {
		if b, ok := v.(quad.BNode); ok {
			return quad.BNode(tag + string(b))
		}
		return v
	}

	out := graph.NewWithID(doc.ID())
	for _, t := range doc.Triples() {
		// Scoping keeps every term kind, so the triple stays valid.
		_, _ = out.AddTriple(scope(t.Subject), scope(t.Predicate), scope(t.Object))
	}
	return out
}

// ReadFile reads path into g. An empty format is resolved from the file
// extension, falling back to Default.
func ReadFile(path, format string, g *graph.Graph, opts Options) (int, error) {
	format = Resolve(format, path)
	if _, err := Lookup(format); err != nil {
		return 0, err
	}

	file, err := os.Open(path) //nolint:gosec // G304: reading user-named inputs is the point
	if err != nil {
		return 0, errors.WithKind(errors.KindRead, err)
	}
	defer func() { _ = file.Close() }()

	n, err := Read(file, format, g, opts)
	if err != nil {
		return 0, errors.Errorf(errors.KindOf(err), "%s: %w", path, err)
	}
	return n, nil
}

// Write encodes g to w in the named format.
func Write(w io.Writer, g *graph.Graph, format string, opts Options) error {
	f, err := Lookup(format)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if err := f.encode(bw, g, opts); err != nil {
		return errors.WithKind(errors.KindWrite, err)
	}
	if err := bw.Flush(); err != nil {
		return errors.WithKind(errors.KindWrite, err)
	}
	return nil
}

// WriteFile writes g to path, creating or truncating it. An empty format is
// resolved from the file extension, falling back to Default.
func WriteFile(path string, g *graph.Graph, format string, opts Options) error {
	format = Resolve(format, path)
	if _, err := Lookup(format); err != nil {
		return err
	}

	file, err := os.Create(path) //nolint:gosec // G304: writing user-named outputs is the point
	if err != nil {
		return errors.WithKind(errors.KindWrite, err)
	}
	if err := Write(file, g, format, opts); err != nil {
		_ = file.Close()
		return errors.Errorf(errors.KindWrite, "%s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return errors.WithKind(errors.KindWrite, err)
	}
	return nil
}
