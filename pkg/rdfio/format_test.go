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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/rdftools/internal/errors"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		"hext", "json", "json-ld", "n3", "nquads", "nt", "pquads", "pretty-xml",
		"trig", "trix", "turtle", "xml",
	}, Names())
}

func TestLookup(t *testing.T) {
	f, err := Lookup("turtle")
	require.NoError(t, err)
	assert.Equal(t, "turtle", f.Name)
	assert.Equal(t, "text/turtle", f.MediaType)

	_, err = Lookup("python")
	require.Error(t, err)
	assert.Equal(t, errors.KindFormat, errors.KindOf(err))
	assert.Contains(t, err.Error(), `unknown format "python"`)
}

func TestGuess(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"data/sample.n3", "n3", true},
		{"sample.TTL", "turtle", true},
		{"dump.nt", "nt", true},
		{"dump.nq", "nquads", true},
		{"onto.owl", "xml", true},
		{"onto.rdf", "xml", true},
		{"doc.jsonld", "json-ld", true},
		{"quads.json", "json", true},
		{"quads.pq", "pquads", true},
		{"rows.hext", "hext", true},
		{"named.trig", "trig", true},
		{"named.trix", "trix", true},
		{"README", "", false},
		{"notes.txt", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := Guess(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		path     string
		want     string
	}{
		{"explicit wins", "nt", "sample.n3", "nt"},
		{"guessed", "", "sample.n3", "n3"},
		{"unknown extension", "", "sample.txt", Default},
		{"stdin", "", "", Default},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.explicit, tt.path))
		})
	}
}
