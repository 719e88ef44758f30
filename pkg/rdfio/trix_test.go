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
	"bytes"
	"strings"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/pkg/graph"
)

const trixSample = `<?xml version="1.0"?>
<TriX xmlns="http://www.w3.org/2004/03/trix/trix-1/">
  <graph>
    <uri>http://example.org/g1</uri>
    <triple>
      <uri>http://example.org/a</uri>
      <uri>http://example.org/p</uri>
      <plainLiteral xml:lang="en">hello</plainLiteral>
    </triple>
    <triple>
      <id>x</id>
      <uri>http://example.org/p</uri>
      <typedLiteral datatype="http://www.w3.org/2001/XMLSchema#integer">7</typedLiteral>
    </triple>
  </graph>
  <graph>
    <triple>
      <uri>http://example.org/b</uri>
      <uri>http://example.org/p</uri>
      <typedLiteral datatype="http://www.w3.org/2001/XMLSchema#string">plain</typedLiteral>
    </triple>
  </graph>
</TriX>
`

func TestRead_TriX(t *testing.T) {
	g := graph.New()
	n, err := Read(strings.NewReader(trixSample), "trix", g, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	p := quad.IRI("http://example.org/p")
	assert.True(t, g.Contains(quad.IRI("http://example.org/a"), p, quad.LangString{Value: "hello", Lang: "en"}))
	assert.True(t, g.Contains(quad.IRI("http://example.org/b"), p, quad.String("plain")))
	assert.Len(t, g.Match(nil, p, quad.TypedString{Value: "7", Type: graph.XSDInteger}), 1)
}

func TestRead_TriXErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"not trix", "<rdf/>", "expected element type <TriX>"},
		{"short triple", "<TriX><graph><triple><uri>a</uri><uri>b</uri></triple></graph></TriX>", "triple has 2 terms"},
		{"unknown term", "<TriX><graph><triple><uri>a</uri><uri>b</uri><blank/></triple></graph></TriX>", "unexpected element <blank>"},
		{"untyped", "<TriX><graph><triple><uri>a</uri><uri>b</uri><typedLiteral>1</typedLiteral></triple></graph></TriX>", "without datatype"},
		{"literal subject", "<TriX><graph><triple><plainLiteral>a</plainLiteral><uri>b</uri><uri>c</uri></triple></graph></TriX>", ""},
		{"truncated", "<TriX><graph>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New()
			_, err := Read(strings.NewReader(tt.doc), "trix", g, Options{})
			require.Error(t, err)
			assert.Equal(t, errors.KindParse, errors.KindOf(err))
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, 0, g.Len())
		})
	}
}

func TestWrite_TriX(t *testing.T) {
	g := graph.New()
	_, err := g.AddTriple(quad.IRI("http://example.org/a?x=1&y=2"), quad.IRI("http://example.org/p"), quad.LangString{Value: "<b>", Lang: "en"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g, "trix", Options{}))
	assert.Equal(t, `<?xml version="1.0" encoding="UTF-8"?>
<TriX xmlns="http://www.w3.org/2004/03/trix/trix-1/">
  <graph>
    <triple>
      <uri>http://example.org/a?x=1&amp;y=2</uri>
      <uri>http://example.org/p</uri>
      <plainLiteral xml:lang="en">&lt;b&gt;</plainLiteral>
    </triple>
  </graph>
</TriX>
`, buf.String())
}
