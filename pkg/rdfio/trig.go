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

	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/pkg/graph"
)

// TriG documents are read into the single graph by flattening them to
// Turtle: graph names and braces are dropped, statements are kept verbatim.
// Blank node labels stay document scoped, as TriG requires.

func decodeTriG(r io.Reader, g *graph.Graph, opts Options) error {
	src, err := io.ReadAll(r)
	if err != nil {
		return errors.WithKind(errors.KindRead, err)
	}
	doc, err := flattenTriG(string(src))
	if err != nil {
		return err
	}
	return decodeTurtle(strings.NewReader(doc), g, opts)
}

// encodeTriG writes g as the default graph block of a TriG document.
func encodeTriG(w io.Writer, g *graph.Graph, opts Options) error {
	head, body := renderTurtle(g, opts)

	var b strings.Builder
	b.WriteString(head)
	if head != "" {
		b.WriteString("\n")
	}
	b.WriteString("{\n")
	for _, line := range strings.SplitAfter(body, "\n") {
		if strings.TrimSpace(line) != "" {
			b.WriteString("    ")
		}
		b.WriteString(line)
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// flattenTriG rewrites src as Turtle. Comments are removed; IRIs and string
// literals are copied without looking inside them.
func flattenTriG(src string) (string, error) {
	var out strings.Builder
	inBlock := false
	stmt := 0  // offset in out where the current top-level statement starts
	block := 0 // offset in out where the current graph block starts

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '#':
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src) - i
			}
			i += end

		case c == '\\' && i+1 < len(src):
			out.WriteString(src[i : i+2])
			i += 2

		case c == '<':
			end := strings.IndexByte(src[i:], '>')
			if end < 0 {
				return "", errors.Errorf(errors.KindParse, "trig: unterminated IRI at offset %d", i)
			}
			out.WriteString(src[i : i+end+1])
			i += end + 1

		case c == '"' || c == '\'':
			end := stringEnd(src, i)
			if end < 0 {
				return "", errors.Errorf(errors.KindParse, "trig: unterminated string at offset %d", i)
			}
			out.WriteString(src[i:end])
			i = end

		case c == '{':
			if inBlock {
				return "", errors.Errorf(errors.KindParse, "trig: nested graph block at offset %d", i)
			}
			kept, err := dropGraphName(out.String()[stmt:])
			if err != nil {
				return "", err
			}
			doc := out.String()[:stmt] + kept
			out.Reset()
			out.WriteString(doc)
			out.WriteString("\n")
			inBlock, block = true, out.Len()
			i++

		case c == '}':
			if !inBlock {
				return "", errors.Errorf(errors.KindParse, "trig: unexpected '}' at offset %d", i)
			}
			// The last statement of a block may omit its final dot.
			if last := strings.TrimSpace(out.String()[block:]); last != "" && !strings.HasSuffix(last, ".") {
				out.WriteString(" .")
			}
			out.WriteString("\n")
			inBlock, stmt = false, out.Len()
			i++

		default:
			out.WriteByte(c)
			i++
			if c == '.' && !inBlock {
				stmt = out.Len()
			}
		}
	}

	if inBlock {
		return "", errors.Errorf(errors.KindParse, "trig: unterminated graph block")
	}
	return out.String(), nil
}

// stringEnd returns the offset just past the string literal starting at
// src[i], or -1 when it is not terminated.
func stringEnd(src string, i int) int {
	q := src[i]
	long := strings.Repeat(string(q), 3)
	if strings.HasPrefix(src[i:], long) {
		for j := i + 3; j < len(src); j++ {
			if src[j] == '\\' {
				j++
				continue
			}
			if strings.HasPrefix(src[j:], long) {
				end := j + 3
				for end < len(src) && src[end] == q {
					end++
				}
				return end
			}
		}
		return -1
	}
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case q:
			return j + 1
		case '\n', '\r':
			return -1
		}
	}
	return -1
}

type trigToken struct {
	start int
	text  string
}

// dropGraphName removes the optional GRAPH keyword and graph label that
// precede a block, keeping any SPARQL style PREFIX and BASE directives.
func dropGraphName(frag string) (string, error) {
	toks := trigTokens(frag)

	k := 0
directives:
	for k < len(toks) {
		switch strings.ToUpper(toks[k].text) {
		case "PREFIX":
			k += 3
		case "BASE":
			k += 2
		default:
			break directives
		}
	}
	if k >= len(toks) {
		return frag, nil
	}

	label := toks[k:]
	if strings.EqualFold(label[0].text, "GRAPH") {
		label = label[1:]
	}
	if len(label) != 1 {
		return "", errors.Errorf(errors.KindParse, "trig: unexpected %q before graph block", strings.TrimSpace(frag[toks[k].start:]))
	}
	return frag[:toks[k].start], nil
}

// trigTokens splits frag on whitespace, keeping <...> and [...] whole.
func trigTokens(frag string) []trigToken {
	var toks []trigToken
	for i := 0; i < len(frag); {
		if strings.ContainsRune(" \t\r\n", rune(frag[i])) {
			i++
			continue
		}
		start := i
		switch frag[i] {
		case '<':
			i = closeAt(frag, i, '>')
		case '[':
			i = closeAt(frag, i, ']')
		default:
			for i < len(frag) && !strings.ContainsRune(" \t\r\n<[", rune(frag[i])) {
				i++
			}
		}
		toks = append(toks, trigToken{start: start, text: frag[start:i]})
	}
	return toks
}

func closeAt(s string, i int, c byte) int {
	if end := strings.IndexByte(s[i:], c); end >= 0 {
		return i + end + 1
	}
	return len(s)
}
