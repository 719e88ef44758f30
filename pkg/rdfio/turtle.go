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
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/kraklabs/rdftools/pkg/graph"
)

var (
	pnLocal   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-]*(\.[A-Za-z0-9_\-]+)*$`)
	intLexRe  = regexp.MustCompile(`^[+-]?[0-9]+$`)
	decLexRe  = regexp.MustCompile(`^[+-]?[0-9]*\.[0-9]+$`)
	boolLexRe = regexp.MustCompile(`^(true|false)$`)
)

// prefixMap compacts IRIs against a set of namespace bindings and records
// which bindings were used.
type prefixMap struct {
	bindings map[string]string // prefix -> namespace
	used     map[string]bool
}

func newPrefixMap(bindings map[string]string) *prefixMap {
	return &prefixMap{bindings: bindings, used: map[string]bool{}}
}

// compact returns "pre:local" for iri using the longest matching namespace.
func (pm *prefixMap) compact(iri string) (string, bool) {
	best, bestNS := "", ""
	found := false
	for pre, ns := range pm.bindings {
		if ns == "" || !strings.HasPrefix(iri, ns) || len(ns) < len(bestNS) {
			continue
		}
		local := iri[len(ns):]
		if local != "" && !pnLocal.MatchString(local) {
			continue
		}
		if len(ns) == len(bestNS) && pre > best {
			continue
		}
		best, bestNS, found = pre, ns, true
	}
	if !found {
		return "", false
	}
	pm.used[best] = true
	return best + ":" + iri[len(bestNS):], true
}

// usedPrefixes returns the prefixes referenced so far, sorted.
func (pm *prefixMap) usedPrefixes() []string {
	out := make([]string, 0, len(pm.used))
	for p := range pm.used {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// encodeTurtle writes g as Turtle, grouping triples by subject and predicate.
// Subjects and predicates keep their first-seen order, with rdf:type first.
func encodeTurtle(w io.Writer, g *graph.Graph, opts Options) error {
	head, body := renderTurtle(g, opts)
	if head != "" && body != "" {
		head += "\n"
	}
	_, err := io.WriteString(w, head+body)
	return err
}

// renderTurtle returns the directives and the statements of g separately.
// Only prefixes the statements reference are declared.
func renderTurtle(g *graph.Graph, opts Options) (head, body string) {
	pm := newPrefixMap(opts.Prefixes)

	type predObjs struct {
		pred quad.Value
		objs []quad.Value
	}
	type subjBlock struct {
		subj  quad.Value
		preds []*predObjs
	}

	var blocks []*subjBlock
	bySubj := map[string]*subjBlock{}
	for _, t := range g.Triples() {
		sk := t.Subject.String()
		b, ok := bySubj[sk]
		if !ok {
			b = &subjBlock{subj: t.Subject}
			bySubj[sk] = b
			blocks = append(blocks, b)
		}
		var po *predObjs
		for _, candidate := range b.preds {
			if candidate.pred.String() == t.Predicate.String() {
				po = candidate
				break
			}
		}
		if po == nil {
			po = &predObjs{pred: t.Predicate}
			if t.Predicate == graph.RDFType {
				b.preds = append([]*predObjs{po}, b.preds...)
			} else {
				b.preds = append(b.preds, po)
			}
		}
		po.objs = append(po.objs, t.Object)
	}

	var b strings.Builder
	for i, blk := range blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(turtleTerm(blk.subj, pm))
		for j, po := range blk.preds {
			if j == 0 {
				b.WriteString(" ")
			} else {
				b.WriteString(" ;\n    ")
			}
			if po.pred == graph.RDFType {
				b.WriteString("a")
			} else {
				b.WriteString(turtleTerm(po.pred, pm))
			}
			for k, o := range po.objs {
				if k == 0 {
					b.WriteString(" ")
				} else {
					b.WriteString(",\n        ")
				}
				b.WriteString(turtleTerm(o, pm))
			}
		}
		b.WriteString(" .\n")
	}

	var h strings.Builder
	if opts.Base != "" {
		fmt.Fprintf(&h, "@base <%s> .\n", escapeIRI(opts.Base))
	}
	for _, p := range pm.usedPrefixes() {
		fmt.Fprintf(&h, "@prefix %s: <%s> .\n", p, escapeIRI(opts.Prefixes[p]))
	}
	return h.String(), b.String()
}

// turtleTerm renders a single term.
func turtleTerm(v quad.Value, pm *prefixMap) string {
	switch t := graph.Normalize(v).(type) {
	case quad.IRI:
		if c, ok := pm.compact(string(t)); ok {
			return c
		}
		return "<" + escapeIRI(string(t)) + ">"
	case quad.BNode:
		return "_:" + string(t)
	case quad.String:
		return quoteLiteral(string(t))
	case quad.LangString:
		return quoteLiteral(string(t.Value)) + "@" + t.Lang
	case quad.TypedString:
		lex := string(t.Value)
		switch {
		case t.Type == graph.XSDInteger && intLexRe.MatchString(lex),
			t.Type == graph.XSDDecimal && decLexRe.MatchString(lex),
			t.Type == graph.XSDBoolean && boolLexRe.MatchString(lex):
			return lex
		}
		return quoteLiteral(lex) + "^^" + turtleTerm(t.Type, pm)
	default:
		return quoteLiteral(v.String())
	}
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func quoteLiteral(s string) string {
	return `"` + literalEscaper.Replace(s) + `"`
}

var iriEscaper = strings.NewReplacer(
	">", `\u003E`,
	"<", `\u003C`,
	`"`, `\u0022`,
	" ", `\u0020`,
)

func escapeIRI(s string) string {
	return iriEscaper.Replace(s)
}
