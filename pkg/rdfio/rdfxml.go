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
	"regexp"
	"sort"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/pkg/graph"
)

var ncName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]*$`)

// xmlNamespaces assigns XML prefixes to namespaces. The rdf prefix is always
// declared; other namespaces reuse the session prefix bound to them or get
// generated ns1, ns2, ... names.
type xmlNamespaces struct {
	prefixes map[string]string // namespace -> prefix
	taken    map[string]bool
	session  map[string]string // namespace -> session prefix
	next     int
}

func newXMLNamespaces(sessionPrefixes map[string]string) *xmlNamespaces {
	ns := &xmlNamespaces{
		prefixes: map[string]string{graph.RDFNamespace: "rdf"},
		taken:    map[string]bool{"rdf": true, "xml": true},
		session:  map[string]string{},
	}
	for pre, uri := range sessionPrefixes {
		if pre == "" || pre == "xml" || !ncName.MatchString(pre) {
			continue
		}
		if cur, ok := ns.session[uri]; !ok || pre < cur {
			ns.session[uri] = pre
		}
	}
	return ns
}

func (ns *xmlNamespaces) prefixFor(uri string) string {
	if p, ok := ns.prefixes[uri]; ok {
		return p
	}
	p, ok := ns.session[uri]
	if !ok || ns.taken[p] {
		for {
			ns.next++
			p = fmt.Sprintf("ns%d", ns.next)
			if !ns.taken[p] {
				break
			}
		}
	}
	ns.prefixes[uri] = p
	ns.taken[p] = true
	return p
}

// qname splits iri into namespace and local name and returns "prefix:local".
func (ns *xmlNamespaces) qname(iri string) (string, error) {
	i := strings.LastIndexAny(iri, "#/:")
	for i >= 0 && i < len(iri)-1 && !ncName.MatchString(iri[i+1:]) {
		// Local part must start with a letter or underscore; move the split right.
		j := strings.IndexFunc(iri[i+1:], func(r rune) bool {
			return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || r == '_'
		})
		if j < 0 {
			i = -1
			break
		}
		i += j
	}
	if i < 0 || i == len(iri)-1 {
		return "", errors.Errorf(errors.KindWrite, "cannot split %q into a namespace and a local name", iri)
	}
	return ns.prefixFor(iri[:i+1]) + ":" + iri[i+1:], nil
}

func (ns *xmlNamespaces) declarations() []string {
	type decl struct{ prefix, uri string }
	var decls []decl
	for uri, p := range ns.prefixes {
		decls = append(decls, decl{p, uri})
	}
	sort.Slice(decls, func(i, j int) bool { return decls[i].prefix < decls[j].prefix })

	out := make([]string, 0, len(decls))
	for _, d := range decls {
		out = append(out, fmt.Sprintf(`xmlns:%s="%s"`, d.prefix, xmlEscape(d.uri)))
	}
	return out
}

func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func encodeRDFXML(w io.Writer, g *graph.Graph, opts Options) error {
	return writeRDFXML(w, g, opts, false)
}

func encodePrettyRDFXML(w io.Writer, g *graph.Graph, opts Options) error {
	return writeRDFXML(w, g, opts, true)
}

// writeRDFXML emits one description element per subject. With typed set,
// the first rdf:type of each subject becomes the element name.
func writeRDFXML(w io.Writer, g *graph.Graph, opts Options, typed bool) error {
	ns := newXMLNamespaces(opts.Prefixes)

	var subjects []quad.Value
	bySubj := map[string][]quad.Quad{}
	for _, t := range g.Triples() {
		k := t.Subject.String()
		if _, ok := bySubj[k]; !ok {
			subjects = append(subjects, t.Subject)
		}
		bySubj[k] = append(bySubj[k], t)
	}

	var body strings.Builder
	for _, s := range subjects {
		if err := writeDescription(&body, ns, s, bySubj[s.String()], typed); err != nil {
			return err
		}
	}

	var out strings.Builder
	out.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	out.WriteString("<rdf:RDF\n")
	for _, d := range ns.declarations() {
		out.WriteString("   " + d + "\n")
	}
	if opts.Base != "" {
		fmt.Fprintf(&out, "   xml:base=\"%s\"\n", xmlEscape(opts.Base))
	}
	out.WriteString(">\n")
	out.WriteString(body.String())
	out.WriteString("</rdf:RDF>\n")

	_, err := io.WriteString(w, out.String())
	return err
}

func writeDescription(b *strings.Builder, ns *xmlNamespaces, s quad.Value, triples []quad.Quad, typed bool) error {
	elem := "rdf:Description"
	if typed {
		for i, t := range triples {
			iri, ok := t.Object.(quad.IRI)
			if t.Predicate != graph.RDFType || !ok {
				continue
			}
			if qn, err := ns.qname(string(iri)); err == nil {
				elem = qn
				triples = append(triples[:i:i], triples[i+1:]...)
				break
			}
		}
	}

	var about string
	switch t := s.(type) {
	case quad.IRI:
		about = fmt.Sprintf(`rdf:about="%s"`, xmlEscape(string(t)))
	case quad.BNode:
		about = fmt.Sprintf(`rdf:nodeID="%s"`, xmlEscape(string(t)))
	default:
		return errors.Errorf(errors.KindWrite, "invalid subject %v", s)
	}

	if len(triples) == 0 {
		fmt.Fprintf(b, "  <%s %s/>\n", elem, about)
		return nil
	}

	fmt.Fprintf(b, "  <%s %s>\n", elem, about)
	for _, t := range triples {
		pred, err := ns.qname(string(t.Predicate.(quad.IRI)))
		if err != nil {
			return err
		}
		switch o := graph.Normalize(t.Object).(type) {
		case quad.IRI:
			fmt.Fprintf(b, "    <%s rdf:resource=\"%s\"/>\n", pred, xmlEscape(string(o)))
		case quad.BNode:
			fmt.Fprintf(b, "    <%s rdf:nodeID=\"%s\"/>\n", pred, xmlEscape(string(o)))
		case quad.String:
			fmt.Fprintf(b, "    <%s>%s</%s>\n", pred, xmlEscape(string(o)), pred)
		case quad.LangString:
			fmt.Fprintf(b, "    <%s xml:lang=\"%s\">%s</%s>\n", pred, xmlEscape(o.Lang), xmlEscape(string(o.Value)), pred)
		case quad.TypedString:
			fmt.Fprintf(b, "    <%s rdf:datatype=\"%s\">%s</%s>\n", pred, xmlEscape(string(o.Type)), xmlEscape(string(o.Value)), pred)
		}
	}
	fmt.Fprintf(b, "  </%s>\n", elem)
	return nil
}
