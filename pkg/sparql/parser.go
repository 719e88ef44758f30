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

package sparql

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/pkg/graph"
)

// SyntaxError describes a malformed query.
type SyntaxError struct {
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

func syntaxError(line, col int, msg string) error {
	return errors.WithKind(errors.KindQuery, &SyntaxError{Line: line, Column: col, Message: msg})
}

// ParseOptions seeds a parse with bindings the query text does not declare.
type ParseOptions struct {
	Base     string
	Prefixes map[string]string
}

type parser struct {
	src  string
	toks []token
	pos  int
	q    *Query
	seen map[string]bool
}

// Parse parses a query using only the prefixes it declares itself.
func Parse(text string) (*Query, error) {
	return ParseWith(text, ParseOptions{})
}

// ParseWith parses a query. Prefixes and base in opts are visible to the
// query and may be overridden by its own PREFIX and BASE declarations.
func ParseWith(text string, opts ParseOptions) (*Query, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}

	q := &Query{
		Base:     opts.Base,
		Prefixes: make(map[string]string, len(opts.Prefixes)),
		Limit:    -1,
	}
	for k, v := range opts.Prefixes {
		q.Prefixes[k] = v
	}

	p := &parser{src: text, toks: toks, q: q, seen: map[string]bool{}}
	if err := p.parseQuery(); err != nil {
		return nil, err
	}
	return q, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) peekAt(n int) token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...interface{}) error {
	line, col := position(p.src, t.pos)
	return syntaxError(line, col, fmt.Sprintf(format, args...))
}

// isKeyword reports whether t is the case-insensitive keyword kw.
func isKeyword(t token, kw string) bool {
	return t.kind == tokWord && strings.EqualFold(t.text, kw)
}

func isPunct(t token, s string) bool {
	return t.kind == tokPunct && t.text == s
}

func (p *parser) acceptKeyword(kw string) bool {
	if isKeyword(p.peek(), kw) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) acceptPunct(s string) bool {
	if isPunct(p.peek(), s) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expectPunct(s string) error {
	if t := p.peek(); !isPunct(t, s) {
		return p.errorf(t, "expected %q, found %s", s, t)
	}
	p.advance()
	return nil
}

func (p *parser) noteVar(name string) {
	if isBlankVar(name) || p.seen[name] {
		return
	}
	p.seen[name] = true
	p.q.mentioned = append(p.q.mentioned, name)
}

func (p *parser) parseQuery() error {
	if err := p.parsePrologue(); err != nil {
		return err
	}

	t := p.peek()
	var err error
	switch {
	case isKeyword(t, "SELECT"):
		p.q.Form = FormSelect
		err = p.parseSelect()
	case isKeyword(t, "ASK"):
		p.q.Form = FormAsk
		p.advance()
		p.acceptKeyword("WHERE")
		p.q.Where, err = p.parseGroup()
	case isKeyword(t, "CONSTRUCT"):
		p.q.Form = FormConstruct
		err = p.parseConstruct()
	case isKeyword(t, "DESCRIBE"):
		p.q.Form = FormDescribe
		err = p.parseDescribe()
	default:
		return p.errorf(t, "expected SELECT, CONSTRUCT, DESCRIBE or ASK, found %s", t)
	}
	if err != nil {
		return err
	}

	if p.q.Where == nil {
		p.q.Where = &Group{}
	}
	if err := p.parseModifiers(); err != nil {
		return err
	}
	if t := p.peek(); t.kind != tokEOF {
		return p.errorf(t, "unexpected %s after end of query", t)
	}
	return nil
}

func (p *parser) parsePrologue() error {
	for {
		t := p.peek()
		switch {
		case isKeyword(t, "BASE"):
			p.advance()
			iri := p.peek()
			if iri.kind != tokIRI {
				return p.errorf(iri, "expected IRI after BASE, found %s", iri)
			}
			p.advance()
			p.q.Base = p.resolveIRI(iri.text)
		case isKeyword(t, "PREFIX"):
			p.advance()
			name := p.peek()
			if name.kind != tokPName || !strings.HasSuffix(name.text, ":") {
				return p.errorf(name, "expected prefix name after PREFIX, found %s", name)
			}
			p.advance()
			iri := p.peek()
			if iri.kind != tokIRI {
				return p.errorf(iri, "expected IRI after PREFIX %s, found %s", name.text, iri)
			}
			p.advance()
			p.q.Prefixes[strings.TrimSuffix(name.text, ":")] = p.resolveIRI(iri.text)
		default:
			return nil
		}
	}
}

func (p *parser) parseSelect() error {
	p.advance()
	if p.acceptKeyword("DISTINCT") {
		p.q.Distinct = true
	} else if p.acceptKeyword("REDUCED") {
		p.q.Reduced = true
	}

	if p.acceptPunct("*") {
		p.q.Star = true
	} else {
		for p.peek().kind == tokVar {
			name := p.advance().text
			p.q.Vars = append(p.q.Vars, name)
			p.noteVar(name)
		}
		if len(p.q.Vars) == 0 {
			t := p.peek()
			return p.errorf(t, "expected variables or * after SELECT, found %s", t)
		}
	}

	p.acceptKeyword("WHERE")
	g, err := p.parseGroup()
	if err != nil {
		return err
	}
	p.q.Where = g
	return nil
}

func (p *parser) parseConstruct() error {
	p.advance()

	// CONSTRUCT WHERE { ... } uses the pattern as its own template.
	if p.acceptKeyword("WHERE") {
		g, err := p.parseGroup()
		if err != nil {
			return err
		}
		for _, el := range g.Elements {
			bgp, ok := el.(BGP)
			if !ok || len(g.Filters) > 0 {
				return p.errorf(p.peek(), "CONSTRUCT WHERE only allows triple patterns")
			}
			p.q.Template = append(p.q.Template, bgp...)
		}
		p.q.Where = g
		return nil
	}

	if err := p.expectPunct("{"); err != nil {
		return err
	}
	var template []TriplePattern
	for !isPunct(p.peek(), "}") {
		if p.acceptPunct(".") {
			continue
		}
		triples, err := p.parseTriplesSameSubject()
		if err != nil {
			return err
		}
		template = append(template, triples...)
	}
	p.advance()
	p.q.Template = template

	p.acceptKeyword("WHERE")
	g, err := p.parseGroup()
	if err != nil {
		return err
	}
	p.q.Where = g
	return nil
}

func (p *parser) parseDescribe() error {
	p.advance()
	if p.acceptPunct("*") {
		p.q.Star = true
	} else {
		for {
			t := p.peek()
			if t.kind != tokVar && t.kind != tokIRI && t.kind != tokPName {
				break
			}
			term, err := p.parseVarOrTerm()
			if err != nil {
				return err
			}
			p.q.Resources = append(p.q.Resources, term)
		}
		if len(p.q.Resources) == 0 {
			t := p.peek()
			return p.errorf(t, "expected resources or * after DESCRIBE, found %s", t)
		}
	}

	if p.acceptKeyword("WHERE") || isPunct(p.peek(), "{") {
		g, err := p.parseGroup()
		if err != nil {
			return err
		}
		p.q.Where = g
	}
	return nil
}

func (p *parser) parseModifiers() error {
	if p.acceptKeyword("ORDER") {
		if !p.acceptKeyword("BY") {
			t := p.peek()
			return p.errorf(t, "expected BY after ORDER, found %s", t)
		}
		for {
			t := p.peek()
			var (
				key OrderBy
				err error
			)
			switch {
			case isKeyword(t, "ASC") || isKeyword(t, "DESC"):
				p.advance()
				key.Descending = isKeyword(t, "DESC")
				key.Expr, err = p.parseBracketted()
			case t.kind == tokVar:
				p.advance()
				p.noteVar(t.text)
				key.Expr = varExpr(t.text)
			case isPunct(t, "("):
				key.Expr, err = p.parseBracketted()
			case t.kind == tokWord && isPunct(p.peekAt(1), "("):
				key.Expr, err = p.parsePrimary()
			default:
				if len(p.q.OrderBy) == 0 {
					return p.errorf(t, "expected ORDER BY condition, found %s", t)
				}
			}
			if err != nil {
				return err
			}
			if key.Expr == nil {
				break
			}
			p.q.OrderBy = append(p.q.OrderBy, key)
		}
	}

	for i := 0; i < 2; i++ {
		switch t := p.peek(); {
		case isKeyword(t, "LIMIT"):
			p.advance()
			n, err := p.parseCount("LIMIT")
			if err != nil {
				return err
			}
			p.q.Limit = n
		case isKeyword(t, "OFFSET"):
			p.advance()
			n, err := p.parseCount("OFFSET")
			if err != nil {
				return err
			}
			p.q.Offset = n
		}
	}
	return nil
}

func (p *parser) parseCount(kw string) (int, error) {
	t := p.peek()
	if t.kind != tokInteger {
		return 0, p.errorf(t, "expected integer after %s, found %s", kw, t)
	}
	p.advance()
	n, err := strconv.Atoi(t.text)
	if err != nil {
		return 0, p.errorf(t, "invalid %s %s", kw, t.text)
	}
	return n, nil
}

// parseGroup parses "{ ... }".
func (p *parser) parseGroup() (*Group, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	g := &Group{}
	var bgp BGP
	flush := func() {
		if len(bgp) > 0 {
			g.Elements = append(g.Elements, bgp)
			bgp = nil
		}
	}

	for {
		t := p.peek()
		switch {
		case isPunct(t, "}"):
			p.advance()
			flush()
			return g, nil
		case t.kind == tokEOF:
			return nil, p.errorf(t, "expected \"}\", found end of query")
		case isPunct(t, "."):
			p.advance()
		case isKeyword(t, "OPTIONAL"):
			p.advance()
			flush()
			inner, err := p.parseGroup()
			if err != nil {
				return nil, err
			}
			g.Elements = append(g.Elements, &Optional{Group: inner})
		case isKeyword(t, "FILTER"):
			p.advance()
			expr, err := p.parseConstraint()
			if err != nil {
				return nil, err
			}
			g.Filters = append(g.Filters, expr)
		case isPunct(t, "{"):
			flush()
			inner, err := p.parseGroup()
			if err != nil {
				return nil, err
			}
			if !isKeyword(p.peek(), "UNION") {
				g.Elements = append(g.Elements, inner)
				continue
			}
			union := &Union{Alternatives: []*Group{inner}}
			for p.acceptKeyword("UNION") {
				alt, err := p.parseGroup()
				if err != nil {
					return nil, err
				}
				union.Alternatives = append(union.Alternatives, alt)
			}
			g.Elements = append(g.Elements, union)
		default:
			triples, err := p.parseTriplesSameSubject()
			if err != nil {
				return nil, err
			}
			bgp = append(bgp, triples...)
		}
	}
}

// parseTriplesSameSubject parses "subject verb objects (; verb objects)*".
func (p *parser) parseTriplesSameSubject() ([]TriplePattern, error) {
	subj, err := p.parseVarOrTerm()
	if err != nil {
		return nil, err
	}
	if !subj.IsVar() && graph.IsLiteral(subj.Value) {
		return nil, p.errorf(p.toks[p.pos-1], "a literal cannot be a subject")
	}

	var out []TriplePattern
	for {
		verb, err := p.parseVerb()
		if err != nil {
			return nil, err
		}
		for {
			obj, err := p.parseVarOrTerm()
			if err != nil {
				return nil, err
			}
			out = append(out, TriplePattern{Subject: subj, Predicate: verb, Object: obj})
			if !p.acceptPunct(",") {
				break
			}
		}
		if !p.acceptPunct(";") {
			return out, nil
		}
		for p.acceptPunct(";") {
		}
		if t := p.peek(); isPunct(t, ".") || isPunct(t, "}") {
			return out, nil
		}
	}
}

func (p *parser) parseVerb() (Term, error) {
	t := p.peek()
	if t.kind == tokWord && t.text == "a" {
		p.advance()
		return Term{Value: graph.RDFType}, nil
	}
	if t.kind != tokVar && t.kind != tokIRI && t.kind != tokPName {
		return Term{}, p.errorf(t, "expected predicate, found %s", t)
	}
	return p.parseVarOrTerm()
}

// parseVarOrTerm parses a variable, IRI, prefixed name, blank node or
// literal.
func (p *parser) parseVarOrTerm() (Term, error) {
	t := p.peek()
	switch t.kind {
	case tokVar:
		p.advance()
		p.noteVar(t.text)
		return Term{Var: t.text}, nil
	case tokBlank:
		p.advance()
		return Term{Var: blankVarPrefix + t.text}, nil
	case tokPunct:
		if t.text == "[" && isPunct(p.peekAt(1), "]") {
			p.advance()
			p.advance()
			return Term{Var: fmt.Sprintf("%sanon%d", blankVarPrefix, t.pos)}, nil
		}
		if (t.text == "-" || t.text == "+") && isNumberToken(p.peekAt(1)) {
			p.advance()
			v, err := p.parseNumber(t.text)
			return Term{Value: v}, err
		}
	}
	v, err := p.parseConstant()
	if err != nil {
		return Term{}, err
	}
	return Term{Value: v}, nil
}

func isNumberToken(t token) bool {
	return t.kind == tokInteger || t.kind == tokDecimal || t.kind == tokDouble
}

// parseConstant parses an IRI, prefixed name, literal, number or boolean.
func (p *parser) parseConstant() (quad.Value, error) {
	t := p.peek()
	switch {
	case t.kind == tokIRI || t.kind == tokPName:
		return p.parseIRI()
	case t.kind == tokString:
		p.advance()
		switch next := p.peek(); {
		case next.kind == tokLang:
			p.advance()
			return quad.LangString{Value: quad.String(t.text), Lang: next.text}, nil
		case isPunct(next, "^^"):
			p.advance()
			dt, err := p.parseIRI()
			if err != nil {
				return nil, err
			}
			return graph.Normalize(quad.TypedString{Value: quad.String(t.text), Type: dt}), nil
		}
		return quad.String(t.text), nil
	case isNumberToken(t):
		return p.parseNumber("")
	case isKeyword(t, "true") || isKeyword(t, "false"):
		p.advance()
		return quad.TypedString{Value: quad.String(strings.ToLower(t.text)), Type: graph.XSDBoolean}, nil
	}
	return nil, p.errorf(t, "expected term, found %s", t)
}

func (p *parser) parseNumber(sign string) (quad.Value, error) {
	t := p.advance()
	if sign == "+" {
		sign = ""
	}
	dt := graph.XSDInteger
	switch t.kind {
	case tokDecimal:
		dt = graph.XSDDecimal
	case tokDouble:
		dt = graph.XSDDouble
	case tokInteger:
	default:
		return nil, p.errorf(t, "expected number, found %s", t)
	}
	return quad.TypedString{Value: quad.String(sign + t.text), Type: dt}, nil
}

// parseIRI parses an IRI reference or prefixed name into an absolute IRI.
func (p *parser) parseIRI() (quad.IRI, error) {
	t := p.peek()
	switch t.kind {
	case tokIRI:
		p.advance()
		return quad.IRI(p.resolveIRI(t.text)), nil
	case tokPName:
		p.advance()
		i := strings.Index(t.text, ":")
		prefix, local := t.text[:i], t.text[i+1:]
		ns, ok := p.q.Prefixes[prefix]
		if !ok {
			return "", p.errorf(t, "unknown prefix %q", prefix)
		}
		return quad.IRI(ns + local), nil
	}
	return "", p.errorf(t, "expected IRI, found %s", t)
}

// resolveIRI resolves a relative reference against the query base.
func (p *parser) resolveIRI(ref string) string {
	if p.q.Base == "" {
		return ref
	}
	base, err := url.Parse(p.q.Base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil || r.IsAbs() {
		return ref
	}
	return base.ResolveReference(r).String()
}
