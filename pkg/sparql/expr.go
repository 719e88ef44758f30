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
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/kraklabs/rdftools/pkg/graph"
)

// Expr is a FILTER or ORDER BY expression.
type Expr interface {
	eval(r Row) (quad.Value, error)
}

var (
	errUnbound = errors.New("unbound variable")
	errType    = errors.New("type error")
)

type varExpr string

func (e varExpr) eval(r Row) (quad.Value, error) {
	if v, ok := r[string(e)]; ok && v != nil {
		return v, nil
	}
	return nil, errUnbound
}

type constExpr struct{ v quad.Value }

func (e constExpr) eval(Row) (quad.Value, error) { return e.v, nil }

type unaryExpr struct {
	op string
	x  Expr
}

type binaryExpr struct {
	op   string
	l, r Expr
}

type callExpr struct {
	name string
	args []Expr
}

type boundExpr string

func (e boundExpr) eval(r Row) (quad.Value, error) {
	v, ok := r[string(e)]
	return boolean(ok && v != nil), nil
}

// arity is the accepted argument count of each built-in; -1 entries take
// two or three arguments.
var arity = map[string]int{
	"STR": 1, "LANG": 1, "DATATYPE": 1,
	"ISIRI": 1, "ISURI": 1, "ISBLANK": 1, "ISLITERAL": 1, "ISNUMERIC": 1,
	"LCASE": 1, "UCASE": 1, "STRLEN": 1,
	"CONTAINS": 2, "STRSTARTS": 2, "STRENDS": 2, "SAMETERM": 2, "LANGMATCHES": 2,
	"REGEX": -1,
}

// Expression parsing, by increasing precedence:
// || , && , comparison , + - , * / , unary ! - + , primary.

func (p *parser) parseConstraint() (Expr, error) {
	t := p.peek()
	if isPunct(t, "(") {
		return p.parseBracketted()
	}
	if t.kind == tokWord && isPunct(p.peekAt(1), "(") {
		return p.parsePrimary()
	}
	return nil, p.errorf(t, "expected \"(\" after FILTER, found %s", t)
}

func (p *parser) parseBracketted() (Expr, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *parser) parseExpression() (Expr, error) {
	return p.parseBinary(0)
}

var precedence = [][]string{
	{"||"},
	{"&&"},
	{"=", "!=", "<", ">", "<=", ">="},
	{"+", "-"},
	{"*", "/"},
}

func (p *parser) parseBinary(level int) (Expr, error) {
	if level == len(precedence) {
		return p.parseUnary()
	}
	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		op := ""
		for _, candidate := range precedence[level] {
			if isPunct(t, candidate) {
				op = candidate
			}
		}
		if op == "" {
			return left, nil
		}
		p.advance()
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: op, l: left, r: right}
		// Comparisons do not chain.
		if level == 2 {
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	t := p.peek()
	if isPunct(t, "!") || isPunct(t, "-") || isPunct(t, "+") {
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryExpr{op: t.text, x: x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.peek()
	switch {
	case isPunct(t, "("):
		return p.parseBracketted()
	case t.kind == tokVar:
		p.advance()
		p.noteVar(t.text)
		return varExpr(t.text), nil
	case isKeyword(t, "BOUND"):
		p.advance()
		if err := p.expectPunct("("); err != nil {
			return nil, err
		}
		v := p.peek()
		if v.kind != tokVar {
			return nil, p.errorf(v, "BOUND expects a variable, found %s", v)
		}
		p.advance()
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return boundExpr(v.text), nil
	case t.kind == tokWord && isPunct(p.peekAt(1), "("):
		return p.parseCall()
	}
	v, err := p.parseConstant()
	if err != nil {
		return nil, err
	}
	return constExpr{v: v}, nil
}

func (p *parser) parseCall() (Expr, error) {
	t := p.advance()
	name := strings.ToUpper(t.text)
	want, ok := arity[name]
	if !ok {
		return nil, p.errorf(t, "unknown function %s", t.text)
	}
	p.advance() // (

	var args []Expr
	for !isPunct(p.peek(), ")") {
		if len(args) > 0 {
			if err := p.expectPunct(","); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	p.advance()

	if (want >= 0 && len(args) != want) || (want < 0 && (len(args) < 2 || len(args) > 3)) {
		return nil, p.errorf(t, "wrong number of arguments to %s", name)
	}
	return &callExpr{name: name, args: args}, nil
}

// Evaluation.

func boolean(b bool) quad.Value {
	return quad.TypedString{Value: quad.String(strconv.FormatBool(b)), Type: graph.XSDBoolean}
}

// ebv computes the effective boolean value of v.
func ebv(v quad.Value) (bool, error) {
	switch t := graph.Normalize(v).(type) {
	case quad.String:
		return t != "", nil
	case quad.LangString:
		return t.Value != "", nil
	case quad.TypedString:
		if t.Type == graph.XSDBoolean {
			return t.Value == "true" || t.Value == "1", nil
		}
		if f, ok := numeric(t); ok {
			return f != 0, nil
		}
	}
	return false, errType
}

// Test evaluates e as a filter condition. Errors count as false.
func Test(e Expr, r Row) bool {
	v, err := e.eval(r)
	if err != nil {
		return false
	}
	b, err := ebv(v)
	return err == nil && b
}

var numericTypes = map[quad.IRI]bool{
	graph.XSDInteger: true,
	graph.XSDDecimal: true,
	graph.XSDDouble:  true,
	quad.IRI(graph.XSDNamespace + "float"):              true,
	quad.IRI(graph.XSDNamespace + "int"):                true,
	quad.IRI(graph.XSDNamespace + "long"):               true,
	quad.IRI(graph.XSDNamespace + "short"):              true,
	quad.IRI(graph.XSDNamespace + "byte"):               true,
	quad.IRI(graph.XSDNamespace + "nonNegativeInteger"): true,
	quad.IRI(graph.XSDNamespace + "positiveInteger"):    true,
	quad.IRI(graph.XSDNamespace + "negativeInteger"):    true,
	quad.IRI(graph.XSDNamespace + "nonPositiveInteger"): true,
	quad.IRI(graph.XSDNamespace + "unsignedInt"):        true,
	quad.IRI(graph.XSDNamespace + "unsignedLong"):       true,
}

// numeric returns the value of a numeric literal.
func numeric(v quad.Value) (float64, bool) {
	t, ok := graph.Normalize(v).(quad.TypedString)
	if !ok || !numericTypes[t.Type] {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(string(t.Value)), 64)
	return f, err == nil
}

func isIntegral(v quad.Value) bool {
	t, ok := graph.Normalize(v).(quad.TypedString)
	return ok && t.Type != graph.XSDDecimal && t.Type != graph.XSDDouble &&
		t.Type != quad.IRI(graph.XSDNamespace+"float")
}

func numberValue(f float64, integral bool) quad.Value {
	if integral {
		return quad.TypedString{Value: quad.String(strconv.FormatInt(int64(f), 10)), Type: graph.XSDInteger}
	}
	return quad.TypedString{Value: quad.String(strconv.FormatFloat(f, 'g', -1, 64)), Type: graph.XSDDouble}
}

// stringArg returns the lexical form of a simple or language-tagged literal.
func stringArg(v quad.Value) (string, error) {
	switch t := graph.Normalize(v).(type) {
	case quad.String:
		return string(t), nil
	case quad.LangString:
		return string(t.Value), nil
	}
	return "", errType
}

// sameString keeps the language tag of v on a derived string.
func sameString(v quad.Value, s string) quad.Value {
	if ls, ok := graph.Normalize(v).(quad.LangString); ok {
		return quad.LangString{Value: quad.String(s), Lang: ls.Lang}
	}
	return quad.String(s)
}

func (e *unaryExpr) eval(r Row) (quad.Value, error) {
	v, err := e.x.eval(r)
	if err != nil {
		return nil, err
	}
	if e.op == "!" {
		b, err := ebv(v)
		if err != nil {
			return nil, err
		}
		return boolean(!b), nil
	}
	f, ok := numeric(v)
	if !ok {
		return nil, errType
	}
	if e.op == "-" {
		f = -f
	}
	return numberValue(f, isIntegral(v)), nil
}

func (e *binaryExpr) eval(r Row) (quad.Value, error) {
	switch e.op {
	case "||", "&&":
		return e.logical(r)
	}

	l, err := e.l.eval(r)
	if err != nil {
		return nil, err
	}
	rv, err := e.r.eval(r)
	if err != nil {
		return nil, err
	}

	switch e.op {
	case "+", "-", "*", "/":
		a, okA := numeric(l)
		b, okB := numeric(rv)
		if !okA || !okB {
			return nil, errType
		}
		integral := isIntegral(l) && isIntegral(rv)
		switch e.op {
		case "+":
			return numberValue(a+b, integral), nil
		case "-":
			return numberValue(a-b, integral), nil
		case "*":
			return numberValue(a*b, integral), nil
		default:
			if b == 0 {
				return nil, errType
			}
			return numberValue(a/b, false), nil
		}
	}

	c, err := compare(l, rv)
	if err != nil {
		if e.op == "=" || e.op == "!=" {
			// Terms that cannot be ordered are still comparable for identity.
			eq := graph.Key(l) == graph.Key(rv)
			return boolean(eq == (e.op == "=")), nil
		}
		return nil, err
	}
	switch e.op {
	case "=":
		return boolean(c == 0), nil
	case "!=":
		return boolean(c != 0), nil
	case "<":
		return boolean(c < 0), nil
	case ">":
		return boolean(c > 0), nil
	case "<=":
		return boolean(c <= 0), nil
	case ">=":
		return boolean(c >= 0), nil
	}
	return nil, fmt.Errorf("unknown operator %s", e.op)
}

// logical implements || and && with SPARQL's error handling: an error on
// one side is absorbed when the other side decides the result.
func (e *binaryExpr) logical(r Row) (quad.Value, error) {
	side := func(x Expr) (bool, error) {
		v, err := x.eval(r)
		if err != nil {
			return false, err
		}
		return ebv(v)
	}
	a, errA := side(e.l)
	b, errB := side(e.r)

	if e.op == "||" {
		switch {
		case errA == nil && a, errB == nil && b:
			return boolean(true), nil
		case errA != nil:
			return nil, errA
		case errB != nil:
			return nil, errB
		}
		return boolean(false), nil
	}
	switch {
	case errA == nil && !a, errB == nil && !b:
		return boolean(false), nil
	case errA != nil:
		return nil, errA
	case errB != nil:
		return nil, errB
	}
	return boolean(true), nil
}

// compare orders two literals of compatible types.
func compare(a, b quad.Value) (int, error) {
	if x, ok := numeric(a); ok {
		y, ok := numeric(b)
		if !ok {
			return 0, errType
		}
		return cmpFloat(x, y), nil
	}

	a, b = graph.Normalize(a), graph.Normalize(b)
	switch x := a.(type) {
	case quad.String:
		if y, ok := b.(quad.String); ok {
			return strings.Compare(string(x), string(y)), nil
		}
	case quad.LangString:
		if y, ok := b.(quad.LangString); ok && strings.EqualFold(x.Lang, y.Lang) {
			return strings.Compare(string(x.Value), string(y.Value)), nil
		}
	case quad.TypedString:
		// Same-typed literals (booleans, dateTimes) order by lexical form.
		if y, ok := b.(quad.TypedString); ok && x.Type == y.Type {
			return strings.Compare(string(x.Value), string(y.Value)), nil
		}
	}
	return 0, errType
}

func cmpFloat(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func (e *callExpr) eval(r Row) (quad.Value, error) {
	args := make([]quad.Value, len(e.args))
	for i, a := range e.args {
		v, err := a.eval(r)
		if err != nil {
			return nil, err
		}
		args[i] = graph.Normalize(v)
	}

	switch e.name {
	case "STR":
		if graph.IsBlank(args[0]) {
			return nil, errType
		}
		return quad.String(graph.Lexical(args[0])), nil
	case "LANG":
		if !graph.IsLiteral(args[0]) {
			return nil, errType
		}
		return quad.String(graph.Language(args[0])), nil
	case "DATATYPE":
		if !graph.IsLiteral(args[0]) {
			return nil, errType
		}
		return graph.Datatype(args[0]), nil
	case "ISIRI", "ISURI":
		return boolean(graph.IsIRI(args[0])), nil
	case "ISBLANK":
		return boolean(graph.IsBlank(args[0])), nil
	case "ISLITERAL":
		return boolean(graph.IsLiteral(args[0])), nil
	case "ISNUMERIC":
		_, ok := numeric(args[0])
		return boolean(ok), nil
	case "SAMETERM":
		return boolean(graph.Key(args[0]) == graph.Key(args[1])), nil
	case "LCASE", "UCASE":
		s, err := stringArg(args[0])
		if err != nil {
			return nil, err
		}
		if e.name == "LCASE" {
			return sameString(args[0], strings.ToLower(s)), nil
		}
		return sameString(args[0], strings.ToUpper(s)), nil
	case "STRLEN":
		s, err := stringArg(args[0])
		if err != nil {
			return nil, err
		}
		return numberValue(float64(len([]rune(s))), true), nil
	case "LANGMATCHES":
		tag, err1 := stringArg(args[0])
		rng, err2 := stringArg(args[1])
		if err1 != nil || err2 != nil {
			return nil, errType
		}
		return boolean(langMatches(tag, rng)), nil
	case "CONTAINS", "STRSTARTS", "STRENDS":
		s, err1 := stringArg(args[0])
		sub, err2 := stringArg(args[1])
		if err1 != nil || err2 != nil {
			return nil, errType
		}
		switch e.name {
		case "CONTAINS":
			return boolean(strings.Contains(s, sub)), nil
		case "STRSTARTS":
			return boolean(strings.HasPrefix(s, sub)), nil
		}
		return boolean(strings.HasSuffix(s, sub)), nil
	case "REGEX":
		return regexMatch(args)
	}
	return nil, fmt.Errorf("unknown function %s", e.name)
}

func langMatches(tag, rng string) bool {
	if rng == "*" {
		return tag != ""
	}
	tag, rng = strings.ToLower(tag), strings.ToLower(rng)
	return tag == rng || strings.HasPrefix(tag, rng+"-")
}

func regexMatch(args []quad.Value) (quad.Value, error) {
	s, err := stringArg(args[0])
	if err != nil {
		return nil, err
	}
	pattern, err := stringArg(args[1])
	if err != nil {
		return nil, err
	}
	if len(args) == 3 {
		flags, err := stringArg(args[2])
		if err != nil {
			return nil, err
		}
		var goFlags string
		for _, f := range flags {
			switch f {
			case 'i', 'm', 's':
				goFlags += string(f)
			case 'x':
				pattern = strings.Join(strings.Fields(pattern), "")
			default:
				return nil, errType
			}
		}
		if goFlags != "" {
			pattern = "(?" + goFlags + ")" + pattern
		}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errType
	}
	return boolean(re.MatchString(s)), nil
}
