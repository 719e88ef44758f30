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
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF     tokenKind = iota
	tokIRI               // <http://...>, text without brackets
	tokPName             // prefix:local or prefix:
	tokVar               // ?x or $x, text without the sigil
	tokBlank             // _:label, text without "_:"
	tokString            // quoted literal, text unescaped
	tokLang              // @en, text without "@"
	tokInteger           // 42
	tokDecimal           // 4.2
	tokDouble            // 4.2e1
	tokWord              // keywords, function names, "a", true/false
	tokPunct             // { } ( ) . ; , * = != < > <= >= && || ! + - / ^^ [ ]
)

var tokenNames = map[tokenKind]string{
	tokEOF:     "end of query",
	tokIRI:     "IRI",
	tokPName:   "prefixed name",
	tokVar:     "variable",
	tokBlank:   "blank node",
	tokString:  "string",
	tokLang:    "language tag",
	tokInteger: "integer",
	tokDecimal: "decimal",
	tokDouble:  "double",
	tokWord:    "keyword",
	tokPunct:   "punctuation",
}

func (k tokenKind) String() string { return tokenNames[k] }

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of query"
	case tokIRI:
		return "<" + t.text + ">"
	case tokVar:
		return "?" + t.text
	case tokBlank:
		return "_:" + t.text
	case tokString:
		return fmt.Sprintf("%q", t.text)
	case tokLang:
		return "@" + t.text
	}
	return t.text
}

// lexer splits a query into tokens.
type lexer struct {
	src string
	pos int
}

// tokenize returns every token of src followed by a tokEOF token.
func tokenize(src string) ([]token, error) {
	lx := &lexer{src: src}
	var out []token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.kind == tokEOF {
			return out, nil
		}
	}
}

func (lx *lexer) errorf(pos int, format string, args ...interface{}) error {
	line, col := position(lx.src, pos)
	return syntaxError(line, col, fmt.Sprintf(format, args...))
}

// position converts a byte offset into a 1-based line and column.
func position(src string, pos int) (int, int) {
	if pos > len(src) {
		pos = len(src)
	}
	line := 1 + strings.Count(src[:pos], "\n")
	col := pos - strings.LastIndex(src[:pos], "\n")
	return line, col
}

func (lx *lexer) skipSpaceAndComments() {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			lx.pos++
		case c == '#':
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.pos++
			}
		default:
			return
		}
	}
}

func (lx *lexer) next() (token, error) {
	lx.skipSpaceAndComments()
	start := lx.pos
	if lx.pos >= len(lx.src) {
		return token{kind: tokEOF, pos: start}, nil
	}

	c := lx.src[lx.pos]
	switch {
	case c == '<':
		if iri, ok := lx.scanIRI(); ok {
			return token{kind: tokIRI, text: iri, pos: start}, nil
		}
		if strings.HasPrefix(lx.src[lx.pos:], "<=") {
			lx.pos += 2
			return token{kind: tokPunct, text: "<=", pos: start}, nil
		}
		lx.pos++
		return token{kind: tokPunct, text: "<", pos: start}, nil

	case c == '?' || c == '$':
		lx.pos++
		name := lx.scanWhile(isVarChar)
		if name == "" {
			return token{}, lx.errorf(start, "empty variable name")
		}
		return token{kind: tokVar, text: name, pos: start}, nil

	case c == '"' || c == '\'':
		s, err := lx.scanString()
		if err != nil {
			return token{}, err
		}
		return token{kind: tokString, text: s, pos: start}, nil

	case c == '@':
		lx.pos++
		tag := lx.scanWhile(func(r rune) bool { return r == '-' || isAlnum(r) })
		if tag == "" {
			return token{}, lx.errorf(start, "empty language tag")
		}
		return token{kind: tokLang, text: tag, pos: start}, nil

	case c == '_' && strings.HasPrefix(lx.src[lx.pos:], "_:"):
		lx.pos += 2
		label := strings.TrimRight(lx.scanWhile(isNameChar), ".")
		lx.pos = start + 2 + len(label)
		if label == "" {
			return token{}, lx.errorf(start, "empty blank node label")
		}
		return token{kind: tokBlank, text: label, pos: start}, nil

	case c >= '0' && c <= '9' || c == '.' && lx.pos+1 < len(lx.src) && isDigit(lx.src[lx.pos+1]):
		return lx.scanNumber(), nil
	}

	for _, p := range []string{"^^", "!=", ">=", "&&", "||"} {
		if strings.HasPrefix(lx.src[lx.pos:], p) {
			lx.pos += len(p)
			return token{kind: tokPunct, text: p, pos: start}, nil
		}
	}
	if strings.ContainsRune("{}().;,*=>!+-/[]", rune(c)) {
		lx.pos++
		return token{kind: tokPunct, text: string(c), pos: start}, nil
	}

	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos:])
	if r == ':' || isNameStart(r) {
		word := lx.scanWhile(func(r rune) bool { return r == ':' || isNameChar(r) })
		// A trailing dot ends the triple rather than the name.
		word = strings.TrimRight(word, ".")
		lx.pos = start + len(word)
		if strings.Contains(word, ":") {
			return token{kind: tokPName, text: word, pos: start}, nil
		}
		return token{kind: tokWord, text: word, pos: start}, nil
	}

	return token{}, lx.errorf(start, "unexpected character %q", r)
}

// scanIRI consumes an IRI reference if one starts at the current position.
func (lx *lexer) scanIRI() (string, bool) {
	end := lx.pos + 1
	for end < len(lx.src) {
		c := lx.src[end]
		if c == '>' {
			iri := lx.src[lx.pos+1 : end]
			lx.pos = end + 1
			return iri, true
		}
		if c <= ' ' || strings.IndexByte("<\"{}|^`\\", c) >= 0 {
			return "", false
		}
		end++
	}
	return "", false
}

func (lx *lexer) scanWhile(ok func(rune) bool) string {
	start := lx.pos
	for lx.pos < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		if !ok(r) {
			break
		}
		lx.pos += size
	}
	return lx.src[start:lx.pos]
}

func (lx *lexer) scanNumber() token {
	start := lx.pos
	kind := tokInteger
	digits := func() {
		for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
			lx.pos++
		}
	}
	digits()
	if lx.pos+1 < len(lx.src) && lx.src[lx.pos] == '.' && isDigit(lx.src[lx.pos+1]) {
		kind = tokDecimal
		lx.pos++
		digits()
	}
	if lx.pos < len(lx.src) && (lx.src[lx.pos] == 'e' || lx.src[lx.pos] == 'E') {
		save := lx.pos
		lx.pos++
		if lx.pos < len(lx.src) && (lx.src[lx.pos] == '+' || lx.src[lx.pos] == '-') {
			lx.pos++
		}
		if lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
			kind = tokDouble
			digits()
		} else {
			lx.pos = save
		}
	}
	return token{kind: kind, text: lx.src[start:lx.pos], pos: start}
}

var stringEscapes = map[byte]string{
	't': "\t", 'b': "\b", 'n': "\n", 'r': "\r", 'f': "\f",
	'"': "\"", '\'': "'", '\\': "\\",
}

// scanString consumes a short or long ("""...""") quoted string.
func (lx *lexer) scanString() (string, error) {
	start := lx.pos
	quote := lx.src[lx.pos]
	delim := string(quote)
	if strings.HasPrefix(lx.src[lx.pos:], strings.Repeat(delim, 3)) {
		delim = strings.Repeat(delim, 3)
	}
	lx.pos += len(delim)

	var b strings.Builder
	for {
		if lx.pos >= len(lx.src) {
			return "", lx.errorf(start, "unterminated string")
		}
		if strings.HasPrefix(lx.src[lx.pos:], delim) {
			lx.pos += len(delim)
			return b.String(), nil
		}
		c := lx.src[lx.pos]
		if c == '\n' && len(delim) == 1 {
			return "", lx.errorf(start, "unterminated string")
		}
		if c != '\\' {
			b.WriteByte(c)
			lx.pos++
			continue
		}
		if lx.pos+1 >= len(lx.src) {
			return "", lx.errorf(lx.pos, "unterminated escape")
		}
		esc := lx.src[lx.pos+1]
		if s, ok := stringEscapes[esc]; ok {
			b.WriteString(s)
			lx.pos += 2
			continue
		}
		width := map[byte]int{'u': 4, 'U': 8}[esc]
		if width == 0 || lx.pos+2+width > len(lx.src) {
			return "", lx.errorf(lx.pos, "invalid escape \\%c", esc)
		}
		var r rune
		if _, err := fmt.Sscanf(lx.src[lx.pos+2:lx.pos+2+width], "%x", &r); err != nil {
			return "", lx.errorf(lx.pos, "invalid escape \\%c", esc)
		}
		b.WriteRune(r)
		lx.pos += 2 + width
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlnum(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

func isVarChar(r rune) bool { return r == '_' || isAlnum(r) }

func isNameStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isNameChar(r rune) bool {
	return r == '_' || r == '-' || r == '.' || r == '%' || isAlnum(r)
}
