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

package graph

import (
	"fmt"

	"github.com/cayleygraph/quad"
)

// Well-known namespaces.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"
	XMLNamespace  = "http://www.w3.org/XML/1998/namespace"
)

// Frequently used IRIs.
const (
	RDFType       = quad.IRI(RDFNamespace + "type")
	RDFLangString = quad.IRI(RDFNamespace + "langString")
	XSDString     = quad.IRI(XSDNamespace + "string")
	XSDBoolean    = quad.IRI(XSDNamespace + "boolean")
	XSDInteger    = quad.IRI(XSDNamespace + "integer")
	XSDDecimal    = quad.IRI(XSDNamespace + "decimal")
	XSDDouble     = quad.IRI(XSDNamespace + "double")
)

// DefaultPrefixes returns the bindings every new session starts with.
func DefaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":  RDFNamespace,
		"rdfs": RDFSNamespace,
		"xsd":  XSDNamespace,
		"xml":  XMLNamespace,
	}
}

// Normalize converts v into one of the five term types the rest of the
// module handles: quad.IRI, quad.BNode, quad.String, quad.LangString or
// quad.TypedString. Native values (quad.Int, quad.Bool, quad.Time, ...) are
// turned into their typed-literal form and xsd:string literals into plain
// strings, so equal terms compare equal.
func Normalize(v quad.Value) quad.Value {
	switch t := v.(type) {
	case nil:
		return nil
	case quad.IRI, quad.BNode, quad.String, quad.LangString:
		return t
	case quad.TypedString:
		if t.Type == XSDString {
			return t.Value
		}
		return t
	case interface{ TypedString() quad.TypedString }:
		return Normalize(t.TypedString())
	default:
		return quad.String(fmt.Sprint(v.Native()))
	}
}

// IsIRI reports whether v is an IRI.
func IsIRI(v quad.Value) bool {
	_, ok := v.(quad.IRI)
	return ok
}

// IsBlank reports whether v is a blank node.
func IsBlank(v quad.Value) bool {
	_, ok := v.(quad.BNode)
	return ok
}

// IsLiteral reports whether v is a literal of any kind.
func IsLiteral(v quad.Value) bool {
	switch Normalize(v).(type) {
	case quad.String, quad.LangString, quad.TypedString:
		return true
	}
	return false
}

// Lexical returns the plain text of a term: the IRI itself, the blank node
// label with its "_:" prefix, or a literal's lexical form without quotes,
// datatype or language tag.
func Lexical(v quad.Value) string {
	switch t := Normalize(v).(type) {
	case nil:
		return ""
	case quad.IRI:
		return string(t)
	case quad.BNode:
		return t.String()
	case quad.String:
		return string(t)
	case quad.LangString:
		return string(t.Value)
	case quad.TypedString:
		return string(t.Value)
	default:
		return v.String()
	}
}

// Display is how a term is shown to users in selections and result tables.
func Display(v quad.Value) string {
	return Lexical(v)
}

// Datatype returns the datatype IRI of a literal, or "" for non-literals.
func Datatype(v quad.Value) quad.IRI {
	switch t := Normalize(v).(type) {
	case quad.String:
		return XSDString
	case quad.LangString:
		return RDFLangString
	case quad.TypedString:
		return t.Type
	}
	return ""
}

// Language returns the language tag of a literal, or "".
func Language(v quad.Value) string {
	if ls, ok := Normalize(v).(quad.LangString); ok {
		return ls.Lang
	}
	return ""
}

// Key returns a string that identifies a term; equal terms have equal keys.
func Key(v quad.Value) string {
	v = Normalize(v)
	if v == nil {
		return ""
	}
	return v.String()
}
