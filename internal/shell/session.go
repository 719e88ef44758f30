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

// Package shell implements rdf-shell: a line-oriented command loop over an
// in-memory graph.
//
// A Shell owns a Registry of commands and the current Session. Each input
// line is split by ParseLine, looked up in the registry and handed to the
// command's handler, which returns the Session the loop continues with.
package shell

import (
	"sort"

	"github.com/kraklabs/rdftools/pkg/graph"
	"github.com/kraklabs/rdftools/pkg/rdfio"
)

// DefaultPrompt is shown when the configuration does not set one.
const DefaultPrompt = ">>> "

// Session is the shell's working state.
type Session struct {
	// Base is the base URI for parsing, without brackets. Empty means unset.
	Base string

	// Prefixes maps prefix names, without the trailing colon, to namespaces.
	Prefixes map[string]string

	// Graph is never nil.
	Graph *graph.Graph

	Prompt string
}

// NewSession returns a session with an empty graph and the standard
// prefixes bound.
func NewSession(prompt string) *Session {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &Session{
		Prefixes: graph.DefaultPrefixes(),
		Graph:    graph.New(),
		Prompt:   prompt,
	}
}

// PrefixNames returns the bound prefix names, sorted.
func (s *Session) PrefixNames() []string {
	names := make([]string, 0, len(s.Prefixes))
	for name := range s.Prefixes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// options returns the codec options for this session.
func (s *Session) options() rdfio.Options {
	return rdfio.Options{Base: s.Base, Prefixes: s.Prefixes}
}
