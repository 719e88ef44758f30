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

package shell

import (
	"sort"
	"strings"
)

// HandlerFunc runs a command. The returned Session replaces the current
// one; returning s unchanged is the common case. A non-nil error ends the
// command loop and is reserved for conditions that must stop the shell.
type HandlerFunc func(sh *Shell, s *Session, args string) (*Session, error)

// Command is a registered shell command.
type Command struct {
	// Name is what the user types. It may differ from the handler's
	// natural name, e.g. "!" for the shell escape.
	Name string

	// Usage is the synopsis shown by help, e.g. "parse filename [format=n3]".
	Usage string

	// Summary is a one-line description.
	Summary string

	Run HandlerFunc
}

// Registry maps command names to commands.
type Registry struct {
	commands map[string]Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: map[string]Command{}}
}

// Register adds cmd. A command already registered under the same name is
// replaced.
func (r *Registry) Register(cmd Command) {
	r.commands[cmd.Name] = cmd
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Names returns every registered name in lexicographic order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Complete returns the index-th (0-based) registered name starting with
// text, in sorted order. ok is false once index runs past the matches.
func (r *Registry) Complete(text string, index int) (name string, ok bool) {
	if index < 0 {
		return "", false
	}
	for _, n := range r.Names() {
		if !strings.HasPrefix(n, text) {
			continue
		}
		if index == 0 {
			return n, true
		}
		index--
	}
	return "", false
}
