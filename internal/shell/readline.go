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
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
)

// Completer completes the command name at the start of a line from a
// Registry. It implements readline.AutoCompleter.
type Completer struct {
	registry *Registry
}

// NewCompleter returns a completer over r.
func NewCompleter(r *Registry) *Completer {
	return &Completer{registry: r}
}

// Do returns the suffixes that complete the word before pos, each followed
// by a space, and the length of that word. Only the first word of a line
// is completed.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])
	if strings.ContainsAny(text, " \t") {
		return nil, 0
	}

	var out [][]rune
	for i := 0; ; i++ {
		name, ok := c.registry.Complete(text, i)
		if !ok {
			break
		}
		out = append(out, []rune(name[len(text):]+" "))
	}
	return out, len(line[:pos])
}

// editor is a LineReader with line editing, history and completion.
type editor struct {
	rl *readline.Instance
}

// NewEditor returns a terminal LineReader. History is loaded from and
// saved to historyFile unless it is empty.
func NewEditor(prompt, historyFile string, r *Registry) (LineReader, error) {
	if historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(historyFile), 0o750); err != nil {
			return nil, err
		}
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       historyFile,
		AutoComplete:      NewCompleter(r),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, err
	}
	return &editor{rl: rl}, nil
}

// Readline returns the next line. Ctrl-C discards the current line and
// yields an empty one; Ctrl-D yields io.EOF.
func (e *editor) Readline() (string, error) {
	line, err := e.rl.Readline()
	if stderrors.Is(err, readline.ErrInterrupt) {
		return "", nil
	}
	return line, err
}

func (e *editor) SetPrompt(prompt string) { e.rl.SetPrompt(prompt) }

func (e *editor) Close() error { return e.rl.Close() }
