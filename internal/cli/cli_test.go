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

package cli

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/rdftools/internal/errors"
)

func TestParse_CommonFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Common
	}{
		{
			name: "defaults",
			args: nil,
			want: Common{},
		},
		{
			name: "short flags",
			args: []string{"-vv", "-b", "http://ex.org/", "-r", "n3", "-c", "-i", "a.n3"},
			want: Common{Verbose: 2, Base: "http://ex.org/", Read: "n3", UseColor: true, Inputs: []string{"a.n3"}},
		},
		{
			name: "long flags and positional inputs",
			args: []string{"--verbose", "--read=nt", "--input", "a.nt", "--input", "b.nt", "c.nt"},
			want: Common{Verbose: 1, Read: "nt", Inputs: []string{"a.nt", "b.nt", "c.nt"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			fs, c := NewFlagSet("rdf-test", "Test tool.", &stderr)
			require.NoError(t, Parse(fs, c, tt.args))
			assert.Equal(t, tt.want, *c)
		})
	}
}

func TestParse_InvalidFormat(t *testing.T) {
	var stderr bytes.Buffer
	fs, c := NewFlagSet("rdf-test", "Test tool.", &stderr)

	err := Parse(fs, c, []string{"-r", "python"})
	require.Error(t, err)
	assert.Equal(t, errors.ExitUsage, ExitCode(err))
	assert.Contains(t, stderr.String(), "invalid choice")
	assert.Contains(t, stderr.String(), "Usage: rdf-test")
}

func TestParse_Help(t *testing.T) {
	var stderr bytes.Buffer
	fs, c := NewFlagSet("rdf-test", "Test tool.", &stderr)

	err := Parse(fs, c, []string{"--help"})
	assert.Equal(t, ErrHelp, err)
	assert.Equal(t, errors.ExitSuccess, ExitCode(err))
	assert.Contains(t, stderr.String(), "Test tool.")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, errors.ExitRead, ExitCode(errors.Errorf(errors.KindRead, "missing")))
	assert.Equal(t, errors.ExitQuery, ExitCode(errors.NewQueryError("bad", "", "", nil)))
}

func TestLevel(t *testing.T) {
	tests := []struct {
		verbose int
		want    slog.Level
	}{
		{0, slog.LevelError},
		{1, slog.LevelWarn},
		{2, slog.LevelInfo},
		{3, slog.LevelDebug},
		{7, slog.LevelDebug},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Level(tt.verbose), "Level(%d)", tt.verbose)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, 1)
	logger.Info("read.file", "name", "x")
	logger.Warn("read.failed", "name", "x")

	assert.NotContains(t, buf.String(), "read.file")
	assert.Contains(t, buf.String(), "read.failed")
}

func TestProgress_DisabledForBuffers(t *testing.T) {
	var buf bytes.Buffer
	cfg := NewProgressConfig(&buf, false, true)
	assert.False(t, cfg.Enabled)
	assert.Nil(t, NewSpinner(cfg, "reading"))
	assert.Nil(t, NewProgressBar(cfg, 3, "reading"))

	// nil bars are safe to drive
	Step(nil)
	Finish(nil)
}
