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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/rdftools/internal/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"RDFTOOLS_LOCALE", "RDFTOOLS_PROMPT", "RDFTOOLS_HISTORY",
		"RDFTOOLS_STARTUP", "RDFTOOLS_QUERY_ERRORS", "RDFTOOLS_REPORT_WIDTH", EnvConfigPath} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rdftools.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig().Shell, cfg.Shell)
	assert.Empty(t, cfg.Path)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `version: "1"
locale: es
color: true
shell:
  prompt: "rdf> "
  default_format: turtle
  query_errors: abort
report:
  width: 100
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "es", cfg.Locale)
	assert.True(t, cfg.Color)
	assert.Equal(t, "rdf> ", cfg.Shell.Prompt)
	assert.Equal(t, "turtle", cfg.Shell.DefaultFormat)
	assert.Equal(t, QueryErrorsAbort, cfg.Shell.QueryErrors)
	assert.Equal(t, 100, cfg.Report.Width)
	// Unset keys keep their defaults.
	assert.Equal(t, "~/.rdfshrc", cfg.Shell.StartupFile)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("RDFTOOLS_PROMPT", "$ ")
	t.Setenv("RDFTOOLS_QUERY_ERRORS", "abort")
	t.Setenv("RDFTOOLS_REPORT_WIDTH", "60")

	path := writeConfig(t, "shell:\n  prompt: \"file> \"\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "$ ", cfg.Shell.Prompt)
	assert.Equal(t, QueryErrorsAbort, cfg.Shell.QueryErrors)
	assert.Equal(t, 60, cfg.Report.Width)
}

func TestLoad_EnvConfigPath(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "locale: de\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "de", cfg.Locale)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "shell: [unclosed\n"},
		{"bad version", "version: \"9\"\n"},
		{"bad query policy", "shell:\n  query_errors: explode\n"},
		{"negative width", "report:\n  width: -3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Equal(t, errors.KindConfig, errors.KindOf(err))

			var ue *errors.UserError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, errors.ExitConfig, ue.ExitCode)
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".rdfshrc"), ExpandHome("~/.rdfshrc"))
	assert.Equal(t, "/etc/rdfshrc", ExpandHome("/etc/rdfshrc"))
	assert.Equal(t, "", ExpandHome(""))
}

func TestConfig_Paths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shell.HistoryFile = ""
	cfg.Shell.StartupFile = "/tmp/rc"

	assert.Empty(t, cfg.HistoryPath())
	assert.Equal(t, "/tmp/rc", cfg.StartupPath())
}
