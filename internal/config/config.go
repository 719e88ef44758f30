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

// Package config loads the per-user rdftools configuration file.
//
// The file is optional. When it does not exist every setting takes its
// default; environment variables are applied on top in both cases.
//
// Example ~/.rdftools.yaml:
//
//	version: "1"
//	locale: en
//	color: false
//	shell:
//	  prompt: "rdf> "
//	  history_file: ~/.rdfsh_hist
//	  startup_file: ~/.rdfshrc
//	  default_format: n3
//	  query_errors: warn
//	report:
//	  width: 0
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/rdftools/internal/errors"
)

const (
	defaultConfigFile = ".rdftools.yaml"
	configVersion     = "1"

	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "RDFTOOLS_CONFIG"
)

// Query error policies for the shell's query command.
const (
	QueryErrorsWarn  = "warn"
	QueryErrorsAbort = "abort"
)

// Config represents the ~/.rdftools.yaml configuration file.
type Config struct {
	Version string       `yaml:"version"`
	Locale  string       `yaml:"locale,omitempty"`
	Color   bool         `yaml:"color"`
	Shell   ShellConfig  `yaml:"shell"`
	Report  ReportConfig `yaml:"report"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `yaml:"-"`
}

// ShellConfig contains rdf-shell settings.
type ShellConfig struct {
	Prompt        string `yaml:"prompt"`
	HistoryFile   string `yaml:"history_file"`
	StartupFile   string `yaml:"startup_file"`
	DefaultFormat string `yaml:"default_format"`
	QueryErrors   string `yaml:"query_errors"` // warn, abort
}

// ReportConfig controls tabular query output.
type ReportConfig struct {
	Width int `yaml:"width"` // 0 means use the terminal width
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Version: configVersion,
		Shell: ShellConfig{
			Prompt:        ">>> ",
			HistoryFile:   "~/.rdfsh_hist",
			StartupFile:   "~/.rdfshrc",
			DefaultFormat: "n3",
			QueryErrors:   QueryErrorsWarn,
		},
	}
}

// DefaultPath returns ~/.rdftools.yaml, honouring RDFTOOLS_CONFIG.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return ExpandHome("~/" + defaultConfigFile)
}

// Load reads the configuration at path (DefaultPath when empty).
//
// A missing file yields DefaultConfig. Unreadable files, YAML syntax errors,
// an unsupported version, and invalid values are reported as config errors.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the user
	switch {
	case os.IsNotExist(err):
		cfg.applyEnvOverrides()
		return cfg, cfg.Validate()
	case err != nil:
		return nil, errors.NewConfigError(
			"Cannot read configuration file",
			fmt.Sprintf("Failed to read %s", path),
			"Check file permissions, or unset "+EnvConfigPath,
			err,
		)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError(
			"Invalid configuration format",
			"YAML parsing failed - the config file contains syntax errors",
			fmt.Sprintf("Edit %s to fix syntax errors, or delete it to use defaults", path),
			err,
		)
	}

	if cfg.Version == "" {
		cfg.Version = configVersion
	}
	if cfg.Version != configVersion {
		return nil, errors.NewConfigError(
			"Unsupported configuration version",
			fmt.Sprintf("Config version '%s' is not supported (expected '%s')", cfg.Version, configVersion),
			fmt.Sprintf("Set version: \"%s\" in %s", configVersion, path),
			nil,
		)
	}

	cfg.Path = path
	cfg.applyEnvOverrides()
	return cfg, cfg.Validate()
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Shell.QueryErrors {
	case QueryErrorsWarn, QueryErrorsAbort:
	default:
		return errors.NewConfigError(
			"Invalid configuration value",
			fmt.Sprintf("shell.query_errors is %q", c.Shell.QueryErrors),
			fmt.Sprintf("Use %q or %q", QueryErrorsWarn, QueryErrorsAbort),
			nil,
		)
	}
	if c.Report.Width < 0 {
		return errors.NewConfigError(
			"Invalid configuration value",
			fmt.Sprintf("report.width is %d", c.Report.Width),
			"Use 0 for the terminal width or a positive column count",
			nil,
		)
	}
	return nil
}

// applyEnvOverrides overrides config values with environment variables.
func (c *Config) applyEnvOverrides() {
	c.Locale = getEnv("RDFTOOLS_LOCALE", c.Locale)
	c.Shell.Prompt = getEnv("RDFTOOLS_PROMPT", c.Shell.Prompt)
	c.Shell.HistoryFile = getEnv("RDFTOOLS_HISTORY", c.Shell.HistoryFile)
	c.Shell.StartupFile = getEnv("RDFTOOLS_STARTUP", c.Shell.StartupFile)
	c.Shell.QueryErrors = getEnv("RDFTOOLS_QUERY_ERRORS", c.Shell.QueryErrors)
	if w, err := strconv.Atoi(os.Getenv("RDFTOOLS_REPORT_WIDTH")); err == nil {
		c.Report.Width = w
	}
}

// HistoryPath returns the expanded history file path, empty when disabled.
func (c *Config) HistoryPath() string { return ExpandHome(c.Shell.HistoryFile) }

// StartupPath returns the expanded startup script path, empty when disabled.
func (c *Config) StartupPath() string { return ExpandHome(c.Shell.StartupFile) }

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
