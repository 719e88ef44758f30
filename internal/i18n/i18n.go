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

// Package i18n looks up user-facing messages in YAML catalogs.
//
// Catalogs live in messages/<locale>.yaml and are embedded in the binary.
// Each file has a single top-level key naming its locale; nested maps are
// flattened into dotted keys, so
//
//	en:
//	  shell:
//	    unknown_cmd: "Warning, unknown command: %{command}."
//
// is looked up as T("shell.unknown_cmd", "command", name).
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/rdftools/internal/errors"
)

// Fallback is the locale consulted when a key is missing from the active one.
const Fallback = "en"

//go:embed messages/*.yaml
var embedded embed.FS

// Catalog resolves message keys for one locale with an English fallback.
type Catalog struct {
	locale   string
	messages map[string]map[string]string
}

// Load returns a catalog for locale built from the embedded message files.
// An unknown locale is not an error; lookups fall back to English.
func Load(locale string) (*Catalog, error) {
	sub, err := fs.Sub(embedded, "messages")
	if err != nil {
		return nil, errors.WithKind(errors.KindInternal, err)
	}
	return LoadFS(sub, locale)
}

// MustLoad is like Load but panics if the embedded catalogs are unreadable.
func MustLoad(locale string) *Catalog {
	c, err := Load(locale)
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFS reads every *.yaml file at the root of fsys.
func LoadFS(fsys fs.FS, locale string) (*Catalog, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, errors.WithKind(errors.KindInternal, err)
	}

	c := &Catalog{locale: Normalize(locale), messages: map[string]map[string]string{}}
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, errors.Errorf(errors.KindConfig, "reading catalog %s: %w", name, err)
		}
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Errorf(errors.KindConfig, "parsing catalog %s: %w", name, err)
		}
		for loc, tree := range doc {
			flat, ok := c.messages[loc]
			if !ok {
				flat = map[string]string{}
				c.messages[loc] = flat
			}
			flatten("", tree, flat)
		}
	}
	if _, ok := c.messages[Fallback]; !ok {
		return nil, errors.Errorf(errors.KindConfig, "no %q catalog found in %s", Fallback, strings.Join(names, ", "))
	}
	return c, nil
}

func flatten(prefix string, node any, out map[string]string) {
	switch v := node.(type) {
	case map[string]any:
		for k, child := range v {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, child, out)
		}
	case nil:
	default:
		out[prefix] = fmt.Sprint(v)
	}
}

// Normalize reduces a POSIX locale string such as "pt_BR.UTF-8" to its
// language code ("pt"). Empty, "C" and "POSIX" map to the fallback.
func Normalize(locale string) string {
	locale = strings.TrimSpace(locale)
	if i := strings.IndexAny(locale, "._@-"); i >= 0 {
		locale = locale[:i]
	}
	locale = strings.ToLower(locale)
	if locale == "" || locale == "c" || locale == "posix" {
		return Fallback
	}
	return locale
}

// DetectLocale reads LC_ALL, LC_MESSAGES and LANG in that order.
func DetectLocale() string {
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(env); v != "" {
			return Normalize(v)
		}
	}
	return Fallback
}

// Locale returns the active locale.
func (c *Catalog) Locale() string { return c.locale }

// T returns the message for key with %{name} placeholders replaced from the
// name/value pairs in kv. A key missing from every catalog is returned as is.
func (c *Catalog) T(key string, kv ...any) string {
	msg, ok := c.messages[c.locale][key]
	if !ok {
		msg, ok = c.messages[Fallback][key]
	}
	if !ok {
		return key
	}
	if len(kv) == 0 {
		return msg
	}

	pairs := make([]string, 0, len(kv)+1)
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, "%{"+fmt.Sprint(kv[i])+"}", fmt.Sprint(kv[i+1]))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// Has reports whether key exists in the active locale or the fallback.
func (c *Catalog) Has(key string) bool {
	if _, ok := c.messages[c.locale][key]; ok {
		return true
	}
	_, ok := c.messages[Fallback][key]
	return ok
}
