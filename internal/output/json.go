// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package output provides utilities for consistent machine-readable output.
//
// This package handles JSON encoding for the --json mode of rdf-query and
// rdf-select. It complements the ui package (for human-readable output) and
// the errors package (for error handling).
//
// # Usage
//
//	result := output.NewTable([]string{"s", "name"})
//	result.Append([]string{"http://example.org/a", "Alice"})
//	if err := output.JSONTo(os.Stdout, result); err != nil {
//	    errors.FatalError(err, true)
//	}
//
// For error output:
//
//	if err := doSomething(); err != nil {
//	    _ = output.JSONErrorTo(os.Stderr, err)
//	}
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kraklabs/rdftools/internal/errors"
)

// JSONTo writes data as pretty-printed JSON to the specified writer.
//
// The output is formatted with 2-space indentation for readability.
// Returns an error if JSON encoding fails (e.g., for unencodable types
// like channels or functions).
func JSONTo(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return errors.Errorf(errors.KindWrite, "JSON encoding failed: %w", err)
	}
	return nil
}

// ErrorJSON represents an error in JSON format for machine consumption.
type ErrorJSON struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// JSONErrorTo writes an error as JSON to the specified writer.
//
// The error kind is included when the error carries one.
func JSONErrorTo(w io.Writer, err error) error {
	errObj := ErrorJSON{Error: err.Error()}
	if k := errors.KindOf(err); k != errors.KindInternal {
		errObj.Kind = k.String()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(errObj); encErr != nil {
		return fmt.Errorf("JSON error encoding failed: %w", encErr)
	}
	return nil
}

// Table is the JSON shape of tabular results (query bindings, selections).
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	Count   int        `json:"count"`
}

// NewTable returns an empty table with the given headers. Rows is never nil,
// so an empty result encodes as [] rather than null.
func NewTable(headers []string) *Table {
	return &Table{Headers: headers, Rows: [][]string{}}
}

// Append adds a row and keeps Count in sync.
func (t *Table) Append(row []string) {
	t.Rows = append(t.Rows, row)
	t.Count = len(t.Rows)
}
