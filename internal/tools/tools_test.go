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

package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/rdftools/internal/cli"
	"github.com/kraklabs/rdftools/internal/config"
	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/internal/i18n"
	"github.com/kraklabs/rdftools/internal/metrics"
	"github.com/kraklabs/rdftools/internal/output"
	rdftest "github.com/kraklabs/rdftools/internal/testing"
)

type streams struct {
	out *bytes.Buffer
	err *bytes.Buffer
}

func testEnv(stdin string) (cli.Env, streams) {
	s := streams{out: &bytes.Buffer{}, err: &bytes.Buffer{}}
	return cli.Env{
		Stdin:   strings.NewReader(stdin),
		Stdout:  s.out,
		Stderr:  s.err,
		Config:  config.DefaultConfig(),
		Catalog: i18n.MustLoad("en"),
		Metrics: metrics.New(),
	}, s
}

func sortedLines(s string) []string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	sort.Strings(lines)
	return lines
}

func notRDF(t *testing.T) string {
	t.Helper()
	self, err := filepath.Abs("tools_test.go")
	require.NoError(t, err)
	return self
}

func TestConvert_N3ToNTriples(t *testing.T) {
	sample := rdftest.WriteSample(t)
	env, s := testEnv("")

	code := Convert(context.Background(), []string{"-i", sample, "-r", "n3", "-w", "nt"}, env)
	require.Equal(t, 0, code, s.err.String())
	assert.Equal(t, rdftest.SampleNTriples(), sortedLines(s.out.String()))
	assert.Equal(t, float64(rdftest.SampleCount), env.Metrics.Value("rdftools_statements_read_total", ""))
}

func TestConvert_Stdin(t *testing.T) {
	env, s := testEnv(rdftest.SampleN3)

	code := Convert(context.Background(), []string{"-r", "n3", "-w", "nt"}, env)
	require.Equal(t, 0, code, s.err.String())
	assert.Len(t, sortedLines(s.out.String()), rdftest.SampleCount)
}

func TestConvert_OutputFile(t *testing.T) {
	sample := rdftest.WriteSample(t)
	out := filepath.Join(t.TempDir(), "sample.nt")
	env, s := testEnv("")

	code := Convert(context.Background(), []string{"-o", out, sample}, env)
	require.Equal(t, 0, code, s.err.String())
	assert.Empty(t, s.out.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, rdftest.SampleNTriples(), sortedLines(string(data)), "format guessed from the .nt extension")
}

func TestConvert_Errors(t *testing.T) {
	sample := rdftest.WriteSample(t)
	tests := []struct {
		name    string
		args    []string
		code    int
		wantErr string
	}{
		{
			name:    "no file",
			args:    []string{"-i", filepath.Join(t.TempDir(), "non_existent_file"), "-r", "n3", "-w", "nt"},
			code:    errors.ExitRead,
			wantErr: "no such file or directory",
		},
		{
			name:    "bad read format",
			args:    []string{"-i", sample, "-r", "python", "-w", "nt"},
			code:    errors.ExitUsage,
			wantErr: `invalid choice: "python"`,
		},
		{
			name:    "bad write format",
			args:    []string{"-i", sample, "-r", "n3", "-w", "python"},
			code:    errors.ExitUsage,
			wantErr: `invalid choice: "python"`,
		},
		{
			name:    "not rdf",
			args:    []string{"-i", notRDF(t), "-r", "n3", "-w", "nt"},
			code:    errors.ExitRead,
			wantErr: "Error reading input",
		},
		{
			name:    "unwritable output",
			args:    []string{"-i", sample, "-o", filepath.Join(t.TempDir(), "missing", "out.nt")},
			code:    errors.ExitWrite,
			wantErr: "Error writing output",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, s := testEnv("")
			code := Convert(context.Background(), tt.args, env)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, s.err.String(), tt.wantErr)
			assert.Empty(t, s.out.String())
		})
	}
}

func TestConvert_Help(t *testing.T) {
	env, s := testEnv("")
	code := Convert(context.Background(), []string{"--help"}, env)
	assert.Equal(t, 0, code)
	assert.Contains(t, s.err.String(), "Usage: rdf-convert")
	assert.Contains(t, s.err.String(), "--write")
}

func TestQuery_Select(t *testing.T) {
	sample := rdftest.WriteSample(t)
	env, s := testEnv("")

	code := Query(context.Background(), []string{
		"-i", sample, "-r", "n3", "-q", "SELECT DISTINCT ?type WHERE { ?s a ?type }",
	}, env)
	require.Equal(t, 0, code, s.err.String())

	var want []string
	for _, typ := range rdftest.SampleTypes {
		want = append(want, "type => "+typ)
	}
	assert.Equal(t, want, sortedLines(s.out.String()))
}

func TestQuery_NoResults(t *testing.T) {
	sample := rdftest.WriteSample(t)
	env, s := testEnv("")

	code := Query(context.Background(), []string{
		"-i", sample, "-r", "n3", "-q", "SELECT DISTINCT ?type WHERE { ?s a <http://example.org/people/me> }",
	}, env)
	require.Equal(t, 0, code, s.err.String())
	assert.Contains(t, s.out.String(), "query returned no results.")
}

func TestQuery_BadSPARQL(t *testing.T) {
	sample := rdftest.WriteSample(t)
	env, s := testEnv("")

	code := Query(context.Background(), []string{"-i", sample, "-r", "n3", "-q", "WHAT IS SPARQL"}, env)
	assert.Equal(t, errors.ExitQuery, code)
	assert.Contains(t, s.err.String(), "expected SELECT, CONSTRUCT, DESCRIBE or ASK")
}

func TestQuery_MissingQuery(t *testing.T) {
	sample := rdftest.WriteSample(t)
	env, s := testEnv("")

	code := Query(context.Background(), []string{"-i", sample}, env)
	assert.Equal(t, errors.ExitUsage, code)
	assert.Contains(t, s.err.String(), "-q/--query")
}

func TestQuery_Forms(t *testing.T) {
	sample := rdftest.WriteSample(t)
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "ask true",
			query: "ASK { ?s a <" + rdftest.Profile + "Family> }",
			want:  []string{"true"},
		},
		{
			name:  "ask false",
			query: "ASK { ?s a <" + rdftest.Profile + "Robot> }",
			want:  []string{"false"},
		},
		{
			name:  "construct",
			query: "CONSTRUCT { ?b <" + rdftest.Relationship + "spouse> ?a } WHERE { ?a <" + rdftest.Relationship + "spouse> ?b }",
			want: []string{
				"<" + rdftest.People + "Alice> <" + rdftest.Relationship + "spouse> <" + rdftest.People + "Bob> .",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, s := testEnv("")
			code := Query(context.Background(), []string{"-i", sample, "-r", "n3", "-q", tt.query}, env)
			require.Equal(t, 0, code, s.err.String())
			assert.Equal(t, tt.want, sortedLines(s.out.String()))
		})
	}
}

func TestQuery_JSON(t *testing.T) {
	sample := rdftest.WriteSample(t)
	env, s := testEnv("")

	code := Query(context.Background(), []string{
		"-i", sample, "-r", "n3", "--json",
		"-q", "SELECT ?topic WHERE { <" + rdftest.People + "Alice> <" + rdftest.Relationship + "likes> ?topic } ORDER BY ?topic",
	}, env)
	require.Equal(t, 0, code, s.err.String())

	var table output.Table
	require.NoError(t, json.Unmarshal(s.out.Bytes(), &table))
	assert.Equal(t, []string{"topic"}, table.Headers)
	assert.Equal(t, 2, table.Count)
	assert.Equal(t, [][]string{{rdftest.Topics + "Diving"}, {rdftest.Topics + "Shoes"}}, table.Rows)
}

func TestQuery_JSONError(t *testing.T) {
	sample := rdftest.WriteSample(t)
	env, s := testEnv("")

	code := Query(context.Background(), []string{"-i", sample, "-r", "n3", "--json", "-q", "SELECT"}, env)
	assert.Equal(t, errors.ExitQuery, code)

	var e output.ErrorJSON
	require.NoError(t, json.Unmarshal(s.out.Bytes(), &e))
	assert.Equal(t, "query", e.Kind)
}

func TestSelect(t *testing.T) {
	sample := rdftest.WriteSample(t)
	tests := []struct {
		flag string
		want []string
	}{
		{"-s", rdftest.SampleSubjects},
		{"-p", rdftest.SamplePredicates},
		{"-o", rdftest.SampleObjects},
		{"-t", rdftest.SampleTypes},
		{"--types", rdftest.SampleTypes},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			env, s := testEnv("")
			code := Select(context.Background(), []string{"-i", sample, "-r", "n3", tt.flag}, env)
			require.Equal(t, 0, code, s.err.String())
			assert.Equal(t, tt.want, sortedLines(s.out.String()))
		})
	}
}

func TestSelect_BlankNodesPerInput(t *testing.T) {
	doc := "[ <http://example.org/p> \"n\" ] .\n_:x <http://example.org/q> \"n\" .\n"
	first := rdftest.WriteTestFile(t, "first.ttl", doc)
	second := rdftest.WriteTestFile(t, "second.ttl", doc)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"one input", []string{"-s", first}, 2},
		{"same document twice", []string{"-s", first, first}, 4},
		{"two documents", []string{"-s", first, second}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, s := testEnv("")
			code := Select(context.Background(), tt.args, env)
			require.Equal(t, 0, code, s.err.String())

			lines := sortedLines(s.out.String())
			assert.Len(t, lines, tt.want)
			for _, l := range lines {
				assert.True(t, strings.HasPrefix(l, "_:"), l)
			}
		})
	}
}

func TestSelect_Exclusive(t *testing.T) {
	sample := rdftest.WriteSample(t)
	for _, args := range [][]string{
		{"-i", sample, "-s", "-p"},
		{"-i", sample},
	} {
		env, s := testEnv("")
		code := Select(context.Background(), args, env)
		assert.Equal(t, errors.ExitUsage, code, "%v", args)
		assert.Contains(t, s.err.String(), "exactly one of")
		assert.Empty(t, s.out.String())
	}
}

func TestSelect_JSON(t *testing.T) {
	sample := rdftest.WriteSample(t)
	env, s := testEnv("")

	code := Select(context.Background(), []string{"-i", sample, "-t", "--json"}, env)
	require.Equal(t, 0, code, s.err.String())

	var table output.Table
	require.NoError(t, json.Unmarshal(s.out.Bytes(), &table))
	assert.Equal(t, []string{"types"}, table.Headers)
	assert.Equal(t, len(rdftest.SampleTypes), table.Count)
}

func TestValidate(t *testing.T) {
	sample := rdftest.WriteSample(t)
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"valid", []string{"-i", sample, "-r", "n3"}, 0},
		{"invalid", []string{"-i", notRDF(t), "-r", "n3"}, errors.ExitValidation},
		{"second input invalid", []string{"-r", "n3", sample, notRDF(t)}, errors.ExitValidation},
		{"missing", []string{"-r", "n3", filepath.Join(t.TempDir(), "nope.n3")}, errors.ExitValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, s := testEnv("")
			assert.Equal(t, tt.code, Validate(context.Background(), tt.args, env), s.err.String())
		})
	}
}

func TestValidate_LogsFailure(t *testing.T) {
	env, s := testEnv("")

	code := Validate(context.Background(), []string{"-v", "-r", "n3", notRDF(t)}, env)
	assert.Equal(t, errors.ExitValidation, code)
	assert.Contains(t, s.err.String(), "validate.failed")
	assert.Contains(t, s.err.String(), "Validation failed for "+notRDF(t))
	assert.Contains(t, s.err.String(), "-r/--read")
}

func TestValidate_Stdin(t *testing.T) {
	env, s := testEnv(rdftest.SampleN3)
	assert.Equal(t, 0, Validate(context.Background(), []string{"-r", "n3"}, env), s.err.String())
}

func TestRun_Fail(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		want []string
	}{
		{"unclassified", errors.Errorf(errors.KindInternal, "boom"), errors.ExitInternal,
			[]string{"Unexpected internal error", "boom", "Please report this"}},
		{"write", errors.Errorf(errors.KindWrite, "disk full"), errors.ExitWrite,
			[]string{"disk full", "writable"}},
		{"already a user error", errors.NewValidationError("Validation failed for x.ttl", "", "", nil), errors.ExitValidation,
			[]string{"Validation failed for x.ttl"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, s := testEnv("")
			r := newRun("rdf-test", env, &cli.Common{}, false)

			assert.Equal(t, tt.code, r.fail(tt.err))
			for _, want := range tt.want {
				assert.Contains(t, s.err.String(), want)
			}
			assert.Empty(t, s.out.String())
		})
	}
}

func TestVerboseFromEnv(t *testing.T) {
	sample := rdftest.WriteSample(t)
	env, s := testEnv("")
	env.Verbose = 3

	code := Select(context.Background(), []string{"-i", sample, "-s"}, env)
	require.Equal(t, 0, code)
	assert.Contains(t, s.err.String(), "read.complete")
	assert.Contains(t, s.err.String(), "metrics.sample")
}
