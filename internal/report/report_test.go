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

package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/rdftools/internal/i18n"
)

func TestColumnWidth(t *testing.T) {
	tests := []struct {
		width, n, want int
	}{
		{80, 1, 79},
		{80, 2, 39},
		{80, 3, 25},
		{3, 4, 1},
		{50, 0, 50},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ColumnWidth(tt.width, tt.n), "ColumnWidth(%d, %d)", tt.width, tt.n)
	}
}

func TestTable(t *testing.T) {
	cat := i18n.MustLoad("en")
	var buf bytes.Buffer

	err := Table(&buf, cat, []string{"person", "topic"}, [][]string{
		{"Alice", "Diving"},
		{"Bob", "Diving"},
	}, Options{Width: 22})
	require.NoError(t, err)

	expected := "person    |topic     |\n" +
		"==========|==========|\n" +
		"Alice     |Diving    |\n" +
		"Bob       |Diving    |\n" +
		"2 rows returned.\n"
	assert.Equal(t, expected, buf.String())
}

func TestTable_HeaderRule(t *testing.T) {
	cat := i18n.MustLoad("en")
	var buf bytes.Buffer

	require.NoError(t, Table(&buf, cat, []string{"type"}, [][]string{{"x"}}, Options{Width: 40}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	runes := map[rune]bool{}
	for _, r := range lines[1] {
		runes[r] = true
	}
	assert.Equal(t, map[rune]bool{'|': true, '=': true}, runes)
}

func TestTable_LongValuesAreNotTruncated(t *testing.T) {
	cat := i18n.MustLoad("en")
	var buf bytes.Buffer

	long := "http://example.org/social/people/1.0/Alice"
	require.NoError(t, Table(&buf, cat, []string{"s"}, [][]string{{long}}, Options{Width: 10}))
	assert.Contains(t, buf.String(), long+"|")
}

func TestTable_Empty(t *testing.T) {
	cat := i18n.MustLoad("en")
	var buf bytes.Buffer

	require.NoError(t, Table(&buf, cat, []string{"s"}, nil, Options{Width: 10}))
	assert.True(t, strings.HasSuffix(buf.String(), "0 rows returned.\n"))
}

func TestFooter(t *testing.T) {
	cat := i18n.MustLoad("en")

	assert.Equal(t, "3 rows returned.", Footer(cat, 3, 0))
	assert.Equal(t, "3 rows returned in 1.500 seconds.", Footer(cat, 3, 1500*time.Millisecond))
}
