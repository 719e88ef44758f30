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

// Package testing provides shared fixtures for rdftools tests.
//
// The fixture is a small social graph of 25 triples: eight people, one
// family and two topics, linked by parent/child/spouse/member/likes
// relationships. It is available as Turtle/N3 text (SampleN3), as a file on
// disk (WriteSample) and as a ready-made graph (SetupTestGraph).
//
// # Quick Start
//
//	import rdftest "github.com/kraklabs/rdftools/internal/testing"
//
//	func TestMyFeature(t *testing.T) {
//	    path := rdftest.WriteSample(t)
//	    // parse path, then compare against rdftest.SampleSubjects ...
//	}
//
// # Expected Selections
//
// The distinct terms of the sample are exported for assertions:
//   - SampleSubjects: 11 subjects
//   - SamplePredicates: 6 predicates
//   - SampleObjects: 13 objects
//   - SampleTypes: 3 rdf:type objects
//
// Import the package under an alias; its name shadows the standard library.
package testing
