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

// Package metrics counts what a shell session or tool run has done.
//
// Every Metrics value owns a private Prometheus registry, so several
// sessions in one process (and tests) never share counters.
package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds the collectors of one session.
type Metrics struct {
	registry *prometheus.Registry

	commands       *prometheus.CounterVec
	warnings       prometheus.Counter
	statementsRead prometheus.Counter

	readDuration  prometheus.Histogram
	writeDuration prometheus.Histogram
	queryDuration prometheus.Histogram
}

// New creates a Metrics value with its own registry.
func New() *Metrics {
	buckets := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	m := &Metrics{
		registry:       prometheus.NewRegistry(),
		commands:       prometheus.NewCounterVec(prometheus.CounterOpts{Name: "rdftools_commands_total", Help: "Commands dispatched, by name"}, []string{"command"}),
		warnings:       prometheus.NewCounter(prometheus.CounterOpts{Name: "rdftools_warnings_total", Help: "Warnings reported to the user"}),
		statementsRead: prometheus.NewCounter(prometheus.CounterOpts{Name: "rdftools_statements_read_total", Help: "New statements read into the graph"}),
		readDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Name: "rdftools_read_seconds", Help: "Time spent reading inputs", Buckets: buckets}),
		writeDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Name: "rdftools_write_seconds", Help: "Time spent writing outputs", Buckets: buckets}),
		queryDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Name: "rdftools_query_seconds", Help: "Time spent evaluating queries", Buckets: buckets}),
	}
	m.registry.MustRegister(
		m.commands, m.warnings, m.statementsRead,
		m.readDuration, m.writeDuration, m.queryDuration,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// record helpers

func (m *Metrics) RecordCommand(name string) { m.commands.WithLabelValues(name).Inc() }
func (m *Metrics) RecordWarning()            { m.warnings.Inc() }

func (m *Metrics) RecordRead(statements int, d time.Duration) {
	m.statementsRead.Add(float64(statements))
	m.readDuration.Observe(d.Seconds())
}

func (m *Metrics) RecordWrite(d time.Duration) { m.writeDuration.Observe(d.Seconds()) }
func (m *Metrics) RecordQuery(d time.Duration) { m.queryDuration.Observe(d.Seconds()) }

// Sample is one gathered series. Counters set Value; histograms set Count
// and Value (the sum of observations, in seconds).
type Sample struct {
	Name      string
	Labels    string // "k=v,k=v", empty when unlabelled
	Histogram bool
	Value     float64
	Count     uint64
}

// Snapshot gathers every series, sorted by name and labels.
func (m *Metrics) Snapshot() ([]Sample, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}

	var out []Sample
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			s := Sample{Name: mf.GetName(), Labels: labels(metric.GetLabel())}
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				s.Value = metric.GetCounter().GetValue()
			case dto.MetricType_HISTOGRAM:
				s.Histogram = true
				s.Count = metric.GetHistogram().GetSampleCount()
				s.Value = metric.GetHistogram().GetSampleSum()
			default:
				continue
			}
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Labels < out[j].Labels
	})
	return out, nil
}

// Value returns the counter value of the named series, or 0.
func (m *Metrics) Value(name, labels string) float64 {
	samples, err := m.Snapshot()
	if err != nil {
		return 0
	}
	for _, s := range samples {
		if s.Name == name && s.Labels == labels {
			return s.Value
		}
	}
	return 0
}

func labels(pairs []*dto.LabelPair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.GetName()+"="+p.GetValue())
	}
	return strings.Join(parts, ",")
}
