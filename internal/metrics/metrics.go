// Package metrics collects run metrics in a private Prometheus registry and
// can dump them in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Entity outcomes.
const (
	OutcomeFetched = "fetched"
	OutcomeCached  = "cached"
	OutcomeFailed  = "failed"
)

// Metrics holds the collectors of one run.
type Metrics struct {
	registry *prometheus.Registry

	EntitiesTotal   *prometheus.CounterVec
	SourceHitsTotal *prometheus.CounterVec
	RequestsTotal   *prometheus.CounterVec
	ResolveDuration *prometheus.HistogramVec
	Coverage        *prometheus.GaugeVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		EntitiesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coverfetch_entities_total",
				Help: "Entities processed by outcome",
			},
			[]string{"family", "outcome"},
		),
		SourceHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coverfetch_source_hits_total",
				Help: "Entities resolved per source",
			},
			[]string{"source"},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coverfetch_requests_total",
				Help: "Outbound catalog requests by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		ResolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coverfetch_resolve_duration_seconds",
				Help:    "Time spent resolving one entity through the source chain",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"family"},
		),
		Coverage: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coverfetch_coverage_percent",
				Help: "Share of input entities with media after the last run",
			},
			[]string{"family"},
		),
	}

	m.registry.MustRegister(
		m.EntitiesTotal,
		m.SourceHitsTotal,
		m.RequestsTotal,
		m.ResolveDuration,
		m.Coverage,
	)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveEntity counts one entity outcome. source is empty unless fetched.
func (m *Metrics) ObserveEntity(family, outcome, source string, took time.Duration) {
	if m == nil {
		return
	}
	m.EntitiesTotal.WithLabelValues(family, outcome).Inc()
	if outcome == OutcomeCached {
		return
	}
	m.ResolveDuration.WithLabelValues(family).Observe(took.Seconds())
	if source != "" {
		m.SourceHitsTotal.WithLabelValues(source).Inc()
	}
}

// ObserveRequest counts one outbound request. Its signature matches
// sources.RequestObserver.
func (m *Metrics) ObserveRequest(source, outcome string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(source, outcome).Inc()
}

// SetCoverage records the final media percentage of a family.
func (m *Metrics) SetCoverage(family string, percent int) {
	if m == nil {
		return
	}
	m.Coverage.WithLabelValues(family).Set(float64(percent))
}

// WriteToTextfile writes all metrics to path for node_exporter's textfile
// collector.
func (m *Metrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
