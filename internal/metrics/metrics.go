// Package metrics exposes Prometheus instruments for pipeline runs and the
// dashboard API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "arsat_finanzas"

// Metrics groups the instruments. The zero value is not usable; call New.
type Metrics struct {
	PipelineRuns      *prometheus.CounterVec
	PipelineDuration  prometheus.Histogram
	RowsLoaded        *prometheus.CounterVec
	CellsUnparsable   *prometheus.CounterVec
	DatasetFailures   *prometheus.CounterVec
	SeriesUnavailable *prometheus.CounterVec
	Correlation       prometheus.Gauge
	HTTPRequests      *prometheus.CounterVec
	CacheLoads        *prometheus.CounterVec
}

// New registers all instruments on reg. A nil reg uses a private registry so
// that repeated construction in tests never collides.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		PipelineRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"status"}),
		PipelineDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Wall time of a full pipeline run.",
			Buckets:   prometheus.DefBuckets,
		}),
		RowsLoaded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Rows normalized per dataset.",
		}, []string{"dataset"}),
		CellsUnparsable: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_unparsable_total",
			Help:      "Cells replaced by the missing marker.",
		}, []string{"dataset", "column"}),
		DatasetFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_failures_total",
			Help:      "Datasets that could not be loaded, by cause.",
		}, []string{"dataset", "cause"}),
		SeriesUnavailable: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_unavailable_total",
			Help:      "Monthly series that could not be built.",
		}, []string{"series"}),
		Correlation: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "correlation_coefficient",
			Help:      "Last computed correlation between purchase order spend and transfers.",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Dashboard API requests by route and status code.",
		}, []string{"route", "code"}),
		CacheLoads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_cache_loads_total",
			Help:      "Dashboard dataset cache lookups by result.",
		}, []string{"result"}),
	}
}
