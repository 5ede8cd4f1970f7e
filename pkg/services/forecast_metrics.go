package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes used as the "result" label.
const (
	runResultSuccess   = "success"
	runResultFailure   = "failure"
	runResultCancelled = "cancelled"
)

// ForecastMetrics exposes forecast pipeline counters to Prometheus.
// A nil *ForecastMetrics is valid and records nothing.
type ForecastMetrics struct {
	runs           *prometheus.CounterVec
	fitDuration    prometheus.Histogram
	skippedRecords prometheus.Counter
	uploads        prometheus.Counter
}

// NewForecastMetrics registers the collectors on reg.
func NewForecastMetrics(reg prometheus.Registerer) *ForecastMetrics {
	factory := promauto.With(reg)
	return &ForecastMetrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sales_forecast_runs_total",
			Help: "Forecast pipeline runs by result.",
		}, []string{"result"}),
		fitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sales_forecast_fit_duration_seconds",
			Help:    "Wall time spent fitting the forecast model.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		skippedRecords: factory.NewCounter(prometheus.CounterOpts{
			Name: "sales_forecast_skipped_records_total",
			Help: "Malformed sales records skipped during validation.",
		}),
		uploads: factory.NewCounter(prometheus.CounterOpts{
			Name: "sales_forecast_uploads_total",
			Help: "Sales files imported.",
		}),
	}
}

func (m *ForecastMetrics) observeRun(result string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(result).Inc()
}

func (m *ForecastMetrics) observeFit(d time.Duration) {
	if m == nil {
		return
	}
	m.fitDuration.Observe(d.Seconds())
}

func (m *ForecastMetrics) observeSkipped(n int) {
	if m == nil || n == 0 {
		return
	}
	m.skippedRecords.Add(float64(n))
}

// ObserveUpload counts an imported sales file.
func (m *ForecastMetrics) ObserveUpload() {
	if m == nil {
		return
	}
	m.uploads.Inc()
}
