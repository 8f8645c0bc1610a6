package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Veraticus/finsight/internal/analysis"
)

// Metrics records analysis activity for Prometheus.
type Metrics struct {
	analysesTotal    *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	healthScore      prometheus.Histogram
	cacheRequests    *prometheus.CounterVec
	rateLimited      prometheus.Counter
}

// NewMetrics registers the finsight collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		analysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_analyses_total",
				Help: "Total number of analysis reports produced, by data quality",
			},
			[]string{"quality"},
		),
		analysisDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "finsight_analysis_duration_milliseconds",
				Help:    "Analysis duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
			},
		),
		healthScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "finsight_health_score",
				Help:    "Distribution of financial health scores",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
		),
		cacheRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_report_cache_requests_total",
				Help: "Report cache lookups, by result",
			},
			[]string{"result"},
		),
		rateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "finsight_rate_limited_requests_total",
				Help: "Requests rejected by the rate limiter",
			},
		),
	}
}

// RecordAnalysis records a freshly computed report.
func (m *Metrics) RecordAnalysis(report *analysis.Report, duration time.Duration) {
	m.analysesTotal.WithLabelValues(report.Metadata.DataQuality).Inc()
	m.analysisDuration.Observe(float64(duration.Microseconds()) / 1000)
	m.healthScore.Observe(float64(report.HealthScore.Score))
}

// RecordCache records a cache hit or miss.
func (m *Metrics) RecordCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheRequests.WithLabelValues(result).Inc()
}
