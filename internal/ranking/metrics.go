package ranking

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricRankingDuration   = "ranking_duration_seconds"
	MetricRankingCandidates = "ranking_candidates_total"
	MetricRankingQualified  = "ranking_qualified_total"
	MetricRankingEmpty      = "ranking_empty_results_total"
)

// Metrics contains Prometheus metrics for ranking passes.
// All operations are thread-safe.
type Metrics struct {
	rankingDuration *prometheus.HistogramVec
	candidatesTotal *prometheus.CounterVec
	qualifiedTotal  *prometheus.CounterVec
	emptyResults    *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to add them to a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		rankingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricRankingDuration,
				Help:    "Duration of a full ranking pass (fetch, score, sort) in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"category"},
		),
		candidatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRankingCandidates,
				Help: "Total number of candidate posts fetched for ranking",
			},
			[]string{"category"},
		),
		qualifiedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRankingQualified,
				Help: "Total number of candidates that passed the engagement threshold",
			},
			[]string{"category"},
		),
		emptyResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRankingEmpty,
				Help: "Total number of ranking passes that produced no qualified posts",
			},
			[]string{"category"},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all Prometheus collectors, primarily for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.rankingDuration,
		m.candidatesTotal,
		m.qualifiedTotal,
		m.emptyResults,
	}
}

// observeRanking records the outcome of one ranking pass.
// Safe to call on a nil receiver so the engine can run uninstrumented.
func (m *Metrics) observeRanking(category string, candidates, qualified int, duration time.Duration) {
	if m == nil {
		return
	}
	m.rankingDuration.WithLabelValues(category).Observe(duration.Seconds())
	m.candidatesTotal.WithLabelValues(category).Add(float64(candidates))
	m.qualifiedTotal.WithLabelValues(category).Add(float64(qualified))
	if qualified == 0 {
		m.emptyResults.WithLabelValues(category).Inc()
	}
}
