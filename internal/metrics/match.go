// Package metrics holds domain-level Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"extranet/internal/model"
)

// Outcome label values of match_files_total.
const (
	OutcomeMatched   = "matched"
	OutcomeUnmatched = "unmatched"
	OutcomeRejected  = "rejected"
)

// MatchMetrics counts bulk-match outcomes and the score distribution.
// A nil *MatchMetrics records nothing.
type MatchMetrics struct {
	files *prometheus.CounterVec
	score prometheus.Histogram
}

// NewMatchMetrics registers the collectors on reg.
func NewMatchMetrics(reg prometheus.Registerer) (*MatchMetrics, error) {
	m := &MatchMetrics{
		files: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "match_files_total",
				Help: "Files processed by the bulk matcher, by outcome.",
			},
			[]string{"outcome"},
		),
		score: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "match_score",
			Help:    "Best candidate score per matched file name.",
			Buckets: []float64{0, 25, 50, 70, 75, 85, 90, 95, 100},
		}),
	}
	for _, c := range []prometheus.Collector{m.files, m.score} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveResults records one matcher pass.
func (m *MatchMetrics) ObserveResults(results []model.MatchResult) {
	if m == nil {
		return
	}
	for _, r := range results {
		outcome := OutcomeUnmatched
		if r.Matched() {
			outcome = OutcomeMatched
		}
		m.files.WithLabelValues(outcome).Inc()
		m.score.Observe(float64(r.Score))
	}
}

// ObserveRejected counts files refused before matching.
func (m *MatchMetrics) ObserveRejected(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.files.WithLabelValues(OutcomeRejected).Add(float64(n))
}
