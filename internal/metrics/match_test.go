package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extranet/internal/model"
)

func TestMatchMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMatchMetrics(reg)
	require.NoError(t, err)

	id := int64(2)
	m.ObserveResults([]model.MatchResult{
		{Filename: "a.pdf", UserID: &id, Score: 95},
		{Filename: "b.pdf", Score: 40},
		{Filename: "c.pdf", Score: 0},
	})
	m.ObserveRejected(2)
	m.ObserveRejected(0)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.files.WithLabelValues(OutcomeMatched)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.files.WithLabelValues(OutcomeUnmatched)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.files.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.score))

	_, err = NewMatchMetrics(reg)
	assert.Error(t, err)
}

func TestMatchMetrics_Nil(t *testing.T) {
	var m *MatchMetrics
	assert.NotPanics(t, func() {
		m.ObserveResults([]model.MatchResult{{Filename: "a"}})
		m.ObserveRejected(3)
	})
}
