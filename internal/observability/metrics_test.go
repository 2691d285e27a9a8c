package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsForTesting_IsUsable(t *testing.T) {
	m := NewMetricsForTesting()

	m.ObservationsSaved.Inc()
	m.CriticalityComputed.WithLabelValues("3").Inc()
	m.ElevationRequests.WithLabelValues("success").Inc()
	m.ElevationCache.WithLabelValues("hit").Inc()
	m.ElevationAPIDuration.Observe(0.2)
	m.LiveClients.Set(2)
	m.FeedPublished.WithLabelValues("kafka").Add(3)
	m.FeedDropped.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ObservationsSaved))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CriticalityComputed.WithLabelValues("3")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LiveClients))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.FeedPublished.WithLabelValues("kafka")))
	assert.Zero(t, testutil.ToFloat64(m.FeedErrors.WithLabelValues("kafka")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedDropped))
}

func TestMetrics_RegisterWithoutConflicts(t *testing.T) {
	m := NewMetricsForTesting()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(m.ObservationsSaved))
	require.NoError(t, reg.Register(m.CriticalityComputed))
	require.NoError(t, reg.Register(m.ElevationAPIDuration))

	m.ObservationsSaved.Inc()
	n, err := testutil.GatherAndCount(reg, "nivo_observations_saved_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
