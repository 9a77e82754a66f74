package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegisterer(reg)

	r.RecordAlerts("kafka", 3)
	r.RecordAlerts("kafka", 2)
	r.RecordSlopes("fitted", 4)
	r.RecordSlopes("ineligible", 1)
	r.RecordError("decode")
	r.RecordEnrichedRatio("http", 0.5)
	r.RecordLatency("slope_batch", 0.01)

	assert.Equal(t, 5.0, testutil.ToFloat64(r.alertsTotal.WithLabelValues("kafka")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.slopesTotal.WithLabelValues("fitted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.slopesTotal.WithLabelValues("ineligible")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("decode")))
	assert.Equal(t, 0.5, testutil.ToFloat64(r.lastEnriched.WithLabelValues("http")))

	n, err := testutil.GatherAndCount(reg, "alertslope_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecorder_SeparateRegistries(t *testing.T) {
	// Two recorders on distinct registries must not collide.
	NewWithRegisterer(prometheus.NewRegistry())
	NewWithRegisterer(prometheus.NewRegistry())
}
