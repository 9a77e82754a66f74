package slope

import (
	"context"
	"math"
	"testing"

	"AlertSlope/internal/domain/models"
	"AlertSlope/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_EndToEndScenario(t *testing.T) {
	e := NewEstimator()
	got, err := e.ComputeColumns(context.Background(),
		[][]float64{{0, 1, 2}, {0, 1, 2}, {5}},
		[][]string{{"g", "g", "r"}, {"r", "r", "r"}, {"g"}},
		[][]float64{{2, 4, 6}, {1, 1, 1}, {10}},
		models.Params{MinHistLength: 2},
	)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.InDelta(t, 2.0, got[0], 1e-6)
	assert.True(t, math.IsNaN(got[1]))
	assert.True(t, math.IsNaN(got[2]))
}

func TestCompute_LengthAndOrderPreserved(t *testing.T) {
	e := NewEstimator(WithWorkers(3))
	for _, n := range []int{0, 1, 7, 64} {
		batch := make([]models.LightCurve, n)
		for i := range batch {
			// object i has slope i when eligible; every third object is r-only
			band := "g"
			if i%3 == 2 {
				band = "r"
			}
			a := float64(i)
			batch[i] = models.LightCurve{
				Times:  []float64{0, 1, 2, 3},
				Bands:  []string{band, band, band, band},
				Fluxes: []float64{1, 1 + a, 1 + 2*a, 1 + 3*a},
			}
		}
		got, err := e.Compute(context.Background(), batch, models.Params{})
		require.NoError(t, err)
		require.Len(t, got, n)
		for i, v := range got {
			if i%3 == 2 {
				assert.True(t, math.IsNaN(v), "object %d", i)
				continue
			}
			assert.InDelta(t, float64(i), v, 1e-6, "object %d", i)
		}
	}
}

func TestCompute_ShortCircuitSkipsFitter(t *testing.T) {
	// Data that would fail the fitter with a hard error is never touched when
	// nothing passes the cuts.
	batch := []models.LightCurve{
		{Times: []float64{0, 1, 2}, Bands: []string{"r", "r", "r"}, Fluxes: []float64{1}},
		{Times: []float64{0, 1}, Bands: []string{"g", "r"}, Fluxes: []float64{math.NaN(), 1}},
	}
	got, err := NewEstimator().Compute(context.Background(), batch, models.Params{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
}

func TestCompute_NonConvergenceDoesNotAbortBatch(t *testing.T) {
	batch := []models.LightCurve{
		{Times: []float64{5, 5, 5}, Bands: []string{"g", "g", "g"}, Fluxes: []float64{1, 2, 3}},
		{Times: []float64{0, 1, 2}, Bands: []string{"g", "g", "g"}, Fluxes: []float64{0, 3, 6}},
	}
	got, err := NewEstimator().Compute(context.Background(), batch, models.Params{})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got[0]))
	assert.InDelta(t, 3.0, got[1], 1e-6)
}

func TestCompute_MalformedEligibleObjectFailsBatch(t *testing.T) {
	batch := []models.LightCurve{
		{Times: []float64{0, 1, 2}, Bands: []string{"g", "g", "g"}, Fluxes: []float64{0, 3, 6}},
		{Times: []float64{0, 1, 2}, Bands: []string{"g", "g"}, Fluxes: []float64{0, 3, 6}},
	}
	_, err := NewEstimator().Compute(context.Background(), batch, models.Params{})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrMalformedLightCurve)
	assert.Contains(t, err.Error(), "object 1")
}

func TestCompute_EligibilityIgnoresFitData(t *testing.T) {
	// Fits use all measurements of an eligible object, not only the target band.
	batch := []models.LightCurve{
		{Times: []float64{0, 1, 2, 3}, Bands: []string{"g", "r", "g", "r"}, Fluxes: []float64{0, 1, 2, 3}},
	}
	got, err := NewEstimator().Compute(context.Background(), batch, models.Params{})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got[0], 1e-6)
}

func TestCompute_BandAndMinimumFromParams(t *testing.T) {
	batch := []models.LightCurve{
		{Times: []float64{0, 1, 2}, Bands: []string{"r", "r", "g"}, Fluxes: []float64{0, 2, 4}},
	}
	e := NewEstimator(WithDefaults(models.Params{Band: "r", MinHistLength: 3}))
	assert.Equal(t, models.Params{Band: "r", MinHistLength: 3}, e.Defaults())

	got, err := e.Compute(context.Background(), batch, models.Params{})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got[0]))

	got, err = e.Compute(context.Background(), batch, models.Params{MinHistLength: 2})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, got[0], 1e-6)
}

func TestComputeColumns_MismatchedColumns(t *testing.T) {
	_, err := NewEstimator().ComputeColumns(context.Background(),
		[][]float64{{0, 1}}, [][]string{}, [][]float64{{1, 2}}, models.Params{})
	assert.ErrorIs(t, err, models.ErrMalformedLightCurve)
}

func TestCompute_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	batch := []models.LightCurve{
		{Times: []float64{0, 1}, Bands: []string{"g", "g"}, Fluxes: []float64{0, 1}},
	}
	_, err := NewEstimator().Compute(ctx, batch, models.Params{})
	assert.ErrorIs(t, err, context.Canceled)
}

type countingMetrics struct {
	metrics.Nop
	slopes map[string]int
}

func (c *countingMetrics) RecordSlopes(outcome string, n int) { c.slopes[outcome] += n }

func TestCompute_RecordsOutcomes(t *testing.T) {
	m := &countingMetrics{slopes: map[string]int{}}
	e := NewEstimator(WithMetrics(m))
	batch := []models.LightCurve{
		{Times: []float64{0, 1}, Bands: []string{"g", "g"}, Fluxes: []float64{0, 1}},
		{Times: []float64{1, 1}, Bands: []string{"g", "g"}, Fluxes: []float64{0, 1}},
		{Times: []float64{0}, Bands: []string{"g"}, Fluxes: []float64{0}},
	}
	_, err := e.Compute(context.Background(), batch, models.Params{})
	require.NoError(t, err)

	assert.Equal(t, 1, m.slopes[OutcomeFitted])
	assert.Equal(t, 1, m.slopes[OutcomeNotConverged])
	assert.Equal(t, 1, m.slopes[OutcomeIneligible])
}

func TestCompute_WithPrometheusRecorder(t *testing.T) {
	e := NewEstimator(WithMetrics(metrics.NewWithRegisterer(prometheus.NewRegistry())))
	got, err := e.Compute(context.Background(), []models.LightCurve{
		{Times: []float64{0, 1}, Bands: []string{"g", "g"}, Fluxes: []float64{0, 1}},
	}, models.Params{})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got[0], 1e-6)
}
