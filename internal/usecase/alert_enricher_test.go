package usecase

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"AlertSlope/internal/domain/models"
	"AlertSlope/internal/services/features"
	"AlertSlope/internal/services/slope"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }
func str(v string) *string { return &v }

func src(t float64, band string, flux float64) models.DiaSource {
	return models.DiaSource{MidPointTai: f64(t), FilterName: str(band), PsFlux: f64(flux)}
}

// scenarioAlerts mirrors a batch of three alerts: one g-band riser, one r-only
// object, and one with a single g point.
func scenarioAlerts() []models.Alert {
	return []models.Alert{
		{AlertID: 1, DiaSource: src(2, "r", 6), PrvDiaSources: []models.DiaSource{src(0, "g", 2), src(1, "g", 4)}},
		{AlertID: 2, DiaSource: src(2, "r", 1), PrvDiaSources: []models.DiaSource{src(0, "r", 1), src(1, "r", 1)}},
		{AlertID: 3, DiaSource: src(5, "g", 10)},
	}
}

func newEnricher() *AlertEnricher {
	return NewAlertEnricher(features.NewExtractor(nil), slope.NewEstimator(), nil, nil)
}

func TestEnrich_Scenario(t *testing.T) {
	out, summary, err := newEnricher().Enrich(context.Background(), "test", scenarioAlerts(), models.Params{})
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, int64(1), out[0].AlertID)
	assert.Equal(t, "g", out[0].Band)
	assert.InDelta(t, 2.0, float64(out[0].Slope), 1e-6)
	assert.True(t, out[1].Slope.IsMissing())
	assert.True(t, out[2].Slope.IsMissing())

	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, 1, summary.Enriched)
	require.NotNil(t, summary.Mean)
	assert.InDelta(t, 2.0, *summary.Mean, 1e-6)
}

func TestEnrich_MissingSlopeEncodesNull(t *testing.T) {
	out, _, err := newEnricher().Enrich(context.Background(), "test", scenarioAlerts()[1:2], models.Params{})
	require.NoError(t, err)

	b, err := json.Marshal(out[0])
	require.NoError(t, err)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Contains(t, got, "slope")
	assert.Nil(t, got["slope"])
	assert.Equal(t, float64(2), got["alertId"])
}

func TestEnrich_ExtractionErrorPropagates(t *testing.T) {
	alerts := []models.Alert{{AlertID: 9, DiaSource: models.DiaSource{FilterName: str("g")}}}
	_, _, err := newEnricher().Enrich(context.Background(), "test", alerts, models.Params{})
	assert.ErrorIs(t, err, features.ErrMissingField)
}

func TestEnrich_PlaceholderHistoryFailsFit(t *testing.T) {
	// A history without fluxes yields NaN placeholders, which the fitter rejects.
	noFlux := src(0, "g", 0)
	noFlux.PsFlux = nil
	alerts := []models.Alert{{AlertID: 1, DiaSource: src(1, "g", 2), PrvDiaSources: []models.DiaSource{noFlux}}}

	_, _, err := newEnricher().Enrich(context.Background(), "test", alerts, models.Params{})
	assert.ErrorIs(t, err, slope.ErrNonFinite)
}

func TestSlopes_Empty(t *testing.T) {
	slopes, summary, err := newEnricher().Slopes(context.Background(), "test", nil, models.Params{})
	require.NoError(t, err)
	assert.Empty(t, slopes)
	assert.Zero(t, summary.Count)
}

func TestSlopes_OtherBand(t *testing.T) {
	batch := []models.LightCurve{{Times: []float64{0, 1}, Bands: []string{"r", "r"}, Fluxes: []float64{3, 1}}}
	slopes, _, err := newEnricher().Slopes(context.Background(), "test", batch, models.Params{Band: "r"})
	require.NoError(t, err)
	assert.InDelta(t, -2.0, slopes[0], 1e-6)
	assert.False(t, math.IsNaN(slopes[0]))
}
