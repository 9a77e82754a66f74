package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AlertSlope/internal/domain/models"
	"AlertSlope/internal/services/features"
	"AlertSlope/internal/services/slope"
	"AlertSlope/internal/usecase"
)

func newTestEcho(defaults models.Params) *echo.Echo {
	enricher := usecase.NewAlertEnricher(
		features.NewExtractor(nil),
		slope.NewEstimator(slope.WithDefaults(defaults)),
		nil, nil,
	)
	e := echo.New()
	NewSlopesEchoHandler(nil, enricher).RegisterRoutes(e)
	return e
}

func post(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const scenarioObjects = `[
	{"times":[0,1,2],"bands":["g","g","r"],"fluxes":[2,4,6]},
	{"times":[0,1,2],"bands":["r","r","r"],"fluxes":[1,1,1]},
	{"times":[5],"bands":["g"],"fluxes":[10]}
]`

func TestSlopes_Scenario(t *testing.T) {
	rec := post(newTestEcho(models.DefaultParams()), "/api/v1/slopes", `{"objects":`+scenarioObjects+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := rec.Body.String()
	assert.Contains(t, body, `"band":"g"`)
	assert.Contains(t, body, `"min_hist_length":2`)
	assert.Contains(t, body, `"count":3`)
	assert.Contains(t, body, `"enriched":1`)
	assert.Regexp(t, `"slopes":\[(1\.99999\d*|2(\.0+\d*)?|2\.00000\d*),null,null\]`, body)
}

func TestSlopes_ConfiguredDefaultsApply(t *testing.T) {
	e := newTestEcho(models.Params{Band: "r", MinHistLength: 3})
	rec := post(e, "/api/v1/slopes", `{"objects":`+scenarioObjects+`}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"band":"r"`)
	assert.Contains(t, rec.Body.String(), `"min_hist_length":3`)
	assert.Contains(t, rec.Body.String(), `"enriched":1`)
}

func TestSlopes_ValidationErrors(t *testing.T) {
	e := newTestEcho(models.DefaultParams())
	cases := map[string]string{
		"min hist length below two": `{"min_hist_length":1,"objects":[]}`,
		"missing objects":           `{"band":"g"}`,
		"not json":                  `{"objects":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := post(e, "/api/v1/slopes", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSlopes_MalformedEligibleObject(t *testing.T) {
	rec := post(newTestEcho(models.DefaultParams()), "/api/v1/slopes",
		`{"objects":[{"times":[0,1],"bands":["g","g"],"fluxes":[1]}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_UNPROCESSABLE")
}

func TestSlopes_NullFluxIsUnprocessable(t *testing.T) {
	rec := post(newTestEcho(models.DefaultParams()), "/api/v1/slopes",
		`{"objects":[{"times":[0,1],"bands":["g","g"],"fluxes":[1,null]}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSlopes_EmptyBatch(t *testing.T) {
	rec := post(newTestEcho(models.DefaultParams()), "/api/v1/slopes", `{"objects":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slopes":[]`)
}

func TestEnrich_Scenario(t *testing.T) {
	body := `{"alerts":[
		{"alertId":1,"diaSource":{"midPointTai":2,"filterName":"r","psFlux":6},
		 "prvDiaSources":[{"midPointTai":0,"filterName":"g","psFlux":2},{"midPointTai":1,"filterName":"g","psFlux":4}]},
		{"alertId":2,"diaSource":{"midPointTai":5,"filterName":"g","psFlux":10},"prvDiaSources":null}
	]}`
	rec := post(newTestEcho(models.DefaultParams()), "/api/v1/alerts/enrich", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"alertId":2`)
	assert.Contains(t, rec.Body.String(), `"slope":null`)
	assert.Contains(t, rec.Body.String(), `"enriched":1`)
}

func TestEnrich_BadSource(t *testing.T) {
	rec := post(newTestEcho(models.DefaultParams()), "/api/v1/alerts/enrich", `{"source":"ftp","alerts":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnrich_MissingCurrentField(t *testing.T) {
	rec := post(newTestEcho(models.DefaultParams()), "/api/v1/alerts/enrich",
		`{"alerts":[{"alertId":1,"diaSource":{"filterName":"g","psFlux":1}}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
