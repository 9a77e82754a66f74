package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Band  string    `json:"band" default:"g" validate:"required"`
	Min   int       `json:"min_hist_length" default:"2" validate:"gte=2"`
	Items []float64 `json:"items" validate:"required,min=1"`
}

func bind(t *testing.T, body string) (*sampleRequest, interface{}) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	var r sampleRequest
	return &r, ReadAndValidateRequest(c, &r)
}

func TestReadAndValidateRequest_Defaults(t *testing.T) {
	r, errs := bind(t, `{"items":[1]}`)
	require.Nil(t, errs)
	assert.Equal(t, "g", r.Band)
	assert.Equal(t, 2, r.Min)
}

func TestReadAndValidateRequest_FieldErrors(t *testing.T) {
	_, errs := bind(t, `{"min_hist_length":1,"items":[]}`)
	require.NotNil(t, errs)
	verrs, ok := errs.([]ValidationError)
	require.True(t, ok)
	require.Len(t, verrs, 2)

	byField := map[string]ValidationError{}
	for _, v := range verrs {
		byField[v.Field] = v
	}
	assert.Equal(t, "ERR_GTE", byField["min_hist_length"].Code)
	assert.Equal(t, "min_hist_length must be greater than or equal to 2", byField["min_hist_length"].Message)
	assert.Equal(t, "ERR_MIN", byField["items"].Code)
	assert.Equal(t, "items must contain at least 1 items", byField["items"].Message)
}

func TestReadAndValidateRequest_BadJSON(t *testing.T) {
	_, errs := bind(t, `{"items":`)
	verrs, ok := errs.([]ValidationError)
	require.True(t, ok)
	require.Len(t, verrs, 1)
	assert.Equal(t, "ERR_UNKNOWN", verrs[0].Code)
}
