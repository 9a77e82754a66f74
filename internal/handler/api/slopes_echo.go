package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	"AlertSlope/internal/domain/models"
	"AlertSlope/internal/services/features"
	"AlertSlope/internal/services/slope"
	"AlertSlope/internal/usecase"
	xhttp "AlertSlope/pkg/http"
	xlogger "AlertSlope/pkg/logger"
)

// SlopesEchoHandler serves slope computation and alert enrichment over HTTP.
type SlopesEchoHandler struct {
	logger   *xlogger.Logger
	enricher *usecase.AlertEnricher
}

func NewSlopesEchoHandler(logger *xlogger.Logger, enricher *usecase.AlertEnricher) *SlopesEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &SlopesEchoHandler{logger: logger, enricher: enricher}
}

func (h *SlopesEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.POST("/slopes", h.Slopes)
	g.POST("/alerts/enrich", h.Enrich)
}

// Slopes handles POST /api/v1/slopes.
func (h *SlopesEchoHandler) Slopes(c echo.Context) error {
	req := &models.SlopesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	p := h.resolve(req.Params())

	batch := make([]models.LightCurve, len(req.Objects))
	for i, in := range req.Objects {
		batch[i] = in.LightCurve()
	}

	slopes, summary, err := h.enricher.Slopes(c.Request().Context(), "http", batch, p)
	if err != nil {
		h.logger.Error("slopes usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}

	out := make([]models.NullableFloat, len(slopes))
	for i, s := range slopes {
		out[i] = models.NullableFloat(s)
	}
	return xhttp.SuccessResponse(c, models.SlopesResponse{
		Band:          p.Band,
		MinHistLength: p.MinHistLength,
		Slopes:        out,
		Summary:       summary,
	})
}

// Enrich handles POST /api/v1/alerts/enrich.
func (h *SlopesEchoHandler) Enrich(c echo.Context) error {
	req := &models.EnrichRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	p := h.resolve(req.Params())

	enriched, summary, err := h.enricher.Enrich(c.Request().Context(), req.Source, req.Alerts, p)
	if err != nil {
		h.logger.Error("enrich usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, models.EnrichResponse{
		Band:    p.Band,
		Alerts:  enriched,
		Summary: summary,
	})
}

func (h *SlopesEchoHandler) resolve(p models.Params) models.Params {
	d := h.enricher.Defaults()
	if p.Band == "" {
		p.Band = d.Band
	}
	if p.MinHistLength == 0 {
		p.MinHistLength = d.MinHistLength
	}
	return p
}

// toAppError maps input problems to 422 and everything else to 500.
func toAppError(err error) error {
	switch {
	case errors.Is(err, models.ErrMalformedLightCurve),
		errors.Is(err, slope.ErrNonFinite),
		errors.Is(err, slope.ErrTooFewPoints),
		errors.Is(err, features.ErrMissingField):
		return xhttp.UnprocessableError(err.Error()).WithError(err)
	default:
		return xhttp.InternalError("slope computation failed").WithError(err)
	}
}
