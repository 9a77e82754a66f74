package features

import (
	"errors"
	"fmt"
	"math"

	"AlertSlope/internal/domain/models"
	"AlertSlope/pkg/logger"
)

var (
	// ErrUnknownField is returned for a field the extractor has no accessor for.
	ErrUnknownField = errors.New("unknown diaSource field")

	// ErrMissingField is returned when the current measurement lacks a requested field.
	ErrMissingField = errors.New("field missing from current diaSource")
)

var floatFields = map[string]func(models.DiaSource) *float64{
	models.FieldMidPointTai: func(s models.DiaSource) *float64 { return s.MidPointTai },
	models.FieldPsFlux:      func(s models.DiaSource) *float64 { return s.PsFlux },
	models.FieldPsFluxErr:   func(s models.DiaSource) *float64 { return s.PsFluxErr },
}

var stringFields = map[string]func(models.DiaSource) *string{
	models.FieldFilterName: func(s models.DiaSource) *string { return s.FilterName },
}

// Extractor builds per-object measurement sequences from alerts.
type Extractor struct {
	log *logger.Logger
}

func NewExtractor(l *logger.Logger) *Extractor {
	if l == nil {
		l = logger.Nop()
	}
	return &Extractor{log: l}
}

// extractHistory returns one value per history entry. If any entry lacks the field,
// every position gets the placeholder so the sequence stays aligned. A JSON null decodes
// to nil and counts as missing.
func extractHistory[T any](history []models.DiaSource, get func(models.DiaSource) *T, placeholder T) ([]T, bool) {
	out := make([]T, len(history))
	for i, src := range history {
		v := get(src)
		if v == nil {
			for j := range out {
				out[j] = placeholder
			}
			return out, false
		}
		out[i] = *v
	}
	return out, true
}

// FloatField returns history values of field followed by the current measurement.
// Missing history values become NaN.
func (e *Extractor) FloatField(alert models.Alert, field string) ([]float64, error) {
	get, ok := floatFields[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return extractField(e, alert, field, get, math.NaN())
}

// StringField returns history values of field followed by the current measurement.
// Missing history values become "".
func (e *Extractor) StringField(alert models.Alert, field string) ([]string, error) {
	get, ok := stringFields[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return extractField(e, alert, field, get, "")
}

func extractField[T any](e *Extractor, alert models.Alert, field string, get func(models.DiaSource) *T, placeholder T) ([]T, error) {
	cur := get(alert.DiaSource)
	if cur == nil {
		return nil, fmt.Errorf("%w: %s (alert %d)", ErrMissingField, field, alert.AlertID)
	}
	hist, complete := extractHistory(alert.PrvDiaSources, get, placeholder)
	if !complete {
		e.log.Warn("field not in history data",
			logger.String("field", field),
			logger.Int64("alert_id", alert.AlertID),
		)
	}
	return append(hist, *cur), nil
}

// LightCurve extracts times, bands and fluxes of an alert, history first and the
// current measurement last.
func (e *Extractor) LightCurve(alert models.Alert) (models.LightCurve, error) {
	times, err := e.FloatField(alert, models.FieldMidPointTai)
	if err != nil {
		return models.LightCurve{}, err
	}
	bands, err := e.StringField(alert, models.FieldFilterName)
	if err != nil {
		return models.LightCurve{}, err
	}
	fluxes, err := e.FloatField(alert, models.FieldPsFlux)
	if err != nil {
		return models.LightCurve{}, err
	}
	return models.LightCurve{Times: times, Bands: bands, Fluxes: fluxes}, nil
}

// LightCurves extracts every alert of a batch, preserving order.
func (e *Extractor) LightCurves(alerts []models.Alert) ([]models.LightCurve, error) {
	out := make([]models.LightCurve, len(alerts))
	for i, a := range alerts {
		lc, err := e.LightCurve(a)
		if err != nil {
			return nil, fmt.Errorf("alert %d: %w", i, err)
		}
		out[i] = lc
	}
	return out, nil
}
