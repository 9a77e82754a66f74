package models

import (
	"errors"
	"fmt"
	"math"
)

// ErrMalformedLightCurve is returned when the per-object sequences are not aligned.
var ErrMalformedLightCurve = errors.New("malformed light curve")

// DefaultBand is the photometric band the slope is computed for when none is configured.
const DefaultBand = "g"

// DefaultMinHistLength is the minimum number of in-band measurements required to fit.
// A two-parameter linear fit is underdetermined below 2 points.
const DefaultMinHistLength = 2

// LightCurve is one object's combined history + current measurements.
// Index i of Times, Bands and Fluxes refers to the same measurement.
type LightCurve struct {
	Times  []float64 `json:"times"`
	Bands  []string  `json:"bands"`
	Fluxes []float64 `json:"fluxes"`
}

// Len returns the number of measurements.
func (lc LightCurve) Len() int { return len(lc.Times) }

// Validate checks that the three sequences have identical length.
func (lc LightCurve) Validate() error {
	if len(lc.Bands) != len(lc.Times) || len(lc.Fluxes) != len(lc.Times) {
		return fmt.Errorf("%w: times=%d bands=%d fluxes=%d",
			ErrMalformedLightCurve, len(lc.Times), len(lc.Bands), len(lc.Fluxes))
	}
	return nil
}

// Params selects which band is fitted and how many in-band points are required.
type Params struct {
	Band          string
	MinHistLength int
}

// DefaultParams returns the historical g-band, 2-point configuration.
func DefaultParams() Params {
	return Params{Band: DefaultBand, MinHistLength: DefaultMinHistLength}
}

// NullableFloat is a float64 whose NaN value encodes to JSON null.
type NullableFloat float64

// Missing is the sentinel for "no slope": ineligible object or failed fit.
func Missing() NullableFloat { return NullableFloat(math.NaN()) }

// IsMissing reports whether f carries the missing sentinel.
func (f NullableFloat) IsMissing() bool { return math.IsNaN(float64(f)) }

// Ptr returns nil for the missing sentinel, or a pointer to the value.
func (f NullableFloat) Ptr() *float64 {
	if f.IsMissing() || math.IsInf(float64(f), 0) {
		return nil
	}
	v := float64(f)
	return &v
}
