package service

import (
	"context"

	"AlertSlope/internal/domain/models"
)

// SlopeEstimator turns a batch of light curves into one slope per object.
// Missing slopes are NaN.
type SlopeEstimator interface {
	Compute(ctx context.Context, batch []models.LightCurve, p models.Params) ([]float64, error)
	Defaults() models.Params
}
