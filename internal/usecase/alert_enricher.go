package usecase

import (
	"context"
	"fmt"
	"time"

	"AlertSlope/internal/domain/models"
	domrepo "AlertSlope/internal/domain/repository"
	domsvc "AlertSlope/internal/domain/service"
	"AlertSlope/internal/services/features"
	"AlertSlope/pkg/logger"
	pkgmetrics "AlertSlope/pkg/metrics"
)

// AlertEnricher attaches the slope feature to alerts.
type AlertEnricher struct {
	extractor *features.Extractor
	estimator domsvc.SlopeEstimator
	metrics   domrepo.Metrics
	log       *logger.Logger
}

func NewAlertEnricher(extractor *features.Extractor, estimator domsvc.SlopeEstimator, metrics domrepo.Metrics, log *logger.Logger) *AlertEnricher {
	if log == nil {
		log = logger.Nop()
	}
	if metrics == nil {
		metrics = pkgmetrics.Nop{}
	}
	return &AlertEnricher{extractor: extractor, estimator: estimator, metrics: metrics, log: log}
}

// Defaults exposes the estimator's default parameters.
func (a *AlertEnricher) Defaults() models.Params { return a.estimator.Defaults() }

// Slopes computes one slope per light curve and summarizes the column.
func (a *AlertEnricher) Slopes(ctx context.Context, source string, batch []models.LightCurve, p models.Params) ([]float64, models.Summary, error) {
	start := time.Now()
	slopes, err := a.estimator.Compute(ctx, batch, p)
	if err != nil {
		a.metrics.RecordError(source + "_compute")
		return nil, models.Summary{}, fmt.Errorf("compute slopes: %w", err)
	}
	summary := features.Describe(slopes)

	a.metrics.RecordAlerts(source, len(batch))
	if summary.Count > 0 {
		a.metrics.RecordEnrichedRatio(source, float64(summary.Enriched)/float64(summary.Count))
	}
	a.metrics.RecordLatency(source+"_enrich", time.Since(start).Seconds())
	return slopes, summary, nil
}

// Enrich extracts the light curve of each alert and attaches its slope.
// The result has the same length and order as alerts.
func (a *AlertEnricher) Enrich(ctx context.Context, source string, alerts []models.Alert, p models.Params) ([]models.EnrichedAlert, models.Summary, error) {
	batch, err := a.extractor.LightCurves(alerts)
	if err != nil {
		a.metrics.RecordError(source + "_extract")
		return nil, models.Summary{}, fmt.Errorf("extract light curves: %w", err)
	}

	slopes, summary, err := a.Slopes(ctx, source, batch, p)
	if err != nil {
		return nil, models.Summary{}, err
	}

	band := p.Band
	if band == "" {
		band = a.estimator.Defaults().Band
	}
	out := make([]models.EnrichedAlert, len(alerts))
	for i := range alerts {
		out[i] = models.EnrichedAlert{Alert: alerts[i], Band: band, Slope: models.NullableFloat(slopes[i])}
	}

	a.log.Info("alerts enriched",
		logger.String("source", source),
		logger.String("band", band),
		logger.Int("alerts", summary.Count),
		logger.Int("enriched", summary.Enriched),
	)
	return out, summary, nil
}
