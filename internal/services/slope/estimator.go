package slope

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"AlertSlope/internal/domain/models"
	domrepo "AlertSlope/internal/domain/repository"
	domsvc "AlertSlope/internal/domain/service"
	"AlertSlope/pkg/logger"
	"AlertSlope/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

// Slope outcomes reported to metrics.
const (
	OutcomeFitted       = "fitted"
	OutcomeNotConverged = "not_converged"
	OutcomeIneligible   = "ineligible"
)

// Option configures Estimator.
type Option func(*Estimator)

// WithFitter sets the fitter used for eligible objects.
func WithFitter(f *Fitter) Option {
	return func(e *Estimator) {
		if f != nil {
			e.fitter = f
		}
	}
}

// WithDefaults sets the parameters used when a call leaves them unset.
func WithDefaults(p models.Params) Option {
	return func(e *Estimator) {
		if p.Band != "" {
			e.defaults.Band = p.Band
		}
		if p.MinHistLength > 0 {
			e.defaults.MinHistLength = p.MinHistLength
		}
	}
}

// WithWorkers bounds the number of concurrent fits. n <= 0 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Estimator) {
		e.workers = n
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m domrepo.Metrics) Option {
	return func(e *Estimator) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Estimator) {
		if l != nil {
			e.log = l
		}
	}
}

// Estimator applies the selection cuts and the slope fit to a batch of objects.
type Estimator struct {
	fitter   *Fitter
	defaults models.Params
	workers  int
	metrics  domrepo.Metrics
	log      *logger.Logger
}

// NewEstimator creates an Estimator for the g band with a 2-point minimum.
func NewEstimator(opts ...Option) *Estimator {
	e := &Estimator{
		fitter:   NewFitter(),
		defaults: models.DefaultParams(),
		metrics:  metrics.Nop{},
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers <= 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	return e
}

// Defaults returns the parameters applied to unset fields of a call.
func (e *Estimator) Defaults() models.Params { return e.defaults }

// resolve fills unset fields of p. MinHistLength is honored as given when positive.
func (e *Estimator) resolve(p models.Params) models.Params {
	if p.Band == "" {
		p.Band = e.defaults.Band
	}
	if p.MinHistLength == 0 {
		p.MinHistLength = e.defaults.MinHistLength
	}
	return p
}

// ComputeColumns is Compute over three parallel batch columns.
func (e *Estimator) ComputeColumns(ctx context.Context, times [][]float64, bands [][]string, fluxes [][]float64, p models.Params) ([]float64, error) {
	if len(bands) != len(times) || len(fluxes) != len(times) {
		return nil, fmt.Errorf("%w: batch columns differ in length: times=%d bands=%d fluxes=%d",
			models.ErrMalformedLightCurve, len(times), len(bands), len(fluxes))
	}
	batch := make([]models.LightCurve, len(times))
	for i := range times {
		batch[i] = models.LightCurve{Times: times[i], Bands: bands[i], Fluxes: fluxes[i]}
	}
	return e.Compute(ctx, batch, p)
}

// Compute returns one slope per object, in batch order. Ineligible objects and
// fits that do not converge yield NaN. Only eligible objects are validated; a
// malformed one fails the whole batch.
func (e *Estimator) Compute(ctx context.Context, batch []models.LightCurve, p models.Params) ([]float64, error) {
	start := time.Now()
	p = e.resolve(p)

	out := make([]float64, len(batch))
	for i := range out {
		out[i] = math.NaN()
	}

	bands := make([][]string, len(batch))
	for i := range batch {
		bands[i] = batch[i].Bands
	}
	mask := Select(bands, p.Band, p.MinHistLength)

	eligible := make([]int, 0, len(batch))
	for i, ok := range mask {
		if ok {
			eligible = append(eligible, i)
		}
	}
	e.metrics.RecordSlopes(OutcomeIneligible, len(batch)-len(eligible))

	if len(eligible) == 0 {
		e.log.Debug("no object passed selection cuts",
			logger.Int("objects", len(batch)),
			logger.String("band", p.Band),
			logger.Int("min_hist_length", p.MinHistLength),
		)
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, i := range eligible {
		g.Go(func() error {
			lc := batch[i]
			if err := lc.Validate(); err != nil {
				return fmt.Errorf("object %d: %w", i, err)
			}
			s, err := e.fitter.FitSlope(gctx, lc.Times, lc.Fluxes)
			if err != nil {
				return fmt.Errorf("object %d: %w", i, err)
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.metrics.RecordError("slope_batch")
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fitted := 0
	for _, i := range eligible {
		if !math.IsNaN(out[i]) {
			fitted++
		}
	}
	e.metrics.RecordSlopes(OutcomeFitted, fitted)
	e.metrics.RecordSlopes(OutcomeNotConverged, len(eligible)-fitted)
	e.metrics.RecordLatency("slope_batch", time.Since(start).Seconds())

	e.log.Debug("slope batch computed",
		logger.Int("objects", len(batch)),
		logger.Int("eligible", len(eligible)),
		logger.Int("fitted", fitted),
		logger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

var _ domsvc.SlopeEstimator = (*Estimator)(nil)
