package slope

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"AlertSlope/internal/domain/models"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotConverged marks the only recoverable fit failure. Callers convert it to the
	// missing sentinel.
	ErrNotConverged = errors.New("optimal parameters not found")

	// ErrTooFewPoints is returned when there are fewer points than model parameters.
	// Like the other input errors it propagates instead of becoming the missing sentinel.
	ErrTooFewPoints = errors.New("improper input: fewer data points than parameters")

	// ErrNonFinite is returned when times or fluxes contain NaN or infinities.
	ErrNonFinite = errors.New("array must not contain infs or NaNs")
)

const (
	numParams = 2

	// defaultTol is sqrt of float64 eps, the usual MINPACK tolerance.
	defaultTol = 1.49012e-8

	// gradient cosine below which the residual is considered orthogonal to the model.
	gtol = 1e-12

	lambdaInit = 1e-3
	lambdaMax  = 1e16
)

// LinearModel is f(x) = a*x + b.
func LinearModel(x, a, b float64) float64 {
	return a*x + b
}

// Fit is the outcome of a converged least-squares fit.
type Fit struct {
	Slope       float64
	Intercept   float64
	SSE         float64
	Evaluations int
}

// FitterOption configures Fitter.
type FitterOption func(*Fitter)

// WithMaxEvaluations caps the number of model evaluations before giving up.
func WithMaxEvaluations(n int) FitterOption {
	return func(f *Fitter) {
		if n > 0 {
			f.maxEvals = n
		}
	}
}

// WithTolerances sets the relative reduction (ftol) and step (xtol) tolerances.
func WithTolerances(ftol, xtol float64) FitterOption {
	return func(f *Fitter) {
		if ftol > 0 {
			f.ftol = ftol
		}
		if xtol > 0 {
			f.xtol = xtol
		}
	}
}

// WithFitTimeout bounds a single fit. An expired fit counts as not converged.
func WithFitTimeout(d time.Duration) FitterOption {
	return func(f *Fitter) {
		f.timeout = d
	}
}

// Fitter fits LinearModel with Levenberg-Marquardt starting from (a, b) = (0, 0).
// It is stateless between calls and safe for concurrent use.
type Fitter struct {
	maxEvals int
	ftol     float64
	xtol     float64
	timeout  time.Duration
}

// NewFitter creates a Fitter with MINPACK defaults: 600 evaluations, ftol = xtol = 1.49012e-8.
func NewFitter(opts ...FitterOption) *Fitter {
	f := &Fitter{
		maxEvals: 200 * (numParams + 1),
		ftol:     defaultTol,
		xtol:     defaultTol,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FitSlope returns the fitted slope, or NaN when the fit does not converge.
// Errors other than non-convergence are returned as is.
func (f *Fitter) FitSlope(ctx context.Context, times, fluxes []float64) (float64, error) {
	fit, err := f.Fit(ctx, times, fluxes)
	if err != nil {
		if errors.Is(err, ErrNotConverged) {
			return math.NaN(), nil
		}
		return math.NaN(), err
	}
	return fit.Slope, nil
}

// Fit runs the least-squares fit of fluxes against times.
//
// Times are centred and scaled to [-1, 1] before fitting so the Jacobian stays well
// conditioned for epochs like MJD ~6e4 spanning minutes; the result is mapped back to the
// caller's units. The starting point (0, 0) is the same in both parameterizations.
func (f *Fitter) Fit(ctx context.Context, times, fluxes []float64) (Fit, error) {
	if len(times) != len(fluxes) {
		return Fit{}, fmt.Errorf("%w: %d times, %d fluxes", models.ErrMalformedLightCurve, len(times), len(fluxes))
	}
	if !allFinite(times) || !allFinite(fluxes) {
		return Fit{}, ErrNonFinite
	}
	n := len(times)
	if n < numParams {
		return Fit{}, fmt.Errorf("%w: %d points for %d parameters", ErrTooFewPoints, n, numParams)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	center, scale := normalization(times)
	if scale == 0 {
		return Fit{}, fmt.Errorf("%w: singular jacobian (constant times)", ErrNotConverged)
	}
	xs := make([]float64, n)
	for i, t := range times {
		xs[i] = (t - center) / scale
	}

	jac := jacobian(xs)
	if r := rank(jac); r < numParams {
		return Fit{}, fmt.Errorf("%w: singular jacobian (rank %d)", ErrNotConverged, r)
	}

	// Column norms of J; the model is linear so they do not depend on (a, b).
	var colNorm [numParams]float64
	for i := 0; i < numParams; i++ {
		colNorm[i] = mat.Norm(jac.ColView(i), 2)
	}

	p := []float64{0, 0}
	res := residuals(xs, fluxes, p)
	sse := floats.Dot(res, res)
	evals := 1
	lambda := lambdaInit

	// done refines the accepted point with one undamped Gauss-Newton step, which is exact
	// for a linear model, and maps the parameters back to the caller's time axis.
	done := func() (Fit, error) {
		if sse > 0 {
			var d mat.VecDense
			err := d.SolveVec(jac, mat.NewVecDense(n, res))
			var cond mat.Condition
			if err == nil || errors.As(err, &cond) {
				q := []float64{p[0] + d.AtVec(0), p[1] + d.AtVec(1)}
				qres := residuals(xs, fluxes, q)
				evals++
				if qsse := floats.Dot(qres, qres); qsse <= sse {
					p, sse = q, qsse
				}
			}
		}
		slope := p[0] / scale
		return Fit{Slope: slope, Intercept: p[1] - slope*center, SSE: sse, Evaluations: evals}, nil
	}

	// The damped step solves min ||J*d - r||^2 + lambda*||D*d||^2 as a QR least-squares
	// problem on [J; sqrt(lambda)*D] so the conditioning of J is not squared.
	aug := mat.NewDense(n+numParams, numParams, nil)
	aug.Slice(0, n, 0, numParams).(*mat.Dense).Copy(jac)
	rhs := mat.NewVecDense(n+numParams, nil)
	var g, step mat.VecDense
	for {
		if err := expired(ctx); err != nil {
			return Fit{}, fmt.Errorf("%w: %w", ErrNotConverged, err)
		}
		if sse == 0 {
			return done()
		}

		r := mat.NewVecDense(n, res)
		g.MulVec(jac.T(), r)
		if gradientCosine(&g, colNorm, sse) <= gtol {
			return done()
		}
		if evals >= f.maxEvals {
			return Fit{}, fmt.Errorf("%w: number of calls to function has reached maxfev = %d", ErrNotConverged, f.maxEvals)
		}

		damp := math.Sqrt(lambda)
		for i := 0; i < numParams; i++ {
			aug.Set(n+i, i, damp*colNorm[i])
		}
		for i := 0; i < n; i++ {
			rhs.SetVec(i, res[i])
		}
		if err := step.SolveVec(aug, rhs); err != nil {
			var cond mat.Condition
			if !errors.As(err, &cond) {
				return Fit{}, fmt.Errorf("%w: %v", ErrNotConverged, err)
			}
		}

		trial := []float64{p[0] + step.AtVec(0), p[1] + step.AtVec(1)}
		trialRes := residuals(xs, fluxes, trial)
		trialSSE := floats.Dot(trialRes, trialRes)
		evals++

		stepNorm := math.Hypot(step.AtVec(0), step.AtVec(1))
		smallStep := stepNorm <= f.xtol*(math.Hypot(p[0], p[1])+f.xtol)

		if trialSSE < sse {
			reduction := sse - trialSSE
			prev := sse
			p, res, sse = trial, trialRes, trialSSE
			lambda = math.Max(lambda/10, 1e-12)
			if reduction <= f.ftol*prev || smallStep {
				return done()
			}
			continue
		}

		if smallStep {
			return done()
		}
		lambda *= 10
		if lambda > lambdaMax {
			return Fit{}, fmt.Errorf("%w: damping exceeded %g", ErrNotConverged, lambdaMax)
		}
	}
}

// normalization returns the mean of times and the largest distance from it.
func normalization(times []float64) (center, scale float64) {
	center = floats.Sum(times) / float64(len(times))
	for _, t := range times {
		scale = math.Max(scale, math.Abs(t-center))
	}
	return center, scale
}

// expired reports a done context, or one whose deadline has passed before its timer fired.
func expired(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dl, ok := ctx.Deadline(); ok && !time.Now().Before(dl) {
		return context.DeadlineExceeded
	}
	return nil
}

// jacobian of LinearModel with respect to (a, b): row i is [x_i, 1].
func jacobian(xs []float64) *mat.Dense {
	j := mat.NewDense(len(xs), numParams, nil)
	for i, t := range xs {
		j.Set(i, 0, t)
		j.Set(i, 1, 1)
	}
	return j
}

func rank(j *mat.Dense) int {
	var svd mat.SVD
	if ok := svd.Factorize(j, mat.SVDNone); !ok {
		return 0
	}
	r, c := j.Dims()
	return svd.Rank(float64(max(r, c)) * eps)
}

const eps = 2.220446049250313e-16

func residuals(times, fluxes, p []float64) []float64 {
	out := make([]float64, len(times))
	for i := range times {
		out[i] = fluxes[i] - LinearModel(times[i], p[0], p[1])
	}
	return out
}

// gradientCosine is the largest cosine between the residual vector and a Jacobian column.
func gradientCosine(g *mat.VecDense, colNorm [numParams]float64, sse float64) float64 {
	rn := math.Sqrt(sse)
	worst := 0.0
	for i := 0; i < numParams; i++ {
		cn := colNorm[i]
		if cn == 0 {
			continue
		}
		worst = math.Max(worst, math.Abs(g.AtVec(i))/(cn*rn))
	}
	return worst
}

func allFinite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
