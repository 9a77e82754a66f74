package features

import (
	"math"
	"sort"

	"AlertSlope/internal/domain/models"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Describe summarizes a slope column. NaN and infinite values count towards Count
// but are excluded from the statistics.
func Describe(values []float64) models.Summary {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	s := models.Summary{Count: len(values), Enriched: len(finite)}
	if len(finite) == 0 {
		return s
	}
	sort.Float64s(finite)

	mean, std := stat.MeanStdDev(finite, nil)
	s.Mean = ptr(mean)
	s.Std = ptr(std)
	s.Min = ptr(floats.Min(finite))
	s.P25 = ptr(quantile(finite, 0.25))
	s.P50 = ptr(quantile(finite, 0.50))
	s.P75 = ptr(quantile(finite, 0.75))
	s.Max = ptr(floats.Max(finite))
	return s
}

// quantile interpolates linearly between closest ranks of sorted x at (n-1)*p.
// gonum's stat.LinInterp interpolates the empirical CDF instead, which gives
// different values on small samples.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

func ptr(v float64) *float64 {
	return models.NullableFloat(v).Ptr()
}
