package loss

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sunledger/sunledger/core/model"
)

// BetaFit is a two-parameter bounded distribution fitted to the interior
// loss ratios by the method of moments. The exact-boundary masses are kept
// out of the continuous fit and reported as point masses alongside it.
type BetaFit struct {
	Alpha    float64
	Beta     float64
	Interior int
	FracZero float64
	FracOne  float64

	dist distuv.Beta
}

// FitBeta fits the interior (0 < q < 1) values of the given loss ratios.
// NaN entries are ignored so the slice from Result.Q can be passed directly.
func FitBeta(qs []float64, minInterior int) (BetaFit, error) {
	var interior []float64
	total, zeros, ones := 0, 0, 0
	for _, q := range qs {
		if math.IsNaN(q) {
			continue
		}
		total++
		switch {
		case q == 0:
			zeros++
		case q == 1:
			ones++
		default:
			interior = append(interior, q)
		}
	}
	if len(interior) < minInterior {
		return BetaFit{}, &model.InsufficientDataError{What: "interior loss ratios", Need: minInterior, Got: len(interior)}
	}

	m := stat.Mean(interior, nil)
	v := stat.Variance(interior, nil)
	// Method of moments requires the sample variance to sit strictly inside
	// the feasible band for a beta distribution with this mean.
	if v <= 0 || v >= m*(1-m) {
		return BetaFit{}, &model.FitConvergenceError{Stage: "beta method of moments", Err: errMomentsInfeasible}
	}
	k := m*(1-m)/v - 1
	fit := BetaFit{
		Alpha:    m * k,
		Beta:     (1 - m) * k,
		Interior: len(interior),
		FracZero: float64(zeros) / float64(total),
		FracOne:  float64(ones) / float64(total),
	}
	fit.dist = distuv.Beta{Alpha: fit.Alpha, Beta: fit.Beta}
	return fit, nil
}

// Quantile returns the p-quantile of the fitted interior distribution.
func (f BetaFit) Quantile(p float64) float64 { return f.dist.Quantile(p) }

// CDF returns the cumulative probability of the fitted interior distribution.
func (f BetaFit) CDF(q float64) float64 { return f.dist.CDF(q) }

// Mean returns the mean of the fitted interior distribution.
func (f BetaFit) Mean() float64 { return f.dist.Mean() }

type momentsError struct{}

func (momentsError) Error() string { return "sample moments incompatible with a beta distribution" }

var errMomentsInfeasible = momentsError{}
