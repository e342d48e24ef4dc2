// Package envelope estimates the potential-generation surface Y(azimuth,
// zenith): the maximum achievable hourly output for a solar position,
// independent of weather. The strategy is binned-maxima regression: daytime
// observations are gridded on solar position, each sufficiently populated
// cell contributes its maximum observed generation, and a low-degree
// polynomial surface is fitted to those maxima by least squares.
package envelope

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sunledger/sunledger/core/model"
)

type cell struct {
	count  int
	max    float64
	sumAz  float64
	sumZen float64
}

type cellKey struct{ ia, iz int }

// Fit estimates the envelope from an observation table annotated with solar
// positions. It returns InsufficientDataError when too few grid cells are
// populated and FitConvergenceError when the least-squares solve fails.
func Fit(obs []model.Observation, cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cells := make(map[cellKey]*cell)
	rows := 0
	for _, o := range obs {
		if !o.Daytime() {
			continue
		}
		gen, ok := o.Generation(cfg.MissingPolicy)
		if !ok {
			continue
		}
		if cfg.RatedKWh > 0 && gen > cfg.RatedKWh {
			// Physically implausible reading; keep it away from the bin max.
			continue
		}
		rows++
		k := cellKey{
			ia: int(math.Floor(o.AzimuthDeg / cfg.AzBinDeg)),
			iz: int(math.Floor(o.ZenithDeg / cfg.ZenBinDeg)),
		}
		c := cells[k]
		if c == nil {
			c = &cell{}
			cells[k] = c
		}
		c.count++
		c.sumAz += o.AzimuthDeg
		c.sumZen += o.ZenithDeg
		if gen > c.max {
			c.max = gen
		}
	}

	var azs, zens, maxima []float64
	for _, c := range cells {
		if c.count < cfg.MinBinCount {
			continue
		}
		azs = append(azs, c.sumAz/float64(c.count))
		zens = append(zens, c.sumZen/float64(c.count))
		maxima = append(maxima, c.max)
	}

	need := cfg.MinBins
	if t := termCount(cfg.Degree); t > need {
		need = t
	}
	if len(maxima) < need {
		return nil, &model.InsufficientDataError{What: "populated solar-position bins", Need: need, Got: len(maxima)}
	}

	m := &Model{degree: cfg.Degree, bins: len(maxima), rows: rows}
	m.azMid, m.azHalf = normalization(azs)
	m.zenMid, m.zenHalf = normalization(zens)
	if m.azHalf == 0 || m.zenHalf == 0 {
		return nil, &model.InsufficientDataError{What: "solar-position spread across bins", Need: 2, Got: 1}
	}

	coeffs, err := solveLeastSquares(azs, zens, maxima, m)
	if err != nil {
		return nil, &model.FitConvergenceError{Stage: "envelope surface least squares", Err: err}
	}
	m.coeffs = coeffs
	return m, nil
}

func normalization(vals []float64) (mid, half float64) {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return (lo + hi) / 2, (hi - lo) / 2
}

func solveLeastSquares(azs, zens, maxima []float64, m *Model) ([]float64, error) {
	n := len(maxima)
	terms := termCount(m.degree)
	a := mat.NewDense(n, terms, nil)
	for r := 0; r < n; r++ {
		u := (azs[r] - m.azMid) / m.azHalf
		v := (zens[r] - m.zenMid) / m.zenHalf
		k := 0
		for d := 0; d <= m.degree; d++ {
			for i := 0; i <= d; i++ {
				a.Set(r, k, math.Pow(u, float64(d-i))*math.Pow(v, float64(i)))
				k++
			}
		}
	}
	b := mat.NewDense(n, 1, maxima)

	var qr mat.QR
	qr.Factorize(a)
	var sol mat.Dense
	if err := qr.SolveTo(&sol, false, b); err != nil {
		return nil, err
	}
	coeffs := make([]float64, terms)
	for i := range coeffs {
		c := sol.At(i, 0)
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, errNonFinite
		}
		coeffs[i] = c
	}
	return coeffs, nil
}

type nonFiniteError struct{}

func (nonFiniteError) Error() string { return "solver produced non-finite coefficients" }

var errNonFinite = nonFiniteError{}
