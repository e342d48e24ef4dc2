package envelope

import "math"

// Model is a fitted potential-generation surface Y(azimuth, zenith). It is
// immutable once fitted; a new analysis run produces a new Model rather than
// mutating an existing one.
type Model struct {
	coeffs []float64
	degree int

	// Basis normalization: fitted positions are mapped to roughly [-1, 1] to
	// keep the Vandermonde system well conditioned.
	azMid, azHalf   float64
	zenMid, zenHalf float64

	bins int
	rows int
}

// EvalRaw returns the smooth surface value at the given solar position,
// clamped to be non-negative and identically zero below the horizon. The
// per-observation ceiling constraint is applied separately by Evaluate.
func (m *Model) EvalRaw(azDeg, zenDeg float64) float64 {
	if zenDeg > 90 {
		return 0
	}
	u := (azDeg - m.azMid) / m.azHalf
	v := (zenDeg - m.zenMid) / m.zenHalf
	y := 0.0
	k := 0
	for d := 0; d <= m.degree; d++ {
		for i := 0; i <= d; i++ {
			y += m.coeffs[k] * math.Pow(u, float64(d-i)) * math.Pow(v, float64(i))
			k++
		}
	}
	if math.IsNaN(y) || y < 0 {
		return 0
	}
	return y
}

// Bins reports the number of populated grid cells used in the fit.
func (m *Model) Bins() int { return m.bins }

// Rows reports the number of daytime observations that fed the fit.
func (m *Model) Rows() int { return m.rows }

// Degree reports the total degree of the fitted polynomial surface.
func (m *Model) Degree() int { return m.degree }

func termCount(degree int) int { return (degree + 1) * (degree + 2) / 2 }
