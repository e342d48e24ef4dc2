package envelope

import (
	"math"

	"github.com/sunledger/sunledger/core/model"
)

// Tolerance for the generation <= Y post-condition sweep.
const constraintTol = 1e-9

// Evaluate computes the per-row potential generation Y with the hard ceiling
// property applied:
//
//   - daytime rows: Y = max(surface, generation), so the envelope is pulled
//     up to any observation that exceeds the smooth prediction and the fitted
//     data can never exceed its own envelope;
//   - nighttime rows: Y = max(0, generation), defending against spurious
//     nonzero nighttime readings;
//   - any remaining negative or non-finite value is clamped to zero.
//
// The returned slice is aligned with obs. A post-condition sweep verifies
// generation <= Y for every defined row and reports a breach as
// ConstraintViolationError.
func Evaluate(m *Model, obs []model.Observation, policy model.MissingPolicy) ([]float64, error) {
	ys := make([]float64, len(obs))
	for i, o := range obs {
		gen, ok := o.Generation(policy)
		var y float64
		if o.Daytime() {
			y = m.EvalRaw(o.AzimuthDeg, o.ZenithDeg)
			if ok && gen > y {
				y = gen
			}
		} else if ok && gen > 0 {
			y = gen
		}
		if math.IsNaN(y) || y < 0 {
			y = 0
		}
		ys[i] = y
	}
	for i, o := range obs {
		if gen, ok := o.Generation(policy); ok && gen > ys[i]+constraintTol {
			return nil, &model.ConstraintViolationError{Row: i, GenerationKWh: gen, PotentialKWh: ys[i]}
		}
	}
	return ys, nil
}
