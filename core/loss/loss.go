// Package loss derives the per-hour loss ratio q = 1 - generation/Y from an
// observation table and its evaluated envelope, and summarizes its
// distribution. q is bounded to [0,1]: 0 means the potential was fully
// realized, 1 means zero output.
package loss

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/sunledger/sunledger/core/model"
)

// Config defines loss-ratio parameters.
type Config struct {
	// EpsilonKWh is the envelope floor below which q is undefined. Near
	// sunrise and sunset Y approaches zero and the ratio blows up; those
	// rows carry no loss information.
	EpsilonKWh float64 `json:"epsilon_kwh"`
	// MinInterior is the minimum number of interior (0 < q < 1) values
	// required for the beta-family distribution fit.
	MinInterior int `json:"min_interior"`
}

// SetDefaults applies the standard thresholds.
func (c *Config) SetDefaults() {
	if c.EpsilonKWh == 0 {
		c.EpsilonKWh = 0.01
	}
	if c.MinInterior == 0 {
		c.MinInterior = 30
	}
}

// Validate checks the parameters.
func (c Config) Validate() error {
	if c.EpsilonKWh < 0 {
		return fmt.Errorf("epsilon_kwh must be non-negative, got %v", c.EpsilonKWh)
	}
	if c.MinInterior < 2 {
		return fmt.Errorf("min_interior must be at least 2, got %d", c.MinInterior)
	}
	return nil
}

// Summary describes the distribution of defined q values. The boundary
// shares are reported separately: exact 0s and 1s are point masses that a
// continuous distribution cannot absorb.
type Summary struct {
	Count      int
	Mean       float64
	Median     float64
	Std        float64
	P25        float64
	P75        float64
	FracAtZero float64
	FracAtOne  float64
}

// Result carries the per-row loss ratios aligned with the input table. Rows
// where q is undefined (Y <= epsilon, or generation missing under the drop
// policy) hold NaN.
type Result struct {
	Q       []float64
	Summary Summary
}

// Compute derives q for every row with a defined generation value and an
// envelope above the epsilon floor, clamped to [0,1]. It returns NoDataError
// when no row qualifies.
func Compute(obs []model.Observation, ys []float64, policy model.MissingPolicy, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if len(obs) != len(ys) {
		return Result{}, &model.InputDataError{
			Reason: fmt.Sprintf("observation/envelope length mismatch: %d vs %d", len(obs), len(ys)),
		}
	}
	qs := make([]float64, len(obs))
	var defined []float64
	for i, o := range obs {
		gen, ok := o.Generation(policy)
		if !ok || ys[i] <= cfg.EpsilonKWh {
			qs[i] = math.NaN()
			continue
		}
		q := 1 - gen/ys[i]
		if q < 0 {
			q = 0
		}
		if q > 1 {
			q = 1
		}
		qs[i] = q
		defined = append(defined, q)
	}
	if len(defined) == 0 {
		return Result{}, &model.NoDataError{What: "rows with defined loss ratio"}
	}
	return Result{Q: qs, Summary: Summarize(defined)}, nil
}

// Summarize computes distribution statistics over a set of q values.
func Summarize(qs []float64) Summary {
	sorted := append([]float64(nil), qs...)
	sort.Float64s(sorted)
	n := len(sorted)
	zeros, ones := 0, 0
	for _, q := range sorted {
		if q == 0 {
			zeros++
		}
		if q == 1 {
			ones++
		}
	}
	s := Summary{
		Count:      n,
		Mean:       stat.Mean(sorted, nil),
		Median:     stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P25:        stat.Quantile(0.25, stat.Empirical, sorted, nil),
		P75:        stat.Quantile(0.75, stat.Empirical, sorted, nil),
		FracAtZero: float64(zeros) / float64(n),
		FracAtOne:  float64(ones) / float64(n),
	}
	if n > 1 {
		s.Std = stat.StdDev(sorted, nil)
	}
	return s
}
