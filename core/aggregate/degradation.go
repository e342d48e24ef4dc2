package aggregate

import (
	"gonum.org/v1/gonum/stat"

	"github.com/sunledger/sunledger/core/model"
)

// Trend is a linear fit of annual capacity factor against solar year. The
// normalized slope is a rough health diagnostic, not a causal model: weather
// variability between years easily dwarfs real panel degradation over short
// records.
type Trend struct {
	Years              int
	SlopePerYear       float64
	MeanCapacityFactor float64
	// PercentPerYear is the slope normalized by the mean capacity factor.
	// Negative values indicate declining output.
	PercentPerYear float64
}

// DegradationTrend regresses capacity factor on solar year across complete
// years only. Incomplete years stay out: a partial year's capacity factor
// reflects its coverage, not the panels.
func DegradationTrend(annual []AnnualSummary, cfg Config) (*Trend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var years, cfs []float64
	for _, s := range annual {
		if !s.Complete {
			continue
		}
		years = append(years, float64(s.Year))
		cfs = append(cfs, s.CapacityFactor)
	}
	if len(years) < cfg.MinTrendYears {
		return nil, &model.InsufficientDataError{
			What: "complete solar years", Need: cfg.MinTrendYears, Got: len(years),
		}
	}

	_, slope := stat.LinearRegression(years, cfs, nil, false)
	mean := stat.Mean(cfs, nil)
	t := &Trend{
		Years:              len(years),
		SlopePerYear:       slope,
		MeanCapacityFactor: mean,
	}
	if mean != 0 {
		t.PercentPerYear = slope / mean * 100
	}
	return t, nil
}
