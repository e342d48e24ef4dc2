package aggregate

import (
	"fmt"
	"sort"

	"github.com/sunledger/sunledger/core/model"
)

// AnnualSummary aggregates one solar year (November 1 through October 31,
// labeled by the year it ends in).
type AnnualSummary struct {
	Year           int
	Hours          int
	SunHours       int
	PotentialKWh   float64
	GenerationKWh  float64
	CapacityFactor float64
	Complete       bool
}

// Annual groups an observation table and its evaluated envelope by solar year.
// Every year with data appears in the result; Complete marks the ones that
// meet the hour threshold and qualify for trend analysis.
func Annual(obs []model.Observation, ys []float64, policy model.MissingPolicy, cfg Config) ([]AnnualSummary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(obs) != len(ys) {
		return nil, &model.InputDataError{
			Reason: fmt.Sprintf("observation/envelope length mismatch: %d vs %d", len(obs), len(ys)),
		}
	}
	if len(obs) == 0 {
		return nil, &model.NoDataError{What: "observations for annual summary"}
	}

	byYear := map[int]*AnnualSummary{}
	for i, o := range obs {
		year := model.SolarYear(o.Timestamp)
		s := byYear[year]
		if s == nil {
			s = &AnnualSummary{Year: year}
			byYear[year] = s
		}
		s.Hours++
		if ys[i] > 0 {
			s.SunHours++
		}
		s.PotentialKWh += ys[i]
		if gen, ok := o.Generation(policy); ok {
			s.GenerationKWh += gen
		}
	}

	out := make([]AnnualSummary, 0, len(byYear))
	for _, s := range byYear {
		if s.PotentialKWh > 0 {
			s.CapacityFactor = s.GenerationKWh / s.PotentialKWh
		}
		s.Complete = s.Hours >= cfg.MinAnnualHours
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}
