package aggregate

import (
	"fmt"
	"sort"

	"github.com/sunledger/sunledger/core/model"
)

// WeeklySummary aggregates one ISO calendar week.
type WeeklySummary struct {
	Year          int
	Week          int
	Hours         int
	PotentialKWh  float64
	GenerationKWh float64
}

// Weekly groups an observation table and its evaluated envelope by ISO week.
// Weeks below the completeness threshold are dropped, not flagged: a partial
// week's totals are meaningless for cross-year comparison.
func Weekly(obs []model.Observation, ys []float64, policy model.MissingPolicy, cfg Config) ([]WeeklySummary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(obs) != len(ys) {
		return nil, &model.InputDataError{
			Reason: fmt.Sprintf("observation/envelope length mismatch: %d vs %d", len(obs), len(ys)),
		}
	}
	if len(obs) == 0 {
		return nil, &model.NoDataError{What: "observations for weekly summary"}
	}

	byWeek := map[model.ISOWeekKey]*WeeklySummary{}
	for i, o := range obs {
		key := model.ISOWeek(o.Timestamp)
		s := byWeek[key]
		if s == nil {
			s = &WeeklySummary{Year: key.Year, Week: key.Week}
			byWeek[key] = s
		}
		s.Hours++
		s.PotentialKWh += ys[i]
		if gen, ok := o.Generation(policy); ok {
			s.GenerationKWh += gen
		}
	}

	out := make([]WeeklySummary, 0, len(byWeek))
	for _, s := range byWeek {
		if s.Hours < cfg.MinWeekHours {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Week < out[j].Week
	})
	return out, nil
}
