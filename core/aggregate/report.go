package aggregate

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/sunledger/sunledger/core/model"
)

// YearCapacity is one year's performance for the report's target week,
// measured against the report-wide fixed reference capacity.
type YearCapacity struct {
	Year           int
	PotentialKWh   float64
	GenerationKWh  float64
	CapacityFactor float64
}

// WeeklyReport compares the same ISO week across all years. The reference
// capacity is fixed at the ceiling of the best year's total potential so the
// denominator is identical for every year: a low-output year is reported as
// a low capacity factor instead of quietly shrinking its own yardstick.
type WeeklyReport struct {
	Week                 int
	ReferenceCapacityKWh float64
	Years                []YearCapacity
	MedianCapacityFactor float64
}

// Report builds the fixed-denominator report for a target ISO week from a
// weekly summary table. It returns NoDataError when no year carries the week.
func Report(weekly []WeeklySummary, week int) (*WeeklyReport, error) {
	if week < 1 || week > 53 {
		return nil, &model.InputDataError{Reason: fmt.Sprintf("iso week out of range: %d", week)}
	}

	var rows []WeeklySummary
	for _, w := range weekly {
		if w.Week == week {
			rows = append(rows, w)
		}
	}
	if len(rows) == 0 {
		return nil, &model.NoDataError{What: fmt.Sprintf("iso week %d", week)}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })

	maxY := 0.0
	for _, w := range rows {
		if w.PotentialKWh > maxY {
			maxY = w.PotentialKWh
		}
	}
	ref := math.Ceil(maxY)
	if ref <= 0 {
		return nil, &model.NoDataError{What: fmt.Sprintf("potential generation for iso week %d", week)}
	}

	rep := &WeeklyReport{Week: week, ReferenceCapacityKWh: ref}
	cfs := make([]float64, 0, len(rows))
	for _, w := range rows {
		cf := w.GenerationKWh / ref
		rep.Years = append(rep.Years, YearCapacity{
			Year:           w.Year,
			PotentialKWh:   w.PotentialKWh,
			GenerationKWh:  w.GenerationKWh,
			CapacityFactor: cf,
		})
		cfs = append(cfs, cf)
	}
	sort.Float64s(cfs)
	rep.MedianCapacityFactor = stat.Quantile(0.5, stat.Empirical, cfs, nil)
	return rep, nil
}

// YearFactor returns the capacity factor for a specific year in the report.
func (r *WeeklyReport) YearFactor(year int) (float64, error) {
	for _, y := range r.Years {
		if y.Year == year {
			return y.CapacityFactor, nil
		}
	}
	return 0, &model.NoDataError{What: fmt.Sprintf("year %d in iso week %d report", year, r.Week)}
}
