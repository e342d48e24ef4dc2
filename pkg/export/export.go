// Package export writes aggregate tables and reports in CSV and JSON form.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/sunledger/sunledger/core/aggregate"
)

// WriteAnnualJSON writes the annual summary table to w in JSON format.
func WriteAnnualJSON(w io.Writer, rows []aggregate.AnnualSummary) error {
	enc := json.NewEncoder(w)
	return enc.Encode(rows)
}

// WriteAnnualCSV writes the annual summary table to w in CSV format.
func WriteAnnualCSV(w io.Writer, rows []aggregate.AnnualSummary) error {
	cw := csv.NewWriter(w)
	header := []string{"solar_year", "hours", "sun_hours", "potential_kwh", "generation_kwh", "capacity_factor", "complete"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.Year),
			strconv.Itoa(r.Hours),
			strconv.Itoa(r.SunHours),
			formatFloat(r.PotentialKWh),
			formatFloat(r.GenerationKWh),
			formatFloat(r.CapacityFactor),
			strconv.FormatBool(r.Complete),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteWeeklyJSON writes the weekly summary table to w in JSON format.
func WriteWeeklyJSON(w io.Writer, rows []aggregate.WeeklySummary) error {
	enc := json.NewEncoder(w)
	return enc.Encode(rows)
}

// WriteWeeklyCSV writes the weekly summary table to w in CSV format.
func WriteWeeklyCSV(w io.Writer, rows []aggregate.WeeklySummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"year", "iso_week", "hours", "potential_kwh", "generation_kwh"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.Year),
			strconv.Itoa(r.Week),
			strconv.Itoa(r.Hours),
			formatFloat(r.PotentialKWh),
			formatFloat(r.GenerationKWh),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReportJSON writes a weekly performance report to w in JSON format.
func WriteReportJSON(w io.Writer, rep *aggregate.WeeklyReport) error {
	enc := json.NewEncoder(w)
	return enc.Encode(rep)
}

// WriteReportCSV writes the per-year rows of a weekly report to w in CSV
// format.
func WriteReportCSV(w io.Writer, rep *aggregate.WeeklyReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"iso_week", "year", "potential_kwh", "generation_kwh", "reference_capacity_kwh", "capacity_factor"}); err != nil {
		return err
	}
	for _, y := range rep.Years {
		rec := []string{
			strconv.Itoa(rep.Week),
			strconv.Itoa(y.Year),
			formatFloat(y.PotentialKWh),
			formatFloat(y.GenerationKWh),
			formatFloat(rep.ReferenceCapacityKWh),
			formatFloat(y.CapacityFactor),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
