package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sunledger/sunledger/core/aggregate"
)

func TestWriteAnnualCSV(t *testing.T) {
	rows := []aggregate.AnnualSummary{
		{Year: 2020, Hours: 8750, SunHours: 4400, PotentialKWh: 9000, GenerationKWh: 6300, CapacityFactor: 0.7, Complete: true},
		{Year: 2021, Hours: 7000, SunHours: 3500, PotentialKWh: 7200, GenerationKWh: 5000, CapacityFactor: 0.6944, Complete: false},
	}
	var buf bytes.Buffer
	if err := WriteAnnualCSV(&buf, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(recs))
	}
	if recs[0][0] != "solar_year" {
		t.Errorf("header: got %v", recs[0])
	}
	if recs[1][0] != "2020" || recs[1][6] != "true" {
		t.Errorf("first row: got %v", recs[1])
	}
	if recs[2][6] != "false" {
		t.Errorf("incomplete year flag: got %v", recs[2])
	}
}

func TestWriteWeeklyCSV(t *testing.T) {
	rows := []aggregate.WeeklySummary{
		{Year: 2020, Week: 10, Hours: 168, PotentialKWh: 3000, GenerationKWh: 1500},
	}
	var buf bytes.Buffer
	if err := WriteWeeklyCSV(&buf, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "2020,10,168,3000,1500") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestWriteReportJSONRoundTrip(t *testing.T) {
	rep := &aggregate.WeeklyReport{
		Week:                 10,
		ReferenceCapacityKWh: 3200,
		MedianCapacityFactor: 0.46875,
		Years: []aggregate.YearCapacity{
			{Year: 2020, PotentialKWh: 3000, GenerationKWh: 1500, CapacityFactor: 0.46875},
		},
	}
	var buf bytes.Buffer
	if err := WriteReportJSON(&buf, rep); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got aggregate.WeeklyReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ReferenceCapacityKWh != 3200 || len(got.Years) != 1 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestWriteReportCSV(t *testing.T) {
	rep := &aggregate.WeeklyReport{
		Week:                 10,
		ReferenceCapacityKWh: 3200,
		Years: []aggregate.YearCapacity{
			{Year: 2020, PotentialKWh: 3000, GenerationKWh: 1500, CapacityFactor: 0.46875},
			{Year: 2021, PotentialKWh: 3200, GenerationKWh: 1800, CapacityFactor: 0.5625},
		},
	}
	var buf bytes.Buffer
	if err := WriteReportCSV(&buf, rep); err != nil {
		t.Fatalf("write: %v", err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(recs))
	}
	if recs[1][4] != "3200" || recs[2][4] != "3200" {
		t.Errorf("reference capacity must be identical across years: %v / %v", recs[1], recs[2])
	}
}
