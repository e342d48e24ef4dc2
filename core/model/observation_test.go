package model

import (
	"errors"
	"testing"
	"time"
)

func fptr(v float64) *float64 { return &v }

func TestSolarYear(t *testing.T) {
	cases := []struct {
		ts   time.Time
		want int
	}{
		{time.Date(2020, 10, 31, 23, 0, 0, 0, time.UTC), 2020},
		{time.Date(2020, 11, 1, 0, 0, 0, 0, time.UTC), 2021},
		{time.Date(2020, 12, 31, 23, 0, 0, 0, time.UTC), 2021},
		{time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), 2021},
		{time.Date(2021, 6, 15, 12, 0, 0, 0, time.UTC), 2021},
	}
	for _, c := range cases {
		if got := SolarYear(c.ts); got != c.want {
			t.Errorf("SolarYear(%s): got %d, want %d", c.ts, got, c.want)
		}
	}
}

func TestSolarYear_NormalizesZone(t *testing.T) {
	// 2020-11-01 03:00 UTC expressed as 2020-10-31 23:00 UTC-4 still lands
	// in solar year 2021.
	loc := time.FixedZone("UTC-4", -4*3600)
	local := time.Date(2020, 10, 31, 23, 0, 0, 0, loc)
	if got := SolarYear(local); got != 2021 {
		t.Errorf("got %d, want 2021", got)
	}
}

func TestISOWeek(t *testing.T) {
	// January 1 2021 falls in ISO week 53 of 2020.
	k := ISOWeek(time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC))
	if k.Year != 2020 || k.Week != 53 {
		t.Errorf("got %+v", k)
	}
	k = ISOWeek(time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC))
	if k.Year != 2020 || k.Week != 10 {
		t.Errorf("got %+v", k)
	}
}

func TestObservation_Generation(t *testing.T) {
	with := Observation{GenerationKWh: fptr(2.5)}
	if v, ok := with.Generation(MissingDrop); !ok || v != 2.5 {
		t.Errorf("present value: got %v, %v", v, ok)
	}

	missing := Observation{}
	if _, ok := missing.Generation(MissingDrop); ok {
		t.Error("drop policy should exclude missing values")
	}
	if v, ok := missing.Generation(MissingAsZero); !ok || v != 0 {
		t.Errorf("zero policy: got %v, %v", v, ok)
	}
}

func TestObservation_Daytime(t *testing.T) {
	if !(Observation{ZenithDeg: 89}).Daytime() {
		t.Error("zenith 89 is daytime")
	}
	if (Observation{ZenithDeg: 95}).Daytime() {
		t.Error("zenith 95 is night")
	}
}

func TestMissingPolicy_Validate(t *testing.T) {
	if err := MissingAsZero.Validate(); err != nil {
		t.Errorf("zero: %v", err)
	}
	if err := MissingDrop.Validate(); err != nil {
		t.Errorf("drop: %v", err)
	}
	if err := MissingPolicy("maybe").Validate(); err == nil {
		t.Error("unknown policy should fail")
	}
}

func TestValidateTable(t *testing.T) {
	base := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	obs := []Observation{
		{Timestamp: base.Add(2 * time.Hour), GenerationKWh: fptr(1)},
		{Timestamp: base, GenerationKWh: fptr(2)},
		{GenerationKWh: fptr(3)},                                  // zero timestamp
		{Timestamp: base.Add(time.Hour), GenerationKWh: fptr(-1)}, // negative reading
	}

	clean, bad, err := ValidateTable(obs, 0.5)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if bad != 2 || len(clean) != 2 {
		t.Fatalf("got %d clean, %d bad", len(clean), bad)
	}
	if !clean[0].Timestamp.Before(clean[1].Timestamp) {
		t.Error("result should be sorted ascending")
	}
}

func TestValidateTable_RejectsPervasiveCorruption(t *testing.T) {
	obs := []Observation{
		{Timestamp: time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC), GenerationKWh: fptr(1)},
		{}, {}, {},
	}
	_, _, err := ValidateTable(obs, 0.5)
	var ide *InputDataError
	if !errors.As(err, &ide) {
		t.Fatalf("expected InputDataError, got %v", err)
	}
}

func TestValidateTable_Empty(t *testing.T) {
	_, _, err := ValidateTable(nil, 0.1)
	var nde *NoDataError
	if !errors.As(err, &nde) {
		t.Fatalf("expected NoDataError, got %v", err)
	}
}
