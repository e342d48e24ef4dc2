package solarpos

import (
	"testing"
	"time"

	"github.com/sunledger/sunledger/core/model"
)

func TestAt_EquinoxNoonEquator(t *testing.T) {
	// Around the March 2000 equinox the sun stands nearly overhead at the
	// equator at local solar noon (~12:08 UTC at lon 0).
	ts := time.Date(2000, 3, 20, 12, 8, 0, 0, time.UTC)
	p, err := At(ts, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ZenithDeg > 3 {
		t.Errorf("expected near-zenith sun, got zenith %.2f", p.ZenithDeg)
	}
}

func TestAt_SummerSolsticeNoonVermont(t *testing.T) {
	// Solar noon in Burlington VT on the June solstice: zenith should be near
	// lat - declination = 44.47 - 23.44 ≈ 21 degrees, sun due south.
	ts := time.Date(2019, 6, 21, 16, 53, 0, 0, time.UTC)
	p, err := At(ts, 44.47, -73.21)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ZenithDeg < 19 || p.ZenithDeg > 23 {
		t.Errorf("zenith out of range: %.2f", p.ZenithDeg)
	}
	if p.AzimuthDeg < 170 || p.AzimuthDeg > 190 {
		t.Errorf("azimuth should be near due south, got %.2f", p.AzimuthDeg)
	}
}

func TestAt_NightBelowHorizon(t *testing.T) {
	ts := time.Date(2019, 6, 21, 5, 0, 0, 0, time.UTC) // 1am local in Vermont
	p, err := At(ts, 44.47, -73.21)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ZenithDeg <= 90 {
		t.Errorf("expected sun below horizon, got zenith %.2f", p.ZenithDeg)
	}
}

func TestAt_Deterministic(t *testing.T) {
	ts := time.Date(2021, 10, 5, 14, 0, 0, 0, time.UTC)
	a, err := At(ts, 44.47, -73.21)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := At(ts, 44.47, -73.21)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Errorf("identical input must give identical output: %+v vs %+v", a, b)
	}
}

func TestAt_InvalidInput(t *testing.T) {
	cases := []struct {
		name string
		ts   time.Time
		lat  float64
		lon  float64
	}{
		{"zero timestamp", time.Time{}, 44, -73},
		{"ancient year", time.Date(1500, 1, 1, 0, 0, 0, 0, time.UTC), 44, -73},
		{"latitude out of range", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 95, -73},
		{"longitude out of range", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 44, 200},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := At(c.ts, c.lat, c.lon); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}

func TestPositions_AbortsOnBadRow(t *testing.T) {
	times := []time.Time{
		time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC),
		{},
	}
	if _, err := Positions(times, 44.47, -73.21); err == nil {
		t.Fatalf("expected error for zero timestamp in batch")
	}
}

func TestAnnotate(t *testing.T) {
	obs := []model.Observation{
		{Timestamp: time.Date(2020, 6, 21, 16, 0, 0, 0, time.UTC)},
		{Timestamp: time.Date(2020, 6, 21, 4, 0, 0, 0, time.UTC)},
	}
	if err := Annotate(obs, 44.47, -73.21); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obs[0].ZenithDeg > 90 {
		t.Errorf("midday row should be daytime, zenith %.2f", obs[0].ZenithDeg)
	}
	if obs[1].ZenithDeg <= 90 {
		t.Errorf("pre-dawn row should be nighttime, zenith %.2f", obs[1].ZenithDeg)
	}
}
