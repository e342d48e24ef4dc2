package model

import (
	"fmt"
	"sort"
	"time"
)

// Observation is one hourly meter reading enriched with the derived solar
// geometry. Timestamps are UTC; keying the series by UTC makes the
// daylight-saving fall-back duplicate hour structurally impossible.
type Observation struct {
	Timestamp time.Time
	// GenerationKWh is the solar output for the hour. Nil means the meter
	// reported no value for the hour (offline inverter or API gap).
	GenerationKWh *float64
	// ConsumptionKWh is carried through from the utility API but not used by
	// the modeling core.
	ConsumptionKWh *float64
	// AzimuthDeg and ZenithDeg describe the sun position at the middle of the
	// hour. Populated by the solar position calculator.
	AzimuthDeg float64
	ZenithDeg  float64
}

// Daytime reports whether the sun is above the horizon for this observation.
func (o Observation) Daytime() bool { return o.ZenithDeg <= 90 }

// Generation returns the generation value under the given missing-value
// policy. ok is false when the row must be excluded.
func (o Observation) Generation(p MissingPolicy) (float64, bool) {
	if o.GenerationKWh != nil {
		return *o.GenerationKWh, true
	}
	if p == MissingAsZero {
		return 0, true
	}
	return 0, false
}

// MissingPolicy selects how rows with missing generation are treated. The
// source data admits two readings of a missing daytime value: the panel
// produced nothing (MissingAsZero) or the metering was offline and the hour
// is unknowable (MissingDrop). One policy is chosen in configuration and
// applied uniformly.
type MissingPolicy string

const (
	MissingAsZero MissingPolicy = "zero"
	MissingDrop   MissingPolicy = "drop"
)

// Validate checks that the policy is one of the supported values.
func (p MissingPolicy) Validate() error {
	switch p {
	case MissingAsZero, MissingDrop:
		return nil
	}
	return fmt.Errorf("unknown missing_policy %q", string(p))
}

// SolarYear labels the accounting year running November 1 through October 31.
// An observation in November or December belongs to the following calendar
// year's label, so the year named Y ends on October 31 of Y.
func SolarYear(t time.Time) int {
	t = t.UTC()
	if t.Month() >= time.November {
		return t.Year() + 1
	}
	return t.Year()
}

// ISOWeekKey identifies a calendar week per ISO 8601.
type ISOWeekKey struct {
	Year int
	Week int
}

// ISOWeek returns the ISO week key for an observation timestamp.
func ISOWeek(t time.Time) ISOWeekKey {
	y, w := t.UTC().ISOWeek()
	return ISOWeekKey{Year: y, Week: w}
}

// SortObservations orders a table by timestamp ascending.
func SortObservations(obs []Observation) {
	sort.Slice(obs, func(i, j int) bool { return obs[i].Timestamp.Before(obs[j].Timestamp) })
}

// ValidateTable checks structural invariants of an observation table: rows
// must carry a non-zero timestamp and generation may not be negative.
// Isolated bad rows are dropped and counted; when more than maxBadFraction of
// the table is malformed the whole input is rejected with InputDataError.
func ValidateTable(obs []Observation, maxBadFraction float64) ([]Observation, int, error) {
	if len(obs) == 0 {
		return nil, 0, &NoDataError{What: "observation table"}
	}
	clean := make([]Observation, 0, len(obs))
	bad := 0
	for _, o := range obs {
		if o.Timestamp.IsZero() || (o.GenerationKWh != nil && *o.GenerationKWh < 0) {
			bad++
			continue
		}
		clean = append(clean, o)
	}
	if frac := float64(bad) / float64(len(obs)); frac > maxBadFraction {
		return nil, bad, &InputDataError{
			Reason: fmt.Sprintf("%d of %d rows malformed (%.1f%%)", bad, len(obs), frac*100),
		}
	}
	SortObservations(clean)
	return clean, bad, nil
}
