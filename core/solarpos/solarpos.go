// Package solarpos computes apparent sun positions from timestamps and site
// coordinates using the NOAA solar ephemeris (Julian-century polynomial
// series). Results are accurate to well under a degree, which is far inside
// the tolerance needed for envelope binning.
package solarpos

import (
	"fmt"
	"math"
	"time"

	"github.com/sunledger/sunledger/core/model"
)

// Position is the sun's location in the sky in degrees. Zenith is measured
// from the vertical (>90 means below the horizon), azimuth clockwise from
// true north.
type Position struct {
	AzimuthDeg float64
	ZenithDeg  float64
}

// Ephemeris series are fitted around J2000; outside this span the polynomial
// drift makes the result meaningless.
const (
	minYear = 1800
	maxYear = 2200
)

// At computes the sun position for a single UTC instant.
func At(t time.Time, latDeg, lonDeg float64) (Position, error) {
	if t.IsZero() {
		return Position{}, &model.InputDataError{Reason: "zero timestamp"}
	}
	if y := t.UTC().Year(); y < minYear || y > maxYear {
		return Position{}, &model.InputDataError{Reason: fmt.Sprintf("timestamp year %d outside ephemeris range", y)}
	}
	if math.IsNaN(latDeg) || math.IsNaN(lonDeg) || math.Abs(latDeg) > 90 || math.Abs(lonDeg) > 180 {
		return Position{}, &model.InputDataError{Reason: fmt.Sprintf("invalid site coordinates (%v, %v)", latDeg, lonDeg)}
	}
	return compute(t.UTC(), latDeg, lonDeg), nil
}

// Positions computes sun positions for a sequence of UTC instants with fixed
// site coordinates. Any invalid input aborts the whole batch; a silent NaN in
// the middle of a series would poison the envelope fit downstream.
func Positions(times []time.Time, latDeg, lonDeg float64) ([]Position, error) {
	out := make([]Position, len(times))
	for i, t := range times {
		p, err := At(t, latDeg, lonDeg)
		if err != nil {
			return nil, fmt.Errorf("position at index %d: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}

// Annotate fills the azimuth and zenith fields of an observation table in
// place. Hourly readings are stamped with the start of the hour, so the
// position is evaluated at the middle of the interval.
func Annotate(obs []model.Observation, latDeg, lonDeg float64) error {
	for i := range obs {
		p, err := At(obs[i].Timestamp.Add(30*time.Minute), latDeg, lonDeg)
		if err != nil {
			return fmt.Errorf("annotate row %d: %w", i, err)
		}
		obs[i].AzimuthDeg = p.AzimuthDeg
		obs[i].ZenithDeg = p.ZenithDeg
	}
	return nil
}

func compute(t time.Time, latDeg, lonDeg float64) Position {
	jd := julianDay(t)
	jc := (jd - 2451545.0) / 36525.0

	meanLong := math.Mod(280.46646+jc*(36000.76983+jc*0.0003032), 360)
	meanAnom := 357.52911 + jc*(35999.05029-0.0001537*jc)
	ecc := 0.016708634 - jc*(0.000042037+0.0000001267*jc)

	ctr := math.Sin(rad(meanAnom))*(1.914602-jc*(0.004817+0.000014*jc)) +
		math.Sin(rad(2*meanAnom))*(0.019993-0.000101*jc) +
		math.Sin(rad(3*meanAnom))*0.000289
	trueLong := meanLong + ctr
	omega := 125.04 - 1934.136*jc
	appLong := trueLong - 0.00569 - 0.00478*math.Sin(rad(omega))

	meanObliq := 23 + (26+(21.448-jc*(46.815+jc*(0.00059-jc*0.001813)))/60)/60
	obliq := meanObliq + 0.00256*math.Cos(rad(omega))

	decl := deg(math.Asin(math.Sin(rad(obliq)) * math.Sin(rad(appLong))))

	y := math.Tan(rad(obliq / 2))
	y *= y
	eqTimeMin := 4 * deg(y*math.Sin(2*rad(meanLong))-
		2*ecc*math.Sin(rad(meanAnom))+
		4*ecc*y*math.Sin(rad(meanAnom))*math.Cos(2*rad(meanLong))-
		0.5*y*y*math.Sin(4*rad(meanLong))-
		1.25*ecc*ecc*math.Sin(2*rad(meanAnom)))

	minutes := float64(t.Hour())*60 + float64(t.Minute()) + float64(t.Second())/60
	trueSolar := math.Mod(minutes+eqTimeMin+4*lonDeg, 1440)
	if trueSolar < 0 {
		trueSolar += 1440
	}
	hourAngle := trueSolar/4 - 180
	if hourAngle < -180 {
		hourAngle += 360
	}

	cosZen := math.Sin(rad(latDeg))*math.Sin(rad(decl)) +
		math.Cos(rad(latDeg))*math.Cos(rad(decl))*math.Cos(rad(hourAngle))
	cosZen = clamp(cosZen, -1, 1)
	zen := deg(math.Acos(cosZen))

	// Azimuth is undefined when the sun is exactly overhead; report north.
	az := 0.0
	if denom := math.Cos(rad(latDeg)) * math.Sin(rad(zen)); math.Abs(denom) > 1e-9 {
		arg := clamp((math.Sin(rad(latDeg))*cosZen-math.Sin(rad(decl)))/denom, -1, 1)
		az = deg(math.Acos(arg))
		if hourAngle > 0 {
			az = math.Mod(az+180, 360)
		} else {
			az = math.Mod(540-az, 360)
		}
	}
	return Position{AzimuthDeg: az, ZenithDeg: zen}
}

func julianDay(t time.Time) float64 {
	return float64(t.Unix())/86400.0 + 2440587.5
}

func rad(d float64) float64 { return d * math.Pi / 180 }
func deg(r float64) float64 { return r * 180 / math.Pi }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
