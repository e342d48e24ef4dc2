// Package aggregate rolls per-hour potential and generation into annual and
// weekly capacity summaries, builds the fixed-denominator weekly performance
// report, and estimates the cross-year degradation trend.
package aggregate

import "fmt"

// Config defines the completeness thresholds for period aggregation.
type Config struct {
	// MinAnnualHours marks a solar year complete. Partial first and last
	// years would bias the degradation trend, so incomplete years stay in
	// the summary table but out of the trend.
	MinAnnualHours int `json:"min_annual_hours"`
	// MinWeekHours drops incomplete weeks entirely. A week missing hours
	// understates true output and would skew the weekly report.
	MinWeekHours int `json:"min_week_hours"`
	// MinTrendYears is the number of complete years required before a
	// degradation slope is worth reporting.
	MinTrendYears int `json:"min_trend_years"`
}

// SetDefaults applies the standard thresholds.
func (c *Config) SetDefaults() {
	if c.MinAnnualHours == 0 {
		c.MinAnnualHours = 8000
	}
	if c.MinWeekHours == 0 {
		c.MinWeekHours = 167
	}
	if c.MinTrendYears == 0 {
		c.MinTrendYears = 3
	}
}

// Validate checks the thresholds.
func (c Config) Validate() error {
	if c.MinAnnualHours < 1 || c.MinAnnualHours > 8784 {
		return fmt.Errorf("min_annual_hours out of range: %d", c.MinAnnualHours)
	}
	if c.MinWeekHours < 1 || c.MinWeekHours > 168 {
		return fmt.Errorf("min_week_hours out of range: %d", c.MinWeekHours)
	}
	if c.MinTrendYears < 2 {
		return fmt.Errorf("min_trend_years must be at least 2, got %d", c.MinTrendYears)
	}
	return nil
}
