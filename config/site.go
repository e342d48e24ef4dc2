package config

import "fmt"

// SiteConfig describes the installation whose meter data is analyzed. The
// coordinates feed the solar position calculation, so they must match the
// array's actual location.
type SiteConfig struct {
	LatitudeDeg  float64 `json:"latitude_deg"`
	LongitudeDeg float64 `json:"longitude_deg"`
	// MaxBadFraction is the share of malformed rows tolerated before an
	// ingested table is rejected outright.
	MaxBadFraction float64 `json:"max_bad_fraction"`
}

// SetDefaults applies sane defaults.
func (c *SiteConfig) SetDefaults() {
	if c.MaxBadFraction == 0 {
		c.MaxBadFraction = 0.05
	}
}

// Validate checks coordinate ranges.
func (c SiteConfig) Validate() error {
	if c.LatitudeDeg < -90 || c.LatitudeDeg > 90 {
		return fmt.Errorf("latitude_deg out of range: %v", c.LatitudeDeg)
	}
	if c.LongitudeDeg < -180 || c.LongitudeDeg > 180 {
		return fmt.Errorf("longitude_deg out of range: %v", c.LongitudeDeg)
	}
	if c.LatitudeDeg == 0 && c.LongitudeDeg == 0 {
		return fmt.Errorf("site coordinates are required")
	}
	if c.MaxBadFraction < 0 || c.MaxBadFraction > 1 {
		return fmt.Errorf("max_bad_fraction out of range: %v", c.MaxBadFraction)
	}
	return nil
}

// StoreConfig locates the local reading archive.
type StoreConfig struct {
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *StoreConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "readings.db"
	}
}

// Validate checks mandatory fields.
func (c StoreConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("store path is required")
	}
	return nil
}
