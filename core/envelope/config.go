package envelope

import (
	"fmt"

	"github.com/sunledger/sunledger/core/model"
)

// Config defines the binned-maxima envelope fit parameters.
type Config struct {
	// AzBinDeg and ZenBinDeg set the solar-position grid cell size.
	AzBinDeg  float64 `json:"az_bin_deg"`
	ZenBinDeg float64 `json:"zen_bin_deg"`
	// MinBinCount rejects cells with fewer observations, so a single outlier
	// cannot own a cell maximum.
	MinBinCount int `json:"min_bin_count"`
	// MinBins is the floor on populated cells before a fit is attempted.
	MinBins int `json:"min_bins"`
	// Degree is the total degree of the polynomial surface.
	Degree int `json:"degree"`
	// RatedKWh drops readings above the site's plausible hourly output before
	// bin-max selection. Zero disables the pre-filter.
	RatedKWh float64 `json:"rated_kwh"`
	// MissingPolicy selects the treatment of rows with missing generation.
	MissingPolicy model.MissingPolicy `json:"missing_policy"`
}

// SetDefaults applies the standard grid and surface parameters.
func (c *Config) SetDefaults() {
	if c.AzBinDeg == 0 {
		c.AzBinDeg = 5
	}
	if c.ZenBinDeg == 0 {
		c.ZenBinDeg = 5
	}
	if c.MinBinCount == 0 {
		c.MinBinCount = 5
	}
	if c.MinBins == 0 {
		c.MinBins = 20
	}
	if c.Degree == 0 {
		c.Degree = 3
	}
	if c.MissingPolicy == "" {
		c.MissingPolicy = model.MissingDrop
	}
}

// Validate checks the fit parameters.
func (c Config) Validate() error {
	if c.AzBinDeg <= 0 || c.AzBinDeg > 90 {
		return fmt.Errorf("az_bin_deg must be in (0, 90], got %v", c.AzBinDeg)
	}
	if c.ZenBinDeg <= 0 || c.ZenBinDeg > 90 {
		return fmt.Errorf("zen_bin_deg must be in (0, 90], got %v", c.ZenBinDeg)
	}
	if c.MinBinCount < 1 {
		return fmt.Errorf("min_bin_count must be positive, got %d", c.MinBinCount)
	}
	if c.Degree < 1 || c.Degree > 6 {
		return fmt.Errorf("degree must be in [1, 6], got %d", c.Degree)
	}
	if c.RatedKWh < 0 {
		return fmt.Errorf("rated_kwh must be non-negative, got %v", c.RatedKWh)
	}
	return c.MissingPolicy.Validate()
}
