package config

import (
	"strings"
	"time"

	"github.com/quantbench/dca-backtest/internal/errors"
)

// Validate rejects any configuration that cannot produce a well-defined
// run. It runs before any data is fetched or simulated.
func (c *RunConfig) Validate() error {
	if len(c.Tickers) == 0 {
		return errors.NewInvalidParameter("config", "validate", "at least one ticker is required")
	}
	for _, t := range c.Tickers {
		if strings.TrimSpace(t) == "" {
			return errors.NewInvalidParameter("config", "validate", "ticker must not be blank")
		}
	}

	if c.InitialAmount < 0 {
		return errors.NewInvalidParameter("config", "validate",
			"initial_amount must be non-negative, got %.2f", c.InitialAmount)
	}
	if c.PeriodicAmount < 0 {
		return errors.NewInvalidParameter("config", "validate",
			"periodic_amount must be non-negative, got %.2f", c.PeriodicAmount)
	}
	if c.InitialAmount == 0 && c.PeriodicAmount == 0 {
		return errors.NewInvalidParameter("config", "validate", "initial_amount and periodic_amount cannot both be zero")
	}

	switch strings.ToLower(c.Frequency) {
	case "daily", "weekly", "monthly":
	default:
		return errors.NewInvalidParameter("config", "validate",
			"frequency must be daily, weekly or monthly, got %q", c.Frequency)
	}

	start, err := time.Parse(DateLayout, c.StartDate)
	if err != nil {
		return errors.NewInvalidParameter("config", "validate",
			"start_date must be YYYY-MM-DD, got %q", c.StartDate)
	}
	end, err := time.Parse(DateLayout, c.EndDate)
	if err != nil {
		return errors.NewInvalidParameter("config", "validate",
			"end_date must be YYYY-MM-DD, got %q", c.EndDate)
	}
	if end.Before(start) {
		return errors.NewInvalidParameter("config", "validate", "end_date must not precede start_date")
	}

	if c.RandomTests < 0 {
		return errors.NewInvalidParameter("config", "validate",
			"random_tests must be non-negative, got %d", c.RandomTests)
	}
	if c.RandomTests > 0 && c.WindowDays <= 0 {
		return errors.NewInvalidParameter("config", "validate",
			"window_days must be positive for random tests, got %d", c.WindowDays)
	}

	switch c.DataSource {
	case "csv", "yahoo":
	default:
		return errors.NewInvalidParameter("config", "validate",
			"data_source must be csv or yahoo, got %q", c.DataSource)
	}
	if c.DataSource == "csv" && c.DataDir == "" {
		return errors.NewInvalidParameter("config", "validate", "data_dir is required for the csv data source")
	}

	return nil
}
