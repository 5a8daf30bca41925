package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	simerrors "github.com/quantbench/dca-backtest/internal/errors"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func validConfig() *RunConfig {
	cfg := NewDefaultRunConfig()
	cfg.Tickers = []string{"SPY"}
	cfg.PeriodicAmount = 100
	cfg.StartDate = "2020-01-01"
	cfg.EndDate = "2024-01-01"
	return cfg
}

// TestLoad_JSON tests loading a JSON config file
func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, "run.json", `{
		"tickers": ["SPY", "QQQ"],
		"periodic_amount": 250,
		"frequency": "weekly",
		"start_date": "2020-01-01",
		"end_date": "2024-01-01",
		"random_tests": 100,
		"window_days": 180,
		"seed": 42,
		"data_source": "yahoo"
	}`)

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, []string{"SPY", "QQQ"}, cfg.Tickers)
	assert.Equal(t, 250.0, cfg.PeriodicAmount)
	assert.Equal(t, "weekly", cfg.Frequency)
	assert.Equal(t, 100, cfg.RandomTests)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "yahoo", cfg.DataSource)
}

// TestLoad_YAML tests loading a YAML config file
func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "run.yaml", `
tickers: [SPY]
initial_amount: 1000
periodic_amount: 100
frequency: monthly
start_date: "2020-01-01"
end_date: "2024-01-01"
`)

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, []string{"SPY"}, cfg.Tickers)
	assert.Equal(t, 1000.0, cfg.InitialAmount)
	assert.Equal(t, "monthly", cfg.Frequency)
}

// TestLoad_MissingFile tests the unreadable-file error
func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

// TestLoad_EnvOverrides tests environment variable overrides
func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DCA_DATA_DIR", "/srv/prices")
	t.Setenv("DCA_WORKERS", "12")

	path := writeConfig(t, "run.json", `{
		"tickers": ["SPY"],
		"periodic_amount": 100,
		"frequency": "monthly",
		"start_date": "2020-01-01",
		"end_date": "2024-01-01"
	}`)

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "/srv/prices", cfg.DataDir)
	assert.Equal(t, 12, cfg.Workers)
}

// TestParse_DefersValidation tests that Parse accepts incomplete configs
func TestParse_DefersValidation(t *testing.T) {
	cfg, err := Parse("")
	assert.NoError(t, err)
	assert.Empty(t, cfg.Tickers)
	assert.Error(t, cfg.Validate())
}

// TestValidate_Rejections tests each validation rule
func TestValidate_Rejections(t *testing.T) {
	mutations := map[string]func(*RunConfig){
		"no tickers":        func(c *RunConfig) { c.Tickers = nil },
		"blank ticker":      func(c *RunConfig) { c.Tickers = []string{" "} },
		"negative initial":  func(c *RunConfig) { c.InitialAmount = -1 },
		"negative periodic": func(c *RunConfig) { c.PeriodicAmount = -1 },
		"both zero":         func(c *RunConfig) { c.InitialAmount = 0; c.PeriodicAmount = 0 },
		"bad frequency":     func(c *RunConfig) { c.Frequency = "hourly" },
		"bad start":         func(c *RunConfig) { c.StartDate = "01/02/2020" },
		"bad end":           func(c *RunConfig) { c.EndDate = "soon" },
		"end before start":  func(c *RunConfig) { c.StartDate = "2024-01-01"; c.EndDate = "2020-01-01" },
		"negative tests":    func(c *RunConfig) { c.RandomTests = -1 },
		"zero window":       func(c *RunConfig) { c.RandomTests = 10; c.WindowDays = 0 },
		"bad source":        func(c *RunConfig) { c.DataSource = "ftp" },
		"csv without dir":   func(c *RunConfig) { c.DataSource = "csv"; c.DataDir = "" },
	}

	for name, mutate := range mutations {
		cfg := validConfig()
		mutate(cfg)
		err := cfg.Validate()
		assert.True(t, errors.Is(err, simerrors.ErrInvalidParameter), name)
	}
}

// TestValidate_Accepts tests a fully-specified valid config
func TestValidate_Accepts(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, "2020-01-01", cfg.Start().Format("2006-01-02"))
	assert.Equal(t, "2024-01-01", cfg.End().Format("2006-01-02"))
}

// TestValidate_SingleDayRange tests that equal start and end dates pass
func TestValidate_SingleDayRange(t *testing.T) {
	cfg := validConfig()
	cfg.StartDate = "2024-01-02"
	cfg.EndDate = "2024-01-02"
	assert.NoError(t, cfg.Validate())
}

// TestSave_RoundTrip tests persisting and reloading a config
func TestSave_RoundTrip(t *testing.T) {
	cfg := validConfig()
	cfg.Seed = 7

	path := filepath.Join(t.TempDir(), "out", "run.json")
	assert.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, cfg.Tickers, loaded.Tickers)
	assert.Equal(t, int64(7), loaded.Seed)
}
