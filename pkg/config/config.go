package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RunConfig describes a full backtest run: what to buy, when, from which
// data source, and how results should be produced.
type RunConfig struct {
	Tickers        []string `json:"tickers" yaml:"tickers"`
	InitialAmount  float64  `json:"initial_amount" yaml:"initial_amount"`
	PeriodicAmount float64  `json:"periodic_amount" yaml:"periodic_amount"`
	Frequency      string   `json:"frequency" yaml:"frequency"`
	StartDate      string   `json:"start_date" yaml:"start_date"`
	EndDate        string   `json:"end_date" yaml:"end_date"`

	// Randomized-window mode. RandomTests == 0 means a single fixed run.
	RandomTests int   `json:"random_tests" yaml:"random_tests"`
	WindowDays  int   `json:"window_days" yaml:"window_days"`
	Seed        int64 `json:"seed" yaml:"seed"`

	Workers int `json:"workers" yaml:"workers"`

	DataSource string `json:"data_source" yaml:"data_source"` // "csv" or "yahoo"
	DataDir    string `json:"data_dir" yaml:"data_dir"`
	CachePath  string `json:"cache_path" yaml:"cache_path"`

	OutputDir   string `json:"output_dir" yaml:"output_dir"`
	ConsoleOnly bool   `json:"console_only" yaml:"console_only"`
	MetricsAddr string `json:"metrics_addr" yaml:"metrics_addr"`
}

// DateLayout is the wire format for StartDate and EndDate.
const DateLayout = "2006-01-02"

// NewDefaultRunConfig returns a config with sensible defaults applied.
func NewDefaultRunConfig() *RunConfig {
	return &RunConfig{
		Frequency:  "monthly",
		WindowDays: 365,
		Seed:       time.Now().UnixNano(),
		DataSource: "csv",
		DataDir:    "data",
		OutputDir:  "results",
	}
}

// Load reads a config file (JSON or YAML by extension), applies
// environment overrides, and validates the result.
func Load(path string) (*RunConfig, error) {
	cfg, err := Parse(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads a config file and applies environment overrides without
// validating, so callers can overlay further settings first.
func Parse(path string) (*RunConfig, error) {
	cfg := NewDefaultRunConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read config file: %w", err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("could not parse YAML config: %w", err)
			}
		default:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("could not parse JSON config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides lets deployment environments point runs at their own
// data and output locations without editing config files.
func (c *RunConfig) applyEnvOverrides() {
	if v := os.Getenv("DCA_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("DCA_CACHE_PATH"); v != "" {
		c.CachePath = v
	}
	if v := os.Getenv("DCA_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("DCA_METRICS_ADDR"); v != "" {
		c.MetricsAddr = v
	}
	if v := os.Getenv("DCA_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
}

// Save writes the config as indented JSON, creating directories as needed.
func (c *RunConfig) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	return os.WriteFile(path, data, 0644)
}

// Start parses StartDate. Call Validate first.
func (c *RunConfig) Start() time.Time {
	t, _ := time.Parse(DateLayout, c.StartDate)
	return t.UTC()
}

// End parses EndDate. Call Validate first.
func (c *RunConfig) End() time.Time {
	t, _ := time.Parse(DateLayout, c.EndDate)
	return t.UTC()
}
