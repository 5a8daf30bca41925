package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/quantbench/dca-backtest/pkg/config"
)

// Flags holds all command line flags for the dca-backtest command
type Flags struct {
	// Configuration
	ConfigFile *string
	Tickers    *string

	// Plan parameters
	InitialAmount  *float64
	PeriodicAmount *float64
	Frequency      *string
	StartDate      *string
	EndDate        *string

	// Randomized-window mode
	RandomTests *int
	WindowDays  *int
	Seed        *int64

	// Execution
	Workers *int

	// Data source
	DataSource *string
	DataDir    *string
	CachePath  *string

	// Output options
	OutputDir   *string
	ConsoleOnly *bool
	MetricsAddr *string
	EnvFile     *string

	// Help and version
	ShowVersion *bool
	ShowHelp    *bool
}

// NewFlags creates and registers all command line flags
func NewFlags() *Flags {
	return &Flags{
		// Configuration
		ConfigFile: flag.String("config", "", "Path to run configuration file (JSON or YAML)"),
		Tickers:    flag.String("tickers", "", "Comma-separated tickers (e.g., SPY,QQQ,BTC-USD)"),

		// Plan parameters
		InitialAmount:  flag.Float64("initial", 0, "One-time amount invested with the first purchase"),
		PeriodicAmount: flag.Float64("amount", 100, "Amount invested on every scheduled date"),
		Frequency:      flag.String("frequency", "monthly", "Purchase frequency (daily, weekly, monthly)"),
		StartDate:      flag.String("start", "", "Plan start date (YYYY-MM-DD)"),
		EndDate:        flag.String("end", "", "Plan end date (YYYY-MM-DD)"),

		// Randomized-window mode
		RandomTests: flag.Int("random-tests", 0, "Number of randomized windows (0 = single fixed run)"),
		WindowDays:  flag.Int("window-days", 365, "Length of each randomized window in days"),
		Seed:        flag.Int64("seed", 0, "Seed for window sampling (0 = time-based)"),

		// Execution
		Workers: flag.Int("workers", 0, "Worker count for parallel runs (0 = NumCPU)"),

		// Data source
		DataSource: flag.String("source", "csv", "Price data source (csv, yahoo)"),
		DataDir:    flag.String("data-root", "data", "Root directory for CSV price files"),
		CachePath:  flag.String("cache", "", "SQLite price cache path (empty = in-memory only)"),

		// Output options
		OutputDir:   flag.String("output", "results", "Directory for result artifacts"),
		ConsoleOnly: flag.Bool("console-only", false, "Print to console without writing artifacts"),
		MetricsAddr: flag.String("metrics-addr", "", "Address for Prometheus metrics (e.g., :9090)"),
		EnvFile:     flag.String("env", ".env", "Environment file to load"),

		// Help and version
		ShowVersion: flag.Bool("version", false, "Show version information"),
		ShowHelp:    flag.Bool("help", false, "Show detailed help"),
	}
}

// ApplyTo overlays explicitly-set flags onto a run config. Flags left at
// their defaults do not clobber values loaded from a config file.
func (f *Flags) ApplyTo(cfg *config.RunConfig) {
	set := map[string]bool{}
	flag.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if set["tickers"] {
		cfg.Tickers = splitTickers(*f.Tickers)
	}
	if set["initial"] {
		cfg.InitialAmount = *f.InitialAmount
	}
	if set["amount"] {
		cfg.PeriodicAmount = *f.PeriodicAmount
	}
	if set["frequency"] {
		cfg.Frequency = *f.Frequency
	}
	if set["start"] {
		cfg.StartDate = *f.StartDate
	}
	if set["end"] {
		cfg.EndDate = *f.EndDate
	}
	if set["random-tests"] {
		cfg.RandomTests = *f.RandomTests
	}
	if set["window-days"] {
		cfg.WindowDays = *f.WindowDays
	}
	if set["seed"] {
		cfg.Seed = *f.Seed
	}
	if set["workers"] {
		cfg.Workers = *f.Workers
	}
	if set["source"] {
		cfg.DataSource = *f.DataSource
	}
	if set["data-root"] {
		cfg.DataDir = *f.DataDir
	}
	if set["cache"] {
		cfg.CachePath = *f.CachePath
	}
	if set["output"] {
		cfg.OutputDir = *f.OutputDir
	}
	if set["console-only"] {
		cfg.ConsoleOnly = *f.ConsoleOnly
	}
	if set["metrics-addr"] {
		cfg.MetricsAddr = *f.MetricsAddr
	}
}

func splitTickers(s string) []string {
	var tickers []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tickers = append(tickers, strings.ToUpper(t))
		}
	}
	return tickers
}

// PrintUsageExamples prints common invocations
func PrintUsageExamples() {
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Monthly $100 into SPY from local CSV data")
	fmt.Println("  dca-backtest -tickers SPY -amount 100 -start 2015-01-01 -end 2024-01-01")
	fmt.Println()
	fmt.Println("  # Weekly buys from Yahoo Finance with a persistent cache")
	fmt.Println("  dca-backtest -tickers QQQ -frequency weekly -source yahoo -cache prices.db \\")
	fmt.Println("      -start 2020-01-01 -end 2024-01-01")
	fmt.Println()
	fmt.Println("  # 200 randomized one-year windows across three tickers")
	fmt.Println("  dca-backtest -tickers SPY,QQQ,VTI -random-tests 200 -window-days 365 \\")
	fmt.Println("      -seed 42 -start 2010-01-01 -end 2024-01-01")
	fmt.Println()
	fmt.Println("  # Full run from a config file")
	fmt.Println("  dca-backtest -config configs/spy_monthly.json")
	fmt.Println()
}
