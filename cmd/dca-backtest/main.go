package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/quantbench/dca-backtest/internal/backtest"
	"github.com/quantbench/dca-backtest/internal/monitoring"
	"github.com/quantbench/dca-backtest/pkg/config"
	"github.com/quantbench/dca-backtest/pkg/data"
	"github.com/quantbench/dca-backtest/pkg/reporting"
)

const (
	AppName    = "DCA Backtest"
	AppVersion = "1.0.0"
)

func main() {
	flags := NewFlags()
	flag.Parse()

	if *flags.ShowVersion {
		fmt.Printf("%s v%s\n", AppName, AppVersion)
		return
	}

	if *flags.ShowHelp {
		printUsageHelp()
		return
	}

	printHeader()
	loadEnvironment(*flags.EnvFile)

	cfg, err := loadRunConfig(flags)
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := monitoring.Serve(cfg.MetricsAddr); err != nil {
				log.Printf("⚠️  Metrics server stopped: %v", err)
			}
		}()
		fmt.Printf("📡 Serving Prometheus metrics on %s\n", cfg.MetricsAddr)
	}

	provider, cleanup, err := buildProvider(cfg)
	if err != nil {
		log.Fatalf("❌ Data source error: %v", err)
	}
	defer cleanup()

	freq, err := backtest.ParseFrequency(cfg.Frequency)
	if err != nil {
		log.Fatalf("❌ Invalid frequency: %v", err)
	}

	ctx := context.Background()

	if cfg.RandomTests > 0 {
		runRandomizedWindows(ctx, cfg, provider, freq)
	} else {
		runFixedBacktests(ctx, cfg, provider, freq)
	}
}

func printHeader() {
	fmt.Printf("🎯 %s v%s\n", strings.ToUpper(AppName), AppVersion)
	fmt.Printf("%s\n\n", strings.Repeat("=", 50))
}

func printUsageHelp() {
	fmt.Printf("%s v%s - Dollar-Cost Averaging Backtesting\n\n", AppName, AppVersion)
	fmt.Printf("USAGE:\n  %s [OPTIONS]\n\n", filepath.Base(flag.CommandLine.Name()))
	PrintUsageExamples()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
}

func loadEnvironment(envFile string) {
	if err := godotenv.Load(envFile); err != nil {
		log.Printf("⚠️  Could not load %s (%v)", envFile, err)
	}
}

// loadRunConfig builds the validated run config from the config file (if
// any) with explicitly-set flags layered on top.
func loadRunConfig(flags *Flags) (*config.RunConfig, error) {
	cfg, err := config.Parse(*flags.ConfigFile)
	if err != nil {
		return nil, err
	}

	flags.ApplyTo(cfg)
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildProvider assembles the data pipeline: base source, optional
// persistent SQLite layer, in-memory cache on top.
func buildProvider(cfg *config.RunConfig) (data.Provider, func(), error) {
	var base data.Provider
	switch cfg.DataSource {
	case "yahoo":
		base = data.NewYahooProvider(data.YahooOptions{})
	default:
		base = data.NewCSVProvider(cfg.DataDir)
	}

	cleanup := func() {}
	if cfg.CachePath != "" {
		store, err := data.NewSQLiteStore(cfg.CachePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open price cache: %w", err)
		}
		base = data.NewPersistentProvider(base, store)
		cleanup = func() { store.Close() }
	}

	return data.NewCachedProvider(base), cleanup, nil
}

// runFixedBacktests runs one full-window backtest per ticker.
func runFixedBacktests(ctx context.Context, cfg *config.RunConfig, provider data.Provider, freq backtest.Frequency) {
	engine := backtest.NewEngine()
	calc := backtest.NewCalculator()

	for _, ticker := range cfg.Tickers {
		fmt.Printf("📥 Loading %s from %s...\n", ticker, provider.Name())
		series, err := provider.Fetch(ctx, ticker, cfg.Start(), cfg.End())
		if err != nil {
			log.Fatalf("❌ Failed to load data for %s: %v", ticker, err)
		}

		plan, err := backtest.NewInvestmentPlan(cfg.Start(), cfg.End(), cfg.InitialAmount, cfg.PeriodicAmount, freq)
		if err != nil {
			log.Fatalf("❌ Invalid plan for %s: %v", ticker, err)
		}

		started := time.Now()
		traj, err := engine.Run(series, plan)
		if err == nil {
			var result *backtest.Result
			result, err = calc.Summarize(series, plan, traj)
			if err == nil {
				reporting.OutputConsole(result)
				if !cfg.ConsoleOnly {
					saveArtifacts(cfg, ticker, result, traj)
				}
			}
		}
		monitoring.RecordBacktest(ticker, time.Since(started), err)
		if err != nil {
			log.Fatalf("❌ Backtest failed for %s: %v", ticker, err)
		}
	}
}

// runRandomizedWindows samples random sub-windows per ticker and runs
// them in parallel, reporting the averaged outcome.
func runRandomizedWindows(ctx context.Context, cfg *config.RunConfig, provider data.Provider, freq backtest.Frequency) {
	sampler := backtest.NewWindowSampler(cfg.Seed)
	runner := backtest.NewRunner(cfg.Workers)
	reporter := reporting.NewConsoleReporter()

	fmt.Printf("🎲 Sampling %d windows of %d days (seed %d, %d workers)\n",
		cfg.RandomTests, cfg.WindowDays, cfg.Seed, runner.Workers())

	var aggregates []*backtest.Aggregate
	for _, ticker := range cfg.Tickers {
		fmt.Printf("📥 Loading %s from %s...\n", ticker, provider.Name())
		series, err := provider.Fetch(ctx, ticker, cfg.Start(), cfg.End())
		if err != nil {
			log.Fatalf("❌ Failed to load data for %s: %v", ticker, err)
		}

		length := time.Duration(cfg.WindowDays) * 24 * time.Hour
		seq, err := sampler.Sequence(cfg.Start(), cfg.End(), length, cfg.RandomTests)
		if err != nil {
			log.Fatalf("❌ Cannot sample windows for %s: %v", ticker, err)
		}

		tasks := make([]backtest.Task, 0, cfg.RandomTests)
		for _, w := range seq.All() {
			plan, err := backtest.NewInvestmentPlan(w.Start, w.End, cfg.InitialAmount, cfg.PeriodicAmount, freq)
			if err != nil {
				log.Fatalf("❌ Invalid plan for %s: %v", ticker, err)
			}
			tasks = append(tasks, backtest.NewTask(series, plan))
		}

		results := runner.RunAll(ctx, tasks)
		agg := backtest.AggregateResults(results)
		reporter.OutputAggregate(&agg)
		aggregates = append(aggregates, &agg)
	}

	if len(aggregates) > 1 {
		reporter.ComparisonTable(aggregates)
	}

	if !cfg.ConsoleOnly {
		path := filepath.Join(cfg.OutputDir, "random_windows.json")
		if err := reporting.WriteAggregatesJSON(aggregates, path); err != nil {
			log.Printf("⚠️  Could not write %s: %v", path, err)
		} else {
			fmt.Printf("💾 Saved aggregate report to %s\n", path)
		}
	}
}

func saveArtifacts(cfg *config.RunConfig, ticker string, result *backtest.Result, traj *backtest.Trajectory) {
	outDir := reporting.DefaultOutputDir(cfg.OutputDir, ticker, cfg.Frequency)

	jsonPath := filepath.Join(outDir, "result.json")
	if err := reporting.WriteResultJSON(result, jsonPath); err != nil {
		log.Printf("⚠️  Could not write %s: %v", jsonPath, err)
	}

	csvPath := filepath.Join(outDir, "trajectory.csv")
	if err := reporting.WriteTrajectoryCSV(traj, csvPath); err != nil {
		log.Printf("⚠️  Could not write %s: %v", csvPath, err)
	}

	xlsxPath := filepath.Join(outDir, "report.xlsx")
	if err := reporting.WriteReportXLSX(result, traj, xlsxPath); err != nil {
		log.Printf("⚠️  Could not write %s: %v", xlsxPath, err)
	}

	fmt.Printf("💾 Saved artifacts to %s\n", outDir)
}
