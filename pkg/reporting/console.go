package reporting

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/quantbench/dca-backtest/internal/backtest"
)

// ConsoleReporter prints run output to stdout.
type ConsoleReporter struct{}

// NewConsoleReporter creates a new console reporter
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

// OutputResult prints a single backtest result to console
func (r *ConsoleReporter) OutputResult(result *backtest.Result) {
	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Printf("📊 DCA BACKTEST RESULTS - %s\n", result.Ticker)
	fmt.Println(strings.Repeat("=", 50))

	fmt.Printf("📅 Period:             %s → %s\n",
		result.Start.Format("2006-01-02"), result.End.Format("2006-01-02"))
	fmt.Printf("💰 Total Invested:     $%.2f\n", result.TotalInvested)
	fmt.Printf("💰 Final Value:        $%.2f\n", result.FinalValue)
	fmt.Printf("📈 Absolute Gain:      $%.2f\n", result.AbsoluteGain)
	fmt.Printf("📈 Total Return:       %.2f%%\n", result.PercentGain)
	fmt.Printf("📈 Monthly Return:     %.2f%%\n", result.MonthlyReturn)
	fmt.Printf("📉 Max Drawdown:       %.2f%%\n", result.MaxDrawdownPct)
	fmt.Printf("📉 Price Drawdown:     %.2f%%\n", result.PriceDrawdownPct)
	fmt.Printf("🔄 Executed Buys:      %d\n", result.ExecutedEvents)
	fmt.Printf("📦 Units Held:         %.6f\n", result.TotalUnits)

	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("🆚 Buy & Hold Value:   $%.2f\n", result.BuyAndHoldValue)
	fmt.Printf("🆚 Buy & Hold Return:  %.2f%% (%.2f%%/mo)\n",
		result.BuyAndHoldGainPct, result.BuyAndHoldMonthly)

	if result.PercentGain >= result.BuyAndHoldGainPct {
		fmt.Println("✅ DCA outperformed buy & hold over this window")
	} else {
		fmt.Println("ℹ️  Buy & hold outperformed DCA over this window")
	}
}

// OutputAggregate prints the averaged outcome of a randomized batch
func (r *ConsoleReporter) OutputAggregate(agg *backtest.Aggregate) {
	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Printf("📊 RANDOMIZED WINDOWS - %s (%d runs)\n", agg.Ticker, agg.Runs)
	fmt.Println(strings.Repeat("=", 50))

	fmt.Printf("📈 Avg Total Return:   %.2f%%\n", agg.AvgPercentGain)
	fmt.Printf("📈 Avg Monthly Return: %.2f%%\n", agg.AvgMonthlyReturn)
	fmt.Printf("📉 Avg Max Drawdown:   %.2f%%\n", agg.AvgMaxDrawdown)
	fmt.Printf("📉 Avg Price Drawdown: %.2f%%\n", agg.AvgPriceDrawdown)
	fmt.Printf("🆚 Avg B&H Return:     %.2f%% (%.2f%%/mo)\n",
		agg.AvgBuyAndHoldGain, agg.AvgBuyAndHoldMo)
	if agg.Failed > 0 {
		fmt.Printf("⚠️  Failed Windows:     %d\n", agg.Failed)
	}
}

// ComparisonTable renders one row per ticker so multi-asset runs can be
// compared at a glance.
func (r *ConsoleReporter) ComparisonTable(aggregates []*backtest.Aggregate) {
	if len(aggregates) == 0 {
		return
	}

	sorted := make([]*backtest.Aggregate, len(aggregates))
	copy(sorted, aggregates)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].AvgMonthlyReturn > sorted[j].AvgMonthlyReturn
	})

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("TICKER COMPARISON")
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Ticker", "Runs", "Avg Return", "Avg Monthly", "Avg Max DD", "Avg B&H Monthly", "Failed"})
	for _, agg := range sorted {
		t.AppendRow(table.Row{
			agg.Ticker,
			agg.Runs,
			fmt.Sprintf("%.2f%%", agg.AvgPercentGain),
			fmt.Sprintf("%.2f%%", agg.AvgMonthlyReturn),
			fmt.Sprintf("%.2f%%", agg.AvgMaxDrawdown),
			fmt.Sprintf("%.2f%%", agg.AvgBuyAndHoldMo),
			agg.Failed,
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})

	t.Render()
	fmt.Println()
}

// Package-level convenience functions

func OutputConsole(result *backtest.Result) {
	NewConsoleReporter().OutputResult(result)
}

func OutputAggregateConsole(agg *backtest.Aggregate) {
	NewConsoleReporter().OutputAggregate(agg)
}
