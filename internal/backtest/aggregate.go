package backtest

// Aggregate averages the results of a batch, typically the randomized
// window runs for one asset.
type Aggregate struct {
	Ticker string
	Runs   int
	Failed int

	AvgInvested       float64
	AvgFinalValue     float64
	AvgAbsoluteGain   float64
	AvgPercentGain    float64
	AvgMonthlyReturn  float64
	AvgMaxDrawdown    float64
	AvgPriceDrawdown  float64
	AvgBuyAndHoldGain float64
	AvgBuyAndHoldMo   float64
}

// AggregateResults averages the successful entries of a result mapping.
// Failed tasks are counted but excluded from the averages.
func AggregateResults(results map[string]TaskResult) Aggregate {
	var agg Aggregate
	ok := 0
	for _, tr := range results {
		if agg.Ticker == "" {
			agg.Ticker = tr.Ticker
		}
		agg.Runs++
		if tr.Err != nil || tr.Result == nil {
			agg.Failed++
			continue
		}
		ok++
		agg.AvgInvested += tr.Result.TotalInvested
		agg.AvgFinalValue += tr.Result.FinalValue
		agg.AvgAbsoluteGain += tr.Result.AbsoluteGain
		agg.AvgPercentGain += tr.Result.PercentGain
		agg.AvgMonthlyReturn += tr.Result.MonthlyReturn
		agg.AvgMaxDrawdown += tr.Result.MaxDrawdownPct
		agg.AvgPriceDrawdown += tr.Result.PriceDrawdownPct
		agg.AvgBuyAndHoldGain += tr.Result.BuyAndHoldGainPct
		agg.AvgBuyAndHoldMo += tr.Result.BuyAndHoldMonthly
	}
	if ok == 0 {
		return agg
	}
	n := float64(ok)
	agg.AvgInvested /= n
	agg.AvgFinalValue /= n
	agg.AvgAbsoluteGain /= n
	agg.AvgPercentGain /= n
	agg.AvgMonthlyReturn /= n
	agg.AvgMaxDrawdown /= n
	agg.AvgPriceDrawdown /= n
	agg.AvgBuyAndHoldGain /= n
	agg.AvgBuyAndHoldMo /= n
	return agg
}
