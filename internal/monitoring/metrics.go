package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	backtestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dca_backtests_total",
			Help: "Total number of backtest tasks processed",
		},
		[]string{"ticker", "outcome"},
	)

	backtestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dca_backtest_duration_seconds",
			Help:    "Wall-clock duration of a single backtest task",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"ticker"},
	)

	batchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dca_batch_size",
			Help:    "Number of tasks per submitted batch",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	providerFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dca_provider_fetches_total",
			Help: "Price series fetches by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(backtestsTotal)
	prometheus.MustRegister(backtestDuration)
	prometheus.MustRegister(batchSize)
	prometheus.MustRegister(providerFetchesTotal)
}

// RecordBacktest records one completed task.
func RecordBacktest(ticker string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	backtestsTotal.WithLabelValues(ticker, outcome).Inc()
	backtestDuration.WithLabelValues(ticker).Observe(duration.Seconds())
}

// RecordBatch records the size of a submitted batch.
func RecordBatch(tasks int) {
	batchSize.Observe(float64(tasks))
}

// RecordFetch records one provider fetch.
func RecordFetch(provider string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	providerFetchesTotal.WithLabelValues(provider, outcome).Inc()
}

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr. Blocks; intended to run in its own
// goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return http.ListenAndServe(addr, mux)
}
