package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	simerrors "github.com/quantbench/dca-backtest/internal/errors"
	"github.com/quantbench/dca-backtest/internal/monitoring"
	"github.com/quantbench/dca-backtest/pkg/types"
)

const yahooBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooProvider fetches daily bars from the Yahoo Finance chart API.
type YahooProvider struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	retries uint64
	logger  zerolog.Logger
}

// YahooOptions tunes the provider. Zero values select defaults.
type YahooOptions struct {
	BaseURL        string
	Timeout        time.Duration
	RequestsPerSec int
	MaxRetries     uint64
}

// NewYahooProvider creates a Yahoo Finance provider.
func NewYahooProvider(opts YahooOptions) *YahooProvider {
	if opts.BaseURL == "" {
		opts.BaseURL = yahooBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 5
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	return &YahooProvider{
		baseURL: opts.BaseURL,
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.RequestsPerSec),
		retries: opts.MaxRetries,
		logger:  log.With().Str("component", "yahoo_provider").Logger(),
	}
}

// Name implements Provider.
func (p *YahooProvider) Name() string { return "yahoo" }

// yahooChart is the chart API response envelope.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch implements Provider. Transient HTTP failures are retried with
// exponential backoff; requests are throttled to stay under the API's
// informal limits.
func (p *YahooProvider) Fetch(ctx context.Context, ticker string, start, end time.Time) (series *types.PriceSeries, err error) {
	defer func() { monitoring.RecordFetch(p.Name(), err) }()

	start, end = types.Day(start), types.Day(end)
	u := fmt.Sprintf("%s/%s?interval=1d&period1=%d&period2=%d",
		p.baseURL, url.PathEscape(ticker), start.Unix(), end.AddDate(0, 0, 1).Unix())

	var body []byte
	operation := func() error {
		if err := p.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		b, err := p.get(ctx, u)
		if err != nil {
			p.logger.Warn().Str("ticker", ticker).Err(err).Msg("chart request failed, will retry")
			return err
		}
		body = b
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), p.retries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, simerrors.Wrap(err, simerrors.KindDataUnavailable, "yahoo_provider", "fetch")
	}

	points, err := parseYahooChart(body, ticker)
	if err != nil {
		return nil, err
	}

	full, err := types.NewPriceSeries(ticker, points)
	if err != nil {
		return nil, simerrors.Wrap(err, simerrors.KindDataUnavailable, "yahoo_provider", "fetch")
	}
	window := full.Window(start, end)
	if window.Len() == 0 {
		return nil, simerrors.NewDataUnavailable("yahoo_provider", "fetch",
			"no bars for %s in %s..%s", ticker, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	p.logger.Debug().Str("ticker", ticker).Int("bars", window.Len()).Msg("fetched series")
	return window, nil
}

func (p *YahooProvider) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, backoff.Permanent(fmt.Errorf("status 404: %s", body))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}

func parseYahooChart(body []byte, ticker string) ([]types.PricePoint, error) {
	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, simerrors.Wrap(err, simerrors.KindDataUnavailable, "yahoo_provider", "parse")
	}
	if chart.Chart.Error != nil {
		return nil, simerrors.NewDataUnavailable("yahoo_provider", "parse",
			"chart api error for %s: %s", ticker, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, simerrors.NewDataUnavailable("yahoo_provider", "parse", "no data returned for %s", ticker)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	var points []types.PricePoint
	lastDate := time.Time{}
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil || *quote.Close[i] <= 0 {
			continue
		}
		date := types.Day(time.Unix(ts, 0).UTC())
		if !date.After(lastDate) {
			// Yahoo repeats the live bar at the tail of the day.
			continue
		}
		lastDate = date
		pt := types.PricePoint{Date: date, Close: *quote.Close[i]}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			pt.Volume = *quote.Volume[i]
		}
		points = append(points, pt)
	}
	return points, nil
}
