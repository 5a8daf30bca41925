package data

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	simerrors "github.com/quantbench/dca-backtest/internal/errors"
	"github.com/quantbench/dca-backtest/internal/monitoring"
	"github.com/quantbench/dca-backtest/pkg/types"
)

// CSVColumnMapping defines the column layout of a price CSV file.
type CSVColumnMapping struct {
	DateCol    int
	CloseCol   int
	VolumeCol  int // -1 when the file has no volume column
	MinColumns int
	DateFormat string
}

// DefaultCSVFormat matches the common "date,close,volume" daily export.
var DefaultCSVFormat = CSVColumnMapping{
	DateCol:    0,
	CloseCol:   1,
	VolumeCol:  2,
	MinColumns: 2,
	DateFormat: "2006-01-02",
}

// CSVProvider loads price history from per-ticker CSV files under a root
// directory (<root>/<TICKER>.csv).
type CSVProvider struct {
	root   string
	format CSVColumnMapping
	logger zerolog.Logger
}

// NewCSVProvider creates a provider with the default column layout.
func NewCSVProvider(root string) *CSVProvider {
	return NewCSVProviderWithFormat(root, DefaultCSVFormat)
}

// NewCSVProviderWithFormat creates a provider with a custom column layout.
func NewCSVProviderWithFormat(root string, format CSVColumnMapping) *CSVProvider {
	return &CSVProvider{
		root:   root,
		format: format,
		logger: log.With().Str("component", "csv_provider").Logger(),
	}
}

// Name implements Provider.
func (p *CSVProvider) Name() string { return "csv" }

// Fetch implements Provider.
func (p *CSVProvider) Fetch(ctx context.Context, ticker string, start, end time.Time) (series *types.PriceSeries, err error) {
	defer func() { monitoring.RecordFetch(p.Name(), err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := p.filePath(ticker)
	points, err := p.readFile(path)
	if err != nil {
		return nil, err
	}

	full, err := types.NewPriceSeries(ticker, points)
	if err != nil {
		return nil, simerrors.Wrap(err, simerrors.KindDataUnavailable, "csv_provider", "fetch")
	}
	window := full.Window(start, end)
	if window.Len() == 0 {
		return nil, simerrors.NewDataUnavailable("csv_provider", "fetch",
			"%s has no rows in %s..%s", filepath.Base(path),
			types.Day(start).Format("2006-01-02"), types.Day(end).Format("2006-01-02"))
	}
	return window, nil
}

func (p *CSVProvider) filePath(ticker string) string {
	safe := strings.ToUpper(strings.TrimSpace(ticker))
	safe = strings.NewReplacer("^", "", "/", "_", ".", "_").Replace(safe)
	return filepath.Join(p.root, safe+".csv")
}

func (p *CSVProvider) readFile(path string) ([]types.PricePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, simerrors.NewDataUnavailable("csv_provider", "fetch", "no data file %s", path)
		}
		return nil, simerrors.Wrap(err, simerrors.KindDataUnavailable, "csv_provider", "fetch")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	// Skip header.
	if _, err := r.Read(); err != nil {
		return nil, simerrors.NewDataUnavailable("csv_provider", "fetch", "%s is empty", path)
	}

	var points []types.PricePoint
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, simerrors.Wrap(err, simerrors.KindDataUnavailable, "csv_provider", "fetch")
		}
		line++

		if len(record) < p.format.MinColumns {
			p.logger.Warn().Str("file", filepath.Base(path)).Int("line", line).Msg("insufficient columns, skipping row")
			continue
		}
		date, err := time.Parse(p.format.DateFormat, record[p.format.DateCol])
		if err != nil {
			p.logger.Warn().Str("file", filepath.Base(path)).Int("line", line).Err(err).Msg("invalid date, skipping row")
			continue
		}
		close, err := strconv.ParseFloat(record[p.format.CloseCol], 64)
		if err != nil || close <= 0 {
			p.logger.Warn().Str("file", filepath.Base(path)).Int("line", line).Msg("invalid close price, skipping row")
			continue
		}
		volume := 0.0
		if p.format.VolumeCol >= 0 && len(record) > p.format.VolumeCol {
			volume, _ = strconv.ParseFloat(record[p.format.VolumeCol], 64)
		}
		points = append(points, types.PricePoint{Date: types.Day(date), Close: close, Volume: volume})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return dedupeByDate(points), nil
}

// dedupeByDate keeps the last row for a repeated date. Some exports repeat
// the current day when they are refreshed intraday.
func dedupeByDate(points []types.PricePoint) []types.PricePoint {
	out := points[:0]
	for i, pt := range points {
		if i > 0 && pt.Date.Equal(out[len(out)-1].Date) {
			out[len(out)-1] = pt
			continue
		}
		out = append(out, pt)
	}
	return out
}
