package data

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/quantbench/dca-backtest/pkg/types"
)

const dateLayout = "2006-01-02"

// SQLiteStore persists daily bars so repeated runs against the same
// ticker do not refetch from the upstream provider.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, logger: log.With().Str("component", "sqlite_store").Logger()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS daily_prices (
		ticker TEXT NOT NULL,
		date   TEXT NOT NULL,
		close  REAL NOT NULL,
		volume REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (ticker, date)
	)`)
	return err
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Coverage returns the stored date range for a ticker. ok is false when
// nothing is stored.
func (s *SQLiteStore) Coverage(ticker string) (min, max time.Time, ok bool, err error) {
	var minStr, maxStr sql.NullString
	row := s.db.QueryRow(`SELECT MIN(date), MAX(date) FROM daily_prices WHERE ticker = ?`, ticker)
	if err := row.Scan(&minStr, &maxStr); err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if !minStr.Valid || !maxStr.Valid {
		return time.Time{}, time.Time{}, false, nil
	}
	min, err = time.Parse(dateLayout, minStr.String)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	max, err = time.Parse(dateLayout, maxStr.String)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	return min.UTC(), max.UTC(), true, nil
}

// Load reads the stored bars for a ticker inside [start, end].
func (s *SQLiteStore) Load(ticker string, start, end time.Time) (*types.PriceSeries, error) {
	rows, err := s.db.Query(
		`SELECT date, close, volume FROM daily_prices
		 WHERE ticker = ? AND date >= ? AND date <= ?
		 ORDER BY date`,
		ticker, types.Day(start).Format(dateLayout), types.Day(end).Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []types.PricePoint
	for rows.Next() {
		var dateStr string
		var pt types.PricePoint
		if err := rows.Scan(&dateStr, &pt.Close, &pt.Volume); err != nil {
			return nil, err
		}
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, err
		}
		pt.Date = date.UTC()
		points = append(points, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return types.NewPriceSeries(ticker, points)
}

// Save upserts all bars of a series.
func (s *SQLiteStore) Save(series *types.PriceSeries) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO daily_prices (ticker, date, close, volume) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, pt := range series.Points() {
		if _, err := stmt.Exec(series.Ticker(), pt.Date.Format(dateLayout), pt.Close, pt.Volume); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// PersistentProvider decorates a Provider with the SQLite store: a fetch
// whose range is already stored is served locally, anything else goes
// upstream and is saved on the way back.
type PersistentProvider struct {
	provider Provider
	store    *SQLiteStore
	logger   zerolog.Logger
}

// NewPersistentProvider wraps a provider with a store.
func NewPersistentProvider(provider Provider, store *SQLiteStore) *PersistentProvider {
	return &PersistentProvider{
		provider: provider,
		store:    store,
		logger:   log.With().Str("component", "persistent_provider").Logger(),
	}
}

// Name implements Provider.
func (p *PersistentProvider) Name() string { return "persistent " + p.provider.Name() }

// Fetch implements Provider.
func (p *PersistentProvider) Fetch(ctx context.Context, ticker string, start, end time.Time) (*types.PriceSeries, error) {
	start, end = types.Day(start), types.Day(end)

	min, max, ok, err := p.store.Coverage(ticker)
	if err == nil && ok && !min.After(start) && !max.Before(end) {
		series, err := p.store.Load(ticker, start, end)
		if err == nil && series.Len() > 0 {
			p.logger.Debug().Str("ticker", ticker).Int("bars", series.Len()).Msg("served from store")
			return series, nil
		}
	}

	series, err := p.provider.Fetch(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}
	if err := p.store.Save(series); err != nil {
		// A write failure only loses the cache benefit, never the data.
		p.logger.Warn().Str("ticker", ticker).Err(err).Msg("failed to persist series")
	}
	return series, nil
}
