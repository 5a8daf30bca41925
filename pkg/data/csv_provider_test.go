package data

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	simerrors "github.com/quantbench/dca-backtest/internal/errors"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
	assert.NoError(t, err)
}

// TestCSVProvider_Fetch tests loading and windowing a well-formed file
func TestCSVProvider_Fetch(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "SPY.csv", `date,close,volume
2024-01-01,100.5,1000
2024-01-02,101.0,1100
2024-01-03,99.5,900
2024-01-04,102.0,1200
`)

	series, err := NewCSVProvider(dir).Fetch(context.Background(), "SPY", day("2024-01-02"), day("2024-01-03"))
	assert.NoError(t, err)

	assert.Equal(t, "SPY", series.Ticker())
	assert.Equal(t, 2, series.Len())
	assert.Equal(t, 101.0, series.At(0).Close)
	assert.Equal(t, 900.0, series.At(1).Volume)
}

// TestCSVProvider_MissingFile tests the data-unavailable error
func TestCSVProvider_MissingFile(t *testing.T) {
	_, err := NewCSVProvider(t.TempDir()).Fetch(context.Background(), "NOPE", day("2024-01-01"), day("2024-01-31"))
	assert.True(t, errors.Is(err, simerrors.ErrDataUnavailable))
}

// TestCSVProvider_EmptyWindow tests a request outside the file's range
func TestCSVProvider_EmptyWindow(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "SPY.csv", `date,close
2024-01-01,100.5
`)

	_, err := NewCSVProvider(dir).Fetch(context.Background(), "SPY", day("2023-01-01"), day("2023-12-31"))
	assert.True(t, errors.Is(err, simerrors.ErrDataUnavailable))
}

// TestCSVProvider_SkipsMalformedRows tests that bad rows are dropped
// instead of failing the whole file
func TestCSVProvider_SkipsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "SPY.csv", `date,close,volume
2024-01-01,100.5,1000
not-a-date,101.0,1100
2024-01-03,not-a-price,900
2024-01-04,-5,100
2024-01-05,102.0,1200
`)

	series, err := NewCSVProvider(dir).Fetch(context.Background(), "SPY", day("2024-01-01"), day("2024-01-31"))
	assert.NoError(t, err)
	assert.Equal(t, 2, series.Len())
}

// TestCSVProvider_SortsAndDedupes tests out-of-order input and repeated
// dates where the last row wins
func TestCSVProvider_SortsAndDedupes(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "SPY.csv", `date,close
2024-01-03,103
2024-01-01,100
2024-01-02,101
2024-01-03,104
`)

	series, err := NewCSVProvider(dir).Fetch(context.Background(), "SPY", day("2024-01-01"), day("2024-01-31"))
	assert.NoError(t, err)
	assert.Equal(t, 3, series.Len())
	assert.Equal(t, 104.0, series.At(2).Close)
}

// TestCSVProvider_TickerSanitization tests index-style ticker names
func TestCSVProvider_TickerSanitization(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "GSPC.csv", `date,close
2024-01-01,4700
`)

	series, err := NewCSVProvider(dir).Fetch(context.Background(), "^GSPC", day("2024-01-01"), day("2024-01-02"))
	assert.NoError(t, err)
	assert.Equal(t, 1, series.Len())
}

// TestCSVProvider_CancelledContext tests early exit on cancellation
func TestCSVProvider_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCSVProvider(t.TempDir()).Fetch(ctx, "SPY", day("2024-01-01"), day("2024-01-31"))
	assert.True(t, errors.Is(err, context.Canceled))
}
