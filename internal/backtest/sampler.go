package backtest

import (
	"math/rand"
	"time"

	simerrors "github.com/quantbench/dca-backtest/internal/errors"
	"github.com/quantbench/dca-backtest/pkg/types"
)

// Window is one randomly sampled (start, end) backtest range.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowSampler draws fixed-length windows with uniformly random start
// dates. The same seed always reproduces the same windows, which keeps
// randomized robustness runs testable.
type WindowSampler struct {
	seed int64
}

// NewWindowSampler creates a sampler for the given seed.
func NewWindowSampler(seed int64) *WindowSampler {
	return &WindowSampler{seed: seed}
}

// Sequence prepares a lazy sequence of count windows inside
// [minDate, maxDate], each spanning exactly length. Start dates are drawn
// uniformly from the valid day range; duplicates are allowed. Fails when
// no start date can fit the window.
func (s *WindowSampler) Sequence(minDate, maxDate time.Time, length time.Duration, count int) (*WindowSequence, error) {
	if count < 0 {
		return nil, simerrors.NewInvalidWindow("sampler", "sequence", "negative window count %d", count)
	}
	if length <= 0 {
		return nil, simerrors.NewInvalidWindow("sampler", "sequence", "non-positive window length %s", length)
	}
	minDate, maxDate = types.Day(minDate), types.Day(maxDate)
	latestStart := maxDate.Add(-length)
	if latestStart.Before(minDate) {
		return nil, simerrors.NewInvalidWindow("sampler", "sequence",
			"window length %s does not fit into %s..%s",
			length, minDate.Format("2006-01-02"), maxDate.Format("2006-01-02"))
	}
	startDays := int(latestStart.Sub(minDate).Hours()/24) + 1

	seq := &WindowSequence{
		seed:      s.seed,
		minDate:   minDate,
		length:    length,
		startDays: startDays,
		count:     count,
	}
	seq.Reset()
	return seq, nil
}

// WindowSequence is a finite, restartable stream of sampled windows.
type WindowSequence struct {
	seed      int64
	minDate   time.Time
	length    time.Duration
	startDays int
	count     int

	rng     *rand.Rand
	emitted int
}

// Next returns the following window, or false once count windows have
// been produced.
func (q *WindowSequence) Next() (Window, bool) {
	if q.emitted >= q.count {
		return Window{}, false
	}
	q.emitted++
	start := q.minDate.AddDate(0, 0, q.rng.Intn(q.startDays))
	return Window{Start: start, End: start.Add(q.length)}, true
}

// Reset rewinds the sequence so it replays the identical windows.
func (q *WindowSequence) Reset() {
	q.rng = rand.New(rand.NewSource(q.seed))
	q.emitted = 0
}

// All drains the remaining windows into a slice.
func (q *WindowSequence) All() []Window {
	out := make([]Window, 0, q.count-q.emitted)
	for {
		w, ok := q.Next()
		if !ok {
			return out
		}
		out = append(out, w)
	}
}
