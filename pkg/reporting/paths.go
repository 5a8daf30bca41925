package reporting

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultOutputDir returns the per-run artifact directory, e.g.
// results/SPY_monthly.
func DefaultOutputDir(root, ticker, frequency string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	f := strings.ToLower(strings.TrimSpace(frequency))
	if t == "" {
		t = "UNKNOWN"
	}
	if f == "" {
		f = "unknown"
	}
	if root == "" {
		root = "results"
	}

	return filepath.Join(root, fmt.Sprintf("%s_%s", t, f))
}
