package backtest

import "github.com/openrange-trading/openrange/src/scanner"

// Diagnostics counts the recoverable skips a run absorbed. A run that only
// hit recoverable errors still produces a full summary; these counters are
// how the caller learns it was degraded.
type Diagnostics struct {
	DaysSimulated     int `json:"days_simulated"`     // days attempted, failed ones included
	FailedDays        int `json:"failed_days"`        // errored or panicked, contributed zero trades
	SkippedSymbols    int `json:"skipped_symbols"`    // per-symbol data errors or insufficient bars
	SkippedCandidates int `json:"skipped_candidates"` // no tradeable direction or score at/below threshold
	ZeroQuantity      int `json:"zero_quantity"`      // sized to zero shares, entry skipped
}

func (d *Diagnostics) merge(other Diagnostics) {
	d.DaysSimulated += other.DaysSimulated
	d.FailedDays += other.FailedDays
	d.SkippedSymbols += other.SkippedSymbols
	d.SkippedCandidates += other.SkippedCandidates
	d.ZeroQuantity += other.ZeroQuantity
}

func (d *Diagnostics) recordSkip(reason scanner.SkipReason) {
	switch reason {
	case scanner.SkipInsufficientData, scanner.SkipDataError:
		d.SkippedSymbols++
	case scanner.SkipNoDirection, scanner.SkipBelowMinScore:
		d.SkippedCandidates++
	}
}
