package marketdata

import (
	"context"
	"time"

	"github.com/openrange-trading/openrange/src/models"
)

// BarSource serves historical minute bars. Implementations must be safe for
// concurrent readers: all day-batch workers share a single source.
type BarSource interface {
	// TradingDays returns the ordered calendar days with any bar data in
	// [start, end].
	TradingDays(ctx context.Context, start, end time.Time) ([]time.Time, error)

	// SymbolsWithData returns the symbols that have bars on the given day,
	// ordered ascending.
	SymbolsWithData(ctx context.Context, day time.Time) ([]string, error)

	// MinuteBars returns the bars for symbol on day whose market-timezone
	// clock time falls in [from, to], ordered by timestamp.
	MinuteBars(ctx context.Context, symbol string, day time.Time, from, to TimeOfDay) ([]*Bar, error)
}

// Signal is a pre-computed candidate produced by an external scanner.
type Signal struct {
	Symbol    string           `json:"symbol"`
	Score     float64          `json:"score"`
	Direction models.Direction `json:"direction"`
}

// CandidateSource optionally replaces the intraday candidate scan with
// signals computed elsewhere. A nil CandidateSource means the simulator
// scores symbols itself.
type CandidateSource interface {
	Candidates(ctx context.Context, day time.Time, cutoff TimeOfDay) ([]Signal, error)
}
