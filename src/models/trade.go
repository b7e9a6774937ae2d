package models

import "time"

// Trade is one completed round trip. Immutable once created: the simulator
// builds a Trade only at the moment a position closes.
type Trade struct {
	Symbol     string     `json:"symbol"`
	Direction  Direction  `json:"direction"`
	EntryPrice float64    `json:"entry_price"`
	ExitPrice  float64    `json:"exit_price"`
	Quantity   int        `json:"quantity"`
	PnL        float64    `json:"pnl"`
	EntryDate  time.Time  `json:"entry_date"`
	EntryTime  time.Time  `json:"entry_time"`
	ExitDate   time.Time  `json:"exit_date"`
	ExitTime   time.Time  `json:"exit_time"`
	ExitReason ExitReason `json:"exit_reason"`
	SetupType  SetupType  `json:"setup_type"`
}

func (t Trade) IsWinner() bool {
	return t.PnL > 0
}

// Intraday reports the no-overnight invariant: entry and exit share a
// calendar day.
func (t Trade) Intraday() bool {
	return t.EntryDate.Equal(t.ExitDate)
}
