package marketdata

import "time"

// Bar is a single OHLCV minute sample. Bars arrive ordered by Timestamp
// within a symbol-day and are treated as immutable once loaded.
type Bar struct {
	Symbol    string    `ch:"symbol" json:"symbol"`
	Timestamp time.Time `ch:"timestamp" json:"timestamp"`
	Open      float64   `ch:"open" json:"open"`
	High      float64   `ch:"high" json:"high"`
	Low       float64   `ch:"low" json:"low"`
	Close     float64   `ch:"close" json:"close"`
	Volume    float64   `ch:"volume" json:"volume"`
}

func (b *Bar) DollarVolume() float64 {
	return b.Close * b.Volume
}
