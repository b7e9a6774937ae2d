package indicators

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/openrange-trading/openrange/src/marketdata"
)

const (
	// MinimumBars is the shortest bar sequence ATR and ADX remain stable on.
	MinimumBars = 30

	atrPeriod        = 14
	adxPeriod        = 14
	openingRangeBars = 30
)

var ErrInsufficientData = fmt.Errorf("insufficient bars for indicator calculation")

// Snapshot is the derived technical state of one symbol at a cutoff within a
// single session. It is recomputed fresh every simulated day and never
// persisted across days.
type Snapshot struct {
	VWAP          float64
	ATR           float64
	ATRPct        float64
	ADX           float64
	OBV           float64
	OBVSlope      float64
	VolumeRatio   float64
	VWAPDeviation float64
	ORBHigh       float64
	ORBLow        float64
	LastClose     float64
	LastVolume    float64
	BarCount      int
}

// Compute derives a Snapshot from an ordered intraday bar sequence. It
// returns ErrInsufficientData below MinimumBars; callers treat that as a
// skip for the symbol-day, not a failure.
func Compute(bars []*marketdata.Bar) (*Snapshot, error) {
	if len(bars) < MinimumBars {
		return nil, fmt.Errorf("Compute: have %d bars, need %d: %w", len(bars), MinimumBars, ErrInsufficientData)
	}

	last := bars[len(bars)-1]

	atrValue, err := atr(bars, atrPeriod)
	if err != nil {
		return nil, fmt.Errorf("Compute: %w", err)
	}

	vwapValue := sessionVWAP(bars)
	obv := obvSeries(bars)
	orbHigh, orbLow := openingRange(bars)

	snap := &Snapshot{
		VWAP:        vwapValue,
		ATR:         atrValue,
		ADX:         adx(bars, adxPeriod),
		OBV:         obv[len(obv)-1],
		OBVSlope:    obvSlope(obv),
		VolumeRatio: volumeRatio(bars),
		ORBHigh:     orbHigh,
		ORBLow:      orbLow,
		LastClose:   last.Close,
		LastVolume:  last.Volume,
		BarCount:    len(bars),
	}
	if last.Close != 0 {
		snap.ATRPct = atrValue / last.Close
	}
	if vwapValue != 0 {
		snap.VWAPDeviation = (last.Close - vwapValue) / vwapValue
	}
	return snap, nil
}

// volumeRatio compares the latest bar's volume to the session average.
func volumeRatio(bars []*marketdata.Bar) float64 {
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		volumes[i] = b.Volume
	}

	mean, err := stats.Mean(volumes)
	if err != nil || mean == 0 {
		return 0
	}
	return bars[len(bars)-1].Volume / mean
}

// openingRange returns the high/low of the first openingRangeBars bars. The
// levels stay fixed for the rest of the session no matter how far the tape
// travels.
func openingRange(bars []*marketdata.Bar) (high, low float64) {
	n := openingRangeBars
	if len(bars) < n {
		n = len(bars)
	}

	high = bars[0].High
	low = bars[0].Low
	for _, b := range bars[1:n] {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low
}
