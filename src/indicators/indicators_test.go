package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrange-trading/openrange/src/marketdata"
)

// pointBars builds bars with open=high=low=close, one minute apart.
func pointBars(closes []float64, volume float64) []*marketdata.Bar {
	day, err := marketdata.ParseDate("2024-03-05")
	if err != nil {
		panic(err)
	}

	out := make([]*marketdata.Bar, len(closes))
	for i, c := range closes {
		out[i] = &marketdata.Bar{
			Symbol:    "AAA",
			Timestamp: (marketdata.MarketOpen + marketdata.TimeOfDay(i)).OnDay(day),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    volume,
		}
	}
	return out
}

func ramp(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func flat(value float64, n int) []float64 {
	return ramp(value, 0, n)
}

func TestComputeInsufficientData(t *testing.T) {
	t.Run("below the minimum returns the sentinel", func(t *testing.T) {
		snap, err := Compute(pointBars(flat(100, MinimumBars-1), 1000))

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInsufficientData)
		assert.Nil(t, snap)
	})

	t.Run("exactly the minimum is enough", func(t *testing.T) {
		snap, err := Compute(pointBars(flat(100, MinimumBars), 1000))

		require.NoError(t, err)
		assert.Equal(t, MinimumBars, snap.BarCount)
	})
}

func TestComputeFlatSession(t *testing.T) {
	snap, err := Compute(pointBars(flat(100, 35), 1000))
	require.NoError(t, err)

	assert.InDelta(t, 100.0, snap.VWAP, 1e-9)
	assert.InDelta(t, 0.0, snap.ATR, 1e-9)
	assert.InDelta(t, 0.0, snap.ATRPct, 1e-9)
	assert.InDelta(t, 0.0, snap.ADX, 1e-9)
	assert.InDelta(t, 0.0, snap.OBVSlope, 1e-9)
	assert.InDelta(t, 1.0, snap.VolumeRatio, 1e-9)
	assert.InDelta(t, 0.0, snap.VWAPDeviation, 1e-9)
	assert.Equal(t, 100.0, snap.ORBHigh)
	assert.Equal(t, 100.0, snap.ORBLow)
	assert.Equal(t, 100.0, snap.LastClose)
}

func TestComputeTrendingSession(t *testing.T) {
	// forty bars climbing 0.1 per minute
	snap, err := Compute(pointBars(ramp(100, 0.1, 40), 1000))
	require.NoError(t, err)

	t.Run("close sits above vwap on a steady climb", func(t *testing.T) {
		assert.Greater(t, snap.LastClose, snap.VWAP)
		assert.Greater(t, snap.VWAPDeviation, 0.0)
	})

	t.Run("opening range comes from the first thirty bars", func(t *testing.T) {
		assert.InDelta(t, 102.9, snap.ORBHigh, 1e-9)
		assert.InDelta(t, 100.0, snap.ORBLow, 1e-9)
		assert.Greater(t, snap.LastClose, snap.ORBHigh)
	})

	t.Run("atr picks up the close-to-close gaps", func(t *testing.T) {
		assert.InDelta(t, 0.1, snap.ATR, 1e-9)
		assert.InDelta(t, 0.1/103.9, snap.ATRPct, 1e-9)
	})

	t.Run("one-way tape reads as maximum trend strength", func(t *testing.T) {
		assert.InDelta(t, 100.0, snap.ADX, 0.5)
	})

	t.Run("obv slope is positive and normalized", func(t *testing.T) {
		// obv climbs 1000 per bar; delta of 10000 over a std-dev of ~5766
		assert.InDelta(t, 1.734, snap.OBVSlope, 0.01)
	})
}

func TestOpeningRangeStaysFixed(t *testing.T) {
	closes := flat(100, 40)
	bars := pointBars(closes, 1000)
	// a spike well after the opening range must not move the levels
	bars[35].High = 200
	bars[35].Low = 50

	snap, err := Compute(bars)
	require.NoError(t, err)

	assert.Equal(t, 100.0, snap.ORBHigh)
	assert.Equal(t, 100.0, snap.ORBLow)
}

func TestSessionVWAPWeighting(t *testing.T) {
	day, _ := marketdata.ParseDate("2024-03-05")
	at := func(i int) time.Time { return (marketdata.MarketOpen + marketdata.TimeOfDay(i)).OnDay(day) }

	t.Run("volume weights the average", func(t *testing.T) {
		bars := []*marketdata.Bar{
			{Timestamp: at(0), Close: 10, Volume: 100},
			{Timestamp: at(1), Close: 20, Volume: 300},
		}
		assert.InDelta(t, 17.5, sessionVWAP(bars), 1e-9)
	})

	t.Run("zero traded volume falls back to the mean close", func(t *testing.T) {
		bars := []*marketdata.Bar{
			{Timestamp: at(0), Close: 10},
			{Timestamp: at(1), Close: 20},
			{Timestamp: at(2), Close: 30},
		}
		assert.InDelta(t, 20.0, sessionVWAP(bars), 1e-9)
	})
}

func TestTrueRange(t *testing.T) {
	t.Run("gap up dominates the bar range", func(t *testing.T) {
		b := &marketdata.Bar{High: 105, Low: 103}
		assert.InDelta(t, 5.0, trueRange(b, 100), 1e-9)
	})

	t.Run("gap down dominates the bar range", func(t *testing.T) {
		b := &marketdata.Bar{High: 95, Low: 93}
		assert.InDelta(t, 7.0, trueRange(b, 100), 1e-9)
	})

	t.Run("wide bar dominates small gaps", func(t *testing.T) {
		b := &marketdata.Bar{High: 104, Low: 96}
		assert.InDelta(t, 8.0, trueRange(b, 100), 1e-9)
	})
}

func TestOBVSlopeEdgeCases(t *testing.T) {
	t.Run("short series has no slope", func(t *testing.T) {
		assert.Equal(t, 0.0, obvSlope(make([]float64, obvSlopeWindow-1)))
	})

	t.Run("flat window has no slope", func(t *testing.T) {
		window := make([]float64, obvSlopeWindow)
		for i := range window {
			window[i] = 5000
		}
		assert.Equal(t, 0.0, obvSlope(window))
	})
}
