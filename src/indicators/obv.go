package indicators

import (
	"github.com/montanaflynn/stats"

	"github.com/openrange-trading/openrange/src/marketdata"
)

const (
	obvSlopeLookback = 10
	obvSlopeWindow   = 20
)

// obvSeries is cumulative signed volume: a bar's volume adds on an up close
// and subtracts on a down close.
func obvSeries(bars []*marketdata.Bar) []float64 {
	out := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		switch {
		case bars[i].Close > bars[i-1].Close:
			out[i] = out[i-1] + bars[i].Volume
		case bars[i].Close < bars[i-1].Close:
			out[i] = out[i-1] - bars[i].Volume
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// obvSlope normalizes the 10-bar OBV change by the standard deviation of the
// trailing 20 OBV values, turning raw volume momentum into a dimensionless
// score. A flat window has no information and scores 0.
func obvSlope(obv []float64) float64 {
	if len(obv) < obvSlopeWindow {
		return 0
	}

	delta := obv[len(obv)-1] - obv[len(obv)-1-obvSlopeLookback]

	sd, err := stats.StandardDeviation(obv[len(obv)-obvSlopeWindow:])
	if err != nil || sd == 0 {
		return 0
	}
	return delta / sd
}
