package indicators

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/openrange-trading/openrange/src/marketdata"
)

// adx measures trend strength from smoothed directional movement, following
// Wilder: +DM/-DM and TR are smoothed over the period, DI+/DI- produce a DX
// per bar, and ADX is the mean DX over the most recent period. Too few bars
// for a full smoothing cycle reads as no trend.
func adx(bars []*marketdata.Bar, period int) float64 {
	if len(bars) < 2*period+1 {
		return 0
	}

	n := len(bars)
	ranges := trueRanges(bars)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		up := bars[i].High - bars[i-1].High
		down := bars[i-1].Low - bars[i].Low
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	// seed the smoothing with the sum of the first period values
	smoothTR := sum(ranges[1 : period+1])
	smoothPlus := sum(plusDM[1 : period+1])
	smoothMinus := sum(minusDM[1 : period+1])

	var dxs []float64
	for i := period + 1; i < n; i++ {
		smoothTR = smoothTR - smoothTR/float64(period) + ranges[i]
		smoothPlus = smoothPlus - smoothPlus/float64(period) + plusDM[i]
		smoothMinus = smoothMinus - smoothMinus/float64(period) + minusDM[i]

		if smoothTR == 0 {
			dxs = append(dxs, 0)
			continue
		}
		plusDI := 100 * smoothPlus / smoothTR
		minusDI := 100 * smoothMinus / smoothTR
		if plusDI+minusDI == 0 {
			dxs = append(dxs, 0)
			continue
		}
		dxs = append(dxs, 100*math.Abs(plusDI-minusDI)/(plusDI+minusDI))
	}

	if len(dxs) < period {
		return 0
	}
	mean, err := stats.Mean(dxs[len(dxs)-period:])
	if err != nil {
		return 0
	}
	return mean
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
