package indicators

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/openrange-trading/openrange/src/marketdata"
)

// trueRange follows Wilder: the largest of the bar's own range and the gaps
// from the previous close.
func trueRange(b *marketdata.Bar, prevClose float64) float64 {
	r := b.High - b.Low
	if hc := math.Abs(b.High - prevClose); hc > r {
		r = hc
	}
	if lc := math.Abs(b.Low - prevClose); lc > r {
		r = lc
	}
	return r
}

// trueRanges returns the per-bar true-range series; the first entry has no
// previous close and uses the plain high-low range.
func trueRanges(bars []*marketdata.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		if i == 0 {
			out[i] = b.High - b.Low
			continue
		}
		out[i] = trueRange(b, bars[i-1].Close)
	}
	return out
}

// atr is the rolling mean of true range over the trailing period bars.
func atr(bars []*marketdata.Bar, period int) (float64, error) {
	ranges := trueRanges(bars)
	if len(ranges) > period {
		ranges = ranges[len(ranges)-period:]
	}

	mean, err := stats.Mean(ranges)
	if err != nil {
		return 0, fmt.Errorf("atr: %w", err)
	}
	return mean, nil
}
