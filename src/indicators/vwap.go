package indicators

import (
	"github.com/montanaflynn/stats"

	"github.com/openrange-trading/openrange/src/marketdata"
)

// sessionVWAP is the volume-weighted average close since the session start.
// It resets with each session because the input sequence does.
func sessionVWAP(bars []*marketdata.Bar) float64 {
	var priceVolume, volume float64
	for _, b := range bars {
		priceVolume += b.Close * b.Volume
		volume += b.Volume
	}

	if volume == 0 {
		// nothing traded yet; fall back to the plain average close
		closes := make([]float64, len(bars))
		for i, b := range bars {
			closes[i] = b.Close
		}
		mean, err := stats.Mean(closes)
		if err != nil {
			return 0
		}
		return mean
	}
	return priceVolume / volume
}
