package scanner

import (
	"math"
	"sort"

	"github.com/openrange-trading/openrange/src/marketdata"
)

// GateConfig bounds the pre-market filter. It is passed by value into each
// day's simulation; nothing mutates it at run time.
type GateConfig struct {
	MinDollarVolume   float64 // minimum pre-market dollar volume
	MinGapPct         float64 // minimum absolute gap against the prior close
	MinRelativeVolume float64 // pre-market volume as a share of the prior day's total
	MinMovePct        float64 // minimum absolute pre-market drift
	ShortlistSize     int     // top-K bound on the surviving universe; 0 = unbounded
	RequiredGates     int     // gates that must pass, out of four
}

func DefaultGateConfig() GateConfig {
	return GateConfig{
		MinDollarVolume:   250_000,
		MinGapPct:         0.01,
		MinRelativeVolume: 0.05,
		MinMovePct:        0.003,
		ShortlistSize:     20,
		RequiredGates:     3,
	}
}

// PremarketStats summarizes one symbol's pre-market tape together with the
// prior session's reference values. Zero PriorClose/PriorVolume mean the
// prior session is unknown.
type PremarketStats struct {
	Symbol       string
	DollarVolume float64
	TotalVolume  float64
	FirstPrice   float64
	LastPrice    float64
	PriorClose   float64
	PriorVolume  float64
}

// BuildPremarketStats folds a symbol's pre-market bars with the prior
// session's close and total volume.
func BuildPremarketStats(symbol string, premarket []*marketdata.Bar, priorClose, priorVolume float64) PremarketStats {
	st := PremarketStats{Symbol: symbol, PriorClose: priorClose, PriorVolume: priorVolume}
	for _, b := range premarket {
		st.DollarVolume += b.DollarVolume()
		st.TotalVolume += b.Volume
		st.LastPrice = b.Close
	}
	if len(premarket) > 0 {
		st.FirstPrice = premarket[0].Open
	}
	return st
}

// Gates counts how many of the four pre-market gates pass: liquidity, gap,
// relative volume and momentum. Gap and relative volume pass vacuously when
// the prior session is unknown, so the first day of a range is not excluded
// outright.
func (c GateConfig) Gates(st PremarketStats) int {
	passed := 0

	if st.DollarVolume >= c.MinDollarVolume {
		passed++
	}

	if st.PriorClose == 0 {
		passed++
	} else if st.LastPrice > 0 && math.Abs(st.LastPrice-st.PriorClose)/st.PriorClose >= c.MinGapPct {
		passed++
	}

	if st.PriorVolume == 0 {
		passed++
	} else if st.TotalVolume/st.PriorVolume >= c.MinRelativeVolume {
		passed++
	}

	if st.FirstPrice > 0 && math.Abs(st.LastPrice-st.FirstPrice)/st.FirstPrice >= c.MinMovePct {
		passed++
	}

	return passed
}

// Shortlist applies the gates and keeps the most active survivors: ranked by
// pre-market dollar volume descending, ties broken by ascending symbol.
func (c GateConfig) Shortlist(stats []PremarketStats) []string {
	var passing []PremarketStats
	for _, st := range stats {
		if c.Gates(st) >= c.RequiredGates {
			passing = append(passing, st)
		}
	}

	sort.SliceStable(passing, func(i, j int) bool {
		if passing[i].DollarVolume != passing[j].DollarVolume {
			return passing[i].DollarVolume > passing[j].DollarVolume
		}
		return passing[i].Symbol < passing[j].Symbol
	})

	if c.ShortlistSize > 0 && len(passing) > c.ShortlistSize {
		passing = passing[:c.ShortlistSize]
	}

	out := make([]string, len(passing))
	for i, st := range passing {
		out[i] = st.Symbol
	}
	return out
}
