package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrange-trading/openrange/src/marketdata"
)

func premarketBar(open, close, volume float64) *marketdata.Bar {
	return &marketdata.Bar{Open: open, High: close, Low: open, Close: close, Volume: volume}
}

func TestBuildPremarketStats(t *testing.T) {
	bars := []*marketdata.Bar{
		premarketBar(100, 100.5, 1000),
		premarketBar(100.5, 101, 2000),
	}

	st := BuildPremarketStats("AAA", bars, 99, 50_000)

	assert.Equal(t, "AAA", st.Symbol)
	assert.InDelta(t, 302_500.0, st.DollarVolume, 1e-6)
	assert.Equal(t, 3000.0, st.TotalVolume)
	assert.Equal(t, 100.0, st.FirstPrice)
	assert.Equal(t, 101.0, st.LastPrice)
	assert.Equal(t, 99.0, st.PriorClose)
	assert.Equal(t, 50_000.0, st.PriorVolume)
}

func TestGates(t *testing.T) {
	cfg := DefaultGateConfig()

	t.Run("active gapping symbol passes all four", func(t *testing.T) {
		bars := []*marketdata.Bar{
			premarketBar(100, 100.5, 1000),
			premarketBar(100.5, 101, 2000),
		}
		st := BuildPremarketStats("AAA", bars, 99, 50_000)

		assert.Equal(t, 4, cfg.Gates(st))
	})

	t.Run("unknown prior session passes gap and relative volume vacuously", func(t *testing.T) {
		bars := []*marketdata.Bar{
			premarketBar(100, 100.5, 1000),
			premarketBar(100.5, 101, 2000),
		}
		st := BuildPremarketStats("AAA", bars, 0, 0)

		// liquidity and momentum are real, the other two are vacuous
		assert.Equal(t, 4, cfg.Gates(st))
	})

	t.Run("quiet symbol fails everything", func(t *testing.T) {
		bars := []*marketdata.Bar{premarketBar(100, 100, 10)}
		st := BuildPremarketStats("AAA", bars, 100, 10_000_000)

		assert.Equal(t, 0, cfg.Gates(st))
	})

	t.Run("no premarket tape fails liquidity and momentum", func(t *testing.T) {
		st := BuildPremarketStats("AAA", nil, 0, 0)

		// only the two vacuous passes remain, below the default requirement
		assert.Equal(t, 2, cfg.Gates(st))
	})
}

func TestShortlist(t *testing.T) {
	cfg := DefaultGateConfig()

	activeStats := func(symbol string, scale float64) PremarketStats {
		bars := []*marketdata.Bar{
			premarketBar(100, 100.5, 1000*scale),
			premarketBar(100.5, 101, 2000*scale),
		}
		return BuildPremarketStats(symbol, bars, 99, 50_000)
	}

	t.Run("ranks passing symbols by dollar volume", func(t *testing.T) {
		shortlist := cfg.Shortlist([]PremarketStats{
			activeStats("LOW", 1),
			activeStats("HIGH", 3),
			activeStats("MID", 2),
		})

		assert.Equal(t, []string{"HIGH", "MID", "LOW"}, shortlist)
	})

	t.Run("ties break by ascending symbol", func(t *testing.T) {
		shortlist := cfg.Shortlist([]PremarketStats{
			activeStats("ZZZ", 1),
			activeStats("AAA", 1),
		})

		assert.Equal(t, []string{"AAA", "ZZZ"}, shortlist)
	})

	t.Run("failing symbols never make the list", func(t *testing.T) {
		quiet := BuildPremarketStats("QUIET", []*marketdata.Bar{premarketBar(100, 100, 10)}, 100, 10_000_000)

		shortlist := cfg.Shortlist([]PremarketStats{activeStats("AAA", 1), quiet})

		assert.Equal(t, []string{"AAA"}, shortlist)
	})

	t.Run("top-k bound trims the tail", func(t *testing.T) {
		cfg := cfg
		cfg.ShortlistSize = 2

		shortlist := cfg.Shortlist([]PremarketStats{
			activeStats("AAA", 1),
			activeStats("BBB", 2),
			activeStats("CCC", 3),
		})

		require.Len(t, shortlist, 2)
		assert.Equal(t, []string{"CCC", "BBB"}, shortlist)
	})
}
