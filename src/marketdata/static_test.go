package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticBar(symbol string, day string, tod TimeOfDay, px float64) *Bar {
	d, err := ParseDate(day)
	if err != nil {
		panic(err)
	}
	return &Bar{
		Symbol:    symbol,
		Timestamp: tod.OnDay(d),
		Open:      px,
		High:      px,
		Low:       px,
		Close:     px,
		Volume:    1000,
	}
}

func TestStaticBarSource(t *testing.T) {
	ctx := context.Background()

	source := NewStaticBarSource(
		staticBar("AAA", "2024-03-06", MarketOpen+1, 101),
		staticBar("AAA", "2024-03-06", MarketOpen, 100),
		staticBar("AAA", "2024-03-05", MarketOpen, 99),
		staticBar("BBB", "2024-03-05", MarketOpen, 50),
		staticBar("AAA", "2024-03-08", MarketOpen, 102),
	)

	t.Run("trading days are ordered and range bound", func(t *testing.T) {
		start, _ := ParseDate("2024-03-05")
		end, _ := ParseDate("2024-03-06")

		days, err := source.TradingDays(ctx, start, end)

		require.NoError(t, err)
		require.Len(t, days, 2)
		assert.Equal(t, "2024-03-05", DateKey(days[0]))
		assert.Equal(t, "2024-03-06", DateKey(days[1]))
	})

	t.Run("symbols are sorted ascending", func(t *testing.T) {
		day, _ := ParseDate("2024-03-05")

		symbols, err := source.SymbolsWithData(ctx, day)

		require.NoError(t, err)
		assert.Equal(t, []string{"AAA", "BBB"}, symbols)
	})

	t.Run("bars come back ordered despite insertion order", func(t *testing.T) {
		day, _ := ParseDate("2024-03-06")

		bars, err := source.MinuteBars(ctx, "AAA", day, MarketOpen, MarketClose)

		require.NoError(t, err)
		require.Len(t, bars, 2)
		assert.Equal(t, 100.0, bars[0].Close)
		assert.Equal(t, 101.0, bars[1].Close)
	})

	t.Run("time range filter is inclusive on both ends", func(t *testing.T) {
		day, _ := ParseDate("2024-03-06")

		bars, err := source.MinuteBars(ctx, "AAA", day, MarketOpen+1, MarketOpen+1)

		require.NoError(t, err)
		require.Len(t, bars, 1)
		assert.Equal(t, 101.0, bars[0].Close)
	})

	t.Run("unknown symbol-day yields no bars and no error", func(t *testing.T) {
		day, _ := ParseDate("2024-03-07")

		bars, err := source.MinuteBars(ctx, "AAA", day, MarketOpen, MarketClose)

		require.NoError(t, err)
		assert.Empty(t, bars)
	})
}

func TestStaticBarSourceCSVRoundTrip(t *testing.T) {
	day, err := ParseDate("2024-03-05")
	require.NoError(t, err)

	bars := []*Bar{
		{Symbol: "AAA", Timestamp: MarketOpen.OnDay(day), Open: 100, High: 100.5, Low: 99.5, Close: 100.2, Volume: 12000},
		{Symbol: "AAA", Timestamp: (MarketOpen + 1).OnDay(day), Open: 100.2, High: 100.8, Low: 100.1, Close: 100.7, Volume: 9000},
	}

	path := t.TempDir() + "/bars.csv"
	require.NoError(t, WriteBarsCSV(path, bars))

	loaded, err := LoadBarsCSV(path)

	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "AAA", loaded[0].Symbol)
	assert.Equal(t, 100.2, loaded[0].Close)
	assert.True(t, loaded[0].Timestamp.Equal(bars[0].Timestamp))
	assert.Equal(t, 9000.0, loaded[1].Volume)

	_, err = time.Parse(time.RFC3339, bars[0].Timestamp.Format(time.RFC3339))
	assert.NoError(t, err)
}
