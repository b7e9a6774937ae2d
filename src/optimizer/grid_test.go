package optimizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrange-trading/openrange/src/models"
)

func smallGrid(t *testing.T) *Grid {
	t.Helper()

	g, err := NewGrid([]Axis{
		{Name: "min_score", Values: []float64{0.5, 0.6, 0.7}},
		{Name: "leverage", Values: []float64{1, 2}},
	})
	require.NoError(t, err)
	return g
}

func TestNewGrid(t *testing.T) {
	t.Run("no axes", func(t *testing.T) {
		_, err := NewGrid(nil)
		assert.ErrorIs(t, err, models.ErrInvalidParameterSet)
	})

	t.Run("axis without values", func(t *testing.T) {
		_, err := NewGrid([]Axis{{Name: "min_score"}})
		assert.ErrorIs(t, err, models.ErrInvalidParameterSet)
	})

	t.Run("unknown dimension name", func(t *testing.T) {
		_, err := NewGrid([]Axis{{Name: "momentum_window", Values: []float64{5}}})
		assert.ErrorIs(t, err, models.ErrUnknownParameter)
	})

	t.Run("value outside the validation domain", func(t *testing.T) {
		_, err := NewGrid([]Axis{{Name: "risk_per_trade", Values: []float64{0.01, 0.9}}})
		assert.ErrorIs(t, err, models.ErrInvalidParameterSet)
	})
}

func TestGridSize(t *testing.T) {
	assert.Equal(t, 6, smallGrid(t).Size())
	assert.Equal(t, 1944, DefaultGrid().Size())
}

func TestGridAt(t *testing.T) {
	grid := DefaultGrid()

	t.Run("first point takes every first value", func(t *testing.T) {
		p, err := grid.At(0)
		require.NoError(t, err)

		assert.Equal(t, 0.5, p.MinScore)
		assert.Equal(t, 0.3, p.OBVSlopeThreshold)
		assert.Equal(t, 0.005, p.VWAPBandPct)
		assert.Equal(t, 0.005, p.RiskPerTrade)
		assert.Equal(t, 1.0, p.Leverage)
		assert.Equal(t, 2, p.MaxPositions)
		assert.Equal(t, 0.005, p.ATRPctThreshold)
		assert.Equal(t, 1.2, p.VolumeRatioThreshold)
	})

	t.Run("last axis varies fastest", func(t *testing.T) {
		p, err := grid.At(1)
		require.NoError(t, err)
		assert.Equal(t, 1.5, p.VolumeRatioThreshold)
		assert.Equal(t, 0.5, p.MinScore)

		p, err = grid.At(2)
		require.NoError(t, err)
		assert.Equal(t, 1.2, p.VolumeRatioThreshold)
		assert.Equal(t, 0.01, p.ATRPctThreshold)
	})

	t.Run("last point takes every last value", func(t *testing.T) {
		p, err := grid.At(grid.Size() - 1)
		require.NoError(t, err)

		assert.Equal(t, 0.7, p.MinScore)
		assert.Equal(t, 0.8, p.OBVSlopeThreshold)
		assert.Equal(t, 0.02, p.VWAPBandPct)
		assert.Equal(t, 0.02, p.RiskPerTrade)
		assert.Equal(t, 2.0, p.Leverage)
		assert.Equal(t, 5, p.MaxPositions)
		assert.Equal(t, 0.01, p.ATRPctThreshold)
		assert.Equal(t, 1.5, p.VolumeRatioThreshold)
	})

	t.Run("unsearched dimensions keep their defaults", func(t *testing.T) {
		p, err := smallGrid(t).At(0)
		require.NoError(t, err)

		defaults := models.DefaultParameterSet()
		assert.Equal(t, defaults.RiskPerTrade, p.RiskPerTrade)
		assert.Equal(t, defaults.MaxPositions, p.MaxPositions)
		assert.Equal(t, defaults.VWAPBandPct, p.VWAPBandPct)
	})

	t.Run("index outside the grid", func(t *testing.T) {
		_, err := grid.At(-1)
		assert.Error(t, err)

		_, err = grid.At(grid.Size())
		assert.Error(t, err)
	})
}

func TestGridContains(t *testing.T) {
	grid := DefaultGrid()

	t.Run("decoded points are always members", func(t *testing.T) {
		for _, index := range []int{0, 7, 500, grid.Size() - 1} {
			p, err := grid.At(index)
			require.NoError(t, err)
			assert.NoError(t, grid.Contains(p))
		}
	})

	t.Run("off grid value is rejected", func(t *testing.T) {
		p := models.DefaultParameterSet()
		p.MinScore = 0.55

		assert.ErrorIs(t, grid.Contains(p), models.ErrParameterOutOfDomain)
	})
}

func TestGridSample(t *testing.T) {
	grid := smallGrid(t)

	t.Run("budget below size spreads evenly", func(t *testing.T) {
		assert.Equal(t, []int{0, 1, 3, 4}, grid.Sample(4))
	})

	t.Run("budget at or above size walks everything", func(t *testing.T) {
		all := []int{0, 1, 2, 3, 4, 5}
		assert.Equal(t, all, grid.Sample(6))
		assert.Equal(t, all, grid.Sample(100))
	})

	t.Run("non positive budget means the whole grid", func(t *testing.T) {
		assert.Len(t, grid.Sample(0), grid.Size())
		assert.Len(t, grid.Sample(-3), grid.Size())
	})

	t.Run("same budget always picks the same points", func(t *testing.T) {
		big := DefaultGrid()
		first := big.Sample(60)
		assert.Equal(t, first, big.Sample(60))
		assert.Len(t, first, 60)

		for i := 1; i < len(first); i++ {
			assert.Greater(t, first[i], first[i-1])
			assert.Less(t, first[i], big.Size())
		}
	})
}

func TestGridIterator(t *testing.T) {
	grid := smallGrid(t)
	it := grid.Iterator()

	var seen []models.ParameterSet
	for {
		p, ok := it.Next()
		if !ok {
			break
		}
		seen = append(seen, p)
	}
	require.Len(t, seen, grid.Size())

	first, err := grid.At(0)
	require.NoError(t, err)
	last, err := grid.At(grid.Size() - 1)
	require.NoError(t, err)
	assert.True(t, seen[0].Equal(first))
	assert.True(t, seen[len(seen)-1].Equal(last))

	_, ok := it.Next()
	assert.False(t, ok)

	it.Reset()
	p, ok := it.Next()
	require.True(t, ok)
	assert.True(t, p.Equal(first))
}

func TestLoadGrid(t *testing.T) {
	t.Run("round trips a yaml domain file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "grid.yaml")
		doc := `axes:
  - name: min_score
    values: [0.5, 0.7]
  - name: leverage
    values: [1, 2, 3]
`
		require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

		grid, err := LoadGrid(path)
		require.NoError(t, err)
		assert.Equal(t, 6, grid.Size())

		p, err := grid.At(5)
		require.NoError(t, err)
		assert.Equal(t, 0.7, p.MinScore)
		assert.Equal(t, 3.0, p.Leverage)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadGrid(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid axis inside the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "grid.yaml")
		doc := `axes:
  - name: leverage
    values: [99]
`
		require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

		_, err := LoadGrid(path)
		assert.ErrorIs(t, err, models.ErrInvalidParameterSet)
	})
}
