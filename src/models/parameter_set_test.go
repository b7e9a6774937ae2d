package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterSetValidate(t *testing.T) {
	t.Run("default set is valid", func(t *testing.T) {
		assert.NoError(t, DefaultParameterSet().Validate())
	})

	t.Run("zero max positions is allowed", func(t *testing.T) {
		p := DefaultParameterSet()
		p.MaxPositions = 0

		assert.NoError(t, p.Validate())
	})

	t.Run("min score above one is rejected", func(t *testing.T) {
		p := DefaultParameterSet()
		p.MinScore = 1.2

		err := p.Validate()

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidParameterSet)
	})

	t.Run("non positive risk per trade is rejected", func(t *testing.T) {
		p := DefaultParameterSet()
		p.RiskPerTrade = 0

		assert.ErrorIs(t, p.Validate(), ErrInvalidParameterSet)
	})

	t.Run("negative max positions is rejected", func(t *testing.T) {
		p := DefaultParameterSet()
		p.MaxPositions = -1

		assert.ErrorIs(t, p.Validate(), ErrInvalidParameterSet)
	})
}

func TestParameterSetValues(t *testing.T) {
	t.Run("value and set value round trip every dimension", func(t *testing.T) {
		p := DefaultParameterSet()

		var q ParameterSet
		for _, name := range ParameterNames() {
			v, err := p.Value(name)
			require.NoError(t, err)
			require.NoError(t, q.SetValue(name, v))
		}

		assert.True(t, p.Equal(q))
	})

	t.Run("unknown names are rejected", func(t *testing.T) {
		p := DefaultParameterSet()

		_, err := p.Value("no_such_knob")
		assert.ErrorIs(t, err, ErrUnknownParameter)

		assert.ErrorIs(t, p.SetValue("no_such_knob", 1), ErrUnknownParameter)
	})

	t.Run("max positions is widened and rounded back", func(t *testing.T) {
		var p ParameterSet
		require.NoError(t, p.SetValue("max_positions", 3.0))

		assert.Equal(t, 3, p.MaxPositions)
	})
}

func TestLoadParameterSet(t *testing.T) {
	t.Run("loads a valid yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "params.yaml")
		data := []byte(`min_score: 0.55
obv_slope_threshold: 0.4
vwap_band_pct: 0.01
risk_per_trade: 0.02
leverage: 2
max_positions: 4
atr_pct_threshold: 0.005
volume_ratio_threshold: 1.3
`)
		require.NoError(t, os.WriteFile(path, data, 0644))

		p, err := LoadParameterSet(path)

		require.NoError(t, err)
		assert.Equal(t, 0.55, p.MinScore)
		assert.Equal(t, 4, p.MaxPositions)
		assert.Equal(t, 1.3, p.VolumeRatioThreshold)
	})

	t.Run("rejects a file that fails validation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "params.yaml")
		require.NoError(t, os.WriteFile(path, []byte("min_score: 7\n"), 0644))

		_, err := LoadParameterSet(path)

		assert.ErrorIs(t, err, ErrInvalidParameterSet)
	})

	t.Run("missing file surfaces the os error", func(t *testing.T) {
		_, err := LoadParameterSet(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}
