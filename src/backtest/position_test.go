package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrange-trading/openrange/src/indicators"
	"github.com/openrange-trading/openrange/src/marketdata"
	"github.com/openrange-trading/openrange/src/models"
	"github.com/openrange-trading/openrange/src/scanner"
)

func longFixture() *Position {
	return &Position{
		Symbol:      "LNG",
		Direction:   models.DirectionLong,
		SetupType:   models.SetupTypeORBBreakout,
		EntryPrice:  103.00,
		Quantity:    100,
		StopLoss:    99.98,
		Target:      109.04,
		EntryDate:   mustDay("2024-01-02"),
		EntryTime:   marketdata.OpeningRangeEnd,
		initialRisk: 3.02,
		atr:         0.20,
	}
}

func shortFixture() *Position {
	return &Position{
		Symbol:      "SHT",
		Direction:   models.DirectionShort,
		SetupType:   models.SetupTypeORBBreakdown,
		EntryPrice:  100.00,
		Quantity:    100,
		StopLoss:    103.02,
		Target:      93.96,
		EntryDate:   mustDay("2024-01-02"),
		EntryTime:   marketdata.OpeningRangeEnd,
		initialRisk: 3.02,
		atr:         0.20,
	}
}

func TestNewPosition(t *testing.T) {
	day := mustDay("2024-01-02")
	cfg := DefaultConfig()

	t.Run("long stops at the range low and targets two R above", func(t *testing.T) {
		c := &scanner.Candidate{
			Symbol:    "LNG",
			Direction: models.DirectionLong,
			SetupType: models.SetupTypeORBBreakout,
			Snapshot:  &indicators.Snapshot{LastClose: 103.00, ORBHigh: 101.52, ORBLow: 99.98, ATR: 0.20},
		}

		p := NewPosition(c, day, marketdata.OpeningRangeEnd, cfg)

		assert.InDelta(t, 103.00, p.EntryPrice, 1e-9)
		assert.InDelta(t, 99.98, p.StopLoss, 1e-9)
		assert.InDelta(t, 109.04, p.Target, 1e-9)
		assert.Equal(t, marketdata.Midnight(day), p.EntryDate)
	})

	t.Run("short stops at the range high and targets two R below", func(t *testing.T) {
		c := &scanner.Candidate{
			Symbol:    "SHT",
			Direction: models.DirectionShort,
			SetupType: models.SetupTypeORBBreakdown,
			Snapshot:  &indicators.Snapshot{LastClose: 100.00, ORBHigh: 103.02, ORBLow: 101.00, ATR: 0.20},
		}

		p := NewPosition(c, day, marketdata.OpeningRangeEnd, cfg)

		assert.InDelta(t, 103.02, p.StopLoss, 1e-9)
		assert.InDelta(t, 93.96, p.Target, 1e-9)
	})
}

func TestPositionExitChecks(t *testing.T) {
	day := mustDay("2024-01-02")

	t.Run("long stop and target react to the bar range", func(t *testing.T) {
		p := longFixture()

		inside := fixtureBar("LNG", day, marketdata.NewTimeOfDay(10, 30), 103, 104, 102, 103.5, 100)
		assert.False(t, p.StopHit(inside))
		assert.False(t, p.TargetHit(inside))

		below := fixtureBar("LNG", day, marketdata.NewTimeOfDay(10, 31), 101, 101, 99.90, 100, 100)
		assert.True(t, p.StopHit(below))

		above := fixtureBar("LNG", day, marketdata.NewTimeOfDay(10, 32), 108, 109.10, 108, 109, 100)
		assert.True(t, p.TargetHit(above))
	})

	t.Run("short stop and target are mirrored", func(t *testing.T) {
		p := shortFixture()

		squeeze := fixtureBar("SHT", day, marketdata.NewTimeOfDay(10, 30), 102, 103.10, 102, 103, 100)
		assert.True(t, p.StopHit(squeeze))

		flush := fixtureBar("SHT", day, marketdata.NewTimeOfDay(10, 31), 94.5, 94.5, 93.90, 94, 100)
		assert.True(t, p.TargetHit(flush))
	})

	t.Run("a gap through the stop fills at the open", func(t *testing.T) {
		p := longFixture()
		gapped := fixtureBar("LNG", day, marketdata.NewTimeOfDay(10, 30), 99.00, 99.50, 98.50, 99.20, 100)

		require.True(t, p.StopHit(gapped))
		assert.InDelta(t, 99.00, p.stopFill(gapped), 1e-9)
	})

	t.Run("a gap past the target fills at the open", func(t *testing.T) {
		p := longFixture()
		gapped := fixtureBar("LNG", day, marketdata.NewTimeOfDay(10, 30), 110.00, 110.50, 109.80, 110.20, 100)

		require.True(t, p.TargetHit(gapped))
		assert.InDelta(t, 110.00, p.targetFill(gapped), 1e-9)
	})
}

func TestPositionRatchet(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("dormant below one initial risk of gain", func(t *testing.T) {
		p := longFixture()

		p.Ratchet(105.90, cfg)

		assert.InDelta(t, 99.98, p.StopLoss, 1e-9)
		assert.Equal(t, models.ExitReasonStopLoss, p.stopExitReason())
	})

	t.Run("arms at one initial risk and trails by ATR", func(t *testing.T) {
		p := longFixture()

		p.Ratchet(106.20, cfg)

		assert.InDelta(t, 105.90, p.StopLoss, 1e-9)
		assert.Equal(t, models.ExitReasonTrailingStop, p.stopExitReason())
	})

	t.Run("never loosens once armed", func(t *testing.T) {
		p := longFixture()

		p.Ratchet(106.20, cfg)
		p.Ratchet(107.00, cfg)
		assert.InDelta(t, 106.70, p.StopLoss, 1e-9)

		p.Ratchet(105.00, cfg)
		assert.InDelta(t, 106.70, p.StopLoss, 1e-9)
	})

	t.Run("short ratchet trails above price", func(t *testing.T) {
		p := shortFixture()

		p.Ratchet(96.90, cfg)

		assert.InDelta(t, 97.20, p.StopLoss, 1e-9)
		assert.Equal(t, models.ExitReasonTrailingStop, p.stopExitReason())
	})

	t.Run("degenerate risk never arms", func(t *testing.T) {
		p := longFixture()
		p.initialRisk = 0

		p.Ratchet(150.00, cfg)

		assert.InDelta(t, 99.98, p.StopLoss, 1e-9)
	})
}

func TestPositionClose(t *testing.T) {
	t.Run("long pnl is price gain times quantity", func(t *testing.T) {
		p := longFixture()

		trade := p.Close(106.00, marketdata.NewTimeOfDay(14, 0), models.ExitReasonProfitTarget)

		assert.InDelta(t, 300.0, trade.PnL, 1e-9)
		assert.True(t, trade.IsWinner())
		assert.True(t, trade.Intraday())
	})

	t.Run("short pnl inverts the price move", func(t *testing.T) {
		p := shortFixture()

		trade := p.Close(95.00, marketdata.NewTimeOfDay(14, 0), models.ExitReasonProfitTarget)

		assert.InDelta(t, 500.0, trade.PnL, 1e-9)
		assert.True(t, trade.IsWinner())
	})

	t.Run("the forced close can lose", func(t *testing.T) {
		p := longFixture()

		trade := p.Close(101.00, marketdata.ForcedCloseTime, models.ExitReasonEndOfDay)

		assert.InDelta(t, -200.0, trade.PnL, 1e-9)
		assert.Equal(t, models.ExitReasonEndOfDay, trade.ExitReason)
		assert.False(t, trade.IsWinner())
	})
}
