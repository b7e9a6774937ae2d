package backtest

import (
	"math"
	"time"

	"github.com/openrange-trading/openrange/src/marketdata"
	"github.com/openrange-trading/openrange/src/models"
	"github.com/openrange-trading/openrange/src/scanner"
)

// Position is one open intraday position. Exactly one DaySimulator owns it;
// it is mutated only at management checkpoints and destroyed on exit. A
// Position never survives the forced close, so it never carries overnight.
type Position struct {
	Symbol     string
	Direction  models.Direction
	SetupType  models.SetupType
	EntryPrice float64
	Quantity   int
	StopLoss   float64
	Target     float64
	EntryDate  time.Time
	EntryTime  marketdata.TimeOfDay

	initialRisk float64 // per-share distance to the original stop
	atr         float64 // session ATR at entry, drives the trailing distance
	trailing    bool
}

// NewPosition opens a position from a scored candidate. Entry is the last
// close at the decision cutoff, the stop sits on the far side of the opening
// range, and the target is ProfitTargetR initial risks beyond entry. The
// caller sizes the position afterwards; a zero quantity means it never
// actually opens.
func NewPosition(c *scanner.Candidate, day time.Time, entryTime marketdata.TimeOfDay, cfg Config) *Position {
	entry := c.Snapshot.LastClose

	var stop float64
	if c.Direction == models.DirectionLong {
		stop = c.Snapshot.ORBLow
	} else {
		stop = c.Snapshot.ORBHigh
	}

	risk := math.Abs(entry - stop)
	sign := c.Direction.Sign()

	return &Position{
		Symbol:      c.Symbol,
		Direction:   c.Direction,
		SetupType:   c.SetupType,
		EntryPrice:  entry,
		StopLoss:    stop,
		Target:      entry + sign*cfg.ProfitTargetR*risk,
		EntryDate:   marketdata.Midnight(day),
		EntryTime:   entryTime,
		initialRisk: risk,
		atr:         c.Snapshot.ATR,
	}
}

// StopHit reports whether the bar's range reached the stop level.
func (p *Position) StopHit(b *marketdata.Bar) bool {
	if p.Direction == models.DirectionLong {
		return b.Low <= p.StopLoss
	}
	return b.High >= p.StopLoss
}

// TargetHit reports whether the bar's range reached the profit target.
func (p *Position) TargetHit(b *marketdata.Bar) bool {
	if p.Direction == models.DirectionLong {
		return b.High >= p.Target
	}
	return b.Low <= p.Target
}

// stopFill is the assumed fill for a stop exit on this bar: the stop level,
// unless the bar already opened through it.
func (p *Position) stopFill(b *marketdata.Bar) float64 {
	if p.Direction == models.DirectionLong && b.Open < p.StopLoss {
		return b.Open
	}
	if p.Direction == models.DirectionShort && b.Open > p.StopLoss {
		return b.Open
	}
	return p.StopLoss
}

// targetFill is the assumed fill for a target exit on this bar. An open
// beyond the target fills at the open.
func (p *Position) targetFill(b *marketdata.Bar) float64 {
	if p.Direction == models.DirectionLong && b.Open > p.Target {
		return b.Open
	}
	if p.Direction == models.DirectionShort && b.Open < p.Target {
		return b.Open
	}
	return p.Target
}

// Ratchet arms the trailing stop once the close has moved TrailTriggerR
// initial risks in the position's favor, then advances it toward price by
// TrailATRMultiple ATRs. The stop only ever tightens.
func (p *Position) Ratchet(close float64, cfg Config) {
	sign := p.Direction.Sign()

	if !p.trailing {
		if p.initialRisk == 0 {
			return
		}
		if sign*(close-p.EntryPrice) < cfg.TrailTriggerR*p.initialRisk {
			return
		}
		p.trailing = true
	}

	trail := close - sign*cfg.TrailATRMultiple*p.atr
	if sign*(trail-p.StopLoss) > 0 {
		p.StopLoss = trail
	}
}

// stopExitReason distinguishes the original protective stop from an armed
// trailing stop.
func (p *Position) stopExitReason() models.ExitReason {
	if p.trailing {
		return models.ExitReasonTrailingStop
	}
	return models.ExitReasonStopLoss
}

// Close destroys the position and returns its immutable Trade. Exit shares
// the entry's calendar day by construction.
func (p *Position) Close(price float64, exitTime marketdata.TimeOfDay, reason models.ExitReason) *models.Trade {
	sign := p.Direction.Sign()
	return &models.Trade{
		Symbol:     p.Symbol,
		Direction:  p.Direction,
		EntryPrice: p.EntryPrice,
		ExitPrice:  price,
		Quantity:   p.Quantity,
		PnL:        sign * (price - p.EntryPrice) * float64(p.Quantity),
		EntryDate:  p.EntryDate,
		EntryTime:  p.EntryTime.OnDay(p.EntryDate),
		ExitDate:   p.EntryDate,
		ExitTime:   exitTime.OnDay(p.EntryDate),
		ExitReason: reason,
		SetupType:  p.SetupType,
	}
}
