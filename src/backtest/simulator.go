package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/openrange-trading/openrange/src/indicators"
	"github.com/openrange-trading/openrange/src/marketdata"
	"github.com/openrange-trading/openrange/src/models"
	"github.com/openrange-trading/openrange/src/risk"
	"github.com/openrange-trading/openrange/src/scanner"
)

// DaySimulator replays one trading day at a time through the fixed phase
// sequence: pre-market filter, candidate scan at the 10:00 cutoff, entry,
// management at each half-hour checkpoint, forced close at 15:55. It holds
// no state between days, so one simulator per worker is enough.
type DaySimulator struct {
	source     marketdata.BarSource
	candidates marketdata.CandidateSource
	params     models.ParameterSet
	cfg        Config
}

func NewDaySimulator(source marketdata.BarSource, candidates marketdata.CandidateSource, params models.ParameterSet, cfg Config) *DaySimulator {
	return &DaySimulator{
		source:     source,
		candidates: candidates,
		params:     params,
		cfg:        cfg.withDefaults(),
	}
}

// DayResult is the immutable outcome of one simulated day.
type DayResult struct {
	Day         time.Time
	Trades      []*models.Trade
	PnL         float64
	Diagnostics Diagnostics
}

// SimulateDay runs the full state machine for one day. priorDay is the
// trading session immediately before day, or zero when unknown; the gap and
// relative-volume gates pass vacuously without it. Per-symbol problems are
// skipped and counted; an error return means the whole day failed.
func (s *DaySimulator) SimulateDay(ctx context.Context, day, priorDay time.Time) (*DayResult, error) {
	res := &DayResult{Day: marketdata.Midnight(day)}
	res.Diagnostics.DaysSimulated = 1
	dateKey := marketdata.DateKey(day)

	phase := PhasePreMarketFilter
	shortlist, err := s.premarketShortlist(ctx, day, priorDay, &res.Diagnostics)
	if err != nil {
		return nil, fmt.Errorf("SimulateDay: %s: %s: %w", dateKey, phase, err)
	}
	if len(shortlist) == 0 {
		log.Debugf("SimulateDay: %s: nothing passed the pre-market gates", dateKey)
		return res, nil
	}

	phase = PhaseCandidateScan
	candidates := s.scanCandidates(ctx, day, shortlist, &res.Diagnostics)
	if len(candidates) == 0 {
		log.Debugf("SimulateDay: %s: %d shortlisted, no candidates", dateKey, len(shortlist))
		return res, nil
	}

	phase = PhasePositionEntry
	open := s.enterPositions(candidates, day, &res.Diagnostics)
	if len(open) == 0 {
		return res, nil
	}

	phase = PhasePositionManagement
	tape := s.loadSessionTape(ctx, day, open)
	open, res.Trades = s.managePositions(open, tape)

	phase = PhaseForcedClose
	res.Trades = append(res.Trades, s.forceClose(open, tape)...)

	phase = PhaseDone
	for _, t := range res.Trades {
		res.PnL += t.PnL
	}
	log.Debugf("SimulateDay: %s: %s, %d trades, pnl %.2f", dateKey, phase, len(res.Trades), res.PnL)
	return res, nil
}

// premarketShortlist narrows the day's universe with the four pre-market
// gates and keeps the top-K most active survivors.
func (s *DaySimulator) premarketShortlist(ctx context.Context, day, priorDay time.Time, diag *Diagnostics) ([]string, error) {
	symbols, err := s.source.SymbolsWithData(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("premarketShortlist: %w", err)
	}

	var stats []scanner.PremarketStats
	for _, symbol := range symbols {
		premarket, err := s.source.MinuteBars(ctx, symbol, day, marketdata.SessionStart, marketdata.MarketOpen-1)
		if err != nil {
			log.Warnf("premarketShortlist: %s %s: %v", symbol, marketdata.DateKey(day), err)
			diag.SkippedSymbols++
			continue
		}

		priorClose, priorVolume := s.priorSessionReference(ctx, symbol, priorDay)
		stats = append(stats, scanner.BuildPremarketStats(symbol, premarket, priorClose, priorVolume))
	}

	return s.cfg.Gates.Shortlist(stats), nil
}

// priorSessionReference returns the prior session's close and total volume,
// or zeros when the prior day is unknown or has no tape.
func (s *DaySimulator) priorSessionReference(ctx context.Context, symbol string, priorDay time.Time) (float64, float64) {
	if priorDay.IsZero() {
		return 0, 0
	}

	bars, err := s.source.MinuteBars(ctx, symbol, priorDay, marketdata.MarketOpen, marketdata.MarketClose)
	if err != nil || len(bars) == 0 {
		return 0, 0
	}

	var volume float64
	for _, b := range bars {
		volume += b.Volume
	}
	return bars[len(bars)-1].Close, volume
}

// scanCandidates evaluates every shortlisted symbol at the cutoff and
// returns the survivors ranked for entry. When an external candidate source
// is wired in, its signals replace the local scorer's verdict.
func (s *DaySimulator) scanCandidates(ctx context.Context, day time.Time, shortlist []string, diag *Diagnostics) []*scanner.Candidate {
	var signals map[string]marketdata.Signal
	if s.candidates != nil {
		sigs, err := s.candidates.Candidates(ctx, day, marketdata.OpeningRangeEnd)
		if err != nil {
			log.Warnf("scanCandidates: %s: external signals unavailable, scoring locally: %v", marketdata.DateKey(day), err)
		} else {
			signals = make(map[string]marketdata.Signal, len(sigs))
			for _, sig := range sigs {
				signals[sig.Symbol] = sig
			}
		}
	}

	var candidates []*scanner.Candidate
	for _, symbol := range shortlist {
		ev := s.evaluateSymbol(ctx, symbol, day, signals)
		if ev.Skipped() {
			diag.recordSkip(ev.Skip)
			continue
		}
		candidates = append(candidates, ev.Candidate)
	}

	scanner.Rank(candidates)
	return candidates
}

// evaluateSymbol computes the indicator snapshot on the session bars through
// the cutoff and scores the symbol. Data problems become skips, never
// errors.
func (s *DaySimulator) evaluateSymbol(ctx context.Context, symbol string, day time.Time, signals map[string]marketdata.Signal) scanner.Evaluation {
	bars, err := s.source.MinuteBars(ctx, symbol, day, marketdata.MarketOpen, marketdata.OpeningRangeEnd)
	if err != nil {
		log.Warnf("evaluateSymbol: %s %s: %v", symbol, marketdata.DateKey(day), err)
		return scanner.Evaluation{Symbol: symbol, Skip: scanner.SkipDataError}
	}

	snap, err := indicators.Compute(bars)
	if err != nil {
		if errors.Is(err, indicators.ErrInsufficientData) {
			return scanner.Evaluation{Symbol: symbol, Skip: scanner.SkipInsufficientData}
		}
		log.Warnf("evaluateSymbol: %s %s: %v", symbol, marketdata.DateKey(day), err)
		return scanner.Evaluation{Symbol: symbol, Skip: scanner.SkipDataError}
	}

	if sig, ok := signals[symbol]; ok {
		return s.adoptSignal(symbol, sig, snap)
	}
	return scanner.Evaluate(symbol, snap, s.params)
}

// adoptSignal turns an externally computed signal into a candidate backed by
// the local snapshot, which still supplies the stop levels and ATR.
func (s *DaySimulator) adoptSignal(symbol string, sig marketdata.Signal, snap *indicators.Snapshot) scanner.Evaluation {
	if !sig.Direction.Tradeable() {
		return scanner.Evaluation{Symbol: symbol, Skip: scanner.SkipNoDirection}
	}
	if sig.Score <= s.params.MinScore {
		return scanner.Evaluation{Symbol: symbol, Skip: scanner.SkipBelowMinScore}
	}

	setup := models.SetupTypeORBBreakout
	if sig.Direction == models.DirectionShort {
		setup = models.SetupTypeORBBreakdown
	}
	return scanner.Evaluation{Symbol: symbol, Candidate: &scanner.Candidate{
		Symbol:    symbol,
		Direction: sig.Direction,
		Score:     sig.Score,
		SetupType: setup,
		Snapshot:  snap,
	}}
}

// enterPositions opens positions highest score first until MaxPositions.
// Sizing uses the day-local initial capital, never a running total. A
// zero-quantity candidate is skipped, not retried.
func (s *DaySimulator) enterPositions(candidates []*scanner.Candidate, day time.Time, diag *Diagnostics) []*Position {
	var open []*Position
	for _, c := range candidates {
		if len(open) >= s.params.MaxPositions {
			break
		}

		p := NewPosition(c, day, marketdata.OpeningRangeEnd, s.cfg)
		quantity := risk.Quantity(p.EntryPrice, p.StopLoss, s.cfg.InitialCapital,
			s.params.RiskPerTrade, s.params.Leverage, s.cfg.CapitalUtilization, s.cfg.MaxShares)
		if quantity == 0 {
			diag.ZeroQuantity++
			continue
		}

		p.Quantity = quantity
		open = append(open, p)
	}
	return open
}

// loadSessionTape fetches each entered symbol's session bars once, through
// the forced close. Management and the final close both slice this tape.
func (s *DaySimulator) loadSessionTape(ctx context.Context, day time.Time, open []*Position) map[string][]*marketdata.Bar {
	tape := make(map[string][]*marketdata.Bar, len(open))
	for _, p := range open {
		bars, err := s.source.MinuteBars(ctx, p.Symbol, day, marketdata.MarketOpen, marketdata.ForcedCloseTime)
		if err != nil {
			log.Warnf("loadSessionTape: %s %s: %v", p.Symbol, marketdata.DateKey(day), err)
			continue
		}
		tape[p.Symbol] = bars
	}
	return tape
}

// managePositions walks the checkpoint sequence. At each checkpoint every
// open position replays the bars since the previous one; positions that hit
// an exit become trades, the rest stay open for the next checkpoint.
func (s *DaySimulator) managePositions(open []*Position, tape map[string][]*marketdata.Bar) ([]*Position, []*models.Trade) {
	var trades []*models.Trade

	prev := marketdata.OpeningRangeEnd
	for _, checkpoint := range marketdata.ManagementCheckpoints() {
		if len(open) == 0 {
			break
		}

		var still []*Position
		for _, p := range open {
			window := barsBetween(tape[p.Symbol], prev+1, checkpoint)
			if trade := s.evaluateWindow(p, window); trade != nil {
				trades = append(trades, trade)
			} else {
				still = append(still, p)
			}
		}
		open = still
		prev = checkpoint
	}

	return open, trades
}

// evaluateWindow replays one checkpoint window bar by bar. The stop is
// checked before the target within a bar, and the trailing ratchet advances
// on each close.
func (s *DaySimulator) evaluateWindow(p *Position, bars []*marketdata.Bar) *models.Trade {
	for _, b := range bars {
		at := marketdata.TimeOfDayOf(b.Timestamp)
		if p.StopHit(b) {
			return p.Close(p.stopFill(b), at, p.stopExitReason())
		}
		if p.TargetHit(b) {
			return p.Close(p.targetFill(b), at, models.ExitReasonProfitTarget)
		}
		p.Ratchet(b.Close, s.cfg)
	}
	return nil
}

// forceClose flattens whatever is still open at the last available price.
// Nothing carries overnight.
func (s *DaySimulator) forceClose(open []*Position, tape map[string][]*marketdata.Bar) []*models.Trade {
	var trades []*models.Trade
	for _, p := range open {
		price := p.EntryPrice
		exitAt := marketdata.ForcedCloseTime
		if bars := tape[p.Symbol]; len(bars) > 0 {
			last := bars[len(bars)-1]
			price = last.Close
			exitAt = marketdata.TimeOfDayOf(last.Timestamp)
		}
		trades = append(trades, p.Close(price, exitAt, models.ExitReasonEndOfDay))
	}
	return trades
}

// barsBetween slices the ordered tape to the bars whose clock time falls in
// [from, to].
func barsBetween(bars []*marketdata.Bar, from, to marketdata.TimeOfDay) []*marketdata.Bar {
	var out []*marketdata.Bar
	for _, b := range bars {
		at := marketdata.TimeOfDayOf(b.Timestamp)
		if at < from {
			continue
		}
		if at > to {
			break
		}
		out = append(out, b)
	}
	return out
}
