package backtest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/openrange-trading/openrange/src/marketdata"
	"github.com/openrange-trading/openrange/src/models"
)

// Engine orchestrates a backtest over a date range: it partitions the
// trading days into contiguous batches, runs the batches in parallel, and
// merges the results back into one deterministic series. Workers share only
// the read-only bar source; capital is a day-local constant, never a
// running total across the parallel phase.
type Engine struct {
	source     marketdata.BarSource
	candidates marketdata.CandidateSource
	cfg        Config
}

func NewEngine(source marketdata.BarSource, cfg Config) *Engine {
	return &Engine{source: source, cfg: cfg.withDefaults()}
}

// WithCandidateSource wires in pre-computed signals. The scan phase adopts
// them in place of the local scorer.
func (e *Engine) WithCandidateSource(candidates marketdata.CandidateSource) *Engine {
	e.candidates = candidates
	return e
}

// BacktestResult is everything a run produces: the merged trades in
// (exit date, exit time) order, the reconstructed daily portfolio curve,
// the summary computed once over the merged series, and the skip counters.
type BacktestResult struct {
	Params      models.ParameterSet       `json:"params"`
	Start       time.Time                 `json:"start"`
	End         time.Time                 `json:"end"`
	Summary     models.PerformanceSummary `json:"summary"`
	Trades      []*models.Trade           `json:"trades"`
	Daily       []models.DailyPnL         `json:"daily"`
	Diagnostics Diagnostics               `json:"diagnostics"`
}

// simDay pairs a trading day with the session immediately before it in the
// full calendar. The prior day survives striding so gap gates keep their
// true reference.
type simDay struct {
	day   time.Time
	prior time.Time
}

type batchResult struct {
	index  int
	trades []*models.Trade
	daily  []models.DailyPnL
	diag   Diagnostics
}

// RunBacktest validates the parameters, fans the trading days out across
// workers, and folds the batch results into one BacktestResult. Parameter
// and range problems fail before any simulation work begins; day-level
// problems inside a batch degrade to skips.
func (e *Engine) RunBacktest(ctx context.Context, start, end time.Time, params models.ParameterSet) (*BacktestResult, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("RunBacktest: %w", err)
	}

	days, err := e.tradingDays(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("RunBacktest: %w", err)
	}

	batches := splitBatches(days, e.cfg.NumWorkers)
	log.Infof("backtest %s..%s: %d trading days across %d workers",
		marketdata.DateKey(start), marketdata.DateKey(end), len(days), len(batches))

	results := make(chan batchResult, len(batches))
	var wg sync.WaitGroup
	for i, batch := range batches {
		wg.Add(1)
		go func(index int, days []simDay) {
			defer wg.Done()
			results <- e.runBatch(ctx, index, days, params)
		}(i, batch)
	}
	wg.Wait()
	close(results)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("RunBacktest: %w", err)
	}

	collected := make([]batchResult, 0, len(batches))
	for r := range results {
		collected = append(collected, r)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].index < collected[j].index })

	res := &BacktestResult{
		Params: params,
		Start:  marketdata.Midnight(start),
		End:    marketdata.Midnight(end),
	}
	for _, r := range collected {
		res.Trades = append(res.Trades, r.trades...)
		res.Daily = append(res.Daily, r.daily...)
		res.Diagnostics.merge(r.diag)
	}

	// Batch completion order is arbitrary; determinism is restored here,
	// never inside the workers.
	sortTrades(res.Trades)
	res.Daily = buildDailySeries(res.Daily, e.cfg.InitialCapital)
	res.Summary = Summarize(res.Trades, res.Daily, e.cfg.InitialCapital)

	log.Infof("backtest done: %d trades, return %.2f%%, sharpe %.2f, %d/%d days failed",
		res.Summary.TotalTrades, res.Summary.TotalReturnPct, res.Summary.SharpeRatio,
		res.Diagnostics.FailedDays, res.Diagnostics.DaysSimulated)
	return res, nil
}

// tradingDays resolves the calendar, pairs each day with its true prior
// session, and applies the cost-reduction stride.
func (e *Engine) tradingDays(ctx context.Context, start, end time.Time) ([]simDay, error) {
	all, err := e.source.TradingDays(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("tradingDays: %w", err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("tradingDays: %s..%s: %w",
			marketdata.DateKey(start), marketdata.DateKey(end), models.ErrNoTradingDays)
	}

	days := make([]simDay, len(all))
	for i, d := range all {
		days[i] = simDay{day: d}
		if i > 0 {
			days[i].prior = all[i-1]
		}
	}
	return strideDays(days, e.cfg.DayStride), nil
}

// runBatch simulates its contiguous day slice sequentially. Batches never
// communicate; each returns a value over the results channel.
func (e *Engine) runBatch(ctx context.Context, index int, days []simDay, params models.ParameterSet) batchResult {
	sim := NewDaySimulator(e.source, e.candidates, params, e.cfg)
	out := batchResult{index: index}

	for _, d := range days {
		if ctx.Err() != nil {
			break
		}
		res := e.simulateDaySafe(ctx, sim, d)
		out.trades = append(out.trades, res.Trades...)
		out.daily = append(out.daily, models.DailyPnL{Date: res.Day, PnL: res.PnL})
		out.diag.merge(res.Diagnostics)
	}
	return out
}

// simulateDaySafe isolates one day: an error or panic is logged with the
// offending date, counted, and contributes zero trades. A bad day never
// cancels its siblings.
func (e *Engine) simulateDaySafe(ctx context.Context, sim *DaySimulator, d simDay) (res *DayResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("simulateDaySafe: %s: panic: %v", marketdata.DateKey(d.day), r)
			res = failedDay(d.day)
		}
	}()

	res, err := sim.SimulateDay(ctx, d.day, d.prior)
	if err != nil {
		log.Errorf("simulateDaySafe: %v", err)
		res = failedDay(d.day)
	}
	return res
}

func failedDay(day time.Time) *DayResult {
	res := &DayResult{Day: marketdata.Midnight(day)}
	res.Diagnostics.DaysSimulated = 1
	res.Diagnostics.FailedDays = 1
	return res
}

// sortTrades orders trades by (exit date, exit time), stably, so equal keys
// keep their generation order.
func sortTrades(trades []*models.Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		if !trades[i].ExitDate.Equal(trades[j].ExitDate) {
			return trades[i].ExitDate.Before(trades[j].ExitDate)
		}
		return trades[i].ExitTime.Before(trades[j].ExitTime)
	})
}

// splitBatches partitions the days into at most n contiguous, near-equal
// batches, preserving order.
func splitBatches(days []simDay, n int) [][]simDay {
	if len(days) == 0 {
		return nil
	}
	if n > len(days) {
		n = len(days)
	}
	if n <= 1 {
		return [][]simDay{days}
	}

	out := make([][]simDay, 0, n)
	size := len(days) / n
	rem := len(days) % n
	start := 0
	for i := 0; i < n; i++ {
		end := start + size
		if i < rem {
			end++
		}
		out = append(out, days[start:end])
		start = end
	}
	return out
}

// strideDays keeps every strideth day, the cost-reduced mode the optimizer
// trains in. Stride 1 keeps everything.
func strideDays(days []simDay, stride int) []simDay {
	if stride <= 1 {
		return days
	}

	var out []simDay
	for i := 0; i < len(days); i += stride {
		out = append(out, days[i])
	}
	return out
}
