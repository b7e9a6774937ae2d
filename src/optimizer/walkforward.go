package optimizer

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/openrange-trading/openrange/src/backtest"
	"github.com/openrange-trading/openrange/src/marketdata"
	"github.com/openrange-trading/openrange/src/models"
)

// ZeroTradePenalty is the objective of a parameter set that never traded.
// Large and negative so any set that actually trades outranks it, while the
// search still returns a candidate when nothing trades at all.
const ZeroTradePenalty = -1_000_000.0

// Objective folds a training summary into the single number the search
// ranks by. Sharpe dominates; return and win rate break near-ties.
func Objective(s models.PerformanceSummary) float64 {
	if s.TotalTrades == 0 {
		return ZeroTradePenalty
	}
	return 10*s.SharpeRatio + 0.1*s.TotalReturnPct + 0.5*s.WinRate
}

// WalkForwardConfig shapes the roll and the per-window search budget.
type WalkForwardConfig struct {
	TrainingYears   int `json:"training_years"`
	ValidationYears int `json:"validation_years"`
	StepYears       int `json:"step_years"`

	// MaxEvals bounds how many grid points each window's training search
	// evaluates. Non-positive means the whole grid.
	MaxEvals int `json:"max_evals"`

	// TrainDayStride samples every Nth trading day during training, the
	// cost-reduced mode. Validation always runs every day.
	TrainDayStride int `json:"train_day_stride"`
}

func DefaultWalkForwardConfig() WalkForwardConfig {
	return WalkForwardConfig{
		TrainingYears:   3,
		ValidationYears: 1,
		StepYears:       1,
		MaxEvals:        60,
		TrainDayStride:  3,
	}
}

func (c WalkForwardConfig) withDefaults() WalkForwardConfig {
	if c.TrainDayStride <= 0 {
		c.TrainDayStride = 1
	}
	return c
}

// WindowStatus marks whether a window's evaluation survived.
type WindowStatus string

const (
	WindowStatusOK    WindowStatus = "ok"
	WindowStatusError WindowStatus = "error"
)

// WindowResult is one window's outcome: the winning parameters on the
// training span and how they held up on the unseen validation span. Error
// windows carry the message and are excluded from stability aggregation.
type WindowResult struct {
	Window        Window                    `json:"window"`
	Status        WindowStatus              `json:"status"`
	Error         string                    `json:"error,omitempty"`
	BestParams    models.ParameterSet       `json:"best_params"`
	BestObjective float64                   `json:"best_objective"`
	Evaluated     int                       `json:"evaluated"`
	Training      models.PerformanceSummary `json:"training"`
	Validation    models.PerformanceSummary `json:"validation"`
}

// WalkForward runs the rolling optimize-then-validate loop over a shared
// read-only bar source. Training runs through a day-strided engine to keep
// the search affordable; validation and the final full-range pass always
// use the everyday engine.
type WalkForward struct {
	grid        *Grid
	cfg         WalkForwardConfig
	trainEngine *backtest.Engine
	valEngine   *backtest.Engine
}

func NewWalkForward(source marketdata.BarSource, grid *Grid, cfg WalkForwardConfig, btCfg backtest.Config) *WalkForward {
	cfg = cfg.withDefaults()

	trainCfg := btCfg
	trainCfg.DayStride = cfg.TrainDayStride
	valCfg := btCfg
	valCfg.DayStride = 1

	return &WalkForward{
		grid:        grid,
		cfg:         cfg,
		trainEngine: backtest.NewEngine(source, trainCfg),
		valEngine:   backtest.NewEngine(source, valCfg),
	}
}

// Run rolls every window, aggregates stability over the surviving winners,
// and closes with one full-range validation of the recommended set. A
// window failure marks that window and moves on; only a configuration
// problem or every window failing aborts the run.
func (w *WalkForward) Run(ctx context.Context, start, end time.Time) (*Report, error) {
	windows, err := GenerateWindows(start, end, w.cfg.TrainingYears, w.cfg.ValidationYears, w.cfg.StepYears)
	if err != nil {
		return nil, fmt.Errorf("WalkForward.Run: %w", err)
	}
	log.Infof("walk-forward %s..%s: %d windows, budget %d evaluations over %d grid points",
		marketdata.DateKey(start), marketdata.DateKey(end), len(windows), w.cfg.MaxEvals, w.grid.Size())

	report := &Report{
		RunID:       uuid.New(),
		GeneratedAt: time.Now().UTC(),
		Start:       marketdata.Midnight(start),
		End:         marketdata.Midnight(end),
		Config:      w.cfg,
	}

	var winners []models.ParameterSet
	for _, window := range windows {
		result := w.runWindow(ctx, window)
		report.Windows = append(report.Windows, result)
		if result.Status == WindowStatusOK {
			winners = append(winners, result.BestParams)
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("WalkForward.Run: %w", err)
		}
	}

	if len(winners) == 0 {
		return nil, fmt.Errorf("WalkForward.Run: all %d windows failed", len(windows))
	}

	report.Stability = ComputeStability(winners)
	recommended, err := RecommendParameters(winners, w.grid)
	if err != nil {
		return nil, fmt.Errorf("WalkForward.Run: %w", err)
	}
	report.Recommended = recommended
	log.Infof("walk-forward recommends %s", recommended)

	final, err := w.valEngine.RunBacktest(ctx, start, end, recommended)
	if err != nil {
		return nil, fmt.Errorf("WalkForward.Run: final validation: %w", err)
	}
	report.FinalValidation = final.Summary

	return report, nil
}

// runWindow is one optimize-then-validate step. Failures are contained
// here: the window is marked and the loop elsewhere keeps rolling.
func (w *WalkForward) runWindow(ctx context.Context, window Window) WindowResult {
	log.Info(window)

	best, evaluated, err := w.optimize(ctx, window)
	if err != nil {
		log.Errorf("%v: optimize: %v", window, err)
		return WindowResult{Window: window, Status: WindowStatusError, Error: err.Error()}
	}
	log.Infof("window %d: best %s, objective %.2f after %d evaluations",
		window.Index, best.params, best.objective, evaluated)

	valStart, valEnd := window.ValidationRange()
	validation, err := w.valEngine.RunBacktest(ctx, valStart, valEnd, best.params)
	if err != nil {
		log.Errorf("%v: validate: %v", window, err)
		return WindowResult{Window: window, Status: WindowStatusError, Error: err.Error()}
	}

	return WindowResult{
		Window:        window,
		Status:        WindowStatusOK,
		BestParams:    best.params,
		BestObjective: best.objective,
		Evaluated:     evaluated,
		Training:      best.summary,
		Validation:    validation.Summary,
	}
}

type evaluation struct {
	params    models.ParameterSet
	summary   models.PerformanceSummary
	objective float64
}

// optimize evaluates an evenly spread, bounded subset of the grid on the
// training span. Ties keep the earlier grid point, so the search is
// deterministic for a given grid and budget.
func (w *WalkForward) optimize(ctx context.Context, window Window) (evaluation, int, error) {
	trainStart, trainEnd := window.TrainingRange()

	best := evaluation{objective: math.Inf(-1)}
	evaluated := 0
	for _, index := range w.grid.Sample(w.cfg.MaxEvals) {
		if err := ctx.Err(); err != nil {
			return evaluation{}, evaluated, err
		}

		params, err := w.grid.At(index)
		if err != nil {
			return evaluation{}, evaluated, fmt.Errorf("optimize: %w", err)
		}

		res, err := w.trainEngine.RunBacktest(ctx, trainStart, trainEnd, params)
		if err != nil {
			return evaluation{}, evaluated, fmt.Errorf("optimize: grid point %d: %w", index, err)
		}
		evaluated++

		if objective := Objective(res.Summary); objective > best.objective {
			best = evaluation{params: params, summary: res.Summary, objective: objective}
		}
	}

	return best, evaluated, nil
}
