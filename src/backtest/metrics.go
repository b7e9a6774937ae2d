package backtest

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/openrange-trading/openrange/src/models"
)

const tradingDaysPerYear = 252

// buildDailySeries reconstructs the portfolio curve from the merged per-day
// P&L, starting at the initial capital. It runs once, after the batch
// fan-in, over the chronologically ordered series.
func buildDailySeries(daily []models.DailyPnL, initialCapital float64) []models.DailyPnL {
	out := make([]models.DailyPnL, len(daily))
	value := initialCapital
	for i, d := range daily {
		value += d.PnL
		d.PortfolioValue = value
		out[i] = d
	}
	return out
}

// Summarize computes the headline metrics over the fully merged series.
// Returns and drawdown are percentages of the initial capital; the Sharpe
// ratio is annualized from daily returns.
func Summarize(trades []*models.Trade, daily []models.DailyPnL, initialCapital float64) models.PerformanceSummary {
	summary := models.PerformanceSummary{TotalTrades: len(trades)}
	if initialCapital <= 0 {
		return summary
	}

	var totalPnL float64
	winners := 0
	for _, t := range trades {
		totalPnL += t.PnL
		if t.IsWinner() {
			winners++
		}
	}
	summary.TotalReturnPct = totalPnL / initialCapital * 100
	if len(trades) > 0 {
		summary.WinRate = float64(winners) / float64(len(trades)) * 100
	}

	returns := make([]float64, len(daily))
	values := make([]float64, len(daily))
	for i, d := range daily {
		returns[i] = d.PnL / initialCapital
		values[i] = d.PortfolioValue
	}
	summary.SharpeRatio = sharpeRatio(returns)
	summary.MaxDrawdown = maxDrawdown(initialCapital, values)
	if len(daily) > 0 {
		summary.AvgReturnPerDay = summary.TotalReturnPct / float64(len(daily))
	}

	return summary
}

// sharpeRatio annualizes mean over standard deviation of daily returns.
// Fewer than two days, or a flat series, yields 0 rather than a blow-up.
func sharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	mean, err := stats.Mean(returns)
	if err != nil {
		return 0
	}
	sd, err := stats.StandardDeviation(returns)
	if err != nil || sd == 0 {
		return 0
	}

	return mean / sd * math.Sqrt(tradingDaysPerYear)
}

// maxDrawdown is the deepest peak-to-trough decline of the portfolio curve,
// as a positive percentage of the running peak. The curve starts at the
// initial capital, so a losing first day already counts.
func maxDrawdown(initial float64, values []float64) float64 {
	peak := initial
	worst := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak * 100; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}
