package models

import "time"

// PerformanceSummary aggregates a run's headline metrics. It is derived once
// over the fully merged trade series and never mutated afterwards. WinRate,
// TotalReturnPct, MaxDrawdown and AvgReturnPerDay are percentages.
type PerformanceSummary struct {
	TotalReturnPct  float64 `json:"total_return_pct"`
	WinRate         float64 `json:"win_rate"`
	SharpeRatio     float64 `json:"sharpe_ratio"`
	MaxDrawdown     float64 `json:"max_drawdown"`
	TotalTrades     int     `json:"total_trades"`
	AvgReturnPerDay float64 `json:"avg_return_per_day"`
}

// DailyPnL is one point of the reconstructed portfolio curve.
type DailyPnL struct {
	Date           time.Time `json:"date"`
	PnL            float64   `json:"pnl"`
	PortfolioValue float64   `json:"portfolio_value"`
}
