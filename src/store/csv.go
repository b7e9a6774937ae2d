package store

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/openrange-trading/openrange/src/models"
)

// TradeRow is the CSV shape of one Trade, every field included.
type TradeRow struct {
	Symbol     string  `csv:"symbol"`
	Direction  string  `csv:"direction"`
	EntryPrice float64 `csv:"entry_price"`
	ExitPrice  float64 `csv:"exit_price"`
	Quantity   int     `csv:"quantity"`
	PnL        float64 `csv:"pnl"`
	EntryDate  string  `csv:"entry_date"`
	EntryTime  string  `csv:"entry_time"`
	ExitDate   string  `csv:"exit_date"`
	ExitTime   string  `csv:"exit_time"`
	ExitReason string  `csv:"exit_reason"`
	SetupType  string  `csv:"setup_type"`
}

// DailyPnLRow is the CSV shape of one day on the portfolio curve.
type DailyPnLRow struct {
	Date           string  `csv:"date"`
	PnL            float64 `csv:"pnl"`
	PortfolioValue float64 `csv:"portfolio_value"`
}

func NewTradeRow(t *models.Trade) *TradeRow {
	return &TradeRow{
		Symbol:     t.Symbol,
		Direction:  string(t.Direction),
		EntryPrice: t.EntryPrice,
		ExitPrice:  t.ExitPrice,
		Quantity:   t.Quantity,
		PnL:        t.PnL,
		EntryDate:  t.EntryDate.Format("2006-01-02"),
		EntryTime:  t.EntryTime.Format(time.RFC3339),
		ExitDate:   t.ExitDate.Format("2006-01-02"),
		ExitTime:   t.ExitTime.Format(time.RFC3339),
		ExitReason: string(t.ExitReason),
		SetupType:  string(t.SetupType),
	}
}

// WriteTradesCSV exports the trades table, one row per trade, ordered as
// given.
func WriteTradesCSV(path string, trades []*models.Trade) error {
	rows := make([]*TradeRow, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, NewTradeRow(t))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("WriteTradesCSV: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("WriteTradesCSV: marshal %s: %w", path, err)
	}
	return nil
}

// WriteDailyPnLCSV exports the daily P&L table with the running portfolio
// value.
func WriteDailyPnLCSV(path string, daily []models.DailyPnL) error {
	rows := make([]*DailyPnLRow, 0, len(daily))
	for _, d := range daily {
		rows = append(rows, &DailyPnLRow{
			Date:           d.Date.Format("2006-01-02"),
			PnL:            d.PnL,
			PortfolioValue: d.PortfolioValue,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("WriteDailyPnLCSV: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("WriteDailyPnLCSV: marshal %s: %w", path, err)
	}
	return nil
}
