package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openrange-trading/openrange/src/models"
	"github.com/openrange-trading/openrange/src/optimizer"
)

// TradeRecord is one persisted Trade. Records are scoped to a run by RunID
// so several backtests can share the trades table.
type TradeRecord struct {
	gorm.Model
	RunID      uuid.UUID `gorm:"column:run_id;type:uuid;not null;index:idx_trade_run_id"`
	Symbol     string    `gorm:"column:symbol;type:text;not null"`
	Direction  string    `gorm:"column:direction;type:text;not null"`
	EntryPrice float64   `gorm:"column:entry_price;type:numeric;not null"`
	ExitPrice  float64   `gorm:"column:exit_price;type:numeric;not null"`
	Quantity   int       `gorm:"column:quantity;not null"`
	PnL        float64   `gorm:"column:pnl;type:numeric;not null"`
	EntryDate  time.Time `gorm:"column:entry_date;type:date;not null"`
	EntryTime  time.Time `gorm:"column:entry_time;type:timestamptz;not null"`
	ExitDate   time.Time `gorm:"column:exit_date;type:date;not null"`
	ExitTime   time.Time `gorm:"column:exit_time;type:timestamptz;not null"`
	ExitReason string    `gorm:"column:exit_reason;type:text;not null"`
	SetupType  string    `gorm:"column:setup_type;type:text;not null"`
}

func NewTradeRecord(runID uuid.UUID, t *models.Trade) *TradeRecord {
	return &TradeRecord{
		RunID:      runID,
		Symbol:     t.Symbol,
		Direction:  string(t.Direction),
		EntryPrice: t.EntryPrice,
		ExitPrice:  t.ExitPrice,
		Quantity:   t.Quantity,
		PnL:        t.PnL,
		EntryDate:  t.EntryDate,
		EntryTime:  t.EntryTime,
		ExitDate:   t.ExitDate,
		ExitTime:   t.ExitTime,
		ExitReason: string(t.ExitReason),
		SetupType:  string(t.SetupType),
	}
}

// DailyPnLRecord is one point of the persisted portfolio curve.
type DailyPnLRecord struct {
	gorm.Model
	RunID          uuid.UUID `gorm:"column:run_id;type:uuid;not null;index:idx_daily_run_id"`
	Date           time.Time `gorm:"column:date;type:date;not null"`
	PnL            float64   `gorm:"column:pnl;type:numeric;not null"`
	PortfolioValue float64   `gorm:"column:portfolio_value;type:numeric;not null"`
}

func NewDailyPnLRecord(runID uuid.UUID, d models.DailyPnL) *DailyPnLRecord {
	return &DailyPnLRecord{
		RunID:          runID,
		Date:           d.Date,
		PnL:            d.PnL,
		PortfolioValue: d.PortfolioValue,
	}
}

// ParameterSetColumn stores a ParameterSet as a json column.
type ParameterSetColumn models.ParameterSet

func (c *ParameterSetColumn) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("type assertion to []byte failed for ParameterSetColumn")
	}

	if err := json.Unmarshal(bytes, c); err != nil {
		return fmt.Errorf("failed to unmarshal ParameterSetColumn: %w", err)
	}
	return nil
}

func (c ParameterSetColumn) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// OptimizationWindowRecord is one walk-forward window's outcome: the bounds,
// the winning parameters on the training span, and the headline validation
// metrics. Error windows persist too, carrying the message.
type OptimizationWindowRecord struct {
	gorm.Model
	RunID               uuid.UUID          `gorm:"column:run_id;type:uuid;not null;index:idx_window_run_id"`
	WindowIndex         int                `gorm:"column:window_index;not null"`
	Status              string             `gorm:"column:status;type:text;not null"`
	Error               string             `gorm:"column:error;type:text"`
	TrainingStart       time.Time          `gorm:"column:training_start;type:date;not null"`
	TrainingEnd         time.Time          `gorm:"column:training_end;type:date;not null"`
	ValidationStart     time.Time          `gorm:"column:validation_start;type:date;not null"`
	ValidationEnd       time.Time          `gorm:"column:validation_end;type:date;not null"`
	BestParams          ParameterSetColumn `gorm:"column:best_params;type:json"`
	BestObjective       float64            `gorm:"column:best_objective;type:numeric"`
	Evaluated           int                `gorm:"column:evaluated"`
	ValidationReturnPct float64            `gorm:"column:validation_return_pct;type:numeric"`
	ValidationSharpe    float64            `gorm:"column:validation_sharpe;type:numeric"`
	ValidationWinRate   float64            `gorm:"column:validation_win_rate;type:numeric"`
	ValidationDrawdown  float64            `gorm:"column:validation_drawdown;type:numeric"`
	ValidationTrades    int                `gorm:"column:validation_trades"`
}

func NewOptimizationWindowRecord(runID uuid.UUID, r optimizer.WindowResult) *OptimizationWindowRecord {
	return &OptimizationWindowRecord{
		RunID:               runID,
		WindowIndex:         r.Window.Index,
		Status:              string(r.Status),
		Error:               r.Error,
		TrainingStart:       r.Window.TrainingStart,
		TrainingEnd:         r.Window.TrainingEnd,
		ValidationStart:     r.Window.ValidationStart,
		ValidationEnd:       r.Window.ValidationEnd,
		BestParams:          ParameterSetColumn(r.BestParams),
		BestObjective:       r.BestObjective,
		Evaluated:           r.Evaluated,
		ValidationReturnPct: r.Validation.TotalReturnPct,
		ValidationSharpe:    r.Validation.SharpeRatio,
		ValidationWinRate:   r.Validation.WinRate,
		ValidationDrawdown:  r.Validation.MaxDrawdown,
		ValidationTrades:    r.Validation.TotalTrades,
	}
}
