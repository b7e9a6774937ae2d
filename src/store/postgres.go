package store

import (
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/openrange-trading/openrange/src/backtest"
	"github.com/openrange-trading/openrange/src/logger"
	"github.com/openrange-trading/openrange/src/optimizer"
)

// PostgresStore persists run artifacts: the trades table, the daily P&L
// table, and the optimization windows. Every save is stamped with the run's
// RunID, so one database holds the history of all runs.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(url string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(url), &gorm.Config{
		Logger: logger.NewGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("NewPostgresStore: failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&TradeRecord{}); err != nil {
		return nil, fmt.Errorf("NewPostgresStore: failed to migrate database: %w", err)
	}

	if err := db.AutoMigrate(&DailyPnLRecord{}); err != nil {
		return nil, fmt.Errorf("NewPostgresStore: failed to migrate database: %w", err)
	}

	if err := db.AutoMigrate(&OptimizationWindowRecord{}); err != nil {
		return nil, fmt.Errorf("NewPostgresStore: failed to migrate database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// SaveBacktest writes a run's trades and daily curve in one transaction.
func (s *PostgresStore) SaveBacktest(runID uuid.UUID, result *backtest.BacktestResult) error {
	trades := make([]*TradeRecord, 0, len(result.Trades))
	for _, t := range result.Trades {
		trades = append(trades, NewTradeRecord(runID, t))
	}

	daily := make([]*DailyPnLRecord, 0, len(result.Daily))
	for _, d := range result.Daily {
		daily = append(daily, NewDailyPnLRecord(runID, d))
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if len(trades) > 0 {
			if err := tx.CreateInBatches(trades, 100).Error; err != nil {
				return fmt.Errorf("failed to save trade records: %w", err)
			}
		}
		if len(daily) > 0 {
			if err := tx.CreateInBatches(daily, 100).Error; err != nil {
				return fmt.Errorf("failed to save daily pnl records: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("SaveBacktest: %w", err)
	}

	log.Infof("saved %d trades and %d daily pnl rows for run %s", len(trades), len(daily), runID)
	return nil
}

// SaveReport writes every window of a walk-forward report, error windows
// included.
func (s *PostgresStore) SaveReport(report *optimizer.Report) error {
	records := make([]*OptimizationWindowRecord, 0, len(report.Windows))
	for _, w := range report.Windows {
		records = append(records, NewOptimizationWindowRecord(report.RunID, w))
	}
	if len(records) == 0 {
		return nil
	}

	if err := s.db.CreateInBatches(records, 100).Error; err != nil {
		return fmt.Errorf("SaveReport: failed to save window records: %w", err)
	}

	log.Infof("saved %d optimization windows for run %s", len(records), report.RunID)
	return nil
}
