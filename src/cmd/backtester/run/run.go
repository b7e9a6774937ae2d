package run

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/openrange-trading/openrange/src/backtest"
	"github.com/openrange-trading/openrange/src/marketdata"
	"github.com/openrange-trading/openrange/src/models"
	"github.com/openrange-trading/openrange/src/store"
	"github.com/openrange-trading/openrange/src/utils"
)

type RunArgs struct {
	Start      time.Time
	End        time.Time
	ParamsFile string
	Workers    int
	Source     string
	BarsCSV    string
	OutDir     string
	SaveDB     bool
	EnvFile    string
}

func Run(args RunArgs) error {
	if err := utils.InitEnvironmentVariables(args.EnvFile); err != nil {
		return fmt.Errorf("Run: %w", err)
	}

	settings, err := utils.LoadSettings()
	if err != nil {
		return fmt.Errorf("Run: %w", err)
	}

	params := models.DefaultParameterSet()
	if args.ParamsFile != "" {
		loaded, err := models.LoadParameterSet(args.ParamsFile)
		if err != nil {
			return fmt.Errorf("Run: %w", err)
		}
		params = *loaded
	}

	ctx := context.Background()
	source, cleanup, err := BuildBarSource(ctx, settings, args.Source, args.BarsCSV)
	if err != nil {
		return fmt.Errorf("Run: %w", err)
	}
	defer cleanup()

	cfg := backtest.DefaultConfig()
	if args.Workers > 0 {
		cfg.NumWorkers = args.Workers
	}

	engine := backtest.NewEngine(source, cfg)
	result, err := engine.RunBacktest(ctx, args.Start, args.End, params)
	if err != nil {
		return fmt.Errorf("Run: %w", err)
	}

	fmt.Println(RenderSummary(result))

	if args.OutDir != "" {
		if err := os.MkdirAll(args.OutDir, 0755); err != nil {
			return fmt.Errorf("Run: %w", err)
		}

		tradesPath := filepath.Join(args.OutDir, "trades.csv")
		if err := store.WriteTradesCSV(tradesPath, result.Trades); err != nil {
			return fmt.Errorf("Run: %w", err)
		}

		dailyPath := filepath.Join(args.OutDir, "daily_pnl.csv")
		if err := store.WriteDailyPnLCSV(dailyPath, result.Daily); err != nil {
			return fmt.Errorf("Run: %w", err)
		}
		log.Infof("wrote %s and %s", tradesPath, dailyPath)
	}

	if args.SaveDB {
		pg, err := store.NewPostgresStore(settings.PostgresURL)
		if err != nil {
			return fmt.Errorf("Run: %w", err)
		}
		if err := pg.SaveBacktest(uuid.New(), result); err != nil {
			return fmt.Errorf("Run: %w", err)
		}
	}

	return nil
}

// BuildBarSource wires the requested bar source: the ClickHouse store for
// real runs, or a CSV fixture loaded into a static source.
func BuildBarSource(ctx context.Context, settings *utils.Settings, kind, barsCSV string) (marketdata.BarSource, func(), error) {
	switch kind {
	case "clickhouse":
		ch, err := marketdata.NewClickHouseBarSource(ctx, marketdata.ClickHouseConfig{
			Addr:     settings.ClickHouseAddr,
			Database: settings.ClickHouseDatabase,
			Username: settings.ClickHouseUsername,
			Password: settings.ClickHousePassword,
			Table:    settings.ClickHouseTable,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("BuildBarSource: %w", err)
		}
		return ch, func() { ch.Close() }, nil

	case "csv":
		if barsCSV == "" {
			return nil, nil, fmt.Errorf("BuildBarSource: the csv source needs --bars-csv")
		}
		bars, err := marketdata.LoadBarsCSV(barsCSV)
		if err != nil {
			return nil, nil, fmt.Errorf("BuildBarSource: %w", err)
		}
		log.Infof("loaded %d bars from %s", len(bars), barsCSV)
		return marketdata.NewStaticBarSource(bars...), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("BuildBarSource: unknown source %q", kind)
	}
}
