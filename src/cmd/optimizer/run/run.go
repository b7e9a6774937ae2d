package run

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/openrange-trading/openrange/src/backtest"
	backtesterrun "github.com/openrange-trading/openrange/src/cmd/backtester/run"
	"github.com/openrange-trading/openrange/src/optimizer"
	"github.com/openrange-trading/openrange/src/store"
	"github.com/openrange-trading/openrange/src/utils"
)

type RunArgs struct {
	Start           time.Time
	End             time.Time
	TrainingYears   int
	ValidationYears int
	StepYears       int
	MaxEvals        int
	TrainDayStride  int
	GridFile        string
	Workers         int
	Source          string
	BarsCSV         string
	ReportPath      string
	SaveDB          bool
	EnvFile         string
}

func Run(args RunArgs) error {
	if err := utils.InitEnvironmentVariables(args.EnvFile); err != nil {
		return fmt.Errorf("Run: %w", err)
	}

	settings, err := utils.LoadSettings()
	if err != nil {
		return fmt.Errorf("Run: %w", err)
	}

	grid := optimizer.DefaultGrid()
	if args.GridFile != "" {
		grid, err = optimizer.LoadGrid(args.GridFile)
		if err != nil {
			return fmt.Errorf("Run: %w", err)
		}
	}

	ctx := context.Background()
	source, cleanup, err := backtesterrun.BuildBarSource(ctx, settings, args.Source, args.BarsCSV)
	if err != nil {
		return fmt.Errorf("Run: %w", err)
	}
	defer cleanup()

	btCfg := backtest.DefaultConfig()
	if args.Workers > 0 {
		btCfg.NumWorkers = args.Workers
	}

	wf := optimizer.NewWalkForward(source, grid, optimizer.WalkForwardConfig{
		TrainingYears:   args.TrainingYears,
		ValidationYears: args.ValidationYears,
		StepYears:       args.StepYears,
		MaxEvals:        args.MaxEvals,
		TrainDayStride:  args.TrainDayStride,
	}, btCfg)

	report, err := wf.Run(ctx, args.Start, args.End)
	if err != nil {
		return fmt.Errorf("Run: %w", err)
	}

	fmt.Println(RenderReport(report))

	if args.ReportPath != "" {
		if err := report.WriteJSON(args.ReportPath); err != nil {
			return fmt.Errorf("Run: %w", err)
		}
		log.Infof("wrote optimization report to %s", args.ReportPath)
	}

	if args.SaveDB {
		pg, err := store.NewPostgresStore(settings.PostgresURL)
		if err != nil {
			return fmt.Errorf("Run: %w", err)
		}
		if err := pg.SaveReport(report); err != nil {
			return fmt.Errorf("Run: %w", err)
		}
	}

	return nil
}
