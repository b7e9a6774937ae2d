package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/openrange-trading/openrange/src/marketdata"
	"github.com/openrange-trading/openrange/src/utils"
)

type RunArgs struct {
	Symbols []string
	Start   time.Time
	End     time.Time
	EnvFile string
}

var rootCmd = &cobra.Command{
	Use:   "fetchdata",
	Short: "Fetch minute bars from Polygon and load them into ClickHouse",
	Run: func(cmd *cobra.Command, args []string) {
		symbolsStr, err := cmd.Flags().GetString("symbols")
		if err != nil {
			log.Fatalf("error getting symbols: %v", err)
		}

		startStr, err := cmd.Flags().GetString("start")
		if err != nil {
			log.Fatalf("error getting start: %v", err)
		}

		start, err := marketdata.ParseDate(startStr)
		if err != nil {
			log.Fatalf("error parsing start date: %v", err)
		}

		endStr, err := cmd.Flags().GetString("end")
		if err != nil {
			log.Fatalf("error getting end: %v", err)
		}

		end, err := marketdata.ParseDate(endStr)
		if err != nil {
			log.Fatalf("error parsing end date: %v", err)
		}

		envFile, err := cmd.Flags().GetString("env-file")
		if err != nil {
			log.Fatalf("error getting env-file: %v", err)
		}

		var symbols []string
		for _, s := range strings.Split(symbolsStr, ",") {
			if s = strings.TrimSpace(s); s != "" {
				symbols = append(symbols, strings.ToUpper(s))
			}
		}

		if err := run(RunArgs{
			Symbols: symbols,
			Start:   start,
			End:     end,
			EnvFile: envFile,
		}); err != nil {
			log.Fatalf("error fetching market data: %v", err)
		}
	},
}

func run(args RunArgs) error {
	if len(args.Symbols) == 0 {
		return fmt.Errorf("run: no symbols given")
	}

	if err := utils.InitEnvironmentVariables(args.EnvFile); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	settings, err := utils.LoadSettings()
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	if settings.PolygonAPIKey == "" {
		return fmt.Errorf("run: missing POLYGON_API_KEY environment variable")
	}

	ctx := context.Background()
	sink, err := marketdata.NewClickHouseBarSource(ctx, marketdata.ClickHouseConfig{
		Addr:     settings.ClickHouseAddr,
		Database: settings.ClickHouseDatabase,
		Username: settings.ClickHouseUsername,
		Password: settings.ClickHousePassword,
		Table:    settings.ClickHouseTable,
	})
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer sink.Close()

	if err := sink.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	fetcher := marketdata.NewPolygonFetcher(settings.PolygonAPIKey)

	// The session end of the last requested day, so the final day's bars
	// are included.
	fetchEnd := marketdata.MarketClose.OnDay(args.End)

	total := 0
	for _, symbol := range args.Symbols {
		log.Infof("fetching %s from %s to %s", symbol, args.Start.Format("2006-01-02"), args.End.Format("2006-01-02"))

		bars, err := fetcher.FetchMinuteBars(ctx, symbol, args.Start, fetchEnd)
		if err != nil {
			log.Errorf("run: %s: %v", symbol, err)
			continue
		}
		if len(bars) == 0 {
			log.Warnf("run: %s: no bars in range", symbol)
			continue
		}

		if err := sink.WriteBars(ctx, bars); err != nil {
			return fmt.Errorf("run: %s: %w", symbol, err)
		}
		total += len(bars)
	}

	log.Infof("loaded %d bars across %d symbols", total, len(args.Symbols))
	return nil
}

func main() {
	rootCmd.PersistentFlags().String("symbols", "", "Comma-separated ticker symbols to fetch, e.g. AAPL,TSLA. This flag is required.")
	rootCmd.PersistentFlags().StringP("start", "s", "", "First calendar day to fetch, YYYY-MM-DD. This flag is required.")
	rootCmd.PersistentFlags().StringP("end", "e", "", "Last calendar day to fetch, YYYY-MM-DD. This flag is required.")
	rootCmd.PersistentFlags().String("env-file", "", "Env file to load service endpoints from. Defaults to .env.")

	rootCmd.MarkPersistentFlagRequired("symbols")
	rootCmd.MarkPersistentFlagRequired("start")
	rootCmd.MarkPersistentFlagRequired("end")

	cobra.CheckErr(rootCmd.Execute())
}
