package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/openrange-trading/openrange/src/cmd/backtester/run"
	"github.com/openrange-trading/openrange/src/marketdata"
)

var rootCmd = &cobra.Command{
	Use:   "backtester",
	Short: "Run an opening-range breakout backtest over a date range",
	Long:  `Simulates the opening-range breakout strategy day by day over historical minute bars and reports trades, the daily portfolio curve, and summary performance.`,
	Run: func(cmd *cobra.Command, args []string) {
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

		paramsFile, err := cmd.Flags().GetString("params")
		if err != nil {
			log.Fatalf("error getting params: %v", err)
		}

		workers, err := cmd.Flags().GetInt("workers")
		if err != nil {
			log.Fatalf("error getting workers: %v", err)
		}

		source, err := cmd.Flags().GetString("source")
		if err != nil {
			log.Fatalf("error getting source: %v", err)
		}

		barsCSV, err := cmd.Flags().GetString("bars-csv")
		if err != nil {
			log.Fatalf("error getting bars-csv: %v", err)
		}

		outDir, err := cmd.Flags().GetString("out-dir")
		if err != nil {
			log.Fatalf("error getting out-dir: %v", err)
		}

		saveDB, err := cmd.Flags().GetBool("save-db")
		if err != nil {
			log.Fatalf("error getting save-db: %v", err)
		}

		envFile, err := cmd.Flags().GetString("env-file")
		if err != nil {
			log.Fatalf("error getting env-file: %v", err)
		}

		if err := run.Run(run.RunArgs{
			Start:      start,
			End:        end,
			ParamsFile: paramsFile,
			Workers:    workers,
			Source:     source,
			BarsCSV:    barsCSV,
			OutDir:     outDir,
			SaveDB:     saveDB,
			EnvFile:    envFile,
		}); err != nil {
			log.Fatalf("error running backtest: %v", err)
		}
	},
}

func main() {
	rootCmd.PersistentFlags().StringP("start", "s", "", "First calendar day of the backtest, YYYY-MM-DD. This flag is required.")
	rootCmd.PersistentFlags().StringP("end", "e", "", "Last calendar day of the backtest, YYYY-MM-DD. This flag is required.")
	rootCmd.PersistentFlags().StringP("params", "p", "", "YAML file with the parameter set to run. Defaults to the built-in parameters.")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "Parallel day-batch workers. Defaults to the engine's built-in worker count.")
	rootCmd.PersistentFlags().String("source", "clickhouse", "Bar source to read from: clickhouse or csv.")
	rootCmd.PersistentFlags().String("bars-csv", "", "Bar fixture file for the csv source.")
	rootCmd.PersistentFlags().StringP("out-dir", "o", "", "Directory to write trades.csv and daily_pnl.csv into. Empty skips the export.")
	rootCmd.PersistentFlags().Bool("save-db", false, "Persist trades and the daily curve to Postgres.")
	rootCmd.PersistentFlags().String("env-file", "", "Env file to load service endpoints from. Defaults to .env.")

	rootCmd.MarkPersistentFlagRequired("start")
	rootCmd.MarkPersistentFlagRequired("end")

	cobra.CheckErr(rootCmd.Execute())
}
