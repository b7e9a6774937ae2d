package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/openrange-trading/openrange/src/cmd/optimizer/run"
	"github.com/openrange-trading/openrange/src/marketdata"
)

var rootCmd = &cobra.Command{
	Use:   "optimizer",
	Short: "Walk-forward parameter optimization over a historical range",
	Long:  `Rolls training/validation windows across the range, grid-searches strategy parameters on each training span, validates the winner out-of-sample, and reports cross-window stability plus a recommended parameter set.`,
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

		trainYears, err := cmd.Flags().GetInt("train-years")
		if err != nil {
			log.Fatalf("error getting train-years: %v", err)
		}

		validationYears, err := cmd.Flags().GetInt("validation-years")
		if err != nil {
			log.Fatalf("error getting validation-years: %v", err)
		}

		stepYears, err := cmd.Flags().GetInt("step-years")
		if err != nil {
			log.Fatalf("error getting step-years: %v", err)
		}

		maxEvals, err := cmd.Flags().GetInt("max-evals")
		if err != nil {
			log.Fatalf("error getting max-evals: %v", err)
		}

		trainStride, err := cmd.Flags().GetInt("train-stride")
		if err != nil {
			log.Fatalf("error getting train-stride: %v", err)
		}

		gridFile, err := cmd.Flags().GetString("grid")
		if err != nil {
			log.Fatalf("error getting grid: %v", err)
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

		reportPath, err := cmd.Flags().GetString("report")
		if err != nil {
			log.Fatalf("error getting report: %v", err)
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
			Start:           start,
			End:             end,
			TrainingYears:   trainYears,
			ValidationYears: validationYears,
			StepYears:       stepYears,
			MaxEvals:        maxEvals,
			TrainDayStride:  trainStride,
			GridFile:        gridFile,
			Workers:         workers,
			Source:          source,
			BarsCSV:         barsCSV,
			ReportPath:      reportPath,
			SaveDB:          saveDB,
			EnvFile:         envFile,
		}); err != nil {
			log.Fatalf("error running walk-forward optimization: %v", err)
		}
	},
}

func main() {
	rootCmd.PersistentFlags().StringP("start", "s", "", "First calendar day of the historical range, YYYY-MM-DD. This flag is required.")
	rootCmd.PersistentFlags().StringP("end", "e", "", "Last calendar day of the historical range, YYYY-MM-DD. This flag is required.")
	rootCmd.PersistentFlags().Int("train-years", 3, "Length of each training window in years.")
	rootCmd.PersistentFlags().Int("validation-years", 1, "Length of each validation window in years.")
	rootCmd.PersistentFlags().Int("step-years", 1, "Years to step forward between windows.")
	rootCmd.PersistentFlags().Int("max-evals", 60, "Grid points evaluated per training window. Zero evaluates the whole grid.")
	rootCmd.PersistentFlags().Int("train-stride", 3, "Simulate every Nth trading day during training. Validation always runs every day.")
	rootCmd.PersistentFlags().StringP("grid", "g", "", "YAML file declaring the search grid axes. Defaults to the built-in grid.")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "Parallel day-batch workers per backtest.")
	rootCmd.PersistentFlags().String("source", "clickhouse", "Bar source to read from: clickhouse or csv.")
	rootCmd.PersistentFlags().String("bars-csv", "", "Bar fixture file for the csv source.")
	rootCmd.PersistentFlags().StringP("report", "r", "walkforward_report.json", "Path to write the JSON optimization report to.")
	rootCmd.PersistentFlags().Bool("save-db", false, "Persist the per-window results to Postgres.")
	rootCmd.PersistentFlags().String("env-file", "", "Env file to load service endpoints from. Defaults to .env.")

	rootCmd.MarkPersistentFlagRequired("start")
	rootCmd.MarkPersistentFlagRequired("end")

	cobra.CheckErr(rootCmd.Execute())
}
