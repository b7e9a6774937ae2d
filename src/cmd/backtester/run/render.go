package run

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/openrange-trading/openrange/src/backtest"
)

// RenderSummary formats a backtest result for the terminal: the run header,
// the headline metrics, and the diagnostic skip counts.
func RenderSummary(result *backtest.BacktestResult) string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	fmt.Fprintf(display, "Backtest %s to %s\n", result.Start.Format("2006-01-02"), result.End.Format("2006-01-02"))
	fmt.Fprintf(display, "Parameters: %s\n\n", result.Params)

	table := tablewriter.NewWriter(display)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetColumnSeparator("")

	table.Append([]string{"Total Return", p.Sprintf("%.2f%%", result.Summary.TotalReturnPct)})
	table.Append([]string{"Win Rate", p.Sprintf("%.1f%%", result.Summary.WinRate)})
	table.Append([]string{"Sharpe Ratio", p.Sprintf("%.2f", result.Summary.SharpeRatio)})
	table.Append([]string{"Max Drawdown", p.Sprintf("%.2f%%", result.Summary.MaxDrawdown)})
	table.Append([]string{"Total Trades", p.Sprintf("%d", result.Summary.TotalTrades)})
	table.Append([]string{"Avg Return / Day", p.Sprintf("%.4f%%", result.Summary.AvgReturnPerDay)})
	if n := len(result.Daily); n > 0 {
		table.Append([]string{"Final Portfolio", p.Sprintf("$%.2f", result.Daily[n-1].PortfolioValue)})
	}
	table.Render()

	diag := result.Diagnostics
	fmt.Fprintf(display, "\nDays simulated: %d (%d failed)\n", diag.DaysSimulated, diag.FailedDays)
	fmt.Fprintf(display, "Skipped: %d symbol-days, %d candidates, %d zero-quantity entries\n",
		diag.SkippedSymbols, diag.SkippedCandidates, diag.ZeroQuantity)

	return display.String()
}
