package run

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/openrange-trading/openrange/src/optimizer"
)

// RenderReport formats a walk-forward report for the terminal: per-window
// outcomes, the stability ranking, the recommended parameters, and the
// final full-range validation.
func RenderReport(report *optimizer.Report) string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	fmt.Fprintf(display, "Walk-forward %s to %s (run %s)\n\n",
		report.Start.Format("2006-01-02"), report.End.Format("2006-01-02"), report.RunID)

	display.WriteString("Windows:\n")
	windows := tablewriter.NewWriter(display)
	windows.SetHeader([]string{"#", "Training", "Validation", "Status", "Objective", "Val Return", "Val Sharpe", "Val Trades"})
	windows.SetAlignment(tablewriter.ALIGN_RIGHT)
	windows.SetColumnSeparator("")

	for _, w := range report.Windows {
		if w.Status != optimizer.WindowStatusOK {
			windows.Append([]string{
				fmt.Sprintf("%d", w.Window.Index),
				rangeLabel(w.Window.TrainingStart, w.Window.TrainingEnd),
				rangeLabel(w.Window.ValidationStart, w.Window.ValidationEnd),
				string(w.Status), "-", "-", "-", "-",
			})
			continue
		}
		windows.Append([]string{
			fmt.Sprintf("%d", w.Window.Index),
			rangeLabel(w.Window.TrainingStart, w.Window.TrainingEnd),
			rangeLabel(w.Window.ValidationStart, w.Window.ValidationEnd),
			string(w.Status),
			p.Sprintf("%.2f", w.BestObjective),
			p.Sprintf("%.2f%%", w.Validation.TotalReturnPct),
			p.Sprintf("%.2f", w.Validation.SharpeRatio),
			p.Sprintf("%d", w.Validation.TotalTrades),
		})
	}
	windows.Render()

	display.WriteString("\nParameter stability (most robust first):\n")
	stability := tablewriter.NewWriter(display)
	stability.SetHeader([]string{"Parameter", "Mean", "Std Dev", "CV"})
	stability.SetAlignment(tablewriter.ALIGN_RIGHT)
	stability.SetColumnSeparator("")

	for _, s := range report.Stability {
		cv := p.Sprintf("%.4f", s.CV)
		if math.IsInf(s.CV, 1) {
			cv = "inf"
		}
		stability.Append([]string{s.Name, p.Sprintf("%.4f", s.Mean), p.Sprintf("%.4f", s.StdDev), cv})
	}
	stability.Render()

	fmt.Fprintf(display, "\nRecommended parameters: %s\n", report.Recommended)
	fmt.Fprintf(display, "Final validation: return %.2f%%, sharpe %.2f, win rate %.1f%%, max drawdown %.2f%%, %d trades\n",
		report.FinalValidation.TotalReturnPct, report.FinalValidation.SharpeRatio,
		report.FinalValidation.WinRate, report.FinalValidation.MaxDrawdown, report.FinalValidation.TotalTrades)

	return display.String()
}

func rangeLabel(from, to time.Time) string {
	return fmt.Sprintf("%s..%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
}
