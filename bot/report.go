package bot

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/luksonlj/takie-tam/models"
	"github.com/luksonlj/takie-tam/services"
)

// PrintReport writes the human readable summary of a run
func PrintReport(w io.Writer, report services.Report) {
	fmt.Fprintf(w, "=== %s ===\n", report.Symbol)
	fmt.Fprintf(w, "Bars scored: %d\n", report.Bars)
	for _, direction := range []models.SignalDirection{models.SignalBuy, models.SignalSell, models.SignalHold} {
		fmt.Fprintf(w, "  %-4s %5d (%.1f%%)\n", direction, report.SignalCounts[direction], report.SignalPercents[direction])
	}

	fmt.Fprintf(w, "Trades: %d (wins %d, losses %d, win rate %.1f%%)\n",
		report.TotalTrades, report.Wins, report.Losses, report.WinRate)
	fmt.Fprintf(w, "Total P&L: %.2f%% (%.4f quote)\n", report.TotalPnlPercent, report.TotalPnlQuote)
	fmt.Fprintf(w, "Avg win: %.2f%%  Avg loss: %.2f%%\n", report.AvgWin, report.AvgLoss)
	fmt.Fprintf(w, "Largest win: %.2f%%  Largest loss: %.2f%%\n", report.LargestWin, report.LargestLoss)

	for _, reason := range []models.CloseReason{models.CloseReasonSignal, models.CloseReasonStopLoss,
		models.CloseReasonTakeProfit, models.CloseReasonTrailingStop} {
		if n := report.CloseReasons[reason]; n > 0 {
			fmt.Fprintf(w, "  %-13s %d\n", reason, n)
		}
	}

	for i, t := range report.Trades {
		fmt.Fprintf(w, "%3d. %s %-5s %s -> %s  %.2f -> %.2f  %+.2f%%  %s\n", i+1, t.ClosedAt.Format("2006-01-02 15:04"),
			t.Direction, t.OpenedAt.Format("01-02 15:04"), t.ClosedAt.Format("01-02 15:04"),
			t.EntryPrice, t.ExitPrice, t.PnlPercent, t.CloseReason)
	}

	final := report.FinalPosition
	if final.IsOpen() {
		fmt.Fprintf(w, "Open position: %s size %.6f avg %.2f\n", final.State(), final.TotalSize, final.AverageEntryPrice)
	} else {
		fmt.Fprintln(w, "Open position: none")
	}
}

// WriteReport exports the report as yaml
func WriteReport(path string, report services.Report) error {
	out, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
