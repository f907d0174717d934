package analytics

import (
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"

	"argusBot/internal/domain"
)

// WriteReport prints a human-readable summary of the metrics.
func (m *PerformanceMetrics) WriteReport(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	pf := "inf"
	if !math.IsInf(m.ProfitFactor, 1) {
		pf = fmt.Sprintf("%.2f", m.ProfitFactor)
	}
	fmt.Fprintf(w, "Trades:\t%d (won %d, lost %d)\n", m.TotalTrades, m.WinningTrades, m.LosingTrades)
	fmt.Fprintf(w, "Win rate:\t%.2f%%\n", m.WinRate*100)
	fmt.Fprintf(w, "Total PnL:\t%.2f\n", m.TotalProfit)
	fmt.Fprintf(w, "Final balance:\t%.2f\n", m.FinalBalance)
	fmt.Fprintf(w, "Return:\t%.2f%%\n", m.ReturnOnInvestment*100)
	fmt.Fprintf(w, "Max drawdown:\t%.2f%%\n", m.MaxDrawdown*100)
	fmt.Fprintf(w, "Profit factor:\t%s\n", pf)
	fmt.Fprintf(w, "Avg win / loss:\t%.2f / %.2f\n", m.AverageWin, m.AverageLoss)
	fmt.Fprintf(w, "Expectancy:\t%.2f\n", m.Expectancy)
	fmt.Fprintf(w, "Streaks:\t%d wins, %d losses\n", m.MaxConsecutiveWins, m.MaxConsecutiveLosses)

	if len(m.ByReason) > 0 {
		fmt.Fprintln(w, "\nClose reason\tCount")
		reasons := make([]string, 0, len(m.ByReason))
		for r := range m.ByReason {
			reasons = append(reasons, string(r))
		}
		sort.Strings(reasons)
		for _, r := range reasons {
			fmt.Fprintf(w, "%s\t%d\n", r, m.ByReason[domain.CloseReason(r)])
		}
	}
	if len(m.BySymbol) > 0 {
		fmt.Fprintln(w, "\nSymbol\tPnL")
		symbols := make([]string, 0, len(m.BySymbol))
		for s := range m.BySymbol {
			symbols = append(symbols, s)
		}
		sort.Strings(symbols)
		for _, s := range symbols {
			fmt.Fprintf(w, "%s\t%.2f\n", s, m.BySymbol[s])
		}
	}
	if months := m.GetMonthlyReturns(); len(months) > 0 {
		fmt.Fprintln(w, "\nMonth\tPnL")
		for _, mr := range months {
			fmt.Fprintf(w, "%s\t%.2f\n", mr.Month.Format("2006-01"), mr.Return)
		}
	}
	return w.Flush()
}
