package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"argusBot/internal/domain"
	"argusBot/internal/strategy/analytics"
	"argusBot/internal/utils"
)

func main() {
	dir := flag.String("dir", "data", "directory holding trade CSV logs")
	prefix := flag.String("prefix", "", "only read files starting with this prefix")
	initial := flag.Float64("initial", 10000, "starting balance used for drawdown and return")
	verbose := flag.Bool("v", false, "print the full report for each file")
	flag.Parse()

	files, err := findTradeFiles(*dir, *prefix)
	if err != nil {
		log.Fatalf("Error finding trade files: %v", err)
	}
	if len(files) == 0 {
		log.Println("No trade files found. Run the backtest runner or the live bot first.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "File\tTrades\tWinRate\tAvgWin\tAvgLoss\tTotalPnL\tMaxDD%\tPF\t")

	reports := make(map[string]*analytics.PerformanceMetrics, len(files))
	byReason := make(map[string][]reasonStats, len(files))
	for _, file := range files {
		trades, err := utils.ReadTradesCSV(file)
		if err != nil {
			log.Printf("Error reading trades from %s: %v", file, err)
			continue
		}
		metrics := analytics.AnalyzePerformance(trades, *initial)
		reports[file] = metrics
		byReason[file] = breakdownByReason(trades)

		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t\n",
			filepath.Base(file),
			metrics.TotalTrades,
			metrics.WinRate*100,
			metrics.AverageWin,
			metrics.AverageLoss,
			metrics.TotalProfit,
			metrics.MaxDrawdown*100,
			metrics.ProfitFactor,
		)
	}
	w.Flush()

	fmt.Println("\n## Exit Analysis")
	for _, file := range files {
		stats, ok := byReason[file]
		if !ok {
			continue
		}
		fmt.Printf("\nFile: %s\n", filepath.Base(file))
		fmt.Println("Close Reason\tCount\tTotal PnL\tAvg PnL")
		for _, s := range stats {
			fmt.Printf("%s\t%d\t%.2f\t%.2f\n", s.Reason, s.Count, s.Total, s.Average())
		}
		if *verbose {
			fmt.Println()
			if err := reports[file].WriteReport(os.Stdout); err != nil {
				log.Printf("Error writing report for %s: %v", file, err)
			}
		}
	}
}

type reasonStats struct {
	Reason domain.CloseReason
	Count  int
	Total  float64
}

func (s reasonStats) Average() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Total / float64(s.Count)
}

// breakdownByReason groups trade results by close reason, sorted by reason.
func breakdownByReason(trades []domain.Trade) []reasonStats {
	idx := make(map[domain.CloseReason]int)
	var out []reasonStats
	for _, t := range trades {
		i, ok := idx[t.CloseReason]
		if !ok {
			i = len(out)
			idx[t.CloseReason] = i
			out = append(out, reasonStats{Reason: t.CloseReason})
		}
		out[i].Count++
		out[i].Total += t.PnL
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Reason < out[j].Reason })
	return out
}

// findTradeFiles lists the CSV files in dir that start with prefix, sorted by name.
func findTradeFiles(dir, prefix string) ([]string, error) {
	var files []string

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) && strings.HasSuffix(entry.Name(), ".csv") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
