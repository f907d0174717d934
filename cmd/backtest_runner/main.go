package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"

	"argusBot/config"
	"argusBot/internal/adapters/logger"
	"argusBot/internal/domain"
	"argusBot/internal/strategy/backtesting"
	"argusBot/internal/strategy/optimization"
	"argusBot/internal/utils"
)

func main() {
	biasFile := flag.String("bias", "", "CSV with bias timeframe candles")
	contextFile := flag.String("context", "", "CSV with context timeframe candles")
	execFile := flag.String("exec", "", "CSV with execution timeframe candles")
	symbol := flag.String("symbol", "", "symbol to replay (defaults to the first configured symbol)")
	tradesOut := flag.String("out", "data/backtest_trades.csv", "where to write closed trades")
	sweep := flag.Bool("sweep", false, "sweep reward multiple and order timeout instead of a single run")
	flag.Parse()

	// 1. Load Configuration; credentials are not needed offline.
	cfg, err := config.Load(false)
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	if *biasFile == "" || *contextFile == "" || *execFile == "" {
		log.Fatalf("FATAL: -bias, -context and -exec are required")
	}
	if *symbol == "" {
		*symbol = cfg.Symbols[0]
	}

	appLogger := logger.NewStdLogger(cfg.LogLevel).With("backtest")
	ctx := context.Background()

	// 2. Load candles for each timeframe
	files := map[string]string{"bias": *biasFile, "context": *contextFile, "exec": *execFile}
	loaded := make(map[string][]domain.Candle, len(files))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var loadErr error
	for role, filename := range files {
		wg.Add(1)
		go func(role, filename string) {
			defer wg.Done()
			candles, err := utils.ReadCandlesCSV(filename)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				appLogger.Error(ctx, err, "Error loading candles", map[string]interface{}{"file": filename})
				loadErr = err
				return
			}
			loaded[role] = candles
			appLogger.Info(ctx, "Loaded candles", map[string]interface{}{"file": filename, "count": len(candles)})
		}(role, filename)
	}
	wg.Wait()
	if loadErr != nil {
		log.Fatalf("FATAL: %v", loadErr)
	}

	series := backtesting.Series{Bias: loaded["bias"], Context: loaded["context"], Execution: loaded["exec"]}
	engCfg := cfg.EngineConfig()
	btCfg := backtesting.BacktestConfig{
		Symbol:             *symbol,
		BiasTimeframe:      cfg.BiasTimeframe,
		ContextTimeframe:   cfg.ContextTimeframe,
		ExecutionTimeframe: cfg.ExecutionTimeframe,
		Sessions:           engCfg.Sessions,
		OrderTimeout:       cfg.OrderTimeout,
		InitialFunds:       cfg.InitialBalance,
		Risk:               cfg.RiskConfig(),
	}

	if *sweep {
		runSweep(ctx, series, btCfg, appLogger)
		return
	}

	// 3. Run the replay
	result, err := backtesting.Backtest(ctx, series, btCfg, appLogger)
	if err != nil {
		log.Fatalf("FATAL: Backtest failed: %v", err)
	}

	fmt.Printf("\n=== Backtest %s (%d steps, %d signals, %d canceled) ===\n",
		*symbol, result.Steps, result.Signals, result.CanceledOrders)
	if err := result.Metrics.WriteReport(os.Stdout); err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	if err := utils.WriteTradesCSV(result.Trades, *tradesOut); err != nil {
		log.Fatalf("FATAL: Error writing trades: %v", err)
	}
	appLogger.Info(ctx, "Trades saved", map[string]interface{}{"file": *tradesOut, "count": len(result.Trades)})
}

func runSweep(ctx context.Context, series backtesting.Series, base backtesting.BacktestConfig, appLogger *logger.StdLogger) {
	opt, err := optimization.NewOptimizer(optimization.OptimizerConfig{
		ParameterRanges: []optimization.ParameterRange{
			{Name: optimization.ParamRewardMultiple, Min: 1, Max: 4, Step: 0.5},
			{Name: optimization.ParamOrderTimeout, Min: 30, Max: 120, Step: 30, IsInt: true},
		},
		Base: base,
	}, appLogger)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	results, err := opt.Optimize(ctx, series)
	if err != nil {
		log.Fatalf("FATAL: Sweep failed: %v", err)
	}

	fmt.Printf("\n=== Sweep %s: %d combinations ===\n", base.Symbol, len(results))
	fmt.Printf("%-6s %-8s %-7s %-8s %-10s %-8s\n", "RR", "Timeout", "Trades", "WinRate", "PnL", "Score")
	for _, r := range results {
		fmt.Printf("%-6.1f %-8.0f %-7d %-8.2f %-10.2f %-8.3f\n",
			r.Parameters[optimization.ParamRewardMultiple],
			r.Parameters[optimization.ParamOrderTimeout],
			r.Metrics.TotalTrades,
			r.Metrics.WinRate*100,
			r.Metrics.TotalProfit,
			r.Score,
		)
	}
}
