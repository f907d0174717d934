package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"argusBot/config"
	"argusBot/internal/adapters/binanceclient"
	"argusBot/internal/adapters/logger"
	"argusBot/internal/utils"
)

func main() {
	symbol := flag.String("symbol", "", "symbol to download (defaults to the first configured symbol)")
	months := flag.Int("months", 3, "how many months back to fetch")
	outDir := flag.String("out", "data", "output directory")
	flag.Parse()

	// 1. Load Configuration; klines are public so credentials are optional.
	cfg, err := config.Load(false)
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}
	if *symbol == "" {
		*symbol = cfg.Symbols[0]
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel).With("fetch")
	ctx := context.Background()

	// 3. Initialize Exchange Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
		TickSize:   cfg.PriceTickSize,
		QtyStep:    cfg.QuantityStep,
		StopBuffer: cfg.StopBufferPoints,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	end := time.Now().UTC()
	start := end.AddDate(0, -*months, 0)

	for _, interval := range []string{cfg.BiasTimeframe, cfg.ContextTimeframe, cfg.ExecutionTimeframe} {
		fmt.Printf("Fetching candles for %s %s from %s to %s...\n", *symbol, interval, start.Format(time.RFC3339), end.Format(time.RFC3339))
		candles, err := binanceClient.CandlesRange(ctx, *symbol, interval, start, end)
		if err != nil {
			appLogger.Error(ctx, err, "Error fetching candles", map[string]interface{}{"interval": interval})
			log.Fatalf("Error fetching candles: %v", err)
		}
		appLogger.Info(ctx, "Fetched candles", map[string]interface{}{"interval": interval, "count": len(candles)})

		filename := filepath.Join(*outDir, fmt.Sprintf("%s_%s_%s_to_%s.csv", *symbol, interval, start.Format("20060102"), end.Format("20060102")))
		if err := utils.WriteCandlesCSV(candles, filename); err != nil {
			appLogger.Error(ctx, err, "Error writing CSV")
			log.Fatalf("Error writing CSV: %v", err)
		}
		appLogger.Info(ctx, "Saved to", map[string]interface{}{"filename": filename})
	}
}
