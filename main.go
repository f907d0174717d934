package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"argusBot/config"
	"argusBot/internal/adapters/binanceclient"
	"argusBot/internal/adapters/httpapi"
	"argusBot/internal/adapters/logger"
	"argusBot/internal/adapters/metrics"
	"argusBot/internal/adapters/news"
	"argusBot/internal/adapters/notify"
	"argusBot/internal/adapters/sqlite"
	"argusBot/internal/app"
	"argusBot/internal/engine"
	"argusBot/internal/ports"
	"argusBot/internal/risk"
)

func newLogger(cfg *config.Config) ports.Logger {
	if cfg.LogFormat == "json" {
		return logger.NewZeroLogger(os.Stdout, cfg.LogLevel).With("argus")
	}
	return logger.NewStdLogger(cfg.LogLevel).With("argus")
}

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Initialize Logger; Info and above are mirrored into the observer log.
	state := app.NewState()
	appLogger := app.NewTapLogger(newLogger(cfg), state)
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String(), "format": cfg.LogFormat})

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err) // Also log to stderr
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()
	appLogger.Info(ctx, "Database repository initialized")

	// 4. Risk
	riskManager, err := risk.NewRiskManager(cfg.RiskConfig())
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize risk manager: %v", err)
	}
	ledger := risk.NewLedger(cfg.InitialBalance, cfg.RiskConfig())

	// 5. Initialize Exchange Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
		Sizer:      riskManager,
		TickSize:   cfg.PriceTickSize,
		QtyStep:    cfg.QuantityStep,
		StopBuffer: cfg.StopBufferPoints,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}
	appLogger.Info(ctx, "Binance client initialized")

	// 6. Engine and observers
	eng, err := engine.New(cfg.EngineConfig(), appLogger, binanceClient, binanceClient, riskManager, ledger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize strategy engine")
		log.Fatalf("FATAL: Failed to initialize strategy engine: %v", err)
	}

	if cfg.NewsEnabled {
		var cache news.EventCache
		if cfg.RedisAddr != "" {
			redisCache, err := news.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, 0)
			if err != nil {
				appLogger.Warn(ctx, "Redis news cache unavailable, using in-memory cache", map[string]interface{}{"error": err.Error()})
			} else {
				defer redisCache.Close()
				cache = redisCache
			}
		}
		guard, err := news.NewGuard(news.Config{CacheTTL: cfg.NewsCacheTTL}, cache, appLogger)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize news guard: %v", err)
		}
		eng.SetNewsGuard(guard)
		appLogger.Info(ctx, "News filter enabled", map[string]interface{}{"currencies": cfg.NewsCurrencies, "impact": cfg.NewsImpact})
	}

	var notifier ports.Notifier = notify.Nop{}
	if cfg.TelegramEnabled {
		notifier = notify.NewTelegram(notify.TelegramConfig{
			BotToken: cfg.TelegramBotToken,
			ChatID:   cfg.TelegramChatID,
			Enabled:  true,
		})
	}
	eng.AddObserver(app.NewJournal(appLogger, state, repo, cfg.TradesCSVPath, notifier))

	recorder, err := metrics.NewRecorder(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("FATAL: Failed to register metrics: %v", err)
	}
	eng.AddObserver(recorder)

	// 7. Initialize Application Service
	service, err := app.NewLiveService(app.ServiceConfig{
		PollInterval:  cfg.PollInterval,
		AvoidWeekends: cfg.AvoidWeekends,
		CloseEOD:      cfg.CloseEOD,
		EODClose:      cfg.EODClose,
	}, appLogger, eng, binanceClient, riskManager, state)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize live service")
		log.Fatalf("FATAL: Failed to initialize live service: %v", err)
	}
	service.SetTickObserver(recorder)

	// 8. Observer API
	api := httpapi.NewServer(httpapi.Config{
		Addr:           cfg.HTTPAddr,
		ProductionMode: !cfg.IsTestnet,
		Username:       cfg.HTTPUsername,
		Password:       cfg.HTTPPassword,
	}, state, prometheus.DefaultGatherer, appLogger)
	api.SetTrades(repo)
	if cfg.HTTPAuth() {
		api.SetController(service)
	}
	go func() {
		if err := api.Run(ctx); err != nil {
			appLogger.Error(ctx, err, "HTTP API stopped")
		}
	}()

	// 9. Start the Service
	if err := service.Start(ctx); err != nil {
		appLogger.Error(context.Background(), err, "Live service exited with error")
		log.Fatalf("FATAL: Live service exited with error: %v", err)
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
