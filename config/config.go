package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"argusBot/internal/adapters/logger"
	"argusBot/internal/engine"
	"argusBot/internal/risk"
)

// Config holds all application configuration.
type Config struct {
	// Binance API
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Instruments and timeframes
	Symbols            []string
	BiasTimeframe      string
	ContextTimeframe   string
	ExecutionTimeframe string

	// Risk
	RiskFraction   float64 // RISK_PERCENT_PER_TRADE / 100
	RewardMultiple float64
	MaxDailyLoss   float64 // MAX_DAILY_LOSS_PERCENT / 100, 0 disables
	InitialBalance float64

	// Trading rules
	OrderTimeout    time.Duration // 0 disables
	Sessions        []engine.SessionWindow
	SessionLocation *time.Location
	AvoidWeekends   bool
	CloseEOD        bool
	EODClose        engine.Clock
	PollInterval    time.Duration

	// Venue formatting
	StopBufferPoints float64
	PriceTickSize    float64
	QuantityStep     float64

	// News filter
	NewsEnabled       bool
	NewsImpact        string
	NewsBufferMinutes int
	NewsCurrencies    []string
	NewsCacheTTL      time.Duration
	RedisAddr         string
	RedisPassword     string

	// Notifications
	TelegramEnabled  bool
	TelegramBotToken string
	TelegramChatID   string

	// Persistence and API
	DBPath        string
	TradesCSVPath string
	HTTPAddr      string
	HTTPUsername  string // basic auth for the API; required off loopback
	HTTPPassword  string

	// Logging
	LogLevel  logger.LogLevel
	LogFormat string // text or json
}

// LoadConfig loads the live configuration; Binance credentials are required.
func LoadConfig() (*Config, error) {
	return Load(true)
}

// Load reads configuration from environment variables (.env file).
// Replay tools pass requireCredentials=false.
func Load(requireCredentials bool) (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", true) // Default to testnet for safety
	if requireCredentials {
		if cfg.APIKey == "" {
			errs = append(errs, "BINANCE_API_KEY must be set")
		}
		if cfg.SecretKey == "" {
			errs = append(errs, "BINANCE_API_SECRET must be set")
		}
	}

	cfg.Symbols = getEnvAsList("SYMBOLS", "BTCUSDT")
	if len(cfg.Symbols) == 0 {
		errs = append(errs, "SYMBOLS must list at least one symbol")
	}
	cfg.BiasTimeframe = getEnv("TIMEFRAME_BIAS", "4h")
	cfg.ContextTimeframe = getEnv("TIMEFRAME_CONTEXT", "15m")
	cfg.ExecutionTimeframe = getEnv("TIMEFRAME_EXECUTION", "1m")

	riskPct, err := getEnvAsFloatRequired("RISK_PERCENT_PER_TRADE", 1.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RISK_PERCENT_PER_TRADE: %v", err))
	}
	cfg.RiskFraction = riskPct / 100

	cfg.RewardMultiple, err = getEnvAsFloatRequired("TAKE_PROFIT_RR", 2.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TAKE_PROFIT_RR: %v", err))
	}

	lossPct, err := getEnvAsFloatRequired("MAX_DAILY_LOSS_PERCENT", 3.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_DAILY_LOSS_PERCENT: %v", err))
	}
	cfg.MaxDailyLoss = lossPct / 100
	if err := cfg.RiskConfig().Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	cfg.InitialBalance, err = getEnvAsFloatRequired("INITIAL_BALANCE", 10000)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid INITIAL_BALANCE: %v", err))
	} else if cfg.InitialBalance <= 0 {
		errs = append(errs, "INITIAL_BALANCE must be positive")
	}

	timeoutMinutes, err := getEnvAsIntRequired("ORDER_TIMEOUT_MINUTES", 60)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid ORDER_TIMEOUT_MINUTES: %v", err))
	} else if timeoutMinutes < 0 {
		errs = append(errs, "ORDER_TIMEOUT_MINUTES cannot be negative")
	}
	cfg.OrderTimeout = time.Duration(timeoutMinutes) * time.Minute

	// Sessions
	if path := getEnv("SESSIONS_FILE", ""); path != "" {
		cfg.Sessions, err = engine.LoadSessionsFile(path)
	} else {
		cfg.Sessions, err = engine.ParseSessions(getEnv("KILLZONES", engine.DefaultKillzones))
	}
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid sessions: %v", err))
	}
	cfg.SessionLocation, err = time.LoadLocation(getEnv("SESSION_TIMEZONE", "America/New_York"))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SESSION_TIMEZONE: %v", err))
	}

	cfg.AvoidWeekends = getEnvAsBool("AVOID_WEEKENDS", true)
	cfg.CloseEOD = getEnvAsBool("CLOSE_POSITIONS_EOD", true)
	cfg.EODClose, err = engine.ParseClock(getEnv("EOD_CLOSE_TIME", "16:45"))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid EOD_CLOSE_TIME: %v", err))
	}

	pollSeconds := getEnvAsInt("POLL_INTERVAL_SECONDS", 5)
	if pollSeconds <= 0 {
		errs = append(errs, "POLL_INTERVAL_SECONDS must be positive")
	}
	cfg.PollInterval = time.Duration(pollSeconds) * time.Second

	// Venue formatting
	cfg.StopBufferPoints = getEnvAsFloat("STOP_BUFFER_POINTS", 3)
	cfg.PriceTickSize = getEnvAsFloat("PRICE_TICK_SIZE", 0.01)
	cfg.QuantityStep = getEnvAsFloat("ORDER_QUANTITY_STEP", 0.001)
	if cfg.StopBufferPoints < 0 {
		errs = append(errs, "STOP_BUFFER_POINTS cannot be negative")
	}
	if cfg.PriceTickSize <= 0 || cfg.QuantityStep <= 0 {
		errs = append(errs, "PRICE_TICK_SIZE and ORDER_QUANTITY_STEP must be positive")
	}

	// News
	cfg.NewsEnabled = getEnvAsBool("ENABLE_NEWS_FILTER", false)
	cfg.NewsImpact = getEnv("NEWS_IMPACT_LEVEL", "High")
	switch cfg.NewsImpact {
	case "High", "Medium", "Low":
	default:
		errs = append(errs, "NEWS_IMPACT_LEVEL must be High, Medium or Low")
	}
	cfg.NewsBufferMinutes = getEnvAsInt("NEWS_BUFFER_MINUTES", 30)
	if cfg.NewsBufferMinutes < 0 {
		errs = append(errs, "NEWS_BUFFER_MINUTES cannot be negative")
	}
	cfg.NewsCurrencies = getEnvAsList("NEWS_CURRENCIES", "USD")
	cfg.NewsCacheTTL = time.Duration(getEnvAsInt("NEWS_CACHE_TTL_MINUTES", 60)) * time.Minute
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")

	// Notifications
	cfg.TelegramEnabled = getEnvAsBool("ENABLE_TELEGRAM", false)
	cfg.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	cfg.TelegramChatID = getEnv("TELEGRAM_CHAT_ID", "")
	if cfg.TelegramEnabled && (cfg.TelegramBotToken == "" || cfg.TelegramChatID == "") {
		errs = append(errs, "TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set when ENABLE_TELEGRAM is true")
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/argus.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}
	cfg.TradesCSVPath = getEnv("TRADES_CSV_PATH", "./data/trades.csv")
	cfg.HTTPAddr = getEnv("HTTP_ADDR", "127.0.0.1:8080")
	cfg.HTTPUsername = getEnv("HTTP_USERNAME", "")
	cfg.HTTPPassword = getEnv("HTTP_PASSWORD", "")
	if (cfg.HTTPUsername == "") != (cfg.HTTPPassword == "") {
		errs = append(errs, "HTTP_USERNAME and HTTP_PASSWORD must be set together")
	} else if cfg.HTTPPassword == "" && !loopback(cfg.HTTPAddr) {
		errs = append(errs, fmt.Sprintf("HTTP_ADDR %q is not a loopback address; set HTTP_USERNAME and HTTP_PASSWORD", cfg.HTTPAddr))
	}

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", "text"))

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// HTTPAuth reports whether API credentials are configured.
func (c *Config) HTTPAuth() bool {
	return c.HTTPUsername != "" && c.HTTPPassword != ""
}

// loopback reports whether a listen address only accepts local connections.
// An empty host listens on every interface.
func loopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// RiskConfig extracts the risk parameters.
func (c *Config) RiskConfig() risk.RiskConfig {
	return risk.RiskConfig{
		RiskFraction:   c.RiskFraction,
		RewardMultiple: c.RewardMultiple,
		MaxDailyLoss:   c.MaxDailyLoss,
	}
}

// EngineConfig extracts the strategy engine parameters.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		Symbols:            c.Symbols,
		BiasTimeframe:      c.BiasTimeframe,
		ContextTimeframe:   c.ContextTimeframe,
		ExecutionTimeframe: c.ExecutionTimeframe,
		Sessions:           engine.NewSessions(c.Sessions, c.SessionLocation),
		OrderTimeout:       c.OrderTimeout,
		News: engine.NewsFilter{
			Enabled:       c.NewsEnabled,
			Currencies:    c.NewsCurrencies,
			MinImpact:     c.NewsImpact,
			BufferMinutes: c.NewsBufferMinutes,
		},
	}
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Log warning? For non-required fields, default is often acceptable.
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key, defaultValue string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultValue), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}
