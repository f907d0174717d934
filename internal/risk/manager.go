package risk

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"argusBot/internal/domain"
	"argusBot/internal/ports"
)

// RiskConfig holds configuration for risk management
type RiskConfig struct {
	RiskFraction   float64 // Fraction of balance risked per trade (0.01 = 1%)
	RewardMultiple float64 // Target distance as a multiple of stop distance
	MaxDailyLoss   float64 // Fraction of balance; new entries halt beyond it. 0 disables.
}

// Validate checks the configuration values.
func (c RiskConfig) Validate() error {
	if c.RiskFraction <= 0 || c.RiskFraction >= 1 {
		return fmt.Errorf("risk fraction must be between 0 and 1 (exclusive), got %f: %w", c.RiskFraction, ports.ErrConfigurationError)
	}
	if c.RewardMultiple <= 0 {
		return fmt.Errorf("reward multiple must be positive, got %f: %w", c.RewardMultiple, ports.ErrConfigurationError)
	}
	if c.MaxDailyLoss < 0 || c.MaxDailyLoss >= 1 {
		return fmt.Errorf("max daily loss must be within [0, 1), got %f: %w", c.MaxDailyLoss, ports.ErrConfigurationError)
	}
	return nil
}

// RiskManager tracks daily results and enforces the daily loss limit.
// The configuration can be replaced while the bot runs.
type RiskManager struct {
	mu     sync.Mutex
	config RiskConfig
	stats  RiskStats
}

// RiskStats holds risk management statistics
type RiskStats struct {
	DailyPnL      float64
	DailyTrades   int
	DailyWins     int
	LastResetTime time.Time
}

// NewRiskManager creates a new risk manager instance
func NewRiskManager(config RiskConfig) (*RiskManager, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &RiskManager{config: config}, nil
}

// Config returns the current configuration.
func (r *RiskManager) Config() RiskConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.config
}

// SetConfig replaces the configuration. Orders already placed keep the
// targets they were created with.
func (r *RiskManager) SetConfig(config RiskConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config = config
	return nil
}

// TargetPrice returns the take-profit price for an entry and stop.
func (r *RiskManager) TargetPrice(direction domain.Direction, entry, stop float64) float64 {
	rr := r.Config().RewardMultiple
	if direction == domain.Short {
		return entry - (stop-entry)*rr
	}
	return entry + (entry-stop)*rr
}

// PositionSize returns the quantity that loses RiskFraction of balance when the
// stop is hit. Zero when the stop distance is zero.
func (r *RiskManager) PositionSize(balance, entry, stop float64) float64 {
	distance := math.Abs(entry - stop)
	if distance == 0 || balance <= 0 {
		return 0
	}
	return balance * r.Config().RiskFraction / distance
}

// UpdateStats records a closed trade in the daily statistics
func (r *RiskManager) UpdateStats(ctx context.Context, trade domain.Trade) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.DailyPnL += trade.PnL
	r.stats.DailyTrades++
	if trade.PnL > 0 {
		r.stats.DailyWins++
	}
}

// ResetDailyStats resets daily statistics
func (r *RiskManager) ResetDailyStats(ctx context.Context, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = RiskStats{LastResetTime: now}
}

// CheckRiskLimits returns ErrDailyLossLimit once the day's loss exceeds the limit.
func (r *RiskManager) CheckRiskLimits(ctx context.Context, accountBalance float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.config.MaxDailyLoss == 0 || accountBalance <= 0 {
		return nil
	}
	if r.stats.DailyPnL < 0 && -r.stats.DailyPnL/accountBalance > r.config.MaxDailyLoss {
		return fmt.Errorf("daily loss %.2f exceeds %.2f%% of balance %.2f: %w",
			-r.stats.DailyPnL, r.config.MaxDailyLoss*100, accountBalance, ports.ErrDailyLossLimit)
	}
	return nil
}

// GetStats returns a copy of the current risk management statistics
func (r *RiskManager) GetStats() RiskStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Halted reports whether new entries are blocked for the rest of the day.
func (r *RiskManager) Halted(ctx context.Context, accountBalance float64) bool {
	return r.CheckRiskLimits(ctx, accountBalance) != nil
}
