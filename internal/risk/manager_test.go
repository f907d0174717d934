package risk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"argusBot/internal/domain"
	"argusBot/internal/ports"
)

func TestRiskConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RiskConfig
		wantErr bool
	}{
		{name: "valid", cfg: RiskConfig{RiskFraction: 0.01, RewardMultiple: 2, MaxDailyLoss: 0.03}},
		{name: "daily loss disabled", cfg: RiskConfig{RiskFraction: 0.01, RewardMultiple: 2}},
		{name: "zero risk", cfg: RiskConfig{RewardMultiple: 2}, wantErr: true},
		{name: "risk of whole balance", cfg: RiskConfig{RiskFraction: 1, RewardMultiple: 2}, wantErr: true},
		{name: "zero reward", cfg: RiskConfig{RiskFraction: 0.01}, wantErr: true},
		{name: "negative daily loss", cfg: RiskConfig{RiskFraction: 0.01, RewardMultiple: 2, MaxDailyLoss: -0.1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ports.ErrConfigurationError)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRiskManager_TargetAndSize(t *testing.T) {
	manager, err := NewRiskManager(RiskConfig{RiskFraction: 0.01, RewardMultiple: 2})
	require.NoError(t, err)

	assert.InDelta(t, 1.2070, manager.TargetPrice(domain.Long, 1.2020, 1.1995), 1e-9)
	assert.InDelta(t, 1.1950, manager.TargetPrice(domain.Short, 1.2000, 1.2025), 1e-9)

	assert.InDelta(t, 100.0/0.5, manager.PositionSize(10000, 100, 99.5), 1e-9)
	assert.Zero(t, manager.PositionSize(10000, 100, 100))
	assert.Zero(t, manager.PositionSize(0, 100, 99))
}

func TestRiskManager_DailyLossLimit(t *testing.T) {
	ctx := context.Background()
	manager, err := NewRiskManager(RiskConfig{RiskFraction: 0.01, RewardMultiple: 2, MaxDailyLoss: 0.03})
	require.NoError(t, err)

	manager.UpdateStats(ctx, domain.Trade{PnL: -100})
	manager.UpdateStats(ctx, domain.Trade{PnL: -100})
	assert.NoError(t, manager.CheckRiskLimits(ctx, 10000))

	manager.UpdateStats(ctx, domain.Trade{PnL: -150})
	err = manager.CheckRiskLimits(ctx, 10000)
	assert.True(t, errors.Is(err, ports.ErrDailyLossLimit))

	stats := manager.GetStats()
	assert.Equal(t, 3, stats.DailyTrades)
	assert.InDelta(t, -350, stats.DailyPnL, 1e-9)

	now := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	manager.ResetDailyStats(ctx, now)
	assert.NoError(t, manager.CheckRiskLimits(ctx, 10000))
	assert.Equal(t, now, manager.GetStats().LastResetTime)
}

func TestRiskManager_LimitDisabled(t *testing.T) {
	ctx := context.Background()
	manager, err := NewRiskManager(RiskConfig{RiskFraction: 0.01, RewardMultiple: 2})
	require.NoError(t, err)
	manager.UpdateStats(ctx, domain.Trade{PnL: -5000})
	assert.NoError(t, manager.CheckRiskLimits(ctx, 10000))
}

func TestRiskManager_SetConfig(t *testing.T) {
	ctx := context.Background()
	manager, err := NewRiskManager(RiskConfig{RiskFraction: 0.01, RewardMultiple: 2, MaxDailyLoss: 0.03})
	require.NoError(t, err)

	err = manager.SetConfig(RiskConfig{RiskFraction: 0.5, RewardMultiple: 0})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
	assert.Equal(t, 2.0, manager.Config().RewardMultiple, "rejected config is not applied")

	manager.UpdateStats(ctx, domain.Trade{PnL: -250})
	require.NoError(t, manager.SetConfig(RiskConfig{RiskFraction: 0.02, RewardMultiple: 3, MaxDailyLoss: 0.03}))
	assert.InDelta(t, 1.2020+3*0.0025, manager.TargetPrice(domain.Long, 1.2020, 1.1995), 1e-9)
	assert.InDelta(t, 200.0/0.5, manager.PositionSize(10000, 100, 99.5), 1e-9)
	assert.Equal(t, -250.0, manager.GetStats().DailyPnL, "daily stats survive a config change")
}
