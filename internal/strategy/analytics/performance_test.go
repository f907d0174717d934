package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"argusBot/internal/domain"
)

var base = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func trade(symbol string, pnl float64, closeAfter time.Duration, reason domain.CloseReason) domain.Trade {
	entry := base.Add(closeAfter - 30*time.Minute)
	return domain.Trade{
		Symbol:      symbol,
		Direction:   domain.Long,
		PnL:         pnl,
		EntryTime:   entry,
		CloseTime:   base.Add(closeAfter),
		CloseReason: reason,
	}
}

func TestAnalyzePerformance(t *testing.T) {
	initialBalance := 10000.0
	trades := []domain.Trade{
		trade("EURUSD", -100, 2*time.Hour, domain.CloseReasonStopLoss),
		trade("EURUSD", 200, time.Hour, domain.CloseReasonTakeProfit),
		trade("GBPUSD", 200, 3*time.Hour, domain.CloseReasonTakeProfit),
	}

	metrics := AnalyzePerformance(trades, initialBalance)

	assert.Equal(t, 3, metrics.TotalTrades)
	assert.Equal(t, 2, metrics.WinningTrades)
	assert.Equal(t, 1, metrics.LosingTrades)
	assert.InDelta(t, 2.0/3.0, metrics.WinRate, 1e-9)
	assert.Equal(t, 300.0, metrics.TotalProfit)
	assert.Equal(t, 10300.0, metrics.FinalBalance)
	assert.Equal(t, 4.0, metrics.ProfitFactor, "gross profit over gross loss")
	assert.Equal(t, 200.0, metrics.AverageWin)
	assert.Equal(t, -100.0, metrics.AverageLoss)
	assert.Equal(t, 2.0, metrics.RiskRewardRatio)
	assert.Equal(t, 30*time.Minute, metrics.AverageTradeDuration)
	assert.InDelta(t, 0.03, metrics.ReturnOnInvestment, 1e-9)

	assert.Equal(t, 2, metrics.ByReason[domain.CloseReasonTakeProfit])
	assert.Equal(t, 1, metrics.ByReason[domain.CloseReasonStopLoss])
	assert.Equal(t, 100.0, metrics.BySymbol["EURUSD"])

	// Processed in close order: +200, -100, +200
	assert.Equal(t, 1, metrics.MaxConsecutiveWins)
	require.Len(t, metrics.EquityCurve, 4)
	assert.Equal(t, initialBalance, metrics.EquityCurve[0].Value)
	assert.Equal(t, 10200.0, metrics.EquityCurve[1].Value)
	assert.Equal(t, 10100.0, metrics.EquityCurve[2].Value)

	assert.InDelta(t, 100.0/10200.0, metrics.MaxDrawdown, 1e-12)
	require.Len(t, metrics.Drawdowns, 1)
	assert.Equal(t, 10300.0, metrics.Drawdowns[0].EndValue)

	assert.Len(t, metrics.GetMonthlyReturns(), 1)
	assert.Equal(t, domain.CloseReasonStopLoss, trades[0].CloseReason, "input order is untouched")
}

func TestAnalyzePerformanceEmptyTrades(t *testing.T) {
	metrics := AnalyzePerformance(nil, 10000.0)
	assert.Zero(t, metrics.TotalTrades)
	assert.Equal(t, 10000.0, metrics.FinalBalance)
	assert.Len(t, metrics.EquityCurve, 1)
}

func TestAnalyzePerformanceOnlyWins(t *testing.T) {
	metrics := AnalyzePerformance([]domain.Trade{
		trade("EURUSD", 200, time.Hour, domain.CloseReasonTakeProfit),
		trade("EURUSD", 204, 2*time.Hour, domain.CloseReasonTakeProfit),
	}, 10000)

	assert.True(t, math.IsInf(metrics.ProfitFactor, 1))
	assert.Equal(t, 2, metrics.MaxConsecutiveWins)
	assert.Zero(t, metrics.MaxConsecutiveLosses)
	assert.Zero(t, metrics.MaxDrawdown)
	assert.Empty(t, metrics.Drawdowns)
}

func TestAnalyzePerformanceOpenDrawdown(t *testing.T) {
	metrics := AnalyzePerformance([]domain.Trade{
		trade("EURUSD", 1000, time.Hour, domain.CloseReasonTakeProfit),
		trade("EURUSD", -2200, 2*time.Hour, domain.CloseReasonStopLoss),
	}, 10000)

	assert.InDelta(t, 0.2, metrics.MaxDrawdown, 1e-12)
	require.Len(t, metrics.Drawdowns, 1)
	assert.InDelta(t, 0.2, metrics.Drawdowns[0].Depth, 1e-12)
	assert.Equal(t, 8800.0, metrics.Drawdowns[0].EndValue)
}
