package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"argusBot/internal/domain"
	"argusBot/internal/engine"
)

func TestState_LogRing(t *testing.T) {
	s := NewState()
	for i := 0; i < MaxLogEntries+5; i++ {
		s.AddLog("info", fmt.Sprintf("line %d", i))
	}
	logs := s.Logs()
	require.Len(t, logs, MaxLogEntries)
	assert.Equal(t, "line 5", logs[0].Message)
	assert.Equal(t, fmt.Sprintf("line %d", MaxLogEntries+4), logs[len(logs)-1].Message)
}

func TestState_SnapshotIsDetached(t *testing.T) {
	s := NewState()
	s.SetRunning(true, "running")
	s.SetAccount(10200, 200)
	s.SetSymbols([]engine.SymbolView{{Symbol: "BTCUSDT", Phase: "AwaitingSession"}}, "NY AM")
	s.SetLastSignal("BTCUSDT", domain.PendingOrder{ID: "s-1", EntryPrice: 100})

	snap := s.Snapshot()
	assert.True(t, snap.Running)
	assert.Equal(t, 200.0, snap.DailyPnL)
	require.NotNil(t, snap.LastSignal)

	snap.Symbols[0].Phase = "changed"
	snap.LastSignal.Order.EntryPrice = 1
	again := s.Snapshot()
	assert.Equal(t, "AwaitingSession", again.Symbols[0].Phase)
	assert.Equal(t, 100.0, again.LastSignal.Order.EntryPrice)
}

func TestTapLogger(t *testing.T) {
	s := NewState()
	next := &mockLogger{}
	l := NewTapLogger(next, s)
	ctx := context.Background()

	l.Debug(ctx, "hidden")
	l.Info(ctx, "tick", map[string]interface{}{"symbol": "BTCUSDT", "bias": "Bullish"})
	l.Error(ctx, errors.New("boom"), "failed")

	logs := s.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, "tick bias=Bullish symbol=BTCUSDT", logs[0].Message)
	assert.Equal(t, "error", logs[1].Level)
	assert.Equal(t, "failed error=boom", logs[1].Message)
	assert.Equal(t, []string{"tick"}, next.infoMsgs)
}
