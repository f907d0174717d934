package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"argusBot/internal/domain"
)

func TestFindTradeFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"trades_b.csv", "trades_a.csv", "other.csv", "trades_c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "trades_dir.csv"), 0o755))

	files, err := findTradeFiles(dir, "trades_")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "trades_a.csv"), filepath.Join(dir, "trades_b.csv")}, files)

	all, err := findTradeFiles(dir, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = findTradeFiles(filepath.Join(dir, "missing"), "")
	assert.Error(t, err)
}

func TestBreakdownByReason(t *testing.T) {
	stats := breakdownByReason([]domain.Trade{
		{PnL: 200, CloseReason: domain.CloseReasonTakeProfit},
		{PnL: -100, CloseReason: domain.CloseReasonStopLoss},
		{PnL: 150, CloseReason: domain.CloseReasonTakeProfit},
		{PnL: -20, CloseReason: domain.CloseReasonEndOfDay},
	})

	require.Len(t, stats, 3)
	assert.Equal(t, domain.CloseReasonEndOfDay, stats[0].Reason)
	assert.Equal(t, domain.CloseReasonStopLoss, stats[1].Reason)
	assert.Equal(t, domain.CloseReasonTakeProfit, stats[2].Reason)
	assert.Equal(t, 2, stats[2].Count)
	assert.InDelta(t, 175, stats[2].Average(), 1e-9)
	assert.Zero(t, reasonStats{}.Average())
}
