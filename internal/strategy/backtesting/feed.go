package backtesting

import (
	"context"
	"fmt"
	"sort"

	"argusBot/internal/domain"
	"argusBot/internal/ports"
)

// ExecutionLookback is the number of execution candles before the current one
// exposed at each replay step.
const ExecutionLookback = 20

// ReplayFeed serves candle views as of a replay cursor over the execution series.
type ReplayFeed struct {
	execTimeframe string
	series        map[string][]domain.Candle
	exec          []domain.Candle
	cursor        int
}

// NewReplayFeed builds a feed from one series per timeframe. The execution
// timeframe must be present.
func NewReplayFeed(execTimeframe string, series map[string][]domain.Candle) (*ReplayFeed, error) {
	exec, ok := series[execTimeframe]
	if !ok || len(exec) == 0 {
		return nil, fmt.Errorf("execution timeframe %s has no candles: %w", execTimeframe, ports.ErrInsufficientData)
	}
	return &ReplayFeed{execTimeframe: execTimeframe, series: series, exec: exec}, nil
}

// Len returns the number of execution candles.
func (f *ReplayFeed) Len() int {
	return len(f.exec)
}

// Seek moves the cursor to execution candle i and returns it.
func (f *ReplayFeed) Seek(i int) domain.Candle {
	f.cursor = i
	return f.exec[i]
}

// Candles returns the view at the cursor. The execution view ends with the
// current candle; other timeframes include every candle opened at or before it.
func (f *ReplayFeed) Candles(ctx context.Context, symbol, timeframe string, count int) ([]domain.Candle, error) {
	if timeframe == f.execTimeframe {
		start := max(f.cursor-ExecutionLookback, 0)
		view := f.exec[start : f.cursor+1]
		return tail(view, count), nil
	}
	candles, ok := f.series[timeframe]
	if !ok {
		return nil, fmt.Errorf("timeframe %s is not loaded: %w", timeframe, ports.ErrNotFound)
	}
	now := f.exec[f.cursor].Time
	end := sort.Search(len(candles), func(i int) bool { return candles[i].Time.After(now) })
	return tail(candles[:end], count), nil
}

func tail(c []domain.Candle, n int) []domain.Candle {
	if n > 0 && len(c) > n {
		return c[len(c)-n:]
	}
	return c
}
