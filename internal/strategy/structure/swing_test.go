package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"argusBot/internal/domain"
)

func TestWindowBounds(t *testing.T) {
	tests := []struct {
		name             string
		i, n, w          int
		wantStart, wantE int
	}{
		{name: "odd window interior", i: 10, n: 30, w: 5, wantStart: 8, wantE: 12},
		{name: "even window interior", i: 10, n: 30, w: 10, wantStart: 5, wantE: 14},
		{name: "clipped at start", i: 1, n: 30, w: 10, wantStart: 0, wantE: 5},
		{name: "clipped at end", i: 28, n: 30, w: 10, wantStart: 23, wantE: 29},
		{name: "width one", i: 3, n: 5, w: 1, wantStart: 3, wantE: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, e := windowBounds(tt.i, tt.n, tt.w)
			assert.Equal(t, tt.wantStart, s)
			assert.Equal(t, tt.wantE, e)
		})
	}
}

func TestSwings_MonotonicSeries(t *testing.T) {
	mids := make([]float64, 20)
	for i := range mids {
		mids[i] = 100 + float64(i)
	}
	candles := midCandles(mids...)

	for _, w := range []int{BiasWindow, ExecutionWindow} {
		highs := SwingHighs(candles, w)
		lows := SwingLows(candles, w)

		require.Len(t, highs, 1, "window %d", w)
		assert.Equal(t, candles[len(candles)-1].Time, highs[0].Time)
		assert.Equal(t, candles[len(candles)-1].High, highs[0].Price)

		require.Len(t, lows, 1, "window %d", w)
		assert.Equal(t, candles[0].Time, lows[0].Time)
	}
}

func TestSwings_ReportsTies(t *testing.T) {
	candles := []domain.Candle{
		hl(0, 10, 9), hl(1, 12, 10), hl(2, 12, 10), hl(3, 11, 9.5), hl(4, 10, 9),
	}
	highs := SwingHighs(candles, 5)
	require.Len(t, highs, 2)
	assert.Equal(t, candles[1].Time, highs[0].Time)
	assert.Equal(t, candles[2].Time, highs[1].Time)
}

func TestSwings_StopsWhenConsumerStops(t *testing.T) {
	candles := pathCandles([][2]float64{{0, 100}, {15, 120}, {30, 110}, {59, 135}})
	count := 0
	for range Swings(candles, BiasWindow) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestSwings_Empty(t *testing.T) {
	assert.Empty(t, SwingHighs(nil, 5))
	assert.Empty(t, SwingLows([]domain.Candle{}, 5))
}
