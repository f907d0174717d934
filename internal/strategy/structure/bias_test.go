package structure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"argusBot/internal/domain"
)

func swing(i int, kind domain.SwingKind, price float64) domain.SwingPoint {
	return domain.SwingPoint{Time: t0.Add(time.Duration(i) * time.Hour), Price: price, Kind: kind}
}

func TestBiasFromSwings(t *testing.T) {
	bullish := []domain.SwingPoint{
		swing(0, domain.SwingLow, 10), swing(1, domain.SwingHigh, 15),
		swing(2, domain.SwingLow, 12), swing(3, domain.SwingHigh, 18),
	}
	bearish := []domain.SwingPoint{
		swing(0, domain.SwingHigh, 20), swing(1, domain.SwingLow, 15),
		swing(2, domain.SwingHigh, 18), swing(3, domain.SwingLow, 12),
	}

	tests := []struct {
		name      string
		swings    []domain.SwingPoint
		close     float64
		want      domain.Bias
		wantLevel float64
		wantCHOCH bool
	}{
		{name: "higher high higher low", swings: bullish, close: 17, want: domain.BiasBullish, wantLevel: 12},
		{name: "close below critical flips to bearish", swings: bullish, close: 11, want: domain.BiasBearish, wantLevel: 12, wantCHOCH: true},
		{name: "close at critical keeps bullish", swings: bullish, close: 12, want: domain.BiasBullish, wantLevel: 12},
		{name: "lower high lower low", swings: bearish, close: 13, want: domain.BiasBearish, wantLevel: 18},
		{name: "close above critical flips to bullish", swings: bearish, close: 19, want: domain.BiasBullish, wantLevel: 18, wantCHOCH: true},
		{
			name: "alternation without higher high",
			swings: []domain.SwingPoint{
				swing(0, domain.SwingLow, 10), swing(1, domain.SwingHigh, 15),
				swing(2, domain.SwingLow, 12), swing(3, domain.SwingHigh, 14),
			},
			close: 13, want: domain.BiasUndetermined,
		},
		{
			name: "no alternation",
			swings: []domain.SwingPoint{
				swing(0, domain.SwingLow, 10), swing(1, domain.SwingLow, 11),
				swing(2, domain.SwingHigh, 12), swing(3, domain.SwingHigh, 18),
			},
			close: 13, want: domain.BiasUndetermined,
		},
		{name: "too few swings", swings: bullish[:3], close: 13, want: domain.BiasUndetermined},
		{
			name:   "only last four are inspected",
			swings: append([]domain.SwingPoint{swing(-1, domain.SwingHigh, 50)}, bullish...),
			close:  17, want: domain.BiasBullish, wantLevel: 12,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := BiasFromSwings(tt.swings, tt.close)
			assert.Equal(t, tt.want, res.Bias)
			assert.Equal(t, tt.wantCHOCH, res.CHOCH)
			if tt.want != domain.BiasUndetermined {
				assert.Equal(t, tt.wantLevel, res.CriticalLevel)
			}
		})
	}
}

func TestAnalyzeStructure(t *testing.T) {
	t.Run("not enough candles", func(t *testing.T) {
		candles := pathCandles([][2]float64{{0, 100}, {15, 120}, {30, 110}, {48, 135}})
		assert.Equal(t, domain.BiasUndetermined, MarketStructureBias(candles))
	})

	t.Run("bullish structure from candles", func(t *testing.T) {
		candles := pathCandles([][2]float64{{0, 100}, {15, 120}, {30, 110}, {59, 135}})
		res := AnalyzeStructure(candles)
		assert.Equal(t, domain.BiasBullish, res.Bias)
		assert.Equal(t, domain.BiasBullish, res.Pattern)
		assert.InDelta(t, 109.5, res.CriticalLevel, 1e-9)
		assert.False(t, res.CHOCH)
	})

	t.Run("bearish structure from candles", func(t *testing.T) {
		candles := pathCandles([][2]float64{{0, 135}, {15, 115}, {30, 125}, {59, 100}})
		res := AnalyzeStructure(candles)
		assert.Equal(t, domain.BiasBearish, res.Bias)
		assert.InDelta(t, 125.5, res.CriticalLevel, 1e-9)
	})
}
