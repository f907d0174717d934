package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"argusBot/internal/domain"
)

func TestSwept(t *testing.T) {
	ssl := domain.LiquidityTarget{Level: 1.2000, Side: domain.SSL}
	bsl := domain.LiquidityTarget{Level: 1.3000, Side: domain.BSL}

	tests := []struct {
		name   string
		target domain.LiquidityTarget
		candle domain.Candle
		want   bool
	}{
		{name: "ssl swept by lower low", target: ssl, candle: hl(0, 1.2030, 1.1995), want: true},
		{name: "ssl touched but not through", target: ssl, candle: hl(0, 1.2030, 1.2000)},
		{name: "bsl swept by higher high", target: bsl, candle: hl(0, 1.3005, 1.2950), want: true},
		{name: "bsl touched but not through", target: bsl, candle: hl(0, 1.3000, 1.2950)},
		{name: "unknown side", target: domain.LiquidityTarget{Level: 1}, candle: hl(0, 5, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Swept(tt.target, tt.candle))
		})
	}
}

func TestFindMSSLevel(t *testing.T) {
	closed := midCandles(10, 11, 12, 13, 12, 11, 10, 11, 12, 13, 14, 13, 12, 11, 10)

	level, ok := FindMSSLevel(closed, domain.SSL)
	assert.True(t, ok)
	assert.Equal(t, 14.5, level, "most recent swing high")

	level, ok = FindMSSLevel(closed, domain.BSL)
	assert.True(t, ok)
	assert.Equal(t, 9.5, level, "most recent swing low")

	t.Run("only the lookback window is searched", func(t *testing.T) {
		older := midCandles(50, 60, 70, 60, 50)
		window := append(older, closed...)
		level, ok := FindMSSLevel(window, domain.SSL)
		assert.True(t, ok)
		assert.Equal(t, 14.5, level)
	})

	t.Run("no candles", func(t *testing.T) {
		_, ok := FindMSSLevel(nil, domain.SSL)
		assert.False(t, ok)
	})
}

func TestExtendSweep(t *testing.T) {
	sweep := domain.SweepInfo{Low: 1.1995, High: 1.2030}

	got, changed := ExtendSweep(domain.BiasBullish, sweep, hl(0, 1.2010, 1.1990))
	assert.True(t, changed)
	assert.Equal(t, 1.1990, got.Low)
	assert.Equal(t, 1.2030, got.High)
	assert.Equal(t, 1.1995, sweep.Low, "original value is untouched")

	_, changed = ExtendSweep(domain.BiasBullish, sweep, hl(0, 1.2040, 1.1996))
	assert.False(t, changed)

	got, changed = ExtendSweep(domain.BiasBearish, sweep, hl(0, 1.2035, 1.2000))
	assert.True(t, changed)
	assert.Equal(t, 1.2035, got.High)
}

func TestMSSConfirmed(t *testing.T) {
	c := domain.Candle{Close: 1.2015}
	assert.True(t, MSSConfirmed(domain.BiasBullish, 1.2010, c))
	assert.False(t, MSSConfirmed(domain.BiasBullish, 1.2015, c))
	assert.True(t, MSSConfirmed(domain.BiasBearish, 1.2020, c))
	assert.False(t, MSSConfirmed(domain.BiasBearish, 1.2010, c))
	assert.False(t, MSSConfirmed(domain.BiasUndetermined, 1.2010, c))
}
