package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"argusBot/internal/domain"
)

func TestDetectFVG(t *testing.T) {
	withLaterGap := []domain.Candle{
		hl(0, 10, 9), hl(1, 12, 10), hl(2, 13, 11),
		hl(3, 11.5, 10.5), hl(4, 11, 10),
		hl(5, 20, 19), hl(6, 22, 20), hl(7, 23, 21),
	}
	onlyOldest := []domain.Candle{
		hl(0, 10, 9), hl(1, 12, 10), hl(2, 13, 11), hl(3, 12.5, 9),
	}
	bearish := []domain.Candle{
		hl(0, 10, 9), hl(1, 9, 7), hl(2, 8, 6),
	}

	tests := []struct {
		name      string
		candles   []domain.Candle
		bias      domain.Bias
		wantFound bool
		want      domain.FVG
	}{
		{
			name: "most recent gap wins", candles: withLaterGap, bias: domain.BiasBullish, wantFound: true,
			want: domain.FVG{Kind: domain.FVGBullish, Top: 21, Bottom: 20, Time: withLaterGap[6].Time},
		},
		{
			name: "oldest triple is scanned", candles: onlyOldest, bias: domain.BiasBullish, wantFound: true,
			want: domain.FVG{Kind: domain.FVGBullish, Top: 11, Bottom: 10, Time: onlyOldest[1].Time},
		},
		{
			name: "bearish gap", candles: bearish, bias: domain.BiasBearish, wantFound: true,
			want: domain.FVG{Kind: domain.FVGBearish, Top: 9, Bottom: 8, Time: bearish[1].Time},
		},
		{name: "gap against bias is ignored", candles: bearish, bias: domain.BiasBullish},
		{name: "undetermined bias", candles: withLaterGap, bias: domain.BiasUndetermined},
		{name: "fewer than three candles", candles: bearish[:2], bias: domain.BiasBearish},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectFVG(tt.candles, tt.bias)
			assert.Equal(t, tt.wantFound, ok)
			if tt.wantFound {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
