package structure

import (
	"time"

	"argusBot/internal/domain"
)

var t0 = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

// pathCandles builds candles around a mid price that is linearly interpolated
// between the given (index, price) anchors. High/Low sit half a point away.
func pathCandles(anchors [][2]float64) []domain.Candle {
	last := int(anchors[len(anchors)-1][0])
	candles := make([]domain.Candle, 0, last+1)
	seg := 0
	for i := 0; i <= last; i++ {
		for seg < len(anchors)-2 && float64(i) > anchors[seg+1][0] {
			seg++
		}
		x0, y0 := anchors[seg][0], anchors[seg][1]
		x1, y1 := anchors[seg+1][0], anchors[seg+1][1]
		p := y0 + (y1-y0)*(float64(i)-x0)/(x1-x0)
		candles = append(candles, domain.Candle{
			Time:  t0.Add(time.Duration(i) * time.Minute),
			Open:  p,
			High:  p + 0.5,
			Low:   p - 0.5,
			Close: p,
		})
	}
	return candles
}

func midCandles(mids ...float64) []domain.Candle {
	candles := make([]domain.Candle, len(mids))
	for i, p := range mids {
		candles[i] = domain.Candle{
			Time:  t0.Add(time.Duration(i) * time.Minute),
			Open:  p,
			High:  p + 0.5,
			Low:   p - 0.5,
			Close: p,
		}
	}
	return candles
}

func hl(i int, high, low float64) domain.Candle {
	return domain.Candle{
		Time:  t0.Add(time.Duration(i) * time.Minute),
		Open:  (high + low) / 2,
		High:  high,
		Low:   low,
		Close: (high + low) / 2,
	}
}
