package structure

import (
	"argusBot/internal/domain"
)

// DetectFVG scans candle triples from the most recent backward and returns the
// first imbalance that agrees with bias.
func DetectFVG(candles []domain.Candle, bias domain.Bias) (domain.FVG, bool) {
	for i := len(candles) - 3; i >= 0; i-- {
		c1, c2, c3 := candles[i], candles[i+1], candles[i+2]
		if bias == domain.BiasBullish && c1.High < c3.Low {
			return domain.FVG{Kind: domain.FVGBullish, Top: c3.Low, Bottom: c1.High, Time: c2.Time}, true
		}
		if bias == domain.BiasBearish && c1.Low > c3.High {
			return domain.FVG{Kind: domain.FVGBearish, Top: c1.Low, Bottom: c3.High, Time: c2.Time}, true
		}
	}
	return domain.FVG{}, false
}
