package structure

import (
	"argusBot/internal/domain"
)

// FindLiquidityTarget picks the nearest resting liquidity on the opposing side of
// price: the highest swing low below the last close for a bullish bias, the lowest
// swing high above it for a bearish bias.
func FindLiquidityTarget(candles []domain.Candle, bias domain.Bias) (domain.LiquidityTarget, bool) {
	if len(candles) == 0 {
		return domain.LiquidityTarget{}, false
	}
	last := candles[len(candles)-1].Close

	switch bias {
	case domain.BiasBullish:
		best, found := 0.0, false
		for _, p := range SwingLows(candles, ExecutionWindow) {
			if p.Price < last && (!found || p.Price > best) {
				best, found = p.Price, true
			}
		}
		return domain.LiquidityTarget{Level: best, Side: domain.SSL}, found
	case domain.BiasBearish:
		best, found := 0.0, false
		for _, p := range SwingHighs(candles, ExecutionWindow) {
			if p.Price > last && (!found || p.Price < best) {
				best, found = p.Price, true
			}
		}
		return domain.LiquidityTarget{Level: best, Side: domain.BSL}, found
	default:
		return domain.LiquidityTarget{}, false
	}
}
