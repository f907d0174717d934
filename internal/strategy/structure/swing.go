// Package structure implements the price-structure analysis used by the
// strategy: swing points, market-structure bias, liquidity targets, sweeps,
// market structure shifts and fair value gaps.
package structure

import (
	"iter"

	"argusBot/internal/domain"
)

const (
	// BiasWindow is the swing window for structural (bias) analysis.
	BiasWindow = 10
	// ExecutionWindow is the swing window for liquidity and MSS analysis.
	ExecutionWindow = 5
)

// windowBounds returns the inclusive index range of the centered rolling window
// of width w around i, clipped to [0, n-1]. For even widths the window extends
// one candle further into the past than into the future.
func windowBounds(i, n, w int) (int, int) {
	offset := (w - 1) / 2
	start := i + 1 + offset - w
	end := i + offset
	if start < 0 {
		start = 0
	}
	if end > n-1 {
		end = n - 1
	}
	return start, end
}

func isSwingHigh(candles []domain.Candle, i, w int) bool {
	start, end := windowBounds(i, len(candles), w)
	for j := start; j <= end; j++ {
		if candles[j].High > candles[i].High {
			return false
		}
	}
	return true
}

func isSwingLow(candles []domain.Candle, i, w int) bool {
	start, end := windowBounds(i, len(candles), w)
	for j := start; j <= end; j++ {
		if candles[j].Low < candles[i].Low {
			return false
		}
	}
	return true
}

// Swings lazily yields swing points in time order. A candle may yield both a high
// and a low; ties for an extremum are all reported.
func Swings(candles []domain.Candle, window int) iter.Seq[domain.SwingPoint] {
	return func(yield func(domain.SwingPoint) bool) {
		if window < 1 {
			window = 1
		}
		for i, c := range candles {
			if isSwingHigh(candles, i, window) {
				if !yield(domain.SwingPoint{Time: c.Time, Price: c.High, Kind: domain.SwingHigh}) {
					return
				}
			}
			if isSwingLow(candles, i, window) {
				if !yield(domain.SwingPoint{Time: c.Time, Price: c.Low, Kind: domain.SwingLow}) {
					return
				}
			}
		}
	}
}

// SwingHighs collects the swing highs of candles.
func SwingHighs(candles []domain.Candle, window int) []domain.SwingPoint {
	return collect(candles, window, domain.SwingHigh)
}

// SwingLows collects the swing lows of candles.
func SwingLows(candles []domain.Candle, window int) []domain.SwingPoint {
	return collect(candles, window, domain.SwingLow)
}

func collect(candles []domain.Candle, window int, kind domain.SwingKind) []domain.SwingPoint {
	var out []domain.SwingPoint
	for p := range Swings(candles, window) {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}
