package domain

import "time"

// SwingKind tells whether a swing point is a local high or a local low.
type SwingKind string

const (
	SwingHigh SwingKind = "high"
	SwingLow  SwingKind = "low"
)

// SwingPoint is a local price extremum derived from a candle window.
type SwingPoint struct {
	Time  time.Time
	Price float64
	Kind  SwingKind
}

// Bias is the directional read of the market.
type Bias int

const (
	BiasUndetermined Bias = iota
	BiasBullish
	BiasBearish
)

// String returns the string representation of the Bias.
func (b Bias) String() string {
	switch b {
	case BiasBullish:
		return "Bullish"
	case BiasBearish:
		return "Bearish"
	default:
		return "Undetermined"
	}
}

// Direction maps a decided bias to the trade direction it produces.
func (b Bias) Direction() Direction {
	if b == BiasBearish {
		return Short
	}
	return Long
}

// LiquiditySide distinguishes buy-side (resting highs) from sell-side (resting lows) liquidity.
type LiquiditySide string

const (
	BSL LiquiditySide = "BSL"
	SSL LiquiditySide = "SSL"
)

// LiquidityTarget is the resting liquidity level the strategy waits to see swept.
type LiquidityTarget struct {
	Level float64
	Side  LiquiditySide
}

// SweepInfo holds the extremes of the candle that swept the target.
// It is a value type; extensions return a new value.
type SweepInfo struct {
	Low  float64
	High float64
}

// WithLow returns a copy with the low extended to l.
func (s SweepInfo) WithLow(l float64) SweepInfo {
	s.Low = l
	return s
}

// WithHigh returns a copy with the high extended to h.
func (s SweepInfo) WithHigh(h float64) SweepInfo {
	s.High = h
	return s
}

// FVGKind is the direction of a fair value gap.
type FVGKind string

const (
	FVGBullish FVGKind = "BULLISH"
	FVGBearish FVGKind = "BEARISH"
)

// FVG is a three-candle imbalance used as the entry zone.
type FVG struct {
	Kind   FVGKind
	Top    float64
	Bottom float64
	Time   time.Time // Time of the middle candle
}
