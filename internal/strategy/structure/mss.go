package structure

import (
	"argusBot/internal/domain"
)

// MSSLookback is the number of closed execution candles searched for the MSS level.
const MSSLookback = 15

// Swept reports whether a closed candle traded strictly through the target.
func Swept(target domain.LiquidityTarget, c domain.Candle) bool {
	switch target.Side {
	case domain.SSL:
		return c.Low < target.Level
	case domain.BSL:
		return c.High > target.Level
	default:
		return false
	}
}

// FindMSSLevel returns the level whose breach confirms the shift after a sweep:
// the most recent swing high after an SSL sweep, the most recent swing low after a
// BSL sweep, over the last MSSLookback closed candles.
func FindMSSLevel(closed []domain.Candle, side domain.LiquiditySide) (float64, bool) {
	if len(closed) > MSSLookback {
		closed = closed[len(closed)-MSSLookback:]
	}
	var points []domain.SwingPoint
	if side == domain.SSL {
		points = SwingHighs(closed, ExecutionWindow)
	} else {
		points = SwingLows(closed, ExecutionWindow)
	}
	if len(points) == 0 {
		return 0, false
	}
	return points[len(points)-1].Price, true
}

// ExtendSweep returns the sweep extended to a new extreme in the sweep direction,
// and whether it changed.
func ExtendSweep(bias domain.Bias, sweep domain.SweepInfo, c domain.Candle) (domain.SweepInfo, bool) {
	switch {
	case bias == domain.BiasBullish && c.Low < sweep.Low:
		return sweep.WithLow(c.Low), true
	case bias == domain.BiasBearish && c.High > sweep.High:
		return sweep.WithHigh(c.High), true
	}
	return sweep, false
}

// MSSConfirmed reports whether a closed candle's close is beyond the MSS level.
func MSSConfirmed(bias domain.Bias, mss float64, c domain.Candle) bool {
	switch bias {
	case domain.BiasBullish:
		return c.Close > mss
	case domain.BiasBearish:
		return c.Close < mss
	default:
		return false
	}
}
