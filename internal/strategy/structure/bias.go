package structure

import (
	"argusBot/internal/domain"
)

const (
	// MinBiasCandles is the minimum structural history needed to decide a bias.
	MinBiasCandles = 50
	swingHistory   = 5
	patternLength  = 4
)

// StructureResult describes the outcome of the market structure analysis.
type StructureResult struct {
	Bias          domain.Bias // Final bias after the change-of-character check
	Pattern       domain.Bias // Bias implied by the swing pattern alone
	CriticalLevel float64     // Level whose breach by close flips the pattern
	CHOCH         bool        // True when the latest close invalidated the pattern
}

// MarketStructureBias returns the bias of a structural candle sequence.
func MarketStructureBias(candles []domain.Candle) domain.Bias {
	return AnalyzeStructure(candles).Bias
}

// AnalyzeStructure runs the swing-based structure analysis over candles.
func AnalyzeStructure(candles []domain.Candle) StructureResult {
	if len(candles) < MinBiasCandles {
		return StructureResult{}
	}
	var swings []domain.SwingPoint
	for p := range Swings(candles, BiasWindow) {
		swings = append(swings, p)
	}
	swings = dedupe(swings)
	if len(swings) > swingHistory {
		swings = swings[len(swings)-swingHistory:]
	}
	return BiasFromSwings(swings, candles[len(candles)-1].Close)
}

// BiasFromSwings classifies the last four time-ordered swings and applies the
// change-of-character check against lastClose.
func BiasFromSwings(swings []domain.SwingPoint, lastClose float64) StructureResult {
	if len(swings) < patternLength {
		return StructureResult{}
	}
	n := len(swings)
	p3, p2, p1, p0 := swings[n-4], swings[n-3], swings[n-2], swings[n-1]

	res := StructureResult{}
	switch {
	case p3.Kind == domain.SwingLow && p2.Kind == domain.SwingHigh &&
		p1.Kind == domain.SwingLow && p0.Kind == domain.SwingHigh &&
		p0.Price > p2.Price && p1.Price > p3.Price:
		res.Pattern = domain.BiasBullish
	case p3.Kind == domain.SwingHigh && p2.Kind == domain.SwingLow &&
		p1.Kind == domain.SwingHigh && p0.Kind == domain.SwingLow &&
		p0.Price < p2.Price && p1.Price < p3.Price:
		res.Pattern = domain.BiasBearish
	default:
		return res
	}
	res.CriticalLevel = p1.Price
	res.Bias = res.Pattern

	if res.Pattern == domain.BiasBullish && lastClose < res.CriticalLevel {
		res.Bias, res.CHOCH = domain.BiasBearish, true
	}
	if res.Pattern == domain.BiasBearish && lastClose > res.CriticalLevel {
		res.Bias, res.CHOCH = domain.BiasBullish, true
	}
	return res
}

// dedupe drops repeated (time, price) pairs, keeping the first occurrence.
// Swings arrive time-ordered from Swings.
func dedupe(swings []domain.SwingPoint) []domain.SwingPoint {
	type key struct {
		unix  int64
		price float64
	}
	seen := make(map[key]struct{}, len(swings))
	out := swings[:0]
	for _, s := range swings {
		k := key{s.Time.UnixNano(), s.Price}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
