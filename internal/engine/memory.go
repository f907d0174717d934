package engine

import "sort"

// LiquidityMemory holds the target levels acted on during the current day.
type LiquidityMemory struct {
	levels map[float64]struct{}
}

// NewLiquidityMemory returns an empty memory.
func NewLiquidityMemory() *LiquidityMemory {
	return &LiquidityMemory{levels: make(map[float64]struct{})}
}

// Contains reports whether the level was already used today.
func (m *LiquidityMemory) Contains(level float64) bool {
	_, ok := m.levels[level]
	return ok
}

// Add records a level.
func (m *LiquidityMemory) Add(level float64) {
	m.levels[level] = struct{}{}
}

// Clear forgets every level.
func (m *LiquidityMemory) Clear() {
	clear(m.levels)
}

// Len returns the number of remembered levels.
func (m *LiquidityMemory) Len() int {
	return len(m.levels)
}

// Levels returns the remembered levels in ascending order.
func (m *LiquidityMemory) Levels() []float64 {
	out := make([]float64, 0, len(m.levels))
	for l := range m.levels {
		out = append(out, l)
	}
	sort.Float64s(out)
	return out
}
