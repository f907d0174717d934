package engine

import (
	"time"

	"argusBot/internal/domain"
)

// SymbolContext is the state of one traded instrument. Contexts never share
// mutable data with each other.
type SymbolContext struct {
	Symbol    string
	Phase     domain.Phase
	Memory    *LiquidityMemory
	Session   string
	Bias      domain.Bias
	UpdatedAt time.Time
}

func newSymbolContext(symbol string) *SymbolContext {
	return &SymbolContext{
		Symbol: symbol,
		Phase:  domain.AwaitingSession{},
		Memory: NewLiquidityMemory(),
	}
}

// SymbolView is a detached copy of a context for observers.
type SymbolView struct {
	Symbol      string                  `json:"symbol"`
	Phase       string                  `json:"phase"`
	Bias        string                  `json:"bias"`
	Session     string                  `json:"session,omitempty"`
	Target      *domain.LiquidityTarget `json:"target,omitempty"`
	Sweep       *domain.SweepInfo       `json:"sweep,omitempty"`
	MSSLevel    *float64                `json:"mssLevel,omitempty"`
	FVG         *domain.FVG             `json:"fvg,omitempty"`
	Pending     *domain.PendingOrder    `json:"pendingOrder,omitempty"`
	Trade       *domain.OpenTrade       `json:"openTrade,omitempty"`
	UsedLevels  []float64               `json:"usedLevels"`
	UpdatedAt   time.Time               `json:"updatedAt"`
	PhaseNumber int                     `json:"phaseNumber"`
}

func ptr[T any](v T) *T { return &v }

func (sc *SymbolContext) view() SymbolView {
	v := SymbolView{
		Symbol:      sc.Symbol,
		Phase:       sc.Phase.Name(),
		Bias:        sc.Bias.String(),
		Session:     sc.Session,
		UsedLevels:  sc.Memory.Levels(),
		UpdatedAt:   sc.UpdatedAt,
		PhaseNumber: domain.PhaseIndex(sc.Phase),
	}
	setup := func(s domain.Setup) {
		v.Target = ptr(s.Target)
		v.Sweep = ptr(s.Sweep)
		v.MSSLevel = ptr(s.MSS)
		if s.FVG != nil {
			v.FVG = ptr(*s.FVG)
		}
	}
	switch p := sc.Phase.(type) {
	case domain.AwaitingSession:
	case domain.AwaitingLiquiditySweep:
		if p.Target != nil {
			v.Target = ptr(*p.Target)
		}
	case domain.AwaitingMSS:
		setup(p.Setup)
	case domain.AwaitingEntry:
		setup(p.Setup)
	case domain.PositionOpen:
		setup(p.Setup)
		if p.Pending != nil {
			v.Pending = ptr(*p.Pending)
		}
		if p.Trade != nil {
			v.Trade = ptr(*p.Trade)
		}
	}
	return v
}
