package domain

// Phase is the per-symbol strategy phase. The set of implementations is closed:
// only types in this package satisfy it, and every phase carries exactly the
// data that is defined while it is active.
type Phase interface {
	Name() string
	isPhase()
}

// Setup is the structure accumulated between a sweep and an order.
type Setup struct {
	Bias   Bias
	Target LiquidityTarget
	Sweep  SweepInfo
	MSS    float64
	FVG    *FVG
}

// AwaitingSession is the initial and reset phase.
type AwaitingSession struct{}

// AwaitingLiquiditySweep waits for the target to be swept. Target is nil until one is found.
type AwaitingLiquiditySweep struct {
	Bias   Bias
	Target *LiquidityTarget
}

// AwaitingMSS waits for a close beyond the MSS level.
type AwaitingMSS struct {
	Setup Setup
}

// AwaitingEntry waits for an imbalance to place the order.
type AwaitingEntry struct {
	Setup Setup
}

// PositionOpen holds either a pending order or an open trade, never both.
type PositionOpen struct {
	Setup   Setup
	Handle  OrderHandle
	Pending *PendingOrder
	Trade   *OpenTrade
}

func (AwaitingSession) Name() string        { return "AwaitingSession" }
func (AwaitingLiquiditySweep) Name() string { return "AwaitingLiquiditySweep" }
func (AwaitingMSS) Name() string            { return "AwaitingMSS" }
func (AwaitingEntry) Name() string          { return "AwaitingEntry" }
func (PositionOpen) Name() string           { return "PositionOpen" }

func (AwaitingSession) isPhase()        {}
func (AwaitingLiquiditySweep) isPhase() {}
func (AwaitingMSS) isPhase()            {}
func (AwaitingEntry) isPhase()          {}
func (PositionOpen) isPhase()           {}

// PhaseIndex returns a stable ordinal for a phase, used for metrics.
func PhaseIndex(p Phase) int {
	switch p.(type) {
	case AwaitingSession:
		return 0
	case AwaitingLiquiditySweep:
		return 1
	case AwaitingMSS:
		return 2
	case AwaitingEntry:
		return 3
	case PositionOpen:
		return 4
	default:
		return -1
	}
}
