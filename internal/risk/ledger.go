package risk

import (
	"sync"
	"time"

	"argusBot/internal/domain"
)

// EquitySample is one point of the equity curve.
type EquitySample struct {
	Time    time.Time
	Balance float64
}

// Ledger applies fixed-risk accounting to closed trades: a win credits
// balance*risk*reward, anything else debits balance*risk, regardless of the
// actual stop distance.
type Ledger struct {
	riskFraction   float64
	rewardMultiple float64

	mu      sync.Mutex
	initial float64
	balance float64
	equity  []EquitySample
	trades  []domain.Trade
}

// NewLedger creates a ledger starting at initialBalance.
func NewLedger(initialBalance float64, cfg RiskConfig) *Ledger {
	return &Ledger{
		riskFraction:   cfg.RiskFraction,
		rewardMultiple: cfg.RewardMultiple,
		initial:        initialBalance,
		balance:        initialBalance,
		equity:         []EquitySample{{Balance: initialBalance}},
	}
}

// Apply computes the trade's PnL, updates the balance and the equity curve and
// returns the trade with PnL set.
func (l *Ledger) Apply(trade domain.Trade) domain.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()

	if trade.Won() {
		trade.PnL = l.balance * l.riskFraction * l.rewardMultiple
	} else {
		trade.PnL = -(l.balance * l.riskFraction)
	}
	l.balance += trade.PnL
	l.equity = append(l.equity, EquitySample{Time: trade.CloseTime, Balance: l.balance})
	l.trades = append(l.trades, trade)
	return trade
}

// SetRisk changes the risk fraction and reward multiple applied to trades
// closed from now on.
func (l *Ledger) SetRisk(cfg RiskConfig) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.riskFraction = cfg.RiskFraction
	l.rewardMultiple = cfg.RewardMultiple
}

// Balance returns the current balance.
func (l *Ledger) Balance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// InitialBalance returns the starting balance.
func (l *Ledger) InitialBalance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.initial
}

// Rebase resets the ledger to a balance reported by the venue. History is kept.
func (l *Ledger) Rebase(balance float64, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance = balance
	l.equity = append(l.equity, EquitySample{Time: at, Balance: balance})
}

// Trades returns a copy of the recorded trades.
func (l *Ledger) Trades() []domain.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// EquityCurve returns a copy of the equity samples, starting with the initial balance.
func (l *Ledger) EquityCurve() []EquitySample {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]EquitySample, len(l.equity))
	copy(out, l.equity)
	return out
}
