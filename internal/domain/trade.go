package domain

import "time"

// Trade represents a closed trade record.
type Trade struct {
	ID          int64       // Unique identifier (usually from DB)
	SetupID     string      // Identifier of the pending order that produced the trade
	Symbol      string      // Traded instrument
	Direction   Direction   // long or short
	EntryPrice  float64     // Filled entry price
	StopLoss    float64     // Stop price
	TakeProfit  float64     // Target price
	EntryTime   time.Time   // Fill time
	ClosePrice  float64     // Exit price
	CloseTime   time.Time   // Exit time
	PnL         float64     // Profit and loss applied by the ledger
	CloseReason CloseReason // Stop-Loss, Take-Profit, End-of-Day
}

// Won reports whether the trade closed in profit relative to its entry.
func (t Trade) Won() bool {
	move := t.ClosePrice - t.EntryPrice
	if t.Direction == Short {
		move = -move
	}
	return move > 0
}
