package domain

// OrderSide represents the side of a venue order (BUY or SELL).
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// Direction is the direction of a pending order or trade.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// EntrySide returns the venue side that opens a position in this direction.
func (d Direction) EntrySide() OrderSide {
	if d == Short {
		return Sell
	}
	return Buy
}

// ExitSide returns the venue side that closes a position in this direction.
func (d Direction) ExitSide() OrderSide {
	if d == Short {
		return Buy
	}
	return Sell
}

// CloseReason indicates why a trade was closed.
type CloseReason string

const (
	CloseReasonStopLoss   CloseReason = "Stop-Loss"
	CloseReasonTakeProfit CloseReason = "Take-Profit"
	CloseReasonEndOfDay   CloseReason = "End-of-Day"
	CloseReasonManual     CloseReason = "Manual"
	CloseReasonUnknown    CloseReason = "Unknown"
)
