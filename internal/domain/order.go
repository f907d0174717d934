package domain

import "time"

// OrderHandle is an opaque venue reference for a submitted order group.
type OrderHandle string

// PendingOrder is a limit entry waiting to be filled.
type PendingOrder struct {
	ID         string
	Direction  Direction
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	SetupTime  time.Time
}

// StopTouched reports whether a candle has traded through the stop.
func (o PendingOrder) StopTouched(c Candle) bool {
	if o.Direction == Long {
		return c.Low <= o.StopLoss
	}
	return c.High >= o.StopLoss
}

// EntryTouched reports whether a candle has reached the entry price.
func (o PendingOrder) EntryTouched(c Candle) bool {
	if o.Direction == Long {
		return c.Low <= o.EntryPrice
	}
	return c.High >= o.EntryPrice
}

// Fill converts the pending order into an open trade.
func (o PendingOrder) Fill(at time.Time) OpenTrade {
	return OpenTrade{
		SetupID:    o.ID,
		Direction:  o.Direction,
		EntryPrice: o.EntryPrice,
		StopLoss:   o.StopLoss,
		TakeProfit: o.TakeProfit,
		EntryTime:  at,
	}
}

// OpenTrade is a filled order being monitored for stop or target.
type OpenTrade struct {
	SetupID    string
	Direction  Direction
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	EntryTime  time.Time
}

// Exit checks a candle against the stop and the target. The stop is checked first.
func (t OpenTrade) Exit(c Candle) (price float64, reason CloseReason, ok bool) {
	if t.Direction == Long {
		if c.Low <= t.StopLoss {
			return t.StopLoss, CloseReasonStopLoss, true
		}
		if c.High >= t.TakeProfit {
			return t.TakeProfit, CloseReasonTakeProfit, true
		}
		return 0, "", false
	}
	if c.High >= t.StopLoss {
		return t.StopLoss, CloseReasonStopLoss, true
	}
	if c.Low <= t.TakeProfit {
		return t.TakeProfit, CloseReasonTakeProfit, true
	}
	return 0, "", false
}

// Close produces the emitted trade record. PnL is left to the ledger.
func (t OpenTrade) Close(symbol string, price float64, at time.Time, reason CloseReason) Trade {
	return Trade{
		SetupID:     t.SetupID,
		Symbol:      symbol,
		Direction:   t.Direction,
		EntryPrice:  t.EntryPrice,
		StopLoss:    t.StopLoss,
		TakeProfit:  t.TakeProfit,
		EntryTime:   t.EntryTime,
		ClosePrice:  price,
		CloseTime:   at,
		CloseReason: reason,
	}
}

// VenuePosition is an open position as reported by the execution venue.
type VenuePosition struct {
	Symbol     string
	Direction  Direction
	Quantity   float64
	EntryPrice float64
}

// VenueOrder is a working order as reported by the execution venue.
type VenueOrder struct {
	Symbol string
	Handle OrderHandle
	Side   OrderSide
	Type   string
	Price  float64
}

// VenueOrderStatus is the lifecycle stage of an order group on the venue.
type VenueOrderStatus int

const (
	// VenueWorking means the entry is still resting unfilled.
	VenueWorking VenueOrderStatus = iota
	// VenueFilled means the entry executed and the position is open.
	VenueFilled
	// VenueClosed means the entry executed and the position has since been flattened.
	VenueClosed
	// VenueGone means the entry left the book without executing.
	VenueGone
)

// VenueState is what the venue reports for an order group.
// FillPrice and ExitPrice are zero when the venue did not report them.
type VenueState struct {
	Status     VenueOrderStatus
	FillPrice  float64
	ExitPrice  float64
	ExitReason CloseReason
}
