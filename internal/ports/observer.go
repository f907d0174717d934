package ports

import (
	"context"

	"argusBot/internal/domain"
)

// EngineObserver receives strategy events as they happen.
// Implementations must not block; they are called inside a tick.
type EngineObserver interface {
	PhaseChanged(ctx context.Context, symbol string, from, to domain.Phase)
	SignalCreated(ctx context.Context, symbol string, order domain.PendingOrder)
	OrderCanceled(ctx context.Context, symbol string, order domain.PendingOrder, reason string)
	TradeOpened(ctx context.Context, symbol string, trade domain.OpenTrade)
	TradeClosed(ctx context.Context, trade domain.Trade, balance float64)
}
