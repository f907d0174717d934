package ports

import (
	"context"

	"argusBot/internal/domain"
)

// Execution places and manages orders on a venue.
// The engine only acts on success or failure; handles are opaque.
type Execution interface {
	// SubmitPendingOrder places a limit entry with its stop and target attached.
	SubmitPendingOrder(ctx context.Context, symbol string, order domain.PendingOrder) (domain.OrderHandle, error)
	// CancelOrder cancels every working order referenced by the handle.
	CancelOrder(ctx context.Context, symbol string, handle domain.OrderHandle) error
	// ClosePosition flattens the position opened through the handle.
	ClosePosition(ctx context.Context, symbol string, handle domain.OrderHandle) error
	// OpenPositions lists positions currently held on the venue.
	OpenPositions(ctx context.Context) ([]domain.VenuePosition, error)
	// OpenOrders lists working orders on the venue.
	OpenOrders(ctx context.Context) ([]domain.VenueOrder, error)
}

// OrderTracker is implemented by venues that can report fills and exits.
// When the execution satisfies it the engine follows the venue instead of
// inferring fills from candles.
type OrderTracker interface {
	OrderState(ctx context.Context, symbol string, handle domain.OrderHandle) (domain.VenueState, error)
}
