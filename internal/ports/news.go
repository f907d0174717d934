package ports

import "context"

// NewsGuard answers whether trading is safe around scheduled economic events.
type NewsGuard interface {
	IsSafeToTrade(ctx context.Context, currencies []string, minImpact string, bufferMinutes int) (bool, error)
}
