package ports

import (
	"context"

	"argusBot/internal/domain"
)

// TradeRepository defines the interface for storing and retrieving closed trades.
type TradeRepository interface {
	// CreateTrade saves a new trade record and returns its assigned ID.
	CreateTrade(ctx context.Context, trade *domain.Trade) (int64, error)
	// FindBySymbol retrieves the most recent trades for a given symbol, up to a limit.
	FindBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Trade, error)
	// FindAll retrieves all trades ordered by close time ascending.
	FindAll(ctx context.Context) ([]*domain.Trade, error)
	// CountTodayBySymbol counts the trades closed today for a given symbol.
	CountTodayBySymbol(ctx context.Context, symbol string) (int, error)
	// GetTotalProfit calculates the sum of PnL over all trades.
	GetTotalProfit(ctx context.Context) (float64, error)
}
