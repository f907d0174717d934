package ports

import (
	"context"

	"argusBot/internal/domain"
)

// CandleFeed provides candle sequences for a symbol and timeframe.
type CandleFeed interface {
	// Candles returns up to count candles ascending by time. The last element may be
	// the currently forming candle. An empty slice means no data this tick.
	Candles(ctx context.Context, symbol, timeframe string, count int) ([]domain.Candle, error)
}
