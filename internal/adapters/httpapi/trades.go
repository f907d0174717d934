package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"argusBot/internal/domain"
	"argusBot/internal/ports"
)

const defaultTradeLimit = 50

type tradeResponse struct {
	SetupID     string    `json:"setup_id"`
	Symbol      string    `json:"symbol"`
	Direction   string    `json:"direction"`
	EntryPrice  float64   `json:"entry_price"`
	StopLoss    float64   `json:"stop_loss"`
	TakeProfit  float64   `json:"take_profit"`
	EntryTime   time.Time `json:"entry_time"`
	ClosePrice  float64   `json:"close_price"`
	CloseTime   time.Time `json:"close_time"`
	PnL         float64   `json:"pnl"`
	CloseReason string    `json:"close_reason"`
}

func toTradeResponse(t *domain.Trade) tradeResponse {
	return tradeResponse{
		SetupID:     t.SetupID,
		Symbol:      t.Symbol,
		Direction:   string(t.Direction),
		EntryPrice:  t.EntryPrice,
		StopLoss:    t.StopLoss,
		TakeProfit:  t.TakeProfit,
		EntryTime:   t.EntryTime,
		ClosePrice:  t.ClosePrice,
		CloseTime:   t.CloseTime,
		PnL:         t.PnL,
		CloseReason: string(t.CloseReason),
	}
}

// SetTrades enables the trade history endpoints.
func (s *Server) SetTrades(repo ports.TradeRepository) {
	s.trades = repo
}

func (s *Server) handleTrades(c *gin.Context) {
	if s.trades == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "trade history not configured"})
		return
	}
	ctx := c.Request.Context()

	var (
		trades []*domain.Trade
		err    error
	)
	if symbol := c.Query("symbol"); symbol != "" {
		limit := defaultTradeLimit
		if raw := c.Query("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil || limit <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
		}
		trades, err = s.trades.FindBySymbol(ctx, symbol, limit)
	} else {
		trades, err = s.trades.FindAll(ctx)
	}
	if err != nil {
		s.logger.Error(ctx, err, "Failed to load trades")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load trades"})
		return
	}

	out := make([]tradeResponse, 0, len(trades))
	for _, t := range trades {
		out = append(out, toTradeResponse(t))
	}
	c.JSON(http.StatusOK, gin.H{"trades": out})
}

func (s *Server) handleTradeSummary(c *gin.Context) {
	if s.trades == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "trade history not configured"})
		return
	}
	ctx := c.Request.Context()

	total, err := s.trades.GetTotalProfit(ctx)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to sum profit")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sum profit"})
		return
	}
	today := make(map[string]int)
	for _, v := range s.source.Snapshot().Symbols {
		n, err := s.trades.CountTodayBySymbol(ctx, v.Symbol)
		if err != nil {
			s.logger.Error(ctx, err, "Failed to count trades", map[string]interface{}{"symbol": v.Symbol})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count trades"})
			return
		}
		today[v.Symbol] = n
	}
	c.JSON(http.StatusOK, gin.H{"total_profit": total, "today": today})
}
