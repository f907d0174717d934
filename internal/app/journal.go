package app

import (
	"context"
	"fmt"
	"time"

	"argusBot/internal/domain"
	"argusBot/internal/ports"
	"argusBot/internal/utils"
)

const notifyTimeout = 15 * time.Second

// Journal is an engine observer that records closed trades and forwards
// signals and closes to the notifier and State. Repo, CSV path and notifier
// are optional.
type Journal struct {
	logger   ports.Logger
	state    *State
	repo     ports.TradeRepository
	csvPath  string
	notifier ports.Notifier
	notify   func(title, message string) // replaced in tests
}

// NewJournal creates a journal.
func NewJournal(logger ports.Logger, state *State, repo ports.TradeRepository, csvPath string, notifier ports.Notifier) *Journal {
	j := &Journal{logger: logger, state: state, repo: repo, csvPath: csvPath, notifier: notifier}
	j.notify = j.notifyAsync
	return j
}

// notifyAsync delivers off the tick goroutine; failures are logged only.
func (j *Journal) notifyAsync(title, message string) {
	if j.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := j.notifier.Notify(ctx, title, message); err != nil {
			j.logger.Warn(ctx, "Journal: notification failed", map[string]interface{}{"title": title, "error": err.Error()})
		}
	}()
}

func (j *Journal) PhaseChanged(ctx context.Context, symbol string, from, to domain.Phase) {
	j.logger.Debug(ctx, "Journal: phase changed", map[string]interface{}{"symbol": symbol, "from": from.Name(), "to": to.Name()})
}

func (j *Journal) SignalCreated(ctx context.Context, symbol string, order domain.PendingOrder) {
	if j.state != nil {
		j.state.SetLastSignal(symbol, order)
	}
	j.notify("New signal: "+symbol, fmt.Sprintf("%s limit @ %g\nSL %g  TP %g", order.Direction, order.EntryPrice, order.StopLoss, order.TakeProfit))
}

func (j *Journal) OrderCanceled(ctx context.Context, symbol string, order domain.PendingOrder, reason string) {
	j.notify("Order canceled: "+symbol, fmt.Sprintf("%s limit @ %g (%s)", order.Direction, order.EntryPrice, reason))
}

func (j *Journal) TradeOpened(ctx context.Context, symbol string, trade domain.OpenTrade) {
	j.notify("Order filled: "+symbol, fmt.Sprintf("%s @ %g", trade.Direction, trade.EntryPrice))
}

func (j *Journal) TradeClosed(ctx context.Context, trade domain.Trade, balance float64) {
	op := "Journal.TradeClosed"
	if j.repo != nil {
		if _, err := j.repo.CreateTrade(ctx, &trade); err != nil {
			j.logger.Error(ctx, err, op+": failed to store trade", map[string]interface{}{"setupID": trade.SetupID})
		}
	}
	if j.csvPath != "" {
		if err := utils.AppendTradeCSV(trade, j.csvPath); err != nil {
			j.logger.Error(ctx, err, op+": failed to append trade log", map[string]interface{}{"path": j.csvPath})
		}
	}
	j.logger.Info(ctx, op+": trade recorded", map[string]interface{}{
		"symbol": trade.Symbol, "reason": string(trade.CloseReason), "pnl": trade.PnL, "balance": balance,
	})
	j.notify("Trade closed: "+trade.Symbol, fmt.Sprintf("%s %s\nPnL %.2f  Balance %.2f", trade.Direction, trade.CloseReason, trade.PnL, balance))
}
