// Package metrics exports engine activity as Prometheus metrics.
//
//   - argus_phase{symbol}                    numeric phase (0 AwaitingSession .. 4 PositionOpen)
//   - argus_signals_total{symbol,direction}  pending orders submitted
//   - argus_orders_canceled_total{symbol,reason}
//   - argus_trades_opened_total{symbol}
//   - argus_trades_closed_total{symbol,reason,result}
//   - argus_pnl_total{symbol}                running ledger PnL per symbol
//   - argus_balance                          ledger balance after the last close
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"argusBot/internal/domain"
)

// Recorder implements ports.EngineObserver on top of Prometheus collectors.
type Recorder struct {
	phase      *prometheus.GaugeVec
	signals    *prometheus.CounterVec
	canceled   *prometheus.CounterVec
	opened     *prometheus.CounterVec
	closed     *prometheus.CounterVec
	pnl        *prometheus.GaugeVec
	balance    prometheus.Gauge
	tickErrors *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		phase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "argus_phase",
			Help: "Current strategy phase per symbol (0-4).",
		}, []string{"symbol"}),
		signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "argus_signals_total",
			Help: "Pending orders submitted.",
		}, []string{"symbol", "direction"}),
		canceled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "argus_orders_canceled_total",
			Help: "Pending orders canceled before fill.",
		}, []string{"symbol", "reason"}),
		opened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "argus_trades_opened_total",
			Help: "Pending orders filled.",
		}, []string{"symbol"}),
		closed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "argus_trades_closed_total",
			Help: "Trades closed, by reason and result (win|loss).",
		}, []string{"symbol", "reason", "result"}),
		pnl: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "argus_pnl_total",
			Help: "Cumulative ledger PnL per symbol.",
		}, []string{"symbol"}),
		balance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "argus_balance",
			Help: "Ledger balance after the last closed trade.",
		}),
		tickErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "argus_tick_errors_total",
			Help: "Engine ticks that returned an error.",
		}, []string{"symbol"}),
	}
	for _, c := range []prometheus.Collector{r.phase, r.signals, r.canceled, r.opened, r.closed, r.pnl, r.balance, r.tickErrors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) PhaseChanged(_ context.Context, symbol string, _, to domain.Phase) {
	r.phase.WithLabelValues(symbol).Set(float64(domain.PhaseIndex(to)))
}

func (r *Recorder) SignalCreated(_ context.Context, symbol string, order domain.PendingOrder) {
	r.signals.WithLabelValues(symbol, string(order.Direction)).Inc()
}

func (r *Recorder) OrderCanceled(_ context.Context, symbol string, _ domain.PendingOrder, reason string) {
	r.canceled.WithLabelValues(symbol, reason).Inc()
}

func (r *Recorder) TradeOpened(_ context.Context, symbol string, _ domain.OpenTrade) {
	r.opened.WithLabelValues(symbol).Inc()
}

func (r *Recorder) TradeClosed(_ context.Context, trade domain.Trade, balance float64) {
	result := "loss"
	if trade.Won() {
		result = "win"
	}
	r.closed.WithLabelValues(trade.Symbol, string(trade.CloseReason), result).Inc()
	r.pnl.WithLabelValues(trade.Symbol).Add(trade.PnL)
	r.balance.Set(balance)
}

// SetBalance publishes a balance not tied to a trade close (startup, venue sync).
func (r *Recorder) SetBalance(balance float64) {
	r.balance.Set(balance)
}

// TickFailed counts a failed tick for symbol.
func (r *Recorder) TickFailed(symbol string) {
	r.tickErrors.WithLabelValues(symbol).Inc()
}
