// Package engine runs the per-symbol strategy state machine: session gating,
// bias, liquidity sweep, market structure shift, imbalance entry and the
// lifecycle of the resulting order. The same engine serves replay and live
// trading; only the collaborators differ.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"argusBot/internal/domain"
	"argusBot/internal/ports"
	"argusBot/internal/risk"
	"argusBot/internal/strategy/structure"
)

// Candle counts requested from the feed per timeframe.
const (
	BiasFetchCount      = 300
	ContextFetchCount   = 200
	ExecutionFetchCount = 21
	// FVGWindow is the number of closed execution candles scanned for an imbalance.
	FVGWindow = 20
)

// NewsFilter controls the news check done before an order is submitted.
type NewsFilter struct {
	Enabled       bool
	Currencies    []string
	MinImpact     string
	BufferMinutes int
}

// Config holds engine configuration.
type Config struct {
	Symbols            []string
	BiasTimeframe      string
	ContextTimeframe   string
	ExecutionTimeframe string
	Sessions           Sessions
	OrderTimeout       time.Duration // 0 disables the pending order timeout
	News               NewsFilter
}

func (c Config) validate() error {
	var errs []string
	if len(c.Symbols) == 0 {
		errs = append(errs, "at least one symbol is required")
	}
	seen := make(map[string]bool, len(c.Symbols))
	for _, s := range c.Symbols {
		if s == "" || seen[s] {
			errs = append(errs, fmt.Sprintf("symbol %q is empty or duplicated", s))
		}
		seen[s] = true
	}
	if c.BiasTimeframe == "" || c.ContextTimeframe == "" || c.ExecutionTimeframe == "" {
		errs = append(errs, "bias, context and execution timeframes are required")
	}
	if len(c.Sessions.Windows) == 0 {
		errs = append(errs, "at least one session window is required")
	}
	if c.OrderTimeout < 0 {
		errs = append(errs, "order timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ports.ErrConfigurationError, strings.Join(errs, "; "))
	}
	return nil
}

// Engine drives one SymbolContext per configured symbol.
type Engine struct {
	cfg       Config
	logger    ports.Logger
	feed      ports.CandleFeed
	execution ports.Execution
	tracker   ports.OrderTracker
	risk      *risk.RiskManager
	ledger    *risk.Ledger
	news      ports.NewsGuard
	observers []ports.EngineObserver
	newID     func() string

	mu       sync.Mutex
	contexts map[string]*SymbolContext
	day      string
}

// New creates an engine.
func New(
	cfg Config,
	logger ports.Logger,
	feed ports.CandleFeed,
	execution ports.Execution,
	riskManager *risk.RiskManager,
	ledger *risk.Ledger,
) (*Engine, error) {
	if logger == nil || feed == nil || execution == nil || riskManager == nil || ledger == nil {
		return nil, fmt.Errorf("missing required dependencies for Engine")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:       cfg,
		logger:    logger,
		feed:      feed,
		execution: execution,
		risk:      riskManager,
		ledger:    ledger,
		newID:     uuid.NewString,
		contexts:  make(map[string]*SymbolContext, len(cfg.Symbols)),
	}
	if t, ok := execution.(ports.OrderTracker); ok {
		e.tracker = t
	}
	for _, s := range cfg.Symbols {
		e.contexts[s] = newSymbolContext(s)
	}
	return e, nil
}

// SetIDSource replaces the generator of setup IDs. Replays install a
// deterministic one so repeated runs produce the same trade records.
func (e *Engine) SetIDSource(next func() string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if next != nil {
		e.newID = next
	}
}

// SetNewsGuard installs the news collaborator. Without one the news check is skipped.
func (e *Engine) SetNewsGuard(g ports.NewsGuard) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.news = g
}

// AddObserver registers an observer for engine events.
func (e *Engine) AddObserver(o ports.EngineObserver) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// Symbols returns the configured symbols in order.
func (e *Engine) Symbols() []string {
	return append([]string(nil), e.cfg.Symbols...)
}

// Sessions returns the session calendar.
func (e *Engine) Sessions() Sessions {
	return e.cfg.Sessions
}

// Ledger returns the trade ledger.
func (e *Engine) Ledger() *risk.Ledger {
	return e.ledger
}

// RolloverIfNewDay clears the liquidity memory of every symbol and the daily
// risk stats when the reference calendar date changes. It reports whether a
// rollover (not the first observed day) happened.
func (e *Engine) RolloverIfNewDay(ctx context.Context, now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	day := e.cfg.Sessions.Day(now)
	if day == e.day {
		return false
	}
	first := e.day == ""
	e.day = day
	for _, sc := range e.contexts {
		sc.Memory.Clear()
	}
	e.risk.ResetDailyStats(ctx, now)
	if !first {
		e.logger.Info(ctx, "RolloverIfNewDay: new trading day, liquidity memory cleared", map[string]interface{}{"day": day})
	}
	return !first
}

// Tick advances the state machine of one symbol. Inconclusive data never
// produces an error; collaborator failures do, and leave the phase unchanged.
func (e *Engine) Tick(ctx context.Context, symbol string, now time.Time) error {
	op := "Tick"
	e.mu.Lock()
	defer e.mu.Unlock()

	sc, ok := e.contexts[symbol]
	if !ok {
		return fmt.Errorf("%s failed: %w: %s", op, ports.ErrUnknownSymbol, symbol)
	}
	sc.UpdatedAt = now

	if p, ok := sc.Phase.(domain.PositionOpen); ok && e.tracker != nil {
		handled, err := e.followVenue(ctx, sc, p, now)
		if err != nil || handled {
			return err
		}
	}

	window, inSession := e.cfg.Sessions.Active(now)
	sc.Session = window.Name

	if !inSession {
		switch p := sc.Phase.(type) {
		case domain.AwaitingSession:
			return nil
		case domain.PositionOpen:
			if p.Trade == nil {
				return e.cancelPending(ctx, sc, p, "session ended")
			}
			// An open trade is monitored until it closes.
		default:
			e.reset(ctx, sc, "session ended")
			return nil
		}
	}

	if _, ok := sc.Phase.(domain.AwaitingSession); ok {
		advanced, err := e.awaitSession(ctx, sc, now)
		if err != nil || !advanced {
			return err
		}
	}

	exec, err := e.feed.Candles(ctx, symbol, e.cfg.ExecutionTimeframe, ExecutionFetchCount)
	if err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}
	if len(exec) < 3 {
		e.logger.Debug(ctx, op+": not enough execution candles", map[string]interface{}{"symbol": symbol, "count": len(exec)})
		return nil
	}

	switch p := sc.Phase.(type) {
	case domain.AwaitingSession:
		return nil
	case domain.AwaitingLiquiditySweep:
		return e.awaitSweep(ctx, sc, p, exec)
	case domain.AwaitingMSS:
		e.awaitMSS(ctx, sc, p, exec)
		return nil
	case domain.AwaitingEntry:
		return e.awaitEntry(ctx, sc, p, exec, now)
	case domain.PositionOpen:
		return e.managePosition(ctx, sc, p, exec, now)
	default:
		return fmt.Errorf("%s failed: unexpected phase %T", op, p)
	}
}

func (e *Engine) awaitSession(ctx context.Context, sc *SymbolContext, now time.Time) (bool, error) {
	op := "awaitSession"
	balance := e.ledger.Balance()
	if err := e.risk.CheckRiskLimits(ctx, balance); err != nil {
		e.logger.Debug(ctx, op+": new cycles halted", map[string]interface{}{"symbol": sc.Symbol, "reason": err.Error()})
		return false, nil
	}

	candles, err := e.feed.Candles(ctx, sc.Symbol, e.cfg.BiasTimeframe, BiasFetchCount)
	if err != nil {
		return false, fmt.Errorf("%s failed: %w", op, err)
	}
	bias := structure.MarketStructureBias(candles)
	sc.Bias = bias
	if bias == domain.BiasUndetermined {
		e.logger.Debug(ctx, op+": bias undetermined", map[string]interface{}{"symbol": sc.Symbol, "count": len(candles)})
		return false, nil
	}

	e.logger.Info(ctx, op+": session active, bias determined", map[string]interface{}{
		"symbol": sc.Symbol, "session": sc.Session, "bias": bias.String(),
	})
	e.setPhase(ctx, sc, domain.AwaitingLiquiditySweep{Bias: bias})
	return true, nil
}

func (e *Engine) awaitSweep(ctx context.Context, sc *SymbolContext, p domain.AwaitingLiquiditySweep, exec []domain.Candle) error {
	op := "awaitSweep"
	candles, err := e.feed.Candles(ctx, sc.Symbol, e.cfg.ContextTimeframe, ContextFetchCount)
	if err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}
	if len(candles) == 0 {
		return nil
	}

	if t, ok := structure.FindLiquidityTarget(candles, p.Bias); ok {
		if p.Target == nil || p.Target.Level != t.Level {
			e.logger.Info(ctx, op+": liquidity target updated", map[string]interface{}{
				"symbol": sc.Symbol, "side": string(t.Side), "level": t.Level,
			})
			p.Target = &t
			sc.Phase = p
		}
	}
	if p.Target == nil {
		e.logger.Debug(ctx, op+": no liquidity target", map[string]interface{}{"symbol": sc.Symbol})
		return nil
	}

	target := *p.Target
	last := exec[len(exec)-2]
	if !structure.Swept(target, last) {
		return nil
	}
	if sc.Memory.Contains(target.Level) {
		e.logger.Debug(ctx, op+": level already used today", map[string]interface{}{"symbol": sc.Symbol, "level": target.Level})
		return nil
	}

	sweep := domain.SweepInfo{Low: last.Low, High: last.High}
	e.logger.Info(ctx, op+": liquidity swept", map[string]interface{}{
		"symbol": sc.Symbol, "side": string(target.Side), "level": target.Level, "low": sweep.Low, "high": sweep.High,
	})

	mss, ok := structure.FindMSSLevel(mssWindow(exec), target.Side)
	if !ok {
		e.reset(ctx, sc, "no MSS level after sweep")
		return nil
	}
	e.setPhase(ctx, sc, domain.AwaitingMSS{Setup: domain.Setup{
		Bias:   p.Bias,
		Target: target,
		Sweep:  sweep,
		MSS:    mss,
	}})
	return nil
}

func (e *Engine) awaitMSS(ctx context.Context, sc *SymbolContext, p domain.AwaitingMSS, exec []domain.Candle) {
	op := "awaitMSS"
	setup := p.Setup
	last := exec[len(exec)-2]

	if sweep, ok := structure.ExtendSweep(setup.Bias, setup.Sweep, last); ok {
		setup.Sweep = sweep
		if mss, ok := structure.FindMSSLevel(mssWindow(exec), setup.Target.Side); ok {
			setup.MSS = mss
		}
		e.logger.Info(ctx, op+": sweep extended", map[string]interface{}{
			"symbol": sc.Symbol, "low": sweep.Low, "high": sweep.High, "mss": setup.MSS,
		})
	}

	if structure.MSSConfirmed(setup.Bias, setup.MSS, last) {
		e.logger.Info(ctx, op+": market structure shift confirmed", map[string]interface{}{
			"symbol": sc.Symbol, "mss": setup.MSS, "close": last.Close,
		})
		e.setPhase(ctx, sc, domain.AwaitingEntry{Setup: setup})
		return
	}
	sc.Phase = domain.AwaitingMSS{Setup: setup}
}

func (e *Engine) awaitEntry(ctx context.Context, sc *SymbolContext, p domain.AwaitingEntry, exec []domain.Candle, now time.Time) error {
	op := "awaitEntry"
	setup := p.Setup

	closed := exec[:len(exec)-1]
	if len(closed) > FVGWindow {
		closed = closed[len(closed)-FVGWindow:]
	}
	fvg, ok := structure.DetectFVG(closed, setup.Bias)
	if !ok {
		return nil
	}

	direction := setup.Bias.Direction()
	entry, stop := fvg.Top, setup.Sweep.Low
	if direction == domain.Short {
		entry, stop = fvg.Bottom, setup.Sweep.High
	}
	if (direction == domain.Long && entry <= stop) || (direction == domain.Short && entry >= stop) {
		e.reset(ctx, sc, "entry is beyond the stop")
		return nil
	}

	if !e.newsAllows(ctx, sc.Symbol) {
		e.reset(ctx, sc, "high impact news nearby")
		return nil
	}

	order := domain.PendingOrder{
		ID:         e.newID(),
		Direction:  direction,
		EntryPrice: entry,
		StopLoss:   stop,
		TakeProfit: e.risk.TargetPrice(direction, entry, stop),
		SetupTime:  now,
	}
	handle, err := e.execution.SubmitPendingOrder(ctx, sc.Symbol, order)
	if err != nil {
		e.logger.Error(ctx, err, op+": order submission failed", map[string]interface{}{"symbol": sc.Symbol})
		return fmt.Errorf("%s failed: %w", op, err)
	}

	sc.Memory.Add(setup.Target.Level)
	setup.FVG = &fvg
	e.logger.Info(ctx, op+": pending order placed", map[string]interface{}{
		"symbol": sc.Symbol, "direction": string(direction), "entry": entry, "stopLoss": stop,
		"takeProfit": order.TakeProfit, "handle": string(handle),
	})
	e.setPhase(ctx, sc, domain.PositionOpen{Setup: setup, Handle: handle, Pending: &order})
	for _, o := range e.observers {
		o.SignalCreated(ctx, sc.Symbol, order)
	}
	return nil
}

func (e *Engine) newsAllows(ctx context.Context, symbol string) bool {
	f := e.cfg.News
	if !f.Enabled || e.news == nil {
		return true
	}
	var currencies []string
	upper := strings.ToUpper(symbol)
	for _, c := range f.Currencies {
		if c != "" && strings.Contains(upper, strings.ToUpper(c)) {
			currencies = append(currencies, strings.ToUpper(c))
		}
	}
	if len(currencies) == 0 {
		return true
	}
	safe, err := e.news.IsSafeToTrade(ctx, currencies, f.MinImpact, f.BufferMinutes)
	if err != nil {
		e.logger.Warn(ctx, "newsAllows: news check failed, trading allowed", map[string]interface{}{"symbol": symbol, "error": err.Error()})
		return true
	}
	return safe
}

func (e *Engine) managePosition(ctx context.Context, sc *SymbolContext, p domain.PositionOpen, exec []domain.Candle, now time.Time) error {
	current := exec[len(exec)-1]

	if p.Pending != nil {
		order := *p.Pending
		switch {
		case e.cfg.OrderTimeout > 0 && now.Sub(order.SetupTime) > e.cfg.OrderTimeout:
			return e.cancelPending(ctx, sc, p, "timeout")
		case order.StopTouched(current):
			return e.cancelPending(ctx, sc, p, "stop touched before entry")
		// A tracking venue reports the fill itself.
		case e.tracker == nil && order.EntryTouched(current):
			trade := order.Fill(now)
			e.logger.Info(ctx, "managePosition: pending order filled", map[string]interface{}{
				"symbol": sc.Symbol, "entry": trade.EntryPrice,
			})
			sc.Phase = domain.PositionOpen{Setup: p.Setup, Handle: p.Handle, Trade: &trade}
			for _, o := range e.observers {
				o.TradeOpened(ctx, sc.Symbol, trade)
			}
		}
		return nil
	}

	if p.Trade == nil {
		e.reset(ctx, sc, "position without order")
		return nil
	}
	if price, reason, ok := p.Trade.Exit(current); ok {
		e.closeTrade(ctx, sc, *p.Trade, price, now, reason)
	}
	return nil
}

// followVenue reconciles an open position phase with what the venue reports.
// It returns true when the phase was settled from the venue state and the
// candle rules must not run on this tick.
func (e *Engine) followVenue(ctx context.Context, sc *SymbolContext, p domain.PositionOpen, now time.Time) (bool, error) {
	op := "followVenue"
	state, err := e.tracker.OrderState(ctx, sc.Symbol, p.Handle)
	if err != nil {
		return false, fmt.Errorf("%s failed: %w", op, err)
	}

	switch state.Status {
	case domain.VenueWorking:
		return p.Trade != nil, nil
	case domain.VenueGone:
		if p.Trade == nil {
			e.logger.Warn(ctx, op+": entry order left the venue unfilled", map[string]interface{}{"symbol": sc.Symbol, "handle": string(p.Handle)})
			if p.Pending != nil {
				for _, o := range e.observers {
					o.OrderCanceled(ctx, sc.Symbol, *p.Pending, "removed on venue")
				}
			}
			e.reset(ctx, sc, "pending order removed on venue")
			return true, nil
		}
		state.Status, state.ExitReason = domain.VenueClosed, domain.CloseReasonUnknown
	}

	trade := p.Trade
	if trade == nil && p.Pending != nil {
		t := e.venueFill(ctx, sc, p, state, now)
		trade = &t
	}
	if trade == nil {
		e.reset(ctx, sc, "position without order")
		return true, nil
	}
	if state.Status == domain.VenueFilled {
		return true, nil
	}

	price := state.ExitPrice
	if price == 0 {
		candles, err := e.feed.Candles(ctx, sc.Symbol, e.cfg.ExecutionTimeframe, 1)
		if err != nil {
			return true, fmt.Errorf("%s failed: %w", op, err)
		}
		if len(candles) == 0 {
			return true, fmt.Errorf("%s failed: %w: no price for %s", op, ports.ErrInsufficientData, sc.Symbol)
		}
		price = candles[len(candles)-1].Close
	}
	reason := state.ExitReason
	if reason == "" {
		reason = domain.CloseReasonUnknown
	}
	e.closeTrade(ctx, sc, *trade, price, now, reason)
	return true, nil
}

// venueFill turns the pending order into the trade the venue filled.
func (e *Engine) venueFill(ctx context.Context, sc *SymbolContext, p domain.PositionOpen, state domain.VenueState, now time.Time) domain.OpenTrade {
	trade := p.Pending.Fill(now)
	if state.FillPrice > 0 {
		trade.EntryPrice = state.FillPrice
	}
	e.logger.Info(ctx, "followVenue: entry filled on venue", map[string]interface{}{
		"symbol": sc.Symbol, "entry": trade.EntryPrice, "handle": string(p.Handle),
	})
	sc.Phase = domain.PositionOpen{Setup: p.Setup, Handle: p.Handle, Trade: &trade}
	for _, o := range e.observers {
		o.TradeOpened(ctx, sc.Symbol, trade)
	}
	return trade
}

func (e *Engine) cancelPending(ctx context.Context, sc *SymbolContext, p domain.PositionOpen, reason string) error {
	op := "cancelPending"
	if err := e.execution.CancelOrder(ctx, sc.Symbol, p.Handle); err != nil {
		e.logger.Error(ctx, err, op+": cancel failed, order kept", map[string]interface{}{"symbol": sc.Symbol, "reason": reason})
		return fmt.Errorf("%s failed: %w", op, err)
	}
	if p.Pending != nil {
		for _, o := range e.observers {
			o.OrderCanceled(ctx, sc.Symbol, *p.Pending, reason)
		}
	}
	e.reset(ctx, sc, "pending order canceled: "+reason)
	return nil
}

func (e *Engine) closeTrade(ctx context.Context, sc *SymbolContext, trade domain.OpenTrade, price float64, at time.Time, reason domain.CloseReason) {
	record := e.ledger.Apply(trade.Close(sc.Symbol, price, at, reason))
	e.risk.UpdateStats(ctx, record)
	balance := e.ledger.Balance()
	e.logger.Info(ctx, "closeTrade: trade closed", map[string]interface{}{
		"symbol": sc.Symbol, "reason": string(reason), "price": price, "pnl": record.PnL, "balance": balance,
	})
	for _, o := range e.observers {
		o.TradeClosed(ctx, record, balance)
	}
	e.reset(ctx, sc, "trade closed")
}

// CloseOut ends the symbol's cycle: an open trade is closed on the venue at the
// latest price, a pending order is canceled. Used for end-of-day flattening.
func (e *Engine) CloseOut(ctx context.Context, symbol string, now time.Time, reason domain.CloseReason) error {
	op := "CloseOut"
	e.mu.Lock()
	defer e.mu.Unlock()

	sc, ok := e.contexts[symbol]
	if !ok {
		return fmt.Errorf("%s failed: %w: %s", op, ports.ErrUnknownSymbol, symbol)
	}
	if p, ok := sc.Phase.(domain.PositionOpen); ok && e.tracker != nil {
		if _, err := e.followVenue(ctx, sc, p, now); err != nil {
			return fmt.Errorf("%s failed: %w", op, err)
		}
	}
	p, ok := sc.Phase.(domain.PositionOpen)
	if !ok {
		if _, idle := sc.Phase.(domain.AwaitingSession); !idle {
			e.reset(ctx, sc, string(reason))
		}
		return nil
	}
	if p.Trade == nil {
		return e.cancelPending(ctx, sc, p, string(reason))
	}

	candles, err := e.feed.Candles(ctx, symbol, e.cfg.ExecutionTimeframe, 1)
	if err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}
	if len(candles) == 0 {
		return fmt.Errorf("%s failed: %w: no price for %s", op, ports.ErrInsufficientData, symbol)
	}
	if err := e.execution.ClosePosition(ctx, symbol, p.Handle); err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}
	e.closeTrade(ctx, sc, *p.Trade, candles[len(candles)-1].Close, now, reason)
	return nil
}

// Views returns detached views of every symbol, in configuration order.
func (e *Engine) Views() []SymbolView {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]SymbolView, 0, len(e.cfg.Symbols))
	for _, s := range e.cfg.Symbols {
		out = append(out, e.contexts[s].view())
	}
	return out
}

// View returns the view of one symbol.
func (e *Engine) View(symbol string) (SymbolView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sc, ok := e.contexts[symbol]
	if !ok {
		return SymbolView{}, fmt.Errorf("View failed: %w: %s", ports.ErrUnknownSymbol, symbol)
	}
	return sc.view(), nil
}

func (e *Engine) setPhase(ctx context.Context, sc *SymbolContext, next domain.Phase) {
	from := sc.Phase
	sc.Phase = next
	if from.Name() == next.Name() {
		return
	}
	for _, o := range e.observers {
		o.PhaseChanged(ctx, sc.Symbol, from, next)
	}
}

func (e *Engine) reset(ctx context.Context, sc *SymbolContext, reason string) {
	e.logger.Info(ctx, "reset: trade cycle reset", map[string]interface{}{"symbol": sc.Symbol, "reason": reason, "from": sc.Phase.Name()})
	e.setPhase(ctx, sc, domain.AwaitingSession{})
}

func mssWindow(exec []domain.Candle) []domain.Candle {
	closed := exec[:len(exec)-1]
	if len(closed) > structure.MSSLookback {
		closed = closed[len(closed)-structure.MSSLookback:]
	}
	return closed
}
