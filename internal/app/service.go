package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jpillora/backoff"

	"argusBot/internal/domain"
	"argusBot/internal/engine"
	"argusBot/internal/ports"
	"argusBot/internal/risk"
)

// Status messages published to State.
const (
	StatusAnalyzing    = "analyzing market"
	StatusMarketClosed = "market closed"
	StatusAfterEOD     = "waiting for next trading day"
	StatusStopped      = "stopped"
	StatusPaused       = "paused"
	StatusDailyLimit   = "daily loss limit reached"
)

// VenueCleaner flattens venue leftovers the engine does not track. Execution
// adapters that implement it are used during the end-of-day close.
type VenueCleaner interface {
	CloseVenuePosition(ctx context.Context, p domain.VenuePosition) error
	CancelVenueOrder(ctx context.Context, o domain.VenueOrder) error
}

// BalanceSource reports the venue account balance.
type BalanceSource interface {
	AccountBalance(ctx context.Context) (float64, error)
}

// ServerTimeSyncer aligns request timestamps with the venue clock.
type ServerTimeSyncer interface {
	SetServerTime(ctx context.Context) error
}

// TickObserver is told about failed ticks.
type TickObserver interface {
	TickFailed(symbol string)
}

// ServiceConfig configures the live loop.
type ServiceConfig struct {
	PollInterval  time.Duration
	MaxBackoff    time.Duration
	AvoidWeekends bool
	CloseEOD      bool
	EODClose      engine.Clock
}

// LiveService polls the engine for every symbol on a fixed interval.
type LiveService struct {
	cfg       ServiceConfig
	logger    ports.Logger
	engine    *engine.Engine
	execution ports.Execution
	risk      *risk.RiskManager
	state     *State
	ticks     TickObserver
	now       func() time.Time

	eodDone bool

	mu     sync.Mutex
	paused bool
}

// NewLiveService creates the live driver.
func NewLiveService(
	cfg ServiceConfig,
	logger ports.Logger,
	eng *engine.Engine,
	execution ports.Execution,
	riskManager *risk.RiskManager,
	state *State,
) (*LiveService, error) {
	if logger == nil || eng == nil || execution == nil || riskManager == nil || state == nil {
		return nil, fmt.Errorf("missing required dependencies for LiveService: %w", ports.ErrConfigurationError)
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive: %w", ports.ErrConfigurationError)
	}
	if cfg.MaxBackoff < cfg.PollInterval {
		cfg.MaxBackoff = 2 * time.Minute
	}
	return &LiveService{
		cfg:       cfg,
		logger:    logger,
		engine:    eng,
		execution: execution,
		risk:      riskManager,
		state:     state,
		now:       time.Now,
	}, nil
}

// SetTickObserver registers a receiver for failed ticks.
func (s *LiveService) SetTickObserver(o TickObserver) {
	s.ticks = o
}

// Pause stops engine ticks until Resume. Day rollover and the end-of-day
// close keep running.
func (s *LiveService) Pause(ctx context.Context) {
	s.setPaused(ctx, true)
}

// Resume restarts engine ticks after Pause.
func (s *LiveService) Resume(ctx context.Context) {
	s.setPaused(ctx, false)
}

// Paused reports whether ticks are suspended.
func (s *LiveService) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *LiveService) setPaused(ctx context.Context, paused bool) {
	s.mu.Lock()
	changed := s.paused != paused
	s.paused = paused
	s.mu.Unlock()
	if changed {
		s.logger.Info(ctx, "Live service pause changed", map[string]interface{}{"paused": paused})
	}
	s.publish()
}

// UpdateRisk changes the per-trade risk (in percent of balance) and the reward
// multiple for setups created from now on.
func (s *LiveService) UpdateRisk(ctx context.Context, riskPercent, rewardMultiple float64) error {
	cfg := s.risk.Config()
	cfg.RiskFraction = riskPercent / 100
	cfg.RewardMultiple = rewardMultiple
	if err := s.risk.SetConfig(cfg); err != nil {
		return fmt.Errorf("UpdateRisk failed: %w", err)
	}
	s.engine.Ledger().SetRisk(cfg)
	s.logger.Info(ctx, "Risk settings updated", map[string]interface{}{"riskPercent": riskPercent, "rewardMultiple": rewardMultiple})
	s.publish()
	return nil
}

// Start syncs with the venue and runs the loop until ctx ends. Shutdown
// signals are the caller's concern.
func (s *LiveService) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting live service...")
	if err := s.Sync(ctx); err != nil {
		return err
	}
	return s.Run(ctx)
}

// Sync aligns the venue clock and rebases the ledger on the venue balance
// when the execution adapter supports it.
func (s *LiveService) Sync(ctx context.Context) error {
	if syncer, ok := s.execution.(ServerTimeSyncer); ok {
		if err := syncer.SetServerTime(ctx); err != nil {
			s.logger.Error(ctx, err, "Failed to synchronize server time")
			return fmt.Errorf("failed to set server time: %w", err)
		}
		s.logger.Info(ctx, "Server time synchronized")
	}
	if src, ok := s.execution.(BalanceSource); ok {
		balance, err := src.AccountBalance(ctx)
		if err != nil {
			s.logger.Error(ctx, err, "Failed to read account balance")
			return fmt.Errorf("failed to read account balance: %w", err)
		}
		s.engine.Ledger().Rebase(balance, s.now())
		s.logger.Info(ctx, "Ledger synchronized with venue balance", map[string]interface{}{"balance": balance})
	}
	s.publish()
	return nil
}

// Run steps until ctx is canceled. After a failed step the next attempt is
// delayed with exponential backoff; a successful step resets it.
func (s *LiveService) Run(ctx context.Context) error {
	s.state.SetRunning(true, StatusAnalyzing)
	defer s.state.SetRunning(false, StatusStopped)

	b := &backoff.Backoff{Min: s.cfg.PollInterval, Max: s.cfg.MaxBackoff, Factor: 2}
	for {
		delay := s.cfg.PollInterval
		if err := s.Step(ctx); err != nil {
			delay = b.Duration()
			s.logger.Warn(ctx, "Run: step failed, backing off", map[string]interface{}{"delay": delay.String(), "error": err.Error()})
		} else {
			b.Reset()
		}

		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Live service stopped.")
			return nil
		case <-time.After(delay):
		}
	}
}

// Step runs one iteration: day rollover, weekend gate, end-of-day close, then
// one engine tick per symbol in configuration order.
func (s *LiveService) Step(ctx context.Context) error {
	now := s.now()
	defer s.publish()

	if s.engine.RolloverIfNewDay(ctx, now) {
		s.eodDone = false
		s.logger.Info(ctx, "Step: new trading day started")
	}

	sessions := s.engine.Sessions()
	if s.cfg.AvoidWeekends && sessions.MarketClosed(now) {
		s.state.SetStatus(StatusMarketClosed)
		return nil
	}

	if s.cfg.CloseEOD && sessions.AfterEOD(now, s.cfg.EODClose) {
		if !s.eodDone {
			if err := s.closeEndOfDay(ctx, now); err != nil {
				return err
			}
			s.eodDone = true
		}
		s.state.SetStatus(StatusAfterEOD)
		return nil
	}

	if s.Paused() {
		s.state.SetStatus(StatusPaused)
		return nil
	}

	// Past the daily loss limit the engine starts no new cycle but still
	// manages what is open.
	if s.risk.Halted(ctx, s.engine.Ledger().Balance()) {
		s.state.SetStatus(StatusDailyLimit)
	} else {
		s.state.SetStatus(StatusAnalyzing)
	}
	var errs []error
	for _, symbol := range s.engine.Symbols() {
		if err := s.engine.Tick(ctx, symbol, now); err != nil {
			s.logger.Error(ctx, err, "Step: tick failed", map[string]interface{}{"symbol": symbol})
			if s.ticks != nil {
				s.ticks.TickFailed(symbol)
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *LiveService) closeEndOfDay(ctx context.Context, now time.Time) error {
	op := "closeEndOfDay"
	s.logger.Info(ctx, op+": closing all positions and orders")

	var errs []error
	for _, symbol := range s.engine.Symbols() {
		if err := s.engine.CloseOut(ctx, symbol, now, domain.CloseReasonEndOfDay); err != nil {
			s.logger.Error(ctx, err, op+": close out failed", map[string]interface{}{"symbol": symbol})
			errs = append(errs, err)
		}
	}

	cleaner, ok := s.execution.(VenueCleaner)
	if !ok {
		return errors.Join(errs...)
	}
	positions, err := s.execution.OpenPositions(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	for _, p := range positions {
		if err := cleaner.CloseVenuePosition(ctx, p); err != nil {
			errs = append(errs, err)
			continue
		}
		s.logger.Info(ctx, op+": venue position closed", map[string]interface{}{"symbol": p.Symbol, "quantity": p.Quantity})
	}
	orders, err := s.execution.OpenOrders(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	for _, o := range orders {
		if err := cleaner.CancelVenueOrder(ctx, o); err != nil && !errors.Is(err, ports.ErrOrderNotFound) {
			errs = append(errs, err)
			continue
		}
		s.logger.Info(ctx, op+": venue order canceled", map[string]interface{}{"symbol": o.Symbol, "handle": string(o.Handle)})
	}
	return errors.Join(errs...)
}

func (s *LiveService) publish() {
	session := ""
	if w, ok := s.engine.Sessions().Active(s.now()); ok {
		session = w.Name
	}
	s.state.SetSymbols(s.engine.Views(), session)
	s.state.SetAccount(s.engine.Ledger().Balance(), s.risk.GetStats().DailyPnL)
	cfg := s.risk.Config()
	s.state.SetControls(s.Paused(), RiskSettings{RiskPercent: cfg.RiskFraction * 100, RewardMultiple: cfg.RewardMultiple})
}
