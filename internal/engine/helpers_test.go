package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"argusBot/internal/domain"
	"argusBot/internal/ports"
	"argusBot/internal/risk"
)

const (
	tfBias    = "4h"
	tfContext = "15m"
	tfExec    = "1m"
	symbol    = "EURUSD"
)

// Monday, inside the 07:00-10:00 window (UTC).
var day1 = time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

type mockLogger struct {
	mu        sync.Mutex
	infoMsgs  []string
	warnMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infoMsgs = append(m.infoMsgs, msg)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnMsgs = append(m.warnMsgs, msg)
}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorMsgs = append(m.errorMsgs, msg)
}

type mockFeed struct {
	candles map[string][]domain.Candle
	err     error
}

func (m *mockFeed) Candles(ctx context.Context, symbol, timeframe string, count int) ([]domain.Candle, error) {
	if m.err != nil {
		return nil, m.err
	}
	c := m.candles[timeframe]
	if len(c) > count {
		c = c[len(c)-count:]
	}
	return c, nil
}

type mockExecution struct {
	submitted []domain.PendingOrder
	canceled  []domain.OrderHandle
	closed    []domain.OrderHandle
	submitErr error
	cancelErr error
	closeErr  error
}

func (m *mockExecution) SubmitPendingOrder(ctx context.Context, symbol string, order domain.PendingOrder) (domain.OrderHandle, error) {
	if m.submitErr != nil {
		return "", m.submitErr
	}
	m.submitted = append(m.submitted, order)
	return domain.OrderHandle(fmt.Sprintf("h-%d", len(m.submitted))), nil
}

func (m *mockExecution) CancelOrder(ctx context.Context, symbol string, handle domain.OrderHandle) error {
	if m.cancelErr != nil {
		return m.cancelErr
	}
	m.canceled = append(m.canceled, handle)
	return nil
}

func (m *mockExecution) ClosePosition(ctx context.Context, symbol string, handle domain.OrderHandle) error {
	if m.closeErr != nil {
		return m.closeErr
	}
	m.closed = append(m.closed, handle)
	return nil
}

func (m *mockExecution) OpenPositions(ctx context.Context) ([]domain.VenuePosition, error) {
	return nil, nil
}

func (m *mockExecution) OpenOrders(ctx context.Context) ([]domain.VenueOrder, error) {
	return nil, nil
}

// trackingExecution is a venue that reports the state of its order groups.
type trackingExecution struct {
	*mockExecution
	state   domain.VenueState
	err     error
	queries int
}

func (m *trackingExecution) OrderState(ctx context.Context, symbol string, handle domain.OrderHandle) (domain.VenueState, error) {
	m.queries++
	return m.state, m.err
}

type recorder struct {
	phases   []string
	signals  []domain.PendingOrder
	canceled []string
	opened   []domain.OpenTrade
	closed   []domain.Trade
}

func (r *recorder) PhaseChanged(ctx context.Context, symbol string, from, to domain.Phase) {
	r.phases = append(r.phases, to.Name())
}

func (r *recorder) SignalCreated(ctx context.Context, symbol string, order domain.PendingOrder) {
	r.signals = append(r.signals, order)
}

func (r *recorder) OrderCanceled(ctx context.Context, symbol string, order domain.PendingOrder, reason string) {
	r.canceled = append(r.canceled, reason)
}

func (r *recorder) TradeOpened(ctx context.Context, symbol string, trade domain.OpenTrade) {
	r.opened = append(r.opened, trade)
}

func (r *recorder) TradeClosed(ctx context.Context, trade domain.Trade, balance float64) {
	r.closed = append(r.closed, trade)
}

type mockNews struct {
	safe  bool
	err   error
	calls [][]string
}

func (m *mockNews) IsSafeToTrade(ctx context.Context, currencies []string, minImpact string, bufferMinutes int) (bool, error) {
	m.calls = append(m.calls, currencies)
	return m.safe, m.err
}

type harness struct {
	engine *Engine
	feed   *mockFeed
	exec   *mockExecution
	rec    *recorder
	risk   *risk.RiskManager
	ledger *risk.Ledger
}

func newHarness(t *testing.T, mutate ...func(*Config)) *harness {
	t.Helper()
	exec := &mockExecution{}
	return buildHarness(t, exec, exec, mutate...)
}

// newTrackedHarness wires an execution that reports fills and exits.
func newTrackedHarness(t *testing.T, mutate ...func(*Config)) (*harness, *trackingExecution) {
	t.Helper()
	venue := &trackingExecution{mockExecution: &mockExecution{}}
	return buildHarness(t, venue.mockExecution, venue, mutate...), venue
}

func buildHarness(t *testing.T, exec *mockExecution, venue ports.Execution, mutate ...func(*Config)) *harness {
	t.Helper()
	windows, err := ParseSessions("NY AM=07:00-10:00")
	require.NoError(t, err)
	cfg := Config{
		Symbols:            []string{symbol},
		BiasTimeframe:      tfBias,
		ContextTimeframe:   tfContext,
		ExecutionTimeframe: tfExec,
		Sessions:           NewSessions(windows, time.UTC),
		OrderTimeout:       60 * time.Minute,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	riskCfg := risk.RiskConfig{RiskFraction: 0.01, RewardMultiple: 2, MaxDailyLoss: 0.03}
	rm, err := risk.NewRiskManager(riskCfg)
	require.NoError(t, err)
	ledger := risk.NewLedger(10000, riskCfg)

	feed := &mockFeed{candles: map[string][]domain.Candle{
		tfBias:    bullishBias(),
		tfContext: sslContext(),
		tfExec:    sweepExec(),
	}}
	e, err := New(cfg, &mockLogger{}, feed, venue, rm, ledger)
	require.NoError(t, err)
	rec := &recorder{}
	e.AddObserver(rec)
	e.RolloverIfNewDay(context.Background(), day1)
	return &harness{engine: e, feed: feed, exec: exec, rec: rec, risk: rm, ledger: ledger}
}

func (h *harness) tick(t *testing.T, at time.Time) {
	t.Helper()
	require.NoError(t, h.engine.Tick(context.Background(), symbol, at))
}

func (h *harness) phase(t *testing.T) domain.Phase {
	t.Helper()
	return h.engine.contexts[symbol].Phase
}

// toPending runs sweep, confirmation and entry ticks and leaves a pending order
// set up at day1+2m.
func (h *harness) toPending(t *testing.T) domain.PendingOrder {
	t.Helper()
	h.tick(t, day1)
	require.IsType(t, domain.AwaitingMSS{}, h.phase(t))
	h.feed.candles[tfExec] = entryExec()
	h.tick(t, day1.Add(time.Minute))
	require.IsType(t, domain.AwaitingEntry{}, h.phase(t))
	h.tick(t, day1.Add(2*time.Minute))
	p, ok := h.phase(t).(domain.PositionOpen)
	require.True(t, ok)
	require.NotNil(t, p.Pending)
	return *p.Pending
}

func (h *harness) setCurrent(high, low float64) {
	exec := append([]domain.Candle(nil), h.feed.candles[tfExec]...)
	last := exec[len(exec)-1]
	exec[len(exec)-1] = candle(20, high, low, (high+low)/2)
	exec[len(exec)-1].Time = last.Time
	h.feed.candles[tfExec] = exec
}

var errVenue = errors.New("venue down")

func candle(i int, high, low, close float64) domain.Candle {
	return domain.Candle{
		Time:  day1.Add(time.Duration(i) * time.Minute),
		Open:  close,
		High:  high,
		Low:   low,
		Close: close,
	}
}

// bullishBias builds 60 candles with a higher-low/higher-high sequence.
func bullishBias() []domain.Candle {
	anchors := [][2]float64{{0, 100}, {15, 120}, {30, 110}, {59, 135}}
	candles := make([]domain.Candle, 0, 60)
	seg := 0
	for i := 0; i <= 59; i++ {
		for seg < len(anchors)-2 && float64(i) > anchors[seg+1][0] {
			seg++
		}
		x0, y0 := anchors[seg][0], anchors[seg][1]
		x1, y1 := anchors[seg+1][0], anchors[seg+1][1]
		p := y0 + (y1-y0)*(float64(i)-x0)/(x1-x0)
		c := candle(i, p+0.5, p-0.5, p)
		c.Time = day1.Add(-time.Duration(60-i) * 4 * time.Hour)
		candles = append(candles, c)
	}
	return candles
}

// sslContext has a single swing low at 1.2000 below the last close.
func sslContext() []domain.Candle {
	lows := []float64{1.2040, 1.2030, 1.2000, 1.2030, 1.2040, 1.2050, 1.2060}
	out := make([]domain.Candle, len(lows))
	for i, l := range lows {
		out[i] = candle(i, l+0.0020, l, l+0.0010)
	}
	return out
}

// sweepExec ends with a closed candle sweeping 1.2000 (low 1.1995). The most recent
// swing high in the last 15 closed candles is 1.2010.
func sweepExec() []domain.Candle {
	highs := []float64{
		1.2060, 1.2057, 1.2054, 1.2051, 1.2048, // outside the MSS window
		1.2040, 1.2035, 1.2030, 1.2025, 1.2020, 1.2015, 1.2008, 1.2004,
		1.2010, 1.2006, 1.2005, 1.2004, 1.2003, 1.20025,
	}
	out := make([]domain.Candle, 0, ExecutionFetchCount)
	for i, h := range highs {
		out = append(out, candle(i, h, h-0.0010, h-0.0005))
	}
	out = append(out, candle(len(out), 1.2002, 1.1995, 1.2000))
	out = append(out, candle(len(out), 1.2003, 1.1999, 1.2001))
	return out
}

// entryExec confirms the shift with a close of 1.2030 and leaves a bullish
// imbalance with top 1.2020 and bottom 1.2005 as the most recent triple.
func entryExec() []domain.Candle {
	closed := sweepExec()[3:20]
	n := len(closed)
	closed = append(closed,
		candle(n, 1.2005, 1.1998, 1.2003),
		candle(n+1, 1.2030, 1.2004, 1.2028),
		candle(n+2, 1.2035, 1.2020, 1.2030),
	)
	for i := range closed {
		closed[i].Time = day1.Add(time.Duration(i) * time.Minute)
	}
	current := candle(len(closed), 1.2036, 1.2031, 1.2033)
	return append(closed, current)
}
