package backtesting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"argusBot/internal/domain"
	"argusBot/internal/engine"
	"argusBot/internal/ports"
	"argusBot/internal/risk"
	"argusBot/internal/strategy/analytics"
)

// WarmupCandles is the first execution index evaluated.
const WarmupCandles = 50

// BacktestConfig holds configuration for backtesting
type BacktestConfig struct {
	Symbol             string
	BiasTimeframe      string
	ContextTimeframe   string
	ExecutionTimeframe string
	Sessions           engine.Sessions
	OrderTimeout       time.Duration
	InitialFunds       float64
	Risk               risk.RiskConfig
}

// Series holds the candles of each timeframe for one symbol.
type Series struct {
	Bias      []domain.Candle
	Context   []domain.Candle
	Execution []domain.Candle
}

// BacktestResult holds the results of a backtest
type BacktestResult struct {
	Steps          int
	Signals        int
	CanceledOrders int
	FinalBalance   float64
	Trades         []domain.Trade
	EquityCurve    []risk.EquitySample
	Metrics        *analytics.PerformanceMetrics
}

type runStats struct {
	paper    *PaperExecution
	signals  int
	canceled int
}

func (s *runStats) PhaseChanged(ctx context.Context, symbol string, from, to domain.Phase) {}

func (s *runStats) SignalCreated(ctx context.Context, symbol string, order domain.PendingOrder) {
	s.signals++
}

func (s *runStats) OrderCanceled(ctx context.Context, symbol string, order domain.PendingOrder, reason string) {
	s.canceled++
}

func (s *runStats) TradeOpened(ctx context.Context, symbol string, trade domain.OpenTrade) {}

func (s *runStats) TradeClosed(ctx context.Context, trade domain.Trade, balance float64) {
	s.paper.Settle(trade.SetupID)
}

// Backtest replays the series through the engine, one execution candle per
// step. It is deterministic for the same input.
func Backtest(ctx context.Context, series Series, config BacktestConfig, logger ports.Logger) (*BacktestResult, error) {
	if len(series.Execution) < WarmupCandles+2 {
		return nil, fmt.Errorf("not enough execution candles (%d): %w", len(series.Execution), ports.ErrInsufficientData)
	}
	if config.InitialFunds <= 0 {
		return nil, fmt.Errorf("initial funds must be positive: %w", ports.ErrConfigurationError)
	}

	feed, err := NewReplayFeed(config.ExecutionTimeframe, map[string][]domain.Candle{
		config.BiasTimeframe:      series.Bias,
		config.ContextTimeframe:   series.Context,
		config.ExecutionTimeframe: series.Execution,
	})
	if err != nil {
		return nil, err
	}
	riskManager, err := risk.NewRiskManager(config.Risk)
	if err != nil {
		return nil, err
	}
	ledger := risk.NewLedger(config.InitialFunds, config.Risk)
	paper := NewPaperExecution()

	eng, err := engine.New(engine.Config{
		Symbols:            []string{config.Symbol},
		BiasTimeframe:      config.BiasTimeframe,
		ContextTimeframe:   config.ContextTimeframe,
		ExecutionTimeframe: config.ExecutionTimeframe,
		Sessions:           config.Sessions,
		OrderTimeout:       config.OrderTimeout,
	}, logger, feed, paper, riskManager, ledger)
	if err != nil {
		return nil, err
	}
	eng.SetIDSource(replayIDs(config.Symbol))
	stats := &runStats{paper: paper}
	eng.AddObserver(stats)

	result := &BacktestResult{}
	for i := WarmupCandles; i < feed.Len()-1; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("backtest interrupted: %w: %w", ports.ErrContextCanceled, err)
		}
		now := feed.Seek(i).Time
		eng.RolloverIfNewDay(ctx, now)
		if err := eng.Tick(ctx, config.Symbol, now); err != nil {
			return nil, fmt.Errorf("tick at %s failed: %w", now.Format(time.RFC3339), err)
		}
		result.Steps++
	}

	result.Signals = stats.signals
	result.CanceledOrders = stats.canceled
	result.FinalBalance = ledger.Balance()
	result.Trades = ledger.Trades()
	result.EquityCurve = ledger.EquityCurve()
	result.Metrics = analytics.AnalyzePerformance(result.Trades, config.InitialFunds)
	return result, nil
}

// replayIDs issues name-based UUIDs from a counter so identical replays
// produce identical setup IDs.
func replayIDs(symbol string) func() string {
	n := 0
	return func() string {
		n++
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%d", symbol, n))).String()
	}
}
