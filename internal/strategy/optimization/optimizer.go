// Package optimization sweeps strategy parameters over replay runs.
package optimization

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"argusBot/internal/ports"
	"argusBot/internal/strategy/analytics"
	"argusBot/internal/strategy/backtesting"
)

// Parameter names understood by the optimizer.
const (
	ParamRewardMultiple = "reward_multiple"
	ParamOrderTimeout   = "order_timeout_minutes"
	ParamRiskPercent    = "risk_percent"
)

// ParameterRange defines a range for a parameter to optimize
type ParameterRange struct {
	Name  string
	Min   float64
	Max   float64
	Step  float64
	IsInt bool
}

// OptimizationResult holds the results of a parameter optimization
type OptimizationResult struct {
	Parameters map[string]float64
	Metrics    *analytics.PerformanceMetrics
	Score      float64
}

// OptimizerConfig holds configuration for the optimizer
type OptimizerConfig struct {
	ParameterRanges []ParameterRange
	Base            backtesting.BacktestConfig // values not swept
	Workers         int                        // concurrent replays, GOMAXPROCS when 0
	ScoreFunction   func(*analytics.PerformanceMetrics) float64
}

// Optimizer implements strategy parameter optimization
type Optimizer struct {
	config OptimizerConfig
	logger ports.Logger
}

// NewOptimizer creates a new optimizer instance
func NewOptimizer(config OptimizerConfig, logger ports.Logger) (*Optimizer, error) {
	for _, r := range config.ParameterRanges {
		switch r.Name {
		case ParamRewardMultiple, ParamOrderTimeout, ParamRiskPercent:
		default:
			return nil, fmt.Errorf("unknown parameter %q: %w", r.Name, ports.ErrConfigurationError)
		}
		if r.Step <= 0 || r.Max < r.Min {
			return nil, fmt.Errorf("invalid range for %s: %w", r.Name, ports.ErrConfigurationError)
		}
	}
	if config.ScoreFunction == nil {
		config.ScoreFunction = DefaultScoreFunction
	}
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	return &Optimizer{config: config, logger: logger}, nil
}

// Optimize runs one replay per parameter combination and returns the results
// sorted by score, best first. Combinations whose replay fails are skipped
// and logged.
func (o *Optimizer) Optimize(ctx context.Context, series backtesting.Series) ([]OptimizationResult, error) {
	combinations := o.generateParameterCombinations()
	results := make([]OptimizationResult, 0, len(combinations))

	jobs := make(chan map[string]float64)
	resultChan := make(chan OptimizationResult, len(combinations))
	var wg sync.WaitGroup

	for w := 0; w < o.config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for params := range jobs {
				cfg := o.configFor(params)
				result, err := backtesting.Backtest(ctx, series, cfg, o.logger)
				if err != nil {
					o.logger.Warn(ctx, "Optimize: replay failed", map[string]interface{}{"params": params, "error": err.Error()})
					continue
				}
				resultChan <- OptimizationResult{
					Parameters: params,
					Metrics:    result.Metrics,
					Score:      o.config.ScoreFunction(result.Metrics),
				}
			}
		}()
	}

feed:
	for _, params := range combinations {
		select {
		case jobs <- params:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(resultChan)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("Optimize failed: %w: %w", ports.ErrContextCanceled, err)
	}
	for result := range resultChan {
		results = append(results, result)
	}
	sortResultsByScore(results)
	return results, nil
}

func (o *Optimizer) configFor(params map[string]float64) backtesting.BacktestConfig {
	cfg := o.config.Base
	if v, ok := params[ParamRewardMultiple]; ok {
		cfg.Risk.RewardMultiple = v
	}
	if v, ok := params[ParamRiskPercent]; ok {
		cfg.Risk.RiskFraction = v / 100
	}
	if v, ok := params[ParamOrderTimeout]; ok {
		cfg.OrderTimeout = time.Duration(v) * time.Minute
	}
	return cfg
}

// generateParameterCombinations generates all possible parameter combinations
func (o *Optimizer) generateParameterCombinations() []map[string]float64 {
	var combinations []map[string]float64
	var currentCombination map[string]float64

	var generate func(int)
	generate = func(paramIndex int) {
		if paramIndex == len(o.config.ParameterRanges) {
			combination := make(map[string]float64, len(currentCombination))
			for k, v := range currentCombination {
				combination[k] = v
			}
			combinations = append(combinations, combination)
			return
		}

		param := o.config.ParameterRanges[paramIndex]
		for i := 0; ; i++ {
			value := param.Min + float64(i)*param.Step
			if value > param.Max+param.Step/2 {
				break
			}
			if param.IsInt {
				value = math.Round(value)
			}
			currentCombination[param.Name] = value
			generate(paramIndex + 1)
		}
	}

	currentCombination = make(map[string]float64)
	generate(0)
	return combinations
}

// sortResultsByScore sorts optimization results by score in descending order
func sortResultsByScore(results []OptimizationResult) {
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
}

// maxProfitFactor caps the profit factor of loss-free runs when scoring.
const maxProfitFactor = 10

// DefaultScoreFunction combines several metrics into a single score.
func DefaultScoreFunction(metrics *analytics.PerformanceMetrics) float64 {
	if metrics == nil || metrics.TotalTrades == 0 {
		return 0
	}
	score := 0.0

	score += metrics.WinRate * 0.3
	score += math.Min(metrics.ProfitFactor, maxProfitFactor) * 0.2
	score += (1 - metrics.MaxDrawdown) * 0.2
	score += metrics.ReturnOnInvestment * 0.2
	score += metrics.RiskRewardRatio * 0.1

	return score
}
