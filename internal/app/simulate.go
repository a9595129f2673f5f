package app

import (
	"context"
	"errors"
	"strings"

	"github.com/newthinker/stocksim/internal/aggregate"
	"github.com/newthinker/stocksim/internal/core"
	"github.com/newthinker/stocksim/internal/quote"
	"github.com/newthinker/stocksim/internal/simulator"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BenchmarkOutcome is an investment and, when it could be priced, its
// comparison with the benchmark. Warning explains a missing benchmark.
type BenchmarkOutcome struct {
	Investment simulator.InvestmentResult
	Benchmark  *aggregate.BenchmarkResult
	Warning    error
}

// Simulate prices a single lump-sum investment.
func (a *App) Simulate(ctx context.Context, ticker string, p Period, amount float64) (simulator.InvestmentResult, error) {
	if err := a.requireOpen(); err != nil {
		return simulator.InvestmentResult{}, err
	}
	r, err := a.investment(ctx, ticker, p, amount)
	if err != nil {
		return simulator.InvestmentResult{}, err
	}
	a.metrics.RecordSimulation("single")
	return r, nil
}

// SimulateWithBenchmark prices an investment and the same amount in the
// benchmark ticker. A benchmark without data is reported as a warning, not
// an error.
func (a *App) SimulateWithBenchmark(ctx context.Context, ticker, benchmark string, p Period, amount float64) (BenchmarkOutcome, error) {
	if err := a.requireOpen(); err != nil {
		return BenchmarkOutcome{}, err
	}

	var inv, bench simulator.InvestmentResult
	var benchErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		inv, err = a.investment(gctx, ticker, p, amount)
		return err
	})
	g.Go(func() error {
		bench, benchErr = a.investment(gctx, benchmark, p, amount)
		if benchErr != nil && !errors.Is(benchErr, core.ErrDataUnavailable) {
			return benchErr
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return BenchmarkOutcome{}, err
	}

	out := BenchmarkOutcome{Investment: inv}
	a.metrics.RecordSimulation("single")
	if benchErr != nil {
		a.logger.Warn("benchmark unavailable", zap.String("benchmark", benchmark), zap.Error(benchErr))
		out.Warning = benchErr
		return out, nil
	}

	result := aggregate.BuildBenchmark(inv, bench)
	out.Benchmark = &result
	a.metrics.RecordSimulation("benchmark")
	return out, nil
}

// Price returns the latest price of ticker.
func (a *App) Price(ctx context.Context, ticker string) (quote.Price, error) {
	if err := a.requireOpen(); err != nil {
		return quote.Price{}, err
	}
	return a.resolver.LatestPrice(ctx, ticker)
}

// Portfolio prices every holding over the same period. Any holding without
// data fails the whole portfolio.
func (a *App) Portfolio(ctx context.Context, holdings []Holding, p Period) (aggregate.PortfolioResult, error) {
	if err := a.requireOpen(); err != nil {
		return aggregate.PortfolioResult{}, err
	}
	results, _, err := a.simulateAll(ctx, holdings, p, false)
	if err != nil {
		return aggregate.PortfolioResult{}, err
	}
	a.metrics.RecordSimulation("portfolio")
	return aggregate.Portfolio(results, p.Start, p.End), nil
}

// Best ranks tickers by return on the same amount, keeping the top n.
// Tickers without data are skipped and listed in the result.
func (a *App) Best(ctx context.Context, tickers []string, p Period, amount float64, top int) (aggregate.RankingResult, error) {
	if err := a.requireOpen(); err != nil {
		return aggregate.RankingResult{}, err
	}

	holdings := make([]Holding, len(tickers))
	for i, t := range tickers {
		holdings[i] = Holding{Ticker: t, Amount: amount}
	}

	results, skipped, err := a.simulateAll(ctx, holdings, p, true)
	if err != nil {
		return aggregate.RankingResult{}, err
	}
	a.metrics.RecordSkipped("ticker", len(skipped))
	if len(skipped) > 0 {
		a.logger.Info("skipped tickers without data", zap.Strings("tickers", skipped))
	}

	ranking, err := aggregate.NewRanking(results, p.Start, p.End, amount, skipped, top)
	if err != nil {
		return aggregate.RankingResult{}, err
	}
	a.metrics.RecordSimulation("ranking")
	return ranking, nil
}

// Compare evaluates scenarios over the same period, preserving their order.
func (a *App) Compare(ctx context.Context, specs []ScenarioSpec, p Period) (aggregate.ComparisonResult, error) {
	if err := a.requireOpen(); err != nil {
		return aggregate.ComparisonResult{}, err
	}

	scenarios := make([]aggregate.Scenario, len(specs))
	for i, spec := range specs {
		results, _, err := a.simulateAll(ctx, spec.Holdings, p, false)
		if err != nil {
			return aggregate.ComparisonResult{}, err
		}
		scenarios[i] = aggregate.Scenario{Name: spec.Name, Holdings: results}
	}

	a.metrics.RecordSimulation("comparison")
	return aggregate.CompareScenarios(scenarios, p.Start, p.End), nil
}

// DCA simulates buying amount of ticker every month of the period. Holdings
// are valued at the latest price, resolved once, whatever the end date.
func (a *App) DCA(ctx context.Context, ticker string, p Period, amount float64) (simulator.DCAResult, error) {
	if err := a.requireOpen(); err != nil {
		return simulator.DCAResult{}, err
	}

	final, err := a.resolver.LatestPrice(ctx, ticker)
	if err != nil {
		return simulator.DCAResult{}, err
	}

	result, err := simulator.SimulateDCA(ctx, final.Symbol, final.Name, p.Start, p.End, amount, a.resolver.Lookup(), final.Value)
	if err != nil {
		return simulator.DCAResult{}, err
	}

	a.metrics.RecordSimulation("dca")
	a.metrics.RecordSkipped("period", result.SkippedPeriods())
	return result, nil
}

// investment resolves both prices for ticker and simulates the purchase.
func (a *App) investment(ctx context.Context, ticker string, p Period, amount float64) (simulator.InvestmentResult, error) {
	buy, err := a.resolver.PriceOnOrBefore(ctx, ticker, p.Start)
	if err != nil {
		return simulator.InvestmentResult{}, err
	}
	sell, err := a.sellPrice(ctx, ticker, p)
	if err != nil {
		return simulator.InvestmentResult{}, err
	}
	return simulator.Simulate(buy.Symbol, buy.Name, p.Start, buy.Value, p.End, sell.Value, amount)
}

func (a *App) sellPrice(ctx context.Context, ticker string, p Period) (quote.Price, error) {
	if p.Latest {
		return a.resolver.LatestPrice(ctx, ticker)
	}
	return a.resolver.PriceOnOrBefore(ctx, ticker, p.End)
}

// simulateAll prices holdings concurrently, bounded by the provider
// concurrency. Results keep the order of holdings. With skip set, holdings
// without data are dropped and their tickers returned; otherwise the first
// failure cancels the rest.
func (a *App) simulateAll(ctx context.Context, holdings []Holding, p Period, skip bool) ([]simulator.InvestmentResult, []string, error) {
	slots := make([]*simulator.InvestmentResult, len(holdings))
	missing := make([]bool, len(holdings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, a.cfg.Provider.Concurrency))
	for i, h := range holdings {
		g.Go(func() error {
			r, err := a.investment(gctx, h.Ticker, p, h.Amount)
			if err != nil {
				if skip && errors.Is(err, core.ErrDataUnavailable) {
					a.logger.Debug("skipping ticker", zap.String("ticker", h.Ticker), zap.Error(err))
					missing[i] = true
					return nil
				}
				return err
			}
			slots[i] = &r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	results := make([]simulator.InvestmentResult, 0, len(holdings))
	var skipped []string
	for i, r := range slots {
		switch {
		case r != nil:
			results = append(results, *r)
		case missing[i]:
			skipped = append(skipped, strings.ToUpper(holdings[i].Ticker))
		}
	}
	return results, skipped, nil
}
