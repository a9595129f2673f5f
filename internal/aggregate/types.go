package aggregate

import (
	"time"

	"github.com/newthinker/stocksim/internal/simulator"
)

// PortfolioResult combines holdings bought and sold on the same dates.
type PortfolioResult struct {
	Holdings      []simulator.InvestmentResult `json:"holdings"`
	BuyDate       time.Time                    `json:"buy_date"`
	SellDate      time.Time                    `json:"sell_date"`
	TotalInvested float64                      `json:"total_invested"`
	TotalValue    float64                      `json:"total_value"`
	TotalProfit   float64                      `json:"total_profit"`
	PercentReturn float64                      `json:"percent_return"`
	Annualized    simulator.Annualized         `json:"annualized_return"`
}

// RankingResult lists tickers scanned with the same amount, best first.
type RankingResult struct {
	Rankings []simulator.InvestmentResult `json:"rankings"`
	BuyDate  time.Time                    `json:"buy_date"`
	SellDate time.Time                    `json:"sell_date"`
	Amount   float64                      `json:"amount"`
	Skipped  []string                     `json:"skipped,omitempty"`
}

// Scenario is a user-labelled group of holdings.
type Scenario struct {
	Name     string
	Holdings []simulator.InvestmentResult
}

// ScenarioResult is a scenario with its aggregate totals.
type ScenarioResult struct {
	Name string `json:"name"`
	PortfolioResult
}

// ComparisonResult holds scenarios evaluated over the same dates, in the
// order they were given.
type ComparisonResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	BuyDate   time.Time        `json:"buy_date"`
	SellDate  time.Time        `json:"sell_date"`
}

// Best returns the index of the scenario with the highest percent return,
// the earliest one on ties, or -1 when there are none.
func (c ComparisonResult) Best() int {
	best := -1
	for i, s := range c.Scenarios {
		if best < 0 || s.PercentReturn > c.Scenarios[best].PercentReturn {
			best = i
		}
	}
	return best
}

// Verdict classifies an investment against its benchmark.
type Verdict string

const (
	VerdictBeat           Verdict = "beat"
	VerdictUnderperformed Verdict = "underperformed"
	VerdictTied           Verdict = "tied"
)

// BenchmarkResult pairs an investment with a reference index over the same
// dates.
type BenchmarkResult struct {
	Investment simulator.InvestmentResult `json:"investment"`
	Benchmark  simulator.InvestmentResult `json:"benchmark"`
	Delta      float64                    `json:"delta"`
	Verdict    Verdict                    `json:"verdict"`
}
