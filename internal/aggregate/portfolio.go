// Package aggregate combines simulation results into portfolios, rankings,
// scenario comparisons and benchmark comparisons.
package aggregate

import (
	"slices"
	"time"

	"github.com/newthinker/stocksim/internal/simulator"
)

// Portfolio totals holdings. The percent and annualized returns are computed
// on the totals, not averaged across holdings.
func Portfolio(holdings []simulator.InvestmentResult, buyDate, sellDate time.Time) PortfolioResult {
	var invested, value float64
	for _, h := range holdings {
		invested += h.Amount
		value += h.FinalValue
	}
	profit := value - invested

	var pct float64
	annualized := simulator.NotAnnualized
	if invested > 0 {
		pct = profit / invested * 100
		annualized = simulator.Annualize(value/invested, buyDate, sellDate)
	}

	return PortfolioResult{
		Holdings:      slices.Clone(holdings),
		BuyDate:       buyDate,
		SellDate:      sellDate,
		TotalInvested: invested,
		TotalValue:    value,
		TotalProfit:   profit,
		PercentReturn: pct,
		Annualized:    annualized,
	}
}

// CompareScenarios totals each scenario over the same dates.
func CompareScenarios(scenarios []Scenario, buyDate, sellDate time.Time) ComparisonResult {
	results := make([]ScenarioResult, 0, len(scenarios))
	for _, s := range scenarios {
		results = append(results, ScenarioResult{
			Name:            s.Name,
			PortfolioResult: Portfolio(s.Holdings, buyDate, sellDate),
		})
	}
	return ComparisonResult{
		Scenarios: results,
		BuyDate:   buyDate,
		SellDate:  sellDate,
	}
}
