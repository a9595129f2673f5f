package aggregate

import (
	"cmp"
	"slices"
	"time"

	"github.com/newthinker/stocksim/internal/core"
	"github.com/newthinker/stocksim/internal/simulator"
)

// Rank returns a copy of results sorted by percent return, highest first.
// Equal returns keep their input order.
func Rank(results []simulator.InvestmentResult) []simulator.InvestmentResult {
	ranked := slices.Clone(results)
	slices.SortStableFunc(ranked, func(a, b simulator.InvestmentResult) int {
		return cmp.Compare(b.PercentReturn, a.PercentReturn)
	})
	return ranked
}

// Top returns the first n results, or all of them when n <= 0.
func Top(results []simulator.InvestmentResult, n int) []simulator.InvestmentResult {
	if n <= 0 || n >= len(results) {
		return results
	}
	return results[:n]
}

// NewRanking ranks results and keeps the best top entries.
func NewRanking(results []simulator.InvestmentResult, buyDate, sellDate time.Time, amount float64, skipped []string, top int) (RankingResult, error) {
	if len(results) == 0 {
		return RankingResult{}, core.Errorf(core.ErrEmptyResult, "no valid tickers to rank")
	}
	return RankingResult{
		Rankings: Top(Rank(results), top),
		BuyDate:  buyDate,
		SellDate: sellDate,
		Amount:   amount,
		Skipped:  slices.Clone(skipped),
	}, nil
}
