// Package simulator computes the value of hypothetical historical purchases.
package simulator

import (
	"math"
	"time"

	"github.com/newthinker/stocksim/internal/core"
)

// Simulate buys amount worth of ticker at buyPrice and values the position at
// sellPrice.
func Simulate(ticker, name string, buyDate time.Time, buyPrice float64, sellDate time.Time, sellPrice, amount float64) (InvestmentResult, error) {
	if !positive(amount) {
		return InvestmentResult{}, core.Errorf(core.ErrInvalidInput, "amount must be positive, got %v", amount)
	}
	if !positive(buyPrice) {
		return InvestmentResult{}, core.Errorf(core.ErrInvalidInput, "%s: buy price must be positive, got %v", ticker, buyPrice)
	}
	if !finite(sellPrice) || sellPrice < 0 {
		return InvestmentResult{}, core.Errorf(core.ErrInvalidInput, "%s: sell price must not be negative, got %v", ticker, sellPrice)
	}

	shares := amount / buyPrice
	finalValue := shares * sellPrice
	profit := finalValue - amount

	return InvestmentResult{
		Ticker:        ticker,
		Name:          name,
		BuyDate:       buyDate,
		BuyPrice:      buyPrice,
		SellDate:      sellDate,
		SellPrice:     sellPrice,
		Amount:        amount,
		Shares:        shares,
		FinalValue:    finalValue,
		Profit:        profit,
		PercentReturn: profit / amount * 100,
		Annualized:    Annualize(finalValue/amount, buyDate, sellDate),
	}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positive(v float64) bool {
	return finite(v) && v > 0
}
