package simulator

import (
	"encoding/json"
	"time"
)

// Annualized is a compound annual growth rate in percent. The zero value
// means the holding period was too short to annualize.
type Annualized struct {
	rate  float64
	valid bool
}

// NotAnnualized is the absent rate.
var NotAnnualized = Annualized{}

// AnnualizedRate wraps a present rate.
func AnnualizedRate(rate float64) Annualized {
	return Annualized{rate: rate, valid: true}
}

// Get returns the rate and whether it is present.
func (a Annualized) Get() (float64, bool) {
	return a.rate, a.valid
}

// Valid reports whether a rate is present.
func (a Annualized) Valid() bool {
	return a.valid
}

// MarshalJSON encodes an absent rate as null.
func (a Annualized) MarshalJSON() ([]byte, error) {
	if !a.valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.rate)
}

// InvestmentResult is the outcome of a single lump-sum purchase held between
// two dates. All derived fields are computed by Simulate.
type InvestmentResult struct {
	Ticker        string     `json:"ticker"`
	Name          string     `json:"name"`
	BuyDate       time.Time  `json:"buy_date"`
	BuyPrice      float64    `json:"buy_price"`
	SellDate      time.Time  `json:"sell_date"`
	SellPrice     float64    `json:"sell_price"`
	Amount        float64    `json:"amount"`
	Shares        float64    `json:"shares"`
	FinalValue    float64    `json:"final_value"`
	Profit        float64    `json:"profit"`
	PercentReturn float64    `json:"percent_return"`
	Annualized    Annualized `json:"annualized_return"`
}

// DCAResult is the outcome of buying a fixed amount every month.
type DCAResult struct {
	Ticker          string      `json:"ticker"`
	Name            string      `json:"name"`
	StartDate       time.Time   `json:"start_date"`
	EndDate         time.Time   `json:"end_date"`
	AmountPerPeriod float64     `json:"amount_per_period"`
	NumPurchases    int         `json:"num_purchases"`
	SkippedDates    []time.Time `json:"skipped_dates,omitempty"`
	TotalInvested   float64     `json:"total_invested"`
	TotalShares     float64     `json:"total_shares"`
	FinalValue      float64     `json:"final_value"`
	Profit          float64     `json:"profit"`
	PercentReturn   float64     `json:"percent_return"`
	AvgCostPerShare float64     `json:"avg_cost_per_share"`
	CurrentPrice    float64     `json:"current_price"`
}

// SkippedPeriods is the number of scheduled purchases without a price.
func (r DCAResult) SkippedPeriods() int {
	return len(r.SkippedDates)
}
