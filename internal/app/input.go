package app

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/stocksim/internal/core"
)

// Holding is a ticker with the amount invested in it.
type Holding struct {
	Ticker string
	Amount float64
}

// ScenarioSpec is a parsed, named group of holdings.
type ScenarioSpec struct {
	Name     string
	Holdings []Holding
}

// Period is the holding window. Latest means End is today and the sell side
// uses the latest available price.
type Period struct {
	Start  time.Time
	End    time.Time
	Latest bool
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(core.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, core.Errorf(core.ErrInvalidInput, "invalid date %q, use YYYY-MM-DD", s)
	}
	return t, nil
}

// ParsePeriod parses a start date and an optional end date. Neither may be
// in the future and the end may not precede the start. An empty end means
// today.
func ParsePeriod(start, end string, now time.Time) (Period, error) {
	today := core.DateOf(now)

	from, err := ParseDate(start)
	if err != nil {
		return Period{}, err
	}
	if from.After(today) {
		return Period{}, core.Errorf(core.ErrInvalidInput, "date %s is in the future", start)
	}

	if strings.TrimSpace(end) == "" {
		return Period{Start: from, End: today, Latest: true}, nil
	}

	to, err := ParseDate(end)
	if err != nil {
		return Period{}, err
	}
	if to.Before(from) {
		return Period{}, core.Errorf(core.ErrInvalidInput, "end date %s is before start date %s", end, start)
	}
	if to.After(today) {
		return Period{}, core.Errorf(core.ErrInvalidInput, "end date %s is in the future", end)
	}
	return Period{Start: from, End: to}, nil
}

// ValidateAmount rejects non-positive and non-finite amounts.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return core.Errorf(core.ErrInvalidInput, "amount must be positive, got %v", amount)
	}
	return nil
}

// ParseTicker normalizes a ticker argument.
func ParseTicker(s string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	if t == "" {
		return "", core.Errorf(core.ErrInvalidInput, "ticker cannot be empty")
	}
	return t, nil
}

// ParseHolding parses a TICKER:AMOUNT token.
func ParseHolding(token string) (Holding, error) {
	parts := strings.Split(strings.TrimSpace(token), ":")
	if len(parts) != 2 {
		return Holding{}, core.Errorf(core.ErrInvalidInput, "invalid holding %q, use TICKER:AMOUNT", token)
	}

	ticker, err := ParseTicker(parts[0])
	if err != nil {
		return Holding{}, core.Errorf(core.ErrInvalidInput, "invalid holding %q, use TICKER:AMOUNT", token)
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Holding{}, core.Errorf(core.ErrInvalidInput, "invalid amount in %q", token)
	}
	if err := ValidateAmount(amount); err != nil {
		return Holding{}, core.Errorf(core.ErrInvalidInput, "amount must be positive in %q", token)
	}

	return Holding{Ticker: ticker, Amount: amount}, nil
}

// ParseHoldings parses TICKER:AMOUNT tokens, keeping their order.
func ParseHoldings(tokens []string) ([]Holding, error) {
	if len(tokens) == 0 {
		return nil, core.Errorf(core.ErrInvalidInput, "at least one holding is required")
	}
	holdings := make([]Holding, 0, len(tokens))
	for _, tok := range tokens {
		h, err := ParseHolding(tok)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, nil
}

// ParseScenario parses a comma separated list of TICKER:AMOUNT tokens.
func ParseScenario(s string) ([]Holding, error) {
	return ParseHoldings(strings.Split(s, ","))
}

// ParseScenarios parses at least two scenarios, named "Scenario 1",
// "Scenario 2" and so on.
func ParseScenarios(args []string) ([]ScenarioSpec, error) {
	if len(args) < 2 {
		return nil, core.Errorf(core.ErrInvalidInput, "need at least 2 scenarios to compare, got %d", len(args))
	}
	specs := make([]ScenarioSpec, 0, len(args))
	for i, arg := range args {
		holdings, err := ParseScenario(arg)
		if err != nil {
			return nil, fmt.Errorf("scenario %d: %w", i+1, err)
		}
		specs = append(specs, ScenarioSpec{Name: fmt.Sprintf("Scenario %d", i+1), Holdings: holdings})
	}
	return specs, nil
}
