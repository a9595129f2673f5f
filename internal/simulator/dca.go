package simulator

import (
	"context"
	"errors"
	"time"

	"github.com/newthinker/stocksim/internal/core"
)

// PriceLookup resolves the closing price of ticker on or before date.
// It fails with core.ErrDataUnavailable when no price exists.
type PriceLookup func(ctx context.Context, ticker string, date time.Time) (float64, error)

// MonthlySchedule lists purchase dates from start to end inclusive, one per
// calendar month. Each date keeps the day of month of start, clamped to the
// last day of shorter months.
func MonthlySchedule(start, end time.Time) []time.Time {
	var dates []time.Time
	for i := 0; ; i++ {
		d := addMonths(start, i)
		if d.After(end) {
			return dates
		}
		dates = append(dates, d)
	}
}

func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	// Day 0 of the following month is the last day of the target month.
	last := time.Date(y, m+time.Month(n)+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if d > last {
		d = last
	}
	hh, mm, ss := t.Clock()
	return time.Date(y, m+time.Month(n), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

// SimulateDCA buys amount of ticker every month between start and end and
// values the accumulated shares at currentPrice. Months without a price are
// skipped; any other lookup failure aborts the simulation.
func SimulateDCA(ctx context.Context, ticker, name string, start, end time.Time, amount float64, lookup PriceLookup, currentPrice float64) (DCAResult, error) {
	if !positive(amount) {
		return DCAResult{}, core.Errorf(core.ErrInvalidInput, "amount per period must be positive, got %v", amount)
	}
	if !positive(currentPrice) {
		return DCAResult{}, core.Errorf(core.ErrInvalidInput, "%s: current price must be positive, got %v", ticker, currentPrice)
	}
	if end.Before(start) {
		return DCAResult{}, core.Errorf(core.ErrInvalidInput, "end date %s is before start date %s",
			end.Format(core.DateLayout), start.Format(core.DateLayout))
	}

	var (
		shares    float64
		invested  float64
		purchases int
		skipped   []time.Time
	)

	for _, date := range MonthlySchedule(start, end) {
		select {
		case <-ctx.Done():
			return DCAResult{}, ctx.Err()
		default:
		}

		price, err := lookup(ctx, ticker, date)
		if err != nil {
			if errors.Is(err, core.ErrDataUnavailable) {
				skipped = append(skipped, date)
				continue
			}
			return DCAResult{}, err
		}
		if !positive(price) {
			skipped = append(skipped, date)
			continue
		}

		shares += amount / price
		invested += amount
		purchases++
	}

	if purchases == 0 {
		return DCAResult{}, core.Errorf(core.ErrEmptyResult, "%s: no valid purchases between %s and %s",
			ticker, start.Format(core.DateLayout), end.Format(core.DateLayout))
	}

	finalValue := shares * currentPrice
	profit := finalValue - invested

	var avgCost float64
	if shares > 0 {
		avgCost = invested / shares
	}

	return DCAResult{
		Ticker:          ticker,
		Name:            name,
		StartDate:       start,
		EndDate:         end,
		AmountPerPeriod: amount,
		NumPurchases:    purchases,
		SkippedDates:    skipped,
		TotalInvested:   invested,
		TotalShares:     shares,
		FinalValue:      finalValue,
		Profit:          profit,
		PercentReturn:   profit / invested * 100,
		AvgCostPerShare: avgCost,
		CurrentPrice:    currentPrice,
	}, nil
}
