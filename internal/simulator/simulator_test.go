package simulator

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/newthinker/stocksim/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSimulate_Profit(t *testing.T) {
	r, err := Simulate("AAPL", "Apple Inc.", date(2020, 1, 1), 100, date(2021, 1, 1), 150, 1000)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", r.Ticker)
	assert.Equal(t, "Apple Inc.", r.Name)
	assert.Equal(t, 10.0, r.Shares)
	assert.Equal(t, 1500.0, r.FinalValue)
	assert.Equal(t, 500.0, r.Profit)
	assert.Equal(t, 50.0, r.PercentReturn)

	rate, ok := r.Annualized.Get()
	require.True(t, ok, "one year holding should be annualized")
	assert.InDelta(t, 50.0, rate, 2.5)
}

func TestSimulate_Loss(t *testing.T) {
	r, err := Simulate("TSLA", "Tesla Inc.", date(2020, 1, 1), 100, date(2021, 1, 1), 80, 1000)
	require.NoError(t, err)

	assert.Equal(t, 10.0, r.Shares)
	assert.Equal(t, 800.0, r.FinalValue)
	assert.Equal(t, -200.0, r.Profit)
	assert.Equal(t, -20.0, r.PercentReturn)
}

func TestSimulate_FractionalShares(t *testing.T) {
	r, err := Simulate("GOOGL", "Alphabet Inc.", date(2020, 1, 1), 150, date(2021, 1, 1), 200, 1000)
	require.NoError(t, err)

	assert.Equal(t, 1000.0/150.0, r.Shares)
	assert.Equal(t, r.Shares*200, r.FinalValue)
	assert.InDelta(t, 1333.33, r.FinalValue, 0.01)
}

func TestSimulate_SameDay(t *testing.T) {
	r, err := Simulate("TEST", "Test Co", date(2020, 1, 1), 100, date(2020, 1, 1), 250, 1000)
	require.NoError(t, err)

	assert.False(t, r.Annualized.Valid(), "same-day holding must not be annualized")
	assert.Equal(t, 150.0, r.PercentReturn)
}

func TestSimulate_Idempotent(t *testing.T) {
	a, err := Simulate("X", "X", date(2019, 3, 4), 33.3, date(2023, 7, 9), 71.7, 1234.56)
	require.NoError(t, err)
	b, err := Simulate("X", "X", date(2019, 3, 4), 33.3, date(2023, 7, 9), 71.7, 1234.56)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	ra, _ := a.Annualized.Get()
	rb, _ := b.Annualized.Get()
	assert.Equal(t, math.Float64bits(ra), math.Float64bits(rb))
}

func TestSimulate_ReturnSignMatchesProfit(t *testing.T) {
	for _, sell := range []float64{50, 99.99, 100, 100.01, 300} {
		r, err := Simulate("S", "S", date(2020, 1, 1), 100, date(2020, 6, 1), sell, 500)
		require.NoError(t, err)

		assert.Equal(t, math.Signbit(r.Profit), math.Signbit(r.PercentReturn), "sell=%v", sell)
		if r.FinalValue == r.Amount {
			assert.Zero(t, r.PercentReturn)
		} else {
			assert.NotZero(t, r.PercentReturn)
		}
	}
}

func TestSimulate_InvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		buyPrice  float64
		sellPrice float64
		amount    float64
	}{
		{"zero amount", 100, 110, 0},
		{"negative amount", 100, 110, -5},
		{"zero buy price", 0, 110, 1000},
		{"negative buy price", -1, 110, 1000},
		{"NaN buy price", math.NaN(), 110, 1000},
		{"infinite amount", 100, 110, math.Inf(1)},
		{"negative sell price", 100, -1, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Simulate("BAD", "Bad", date(2020, 1, 1), tt.buyPrice, date(2021, 1, 1), tt.sellPrice, tt.amount)
			if !errors.Is(err, core.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestSimulate_ZeroSellPrice(t *testing.T) {
	r, err := Simulate("GONE", "Gone", date(2020, 1, 1), 10, date(2022, 1, 1), 0, 1000)
	require.NoError(t, err)

	assert.Equal(t, -1000.0, r.Profit)
	assert.Equal(t, -100.0, r.PercentReturn)
}
