package core

import "time"

// Market represents a trading market
type Market string

const (
	MarketUS  Market = "US"
	MarketHK  Market = "HK"
	MarketCNA Market = "CN_A"
)

// Quote represents the latest known price for a symbol
type Quote struct {
	Symbol   string
	Name     string
	Market   Market
	Currency string
	Price    float64
	Time     time.Time
	Source   string
}

// IsValid checks if the quote has required fields
func (q Quote) IsValid() bool {
	return q.Symbol != "" && q.Price > 0
}

// OHLCV represents a candlestick/bar
type OHLCV struct {
	Symbol   string
	Interval string // "1d", "1wk", "1mo"
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   int64
	Time     time.Time
}

// History is a run of bars for one symbol, oldest first.
type History struct {
	Symbol   string
	Name     string
	Currency string
	Bars     []OHLCV
}

// LastOnOrBefore returns the most recent bar whose trading day is not after
// the calendar day of t.
func (h History) LastOnOrBefore(t time.Time) (OHLCV, bool) {
	cutoff := DateOf(t)
	for i := len(h.Bars) - 1; i >= 0; i-- {
		bar := h.Bars[i]
		if bar.Close <= 0 {
			continue
		}
		if !DateOf(bar.Time).After(cutoff) {
			return bar, true
		}
	}
	return OHLCV{}, false
}

// DisplayName returns the security name, falling back to the symbol.
func (h History) DisplayName() string {
	if h.Name != "" {
		return h.Name
	}
	return h.Symbol
}

// DateOf truncates t to midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateLayout is the YYYY-MM-DD layout used on the command line and in storage.
const DateLayout = "2006-01-02"
