package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/newthinker/stocksim/internal/collector"
	"github.com/newthinker/stocksim/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const historyBody = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "AAPL", "currency": "USD", "shortName": "Apple Inc.", "longName": "Apple Inc. Common Stock",
               "regularMarketPrice": 189.5, "regularMarketTime": 1700000000},
      "timestamp": [1577975400, 1578061800, 1578321000],
      "indicators": {"quote": [{
        "open":   [74.06, 74.29, null],
        "high":   [75.15, 75.14, null],
        "low":    [73.80, 74.13, null],
        "close":  [75.09, 74.36, null],
        "volume": [135480400, 146322800, null]
      }]}
    }],
    "error": null
  }
}`

func newTestYahoo(t *testing.T, handler http.HandlerFunc) *Yahoo {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	y := New(nil)
	require.NoError(t, y.Init(collector.Config{BaseURL: srv.URL, Timeout: time.Second, MaxRetries: 2}))
	return y
}

func TestYahoo_ImplementsCollector(t *testing.T) {
	var _ collector.Collector = (*Yahoo)(nil)
}

func TestYahoo_Name(t *testing.T) {
	y := New(nil)
	if y.Name() != "yahoo" {
		t.Errorf("expected 'yahoo', got '%s'", y.Name())
	}
}

func TestYahoo_ToYahooSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"AAPL", "AAPL"},
		{"aapl", "AAPL"},
		{"0700.HK", "0700.HK"},
		{"600519.SH", "600519.SS"}, // Shanghai -> SS for Yahoo
		{"000001.SZ", "000001.SZ"},
		{"BRK.B", "BRK-B"},
	}

	y := New(nil)
	for _, tc := range tests {
		got := y.toYahooSymbol(tc.input)
		if got != tc.expected {
			t.Errorf("toYahooSymbol(%s) = %s, want %s", tc.input, got, tc.expected)
		}
	}
}

func TestYahoo_DetectMarket(t *testing.T) {
	tests := []struct {
		symbol   string
		expected core.Market
	}{
		{"AAPL", core.MarketUS},
		{"0700.HK", core.MarketHK},
		{"600519.SH", core.MarketCNA},
		{"000001.SZ", core.MarketCNA},
	}

	y := New(nil)
	for _, tc := range tests {
		got := y.detectMarket(tc.symbol)
		if got != tc.expected {
			t.Errorf("detectMarket(%s) = %s, want %s", tc.symbol, got, tc.expected)
		}
	}
}

func TestValidateSymbol(t *testing.T) {
	for _, s := range []string{"AAPL", "BRK-B", "^GSPC", "0700.HK"} {
		assert.NoError(t, validateSymbol(s), s)
	}
	for _, s := range []string{"", "AA PL", "DROP;TABLE", strings.Repeat("A", 21)} {
		assert.ErrorIs(t, validateSymbol(s), core.ErrInvalidInput, s)
	}
}

func TestYahoo_FetchHistory(t *testing.T) {
	var gotPath, gotInterval string
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotInterval = r.URL.Query().Get("interval")
		w.Write([]byte(historyBody))
	})

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	h, err := y.FetchHistory(context.Background(), "AAPL", start, start.AddDate(0, 0, 8), "1d")
	require.NoError(t, err)

	assert.Equal(t, "/AAPL", gotPath)
	assert.Equal(t, "1d", gotInterval)
	assert.Equal(t, "Apple Inc.", h.Name)
	assert.Equal(t, "USD", h.Currency)
	require.Len(t, h.Bars, 2, "null closes are skipped")
	assert.Equal(t, 75.09, h.Bars[0].Close)
	assert.Equal(t, int64(146322800), h.Bars[1].Volume)
	assert.Equal(t, time.Date(2020, 1, 3, 14, 30, 0, 0, time.UTC), h.Bars[1].Time)
}

func TestYahoo_FetchQuote(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(historyBody))
	})

	q, err := y.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, 189.5, q.Price)
	assert.Equal(t, "Apple Inc.", q.Name)
	assert.Equal(t, "yahoo", q.Source)
	assert.True(t, q.IsValid())
}

func TestYahoo_NotFound(t *testing.T) {
	var calls atomic.Int32
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	})

	_, err := y.FetchQuote(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, core.ErrDataUnavailable)
	assert.Equal(t, int32(1), calls.Load(), "404 must not be retried")
}

func TestYahoo_ChartError(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[],"error":{"code":"Bad","description":"Invalid input"}}}`))
	})

	_, err := y.FetchHistory(context.Background(), "AAPL", time.Now().AddDate(0, 0, -7), time.Now(), "1d")
	assert.ErrorIs(t, err, core.ErrDataUnavailable)
}

func TestYahoo_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(historyBody))
	})

	q, err := y.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 189.5, q.Price)
	assert.Equal(t, int32(3), calls.Load())
}

func TestYahoo_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := y.FetchQuote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrCollectorFailed), "got %v", err)
	assert.Equal(t, int32(3), calls.Load())
}
