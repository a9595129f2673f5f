package quote

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/newthinker/stocksim/internal/collector"
	"github.com/newthinker/stocksim/internal/core"
	"github.com/newthinker/stocksim/internal/metrics"
	"github.com/newthinker/stocksim/internal/storage/quotes"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fakeCollector serves fixed bars and counts history requests.
type fakeCollector struct {
	mu           sync.Mutex
	bars         map[string][]core.OHLCV
	names        map[string]string
	quote        *core.Quote
	err          error
	historyCalls int
	lastStart    time.Time
	lastEnd      time.Time
}

func (f *fakeCollector) Name() string                    { return "fake" }
func (f *fakeCollector) Init(cfg collector.Config) error { return nil }

func (f *fakeCollector) FetchQuote(ctx context.Context, symbol string) (*core.Quote, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.quote == nil {
		return nil, core.Errorf(core.ErrDataUnavailable, "no quote for %s", symbol)
	}
	return f.quote, nil
}

func (f *fakeCollector) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) (*core.History, error) {
	f.mu.Lock()
	f.historyCalls++
	f.lastStart, f.lastEnd = start, end
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}

	h := &core.History{Symbol: symbol, Name: f.names[symbol]}
	for _, bar := range f.bars[symbol] {
		if !bar.Time.Before(start) && bar.Time.Before(end) {
			h.Bars = append(h.Bars, bar)
		}
	}
	return h, nil
}

func (f *fakeCollector) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.historyCalls
}

func bar(t time.Time, close float64) core.OHLCV {
	return core.OHLCV{Close: close, Time: t.Add(14*time.Hour + 30*time.Minute)}
}

func newFake() *fakeCollector {
	return &fakeCollector{
		bars: map[string][]core.OHLCV{
			"AAPL": {
				bar(day(2024, 1, 3), 184.25),
				bar(day(2024, 1, 4), 181.91),
				bar(day(2024, 1, 5), 181.18), // Friday
				bar(day(2024, 1, 8), 185.56),
			},
		},
		names: map[string]string{"AAPL": "Apple Inc."},
	}
}

func fixedClock() time.Time { return day(2024, 6, 1) }

func TestResolver_PriceOnOrBefore(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		want     float64
		wantDate time.Time
	}{
		{"trading day", day(2024, 1, 4), 181.91, day(2024, 1, 4)},
		{"saturday uses friday close", day(2024, 1, 6), 181.18, day(2024, 1, 5)},
		{"sunday uses friday close", day(2024, 1, 7), 181.18, day(2024, 1, 5)},
		{"monday", day(2024, 1, 8), 185.56, day(2024, 1, 8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(newFake(), nil, WithClock(fixedClock))

			p, err := r.PriceOnOrBefore(context.Background(), "aapl", tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Value)
			assert.Equal(t, tt.wantDate, p.Date)
			assert.Equal(t, "AAPL", p.Symbol)
			assert.Equal(t, "Apple Inc.", p.Name)
		})
	}
}

func TestResolver_PriceOnOrBefore_Window(t *testing.T) {
	fake := newFake()
	r := NewResolver(fake, nil, WithClock(fixedClock))

	_, err := r.PriceOnOrBefore(context.Background(), "AAPL", day(2024, 1, 8))
	require.NoError(t, err)
	assert.Equal(t, day(2024, 1, 1), fake.lastStart)
	assert.Equal(t, day(2024, 1, 9), fake.lastEnd)
}

func TestResolver_PriceOnOrBefore_NoData(t *testing.T) {
	r := NewResolver(newFake(), nil, WithClock(fixedClock))

	_, err := r.PriceOnOrBefore(context.Background(), "AAPL", day(2023, 6, 1))
	assert.True(t, errors.Is(err, core.ErrDataUnavailable), "got %v", err)

	_, err = r.PriceOnOrBefore(context.Background(), "ZZZZ", day(2024, 1, 4))
	assert.True(t, errors.Is(err, core.ErrDataUnavailable), "got %v", err)
}

func TestResolver_CollectorFailureIsUnavailable(t *testing.T) {
	fake := newFake()
	fake.err = core.Errorf(core.ErrCollectorFailed, "HTTP 503")
	r := NewResolver(fake, nil, WithClock(fixedClock))

	_, err := r.PriceOnOrBefore(context.Background(), "AAPL", day(2024, 1, 4))
	assert.True(t, errors.Is(err, core.ErrDataUnavailable), "got %v", err)
	assert.True(t, errors.Is(err, core.ErrCollectorFailed), "cause should be kept, got %v", err)
}

func TestResolver_CancellationPassesThrough(t *testing.T) {
	r := NewResolver(newFake(), nil, WithClock(fixedClock))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.PriceOnOrBefore(ctx, "AAPL", day(2024, 1, 4))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, core.ErrDataUnavailable))
}

func TestResolver_CachesHistoricalCloses(t *testing.T) {
	fake := newFake()
	store := quotes.NewMemoryStore(100)
	reg := metrics.NewRegistry()
	r := NewResolver(fake, nil, WithStore(store), WithMetrics(reg), WithClock(fixedClock))
	ctx := context.Background()

	first, err := r.PriceOnOrBefore(ctx, "AAPL", day(2024, 1, 6))
	require.NoError(t, err)
	second, err := r.PriceOnOrBefore(ctx, "AAPL", day(2024, 1, 6))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fake.calls())
	assert.Equal(t, 1, store.Len())

	n, err := testutil.GatherAndCount(reg, "stocksim_quote_cache_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "expected hit and miss series")
}

func TestResolver_DoesNotCacheToday(t *testing.T) {
	fake := newFake()
	store := quotes.NewMemoryStore(100)
	today := func() time.Time { return day(2024, 1, 8).Add(20 * time.Hour) }
	r := NewResolver(fake, nil, WithStore(store), WithClock(today))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := r.PriceOnOrBefore(ctx, "AAPL", day(2024, 1, 8))
		require.NoError(t, err)
	}

	assert.Equal(t, 2, fake.calls())
	assert.Equal(t, 0, store.Len())
}

func TestResolver_DoesNotCacheOpenSession(t *testing.T) {
	fake := newFake()
	fake.bars["AAPL"] = []core.OHLCV{bar(day(2024, 5, 31), 100)}
	store := quotes.NewMemoryStore(100)
	// Tuesday 01:00 in Tokyo is Monday noon in New York.
	tokyo := time.FixedZone("JST", 9*60*60)
	clock := func() time.Time { return time.Date(2024, 6, 4, 1, 0, 0, 0, tokyo) }
	r := NewResolver(fake, nil, WithStore(store), WithClock(clock))
	ctx := context.Background()

	first, err := r.PriceOnOrBefore(ctx, "AAPL", day(2024, 6, 3))
	require.NoError(t, err)
	assert.Equal(t, 100.0, first.Value)
	assert.Equal(t, 0, store.Len())

	fake.bars["AAPL"] = append(fake.bars["AAPL"], bar(day(2024, 6, 3), 110))
	second, err := r.PriceOnOrBefore(ctx, "AAPL", day(2024, 6, 3))
	require.NoError(t, err)
	assert.Equal(t, 110.0, second.Value)
	assert.Equal(t, day(2024, 6, 3), second.Date)

	_, err = r.PriceOnOrBefore(ctx, "AAPL", day(2024, 6, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len(), "days two UTC dates back are settled")
}

func TestResolver_LatestPrice(t *testing.T) {
	fake := newFake()
	fake.quote = &core.Quote{Symbol: "AAPL", Name: "Apple Inc.", Price: 227.5, Time: day(2024, 6, 1)}
	r := NewResolver(fake, nil)

	p, err := r.LatestPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 227.5, p.Value)
	assert.Equal(t, "Apple Inc.", p.Name)

	fake.quote = &core.Quote{Symbol: "AAPL"}
	_, err = r.LatestPrice(context.Background(), "AAPL")
	assert.True(t, errors.Is(err, core.ErrDataUnavailable), "got %v", err)
}

func TestResolver_History(t *testing.T) {
	fake := newFake()
	fake.bars["AAPL"] = append(fake.bars["AAPL"], bar(day(2024, 1, 9), 0))
	r := NewResolver(fake, nil)

	h, err := r.History(context.Background(), "AAPL", day(2024, 1, 4), day(2024, 1, 9))
	require.NoError(t, err)
	require.Len(t, h.Bars, 3, "zero closes are dropped")
	assert.Equal(t, 181.91, h.Bars[0].Close)

	_, err = r.History(context.Background(), "AAPL", day(2025, 1, 1), day(2025, 2, 1))
	assert.True(t, errors.Is(err, core.ErrDataUnavailable), "got %v", err)
}

func TestResolver_Lookup(t *testing.T) {
	r := NewResolver(newFake(), nil, WithClock(fixedClock))
	lookup := r.Lookup()

	price, err := lookup(context.Background(), "AAPL", day(2024, 1, 7))
	require.NoError(t, err)
	assert.Equal(t, 181.18, price)

	_, err = lookup(context.Background(), "AAPL", day(2020, 1, 1))
	assert.True(t, errors.Is(err, core.ErrDataUnavailable))
}
