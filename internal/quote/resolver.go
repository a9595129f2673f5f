// Package quote resolves closing prices through a collector, with an
// optional cache of historical closes.
package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/newthinker/stocksim/internal/collector"
	"github.com/newthinker/stocksim/internal/core"
	"github.com/newthinker/stocksim/internal/metrics"
	"github.com/newthinker/stocksim/internal/simulator"
	"github.com/newthinker/stocksim/internal/storage/quotes"
	"go.uber.org/zap"
)

// lookbackDays is how far before the requested day a close is searched for,
// which covers weekends and market holidays.
const lookbackDays = 7

// Price is a resolved closing price.
type Price struct {
	Symbol string
	Name   string
	Date   time.Time // trading day the close belongs to
	Value  float64
}

// Resolver looks up prices. It is safe for concurrent use.
type Resolver struct {
	collector collector.Collector
	store     quotes.Store
	metrics   *metrics.Registry
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithStore caches historical closes in store.
func WithStore(store quotes.Store) Option {
	return func(r *Resolver) { r.store = store }
}

// WithMetrics records lookups in reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(r *Resolver) { r.metrics = reg }
}

// WithClock overrides the clock used to decide what is cacheable.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// NewResolver creates a resolver backed by c.
func NewResolver(c collector.Collector, logger *zap.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{
		collector: c,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PriceOnOrBefore returns the close of the last trading day on or before
// date. Only settled days are served from and written to the cache.
func (r *Resolver) PriceOnOrBefore(ctx context.Context, ticker string, date time.Time) (Price, error) {
	symbol := normalize(ticker)
	asOf := core.DateOf(date)
	cacheable := r.store != nil && r.settled(asOf)

	if cacheable {
		if p, ok := r.cached(ctx, symbol, asOf); ok {
			return p, nil
		}
	}

	history, err := r.collector.FetchHistory(ctx, symbol, asOf.AddDate(0, 0, -lookbackDays), asOf.AddDate(0, 0, 1), "1d")
	if err != nil {
		return Price{}, r.fail(ctx, symbol, err)
	}

	bar, ok := history.LastOnOrBefore(asOf)
	if !ok {
		r.record("unavailable")
		return Price{}, core.Errorf(core.ErrDataUnavailable,
			"no trading data for %s on or before %s", symbol, asOf.Format(core.DateLayout))
	}
	r.record("ok")

	p := Price{
		Symbol: symbol,
		Name:   history.DisplayName(),
		Date:   core.DateOf(bar.Time),
		Value:  bar.Close,
	}

	if cacheable {
		r.remember(ctx, p, asOf)
	}
	return p, nil
}

// settled reports whether every session for day has closed: day must be at
// least two UTC calendar days before now.
func (r *Resolver) settled(day time.Time) bool {
	return day.Before(core.DateOf(r.now().UTC()).AddDate(0, 0, -1))
}

// LatestPrice returns the most recent price for ticker. It is never cached.
func (r *Resolver) LatestPrice(ctx context.Context, ticker string) (Price, error) {
	symbol := normalize(ticker)

	q, err := r.collector.FetchQuote(ctx, symbol)
	if err != nil {
		return Price{}, r.fail(ctx, symbol, err)
	}
	if !q.IsValid() {
		r.record("unavailable")
		return Price{}, core.Errorf(core.ErrDataUnavailable, "no current price for %s", symbol)
	}
	r.record("ok")

	name := q.Name
	if name == "" {
		name = symbol
	}
	if r.store != nil && name != symbol {
		if err := r.store.PutName(ctx, symbol, name); err != nil {
			r.logger.Warn("caching name failed", zap.String("symbol", symbol), zap.Error(err))
		}
	}

	return Price{Symbol: symbol, Name: name, Date: q.Time, Value: q.Price}, nil
}

// History returns daily bars for ticker between start and end inclusive.
func (r *Resolver) History(ctx context.Context, ticker string, start, end time.Time) (*core.History, error) {
	symbol := normalize(ticker)

	history, err := r.collector.FetchHistory(ctx, symbol, core.DateOf(start), core.DateOf(end).AddDate(0, 0, 1), "1d")
	if err != nil {
		return nil, r.fail(ctx, symbol, err)
	}

	bars := history.Bars[:0:0]
	for _, bar := range history.Bars {
		if bar.Close > 0 {
			bars = append(bars, bar)
		}
	}
	if len(bars) == 0 {
		r.record("unavailable")
		return nil, core.Errorf(core.ErrDataUnavailable, "no trading data for %s between %s and %s",
			symbol, start.Format(core.DateLayout), end.Format(core.DateLayout))
	}
	r.record("ok")

	history.Bars = bars
	return history, nil
}

// Lookup adapts the resolver to the simulator's price lookup.
func (r *Resolver) Lookup() simulator.PriceLookup {
	return func(ctx context.Context, ticker string, date time.Time) (float64, error) {
		p, err := r.PriceOnOrBefore(ctx, ticker, date)
		if err != nil {
			return 0, err
		}
		return p.Value, nil
	}
}

func (r *Resolver) cached(ctx context.Context, symbol string, asOf time.Time) (Price, bool) {
	c, ok, err := r.store.GetClose(ctx, symbol, asOf)
	if err != nil {
		r.logger.Warn("reading quote cache failed", zap.String("symbol", symbol), zap.Error(err))
		return Price{}, false
	}
	if r.metrics != nil {
		r.metrics.RecordCache(ok)
	}
	if !ok {
		return Price{}, false
	}

	name, found, err := r.store.GetName(ctx, symbol)
	if err != nil || !found {
		name = symbol
	}

	r.logger.Debug("quote cache hit",
		zap.String("symbol", symbol),
		zap.String("as_of", asOf.Format(core.DateLayout)))
	return Price{Symbol: symbol, Name: name, Date: c.TradingDate, Value: c.Price}, true
}

func (r *Resolver) remember(ctx context.Context, p Price, asOf time.Time) {
	err := r.store.PutClose(ctx, quotes.Close{
		Symbol:      p.Symbol,
		AsOf:        asOf,
		TradingDate: p.Date,
		Price:       p.Value,
	})
	if err == nil && p.Name != p.Symbol {
		err = r.store.PutName(ctx, p.Symbol, p.Name)
	}
	if err != nil {
		r.logger.Warn("writing quote cache failed", zap.String("symbol", p.Symbol), zap.Error(err))
	}
}

// fail classifies a collector error. Cancellation passes through untouched;
// everything else means the price is unavailable.
func (r *Resolver) fail(ctx context.Context, symbol string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", symbol, ctxErr)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		r.record("timeout")
		return core.WrapError(core.ErrDataUnavailable, fmt.Errorf("%s: %w", symbol, core.WrapError(core.ErrCollectorTimeout, err)))
	}

	r.record("error")
	r.logger.Debug("price lookup failed", zap.String("symbol", symbol), zap.Error(err))
	return core.WrapError(core.ErrDataUnavailable, fmt.Errorf("%s: %w", symbol, err))
}

func (r *Resolver) record(status string) {
	if r.metrics != nil {
		r.metrics.RecordQuote(r.collector.Name(), status)
	}
}

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
