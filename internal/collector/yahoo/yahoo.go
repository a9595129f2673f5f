package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/newthinker/stocksim/internal/collector"
	"github.com/newthinker/stocksim/internal/core"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	userAgent      = "Mozilla/5.0 (compatible; stocksim/1.0)"
)

// validSymbol matches stock symbols like AAPL, BRK-B, ^GSPC, 600519.SH, 0700.HK
var validSymbol = regexp.MustCompile(`^\^?[A-Za-z0-9]{1,10}([.-][A-Za-z0-9]{1,4})?$`)

// validateSymbol checks if a symbol has valid format
func validateSymbol(symbol string) error {
	if symbol == "" {
		return core.Errorf(core.ErrInvalidInput, "symbol cannot be empty")
	}
	if len(symbol) > 20 {
		return core.Errorf(core.ErrInvalidInput, "symbol too long: %s", symbol)
	}
	if !validSymbol.MatchString(symbol) {
		return core.Errorf(core.ErrInvalidInput, "invalid symbol format: %s", symbol)
	}
	return nil
}

// Yahoo implements the Yahoo Finance chart collector
type Yahoo struct {
	client     *http.Client
	baseURL    string
	maxRetries int
	logger     *zap.Logger
}

// New creates a new Yahoo collector
func New(logger *zap.Logger) *Yahoo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Yahoo{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:    defaultBaseURL,
		maxRetries: 2,
		logger:     logger,
	}
}

func (y *Yahoo) Name() string {
	return "yahoo"
}

func (y *Yahoo) Init(cfg collector.Config) error {
	if cfg.BaseURL != "" {
		if _, err := url.Parse(cfg.BaseURL); err != nil {
			return fmt.Errorf("parsing base url: %w", err)
		}
		y.baseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	if cfg.Timeout > 0 {
		y.client.Timeout = cfg.Timeout
	}
	if cfg.MaxRetries >= 0 {
		y.maxRetries = cfg.MaxRetries
	}
	if cfg.Transport != nil {
		y.client.Transport = cfg.Transport
	}
	return nil
}

// toYahooSymbol converts internal symbol format to Yahoo format
func (y *Yahoo) toYahooSymbol(symbol string) string {
	symbol = strings.ToUpper(symbol)
	// Shanghai stocks: 600519.SH -> 600519.SS
	if strings.HasSuffix(symbol, ".SH") {
		return strings.TrimSuffix(symbol, ".SH") + ".SS"
	}
	// Share classes: BRK.B -> BRK-B
	if i := strings.LastIndex(symbol, "."); i > 0 && len(symbol)-i == 2 {
		return symbol[:i] + "-" + symbol[i+1:]
	}
	return symbol
}

// FetchQuote fetches the latest quote
func (y *Yahoo) FetchQuote(ctx context.Context, symbol string) (*core.Quote, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}
	query := url.Values{"interval": {"1d"}, "range": {"5d"}}

	r, err := y.fetchChart(ctx, symbol, query)
	if err != nil {
		return nil, err
	}
	meta := r.Meta

	price := meta.RegularMarketPrice
	if price <= 0 {
		// Fall back to the last close when the market price is missing.
		if closes := r.closes(); len(closes) > 0 {
			price = closes[len(closes)-1]
		}
	}
	if price <= 0 {
		return nil, core.Errorf(core.ErrDataUnavailable, "no current price for %s", symbol)
	}

	return &core.Quote{
		Symbol:   symbol,
		Name:     meta.displayName(),
		Market:   y.detectMarket(symbol),
		Currency: meta.Currency,
		Price:    price,
		Time:     time.Unix(int64(meta.RegularMarketTime), 0),
		Source:   y.Name(),
	}, nil
}

// FetchHistory fetches historical OHLCV data
func (y *Yahoo) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) (*core.History, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}
	query := url.Values{
		"interval": {y.toYahooInterval(interval)},
		"period1":  {fmt.Sprint(start.Unix())},
		"period2":  {fmt.Sprint(end.Unix())},
		"events":   {"history"},
	}

	r, err := y.fetchChart(ctx, symbol, query)
	if err != nil {
		return nil, err
	}

	history := &core.History{
		Symbol:   symbol,
		Name:     r.Meta.displayName(),
		Currency: r.Meta.Currency,
	}
	if len(r.Indicators.Quote) == 0 {
		return history, nil
	}
	quotes := r.Indicators.Quote[0]

	history.Bars = make([]core.OHLCV, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		closePrice := at(quotes.Close, i)
		if closePrice == nil {
			continue // Skip missing data
		}
		bar := core.OHLCV{
			Symbol:   symbol,
			Interval: interval,
			Close:    *closePrice,
			Time:     time.Unix(int64(ts), 0).UTC(),
		}
		if v := at(quotes.Open, i); v != nil {
			bar.Open = *v
		}
		if v := at(quotes.High, i); v != nil {
			bar.High = *v
		}
		if v := at(quotes.Low, i); v != nil {
			bar.Low = *v
		}
		if v := at(quotes.Volume, i); v != nil {
			bar.Volume = int64(*v)
		}
		history.Bars = append(history.Bars, bar)
	}

	return history, nil
}

// fetchChart calls the chart endpoint, retrying transport failures, 429 and
// 5xx responses with exponential backoff.
func (y *Yahoo) fetchChart(ctx context.Context, symbol string, query url.Values) (*chartResult, error) {
	endpoint := fmt.Sprintf("%s/%s?%s", y.baseURL, url.PathEscape(y.toYahooSymbol(symbol)), query.Encode())

	operation := func() (*chartResponse, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := y.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, fmt.Errorf("fetching chart: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		case resp.StatusCode == http.StatusNotFound:
			return nil, backoff.Permanent(core.Errorf(core.ErrDataUnavailable, "no data found for %s, check the ticker", symbol))
		case resp.StatusCode != http.StatusOK:
			return nil, backoff.Permanent(fmt.Errorf("unexpected status: %d", resp.StatusCode))
		}

		var result chartResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("decoding response: %w", err))
		}
		return &result, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 250 * time.Millisecond
	policy.MaxInterval = 2 * time.Second

	notify := func(err error, wait time.Duration) {
		y.logger.Debug("retrying yahoo request",
			zap.String("symbol", symbol),
			zap.Error(err),
			zap.Duration("backoff", wait))
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(y.maxRetries+1)),
		backoff.WithNotify(notify))
	if err != nil {
		var coreErr *core.Error
		if errors.As(err, &coreErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, core.WrapError(core.ErrCollectorFailed, err)
	}

	if result.Chart.Error != nil {
		return nil, core.Errorf(core.ErrDataUnavailable, "yahoo error: %s", result.Chart.Error.Description)
	}
	if len(result.Chart.Result) == 0 {
		return nil, core.Errorf(core.ErrDataUnavailable, "no data for symbol: %s", symbol)
	}

	return &result.Chart.Result[0], nil
}

func (y *Yahoo) toYahooInterval(interval string) string {
	switch interval {
	case "1wk", "1mo":
		return interval
	default:
		return "1d"
	}
}

func (y *Yahoo) detectMarket(symbol string) core.Market {
	if strings.HasSuffix(symbol, ".HK") {
		return core.MarketHK
	}
	if strings.HasSuffix(symbol, ".SH") || strings.HasSuffix(symbol, ".SZ") {
		return core.MarketCNA
	}
	return core.MarketUS
}

func at[T any](values []*T, i int) *T {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

// Yahoo API response types
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       chartMeta  `json:"meta"`
	Timestamp  []int      `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

func (r chartResult) closes() []float64 {
	var out []float64
	if len(r.Indicators.Quote) == 0 {
		return out
	}
	for _, c := range r.Indicators.Quote[0].Close {
		if c != nil && *c > 0 {
			out = append(out, *c)
		}
	}
	return out
}

type chartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	LongName           string  `json:"longName"`
	ShortName          string  `json:"shortName"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	RegularMarketTime  int     `json:"regularMarketTime"`
}

func (m chartMeta) displayName() string {
	if m.ShortName != "" {
		return m.ShortName
	}
	return m.LongName
}

type indicators struct {
	Quote []quoteIndicator `json:"quote"`
}

type quoteIndicator struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}
