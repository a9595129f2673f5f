package collector

import (
	"context"
	"net/http"
	"time"

	"github.com/newthinker/stocksim/internal/core"
)

// Config holds collector configuration
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	// Transport overrides the HTTP transport when non-nil.
	Transport http.RoundTripper
}

// Collector defines the interface for market data sources
type Collector interface {
	// Metadata
	Name() string

	// Lifecycle
	Init(cfg Config) error

	// Data fetching
	FetchQuote(ctx context.Context, symbol string) (*core.Quote, error)
	FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) (*core.History, error)
}
