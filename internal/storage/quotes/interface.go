// internal/storage/quotes/interface.go
package quotes

import (
	"context"
	"time"
)

// Close is a resolved closing price: the last trading day on or before AsOf.
type Close struct {
	Symbol      string
	AsOf        time.Time
	TradingDate time.Time
	Price       float64
}

// Store caches resolved closes and security names.
type Store interface {
	// GetClose returns the close cached for symbol as of the given day.
	GetClose(ctx context.Context, symbol string, asOf time.Time) (Close, bool, error)

	// PutClose caches a resolved close.
	PutClose(ctx context.Context, c Close) error

	// GetName returns the cached display name for symbol.
	GetName(ctx context.Context, symbol string) (string, bool, error)

	// PutName caches a display name.
	PutName(ctx context.Context, symbol, name string) error

	// Close releases the underlying resources.
	Close() error
}
