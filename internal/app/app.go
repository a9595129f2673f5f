package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/newthinker/stocksim/internal/collector"
	"github.com/newthinker/stocksim/internal/config"
	"github.com/newthinker/stocksim/internal/core"
	"github.com/newthinker/stocksim/internal/metrics"
	"github.com/newthinker/stocksim/internal/quote"
	"github.com/newthinker/stocksim/internal/storage/archive"
	"github.com/newthinker/stocksim/internal/storage/quotes"
	"go.uber.org/zap"
)

// memoryCacheSize bounds the in-process cache used when the sqlite cache is
// disabled.
const memoryCacheSize = 4096

// App wires the quote resolver, engines and storage for one invocation.
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	collectors *collector.Registry
	metrics    *metrics.Registry
	now        func() time.Time

	resolver *quote.Resolver
	store    quotes.Store

	archiveOnce sync.Once
	sink        archive.Sink
	sinkErr     error
}

// Option configures an App.
type Option func(*App)

// WithClock overrides the clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithArchive sets the sink charts are saved to instead of the configured one.
func WithArchive(sink archive.Sink) Option {
	return func(a *App) {
		a.archiveOnce.Do(func() { a.sink = sink })
	}
}

// WithStore sets the quote cache instead of the configured one.
func WithStore(store quotes.Store) Option {
	return func(a *App) { a.store = store }
}

// New creates a new App instance
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		cfg:        cfg,
		logger:     logger,
		collectors: collector.NewRegistry(),
		metrics:    metrics.NewRegistry(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RegisterCollector adds a collector to the app
func (a *App) RegisterCollector(c collector.Collector) {
	a.collectors.Register(c)
}

// Metrics returns the app's metrics registry.
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}

// Now returns the app's current time.
func (a *App) Now() time.Time {
	return a.now()
}

// Open initializes the configured provider and quote cache.
func (a *App) Open(ctx context.Context) error {
	c, err := a.collectors.Open(a.cfg.Provider.Name, collector.Config{
		BaseURL:    a.cfg.Provider.BaseURL,
		Timeout:    a.cfg.Provider.Timeout,
		MaxRetries: a.cfg.Provider.MaxRetries,
		Transport:  metrics.Transport(a.metrics, a.logger, nil),
	})
	if err != nil {
		return err
	}

	if a.store == nil {
		a.store = a.openStore()
	}

	a.resolver = quote.NewResolver(c, a.logger,
		quote.WithStore(a.store),
		quote.WithMetrics(a.metrics),
		quote.WithClock(a.now),
	)

	a.logger.Debug("app opened",
		zap.String("provider", c.Name()),
		zap.Bool("cache", a.cfg.Cache.Enabled),
		zap.Int("concurrency", a.cfg.Provider.Concurrency),
	)
	return nil
}

// openStore opens the sqlite cache, falling back to memory when it is
// disabled or cannot be opened.
func (a *App) openStore() quotes.Store {
	if a.cfg.Cache.Enabled {
		store, err := quotes.NewSQLiteStore(a.cfg.Cache.Path)
		if err == nil {
			return store
		}
		a.logger.Warn("quote cache unavailable, using memory",
			zap.String("path", a.cfg.Cache.Path),
			zap.Error(err),
		)
	}
	return quotes.NewMemoryStore(memoryCacheSize)
}

// Close releases the quote cache and writes the metrics textfile when
// configured.
func (a *App) Close() error {
	var errs []error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing quote cache: %w", err))
		}
	}
	if a.cfg.Metrics.Enabled && a.cfg.Metrics.Textfile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			errs = append(errs, fmt.Errorf("writing metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Observe records the outcome of a command.
func (a *App) Observe(command string, start time.Time, err error) {
	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, core.ErrInvalidInput):
		status = "invalid_input"
	case errors.Is(err, core.ErrEmptyResult):
		status = "empty"
	case errors.Is(err, core.ErrDataUnavailable):
		status = "unavailable"
	default:
		status = "error"
	}
	a.metrics.RecordCommand(command, status, time.Since(start).Seconds())
}

func (a *App) archive() (archive.Sink, error) {
	a.archiveOnce.Do(func() {
		cfg := a.cfg.Archive
		a.sink, a.sinkErr = archive.Open(cfg.Type, cfg.Path, archive.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	})
	return a.sink, a.sinkErr
}

func (a *App) requireOpen() error {
	if a.resolver == nil {
		return errors.New("app not opened")
	}
	return nil
}
