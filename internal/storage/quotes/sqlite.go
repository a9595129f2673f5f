// internal/storage/quotes/sqlite.go
package quotes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/newthinker/stocksim/internal/core"
)

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the cache database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Parallel lookups share one database file.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS closes (
		symbol TEXT NOT NULL,
		as_of TEXT NOT NULL,
		trading_date TEXT NOT NULL,
		price REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (symbol, as_of)
	);

	CREATE TABLE IF NOT EXISTS names (
		symbol TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// GetClose looks up a cached close.
func (s *SQLiteStore) GetClose(ctx context.Context, symbol string, asOf time.Time) (Close, bool, error) {
	var tradingDate string
	c := Close{Symbol: symbol, AsOf: core.DateOf(asOf)}

	err := s.db.QueryRowContext(ctx,
		`SELECT trading_date, price FROM closes WHERE symbol = ? AND as_of = ?`,
		symbol, asOf.Format(core.DateLayout),
	).Scan(&tradingDate, &c.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return Close{}, false, nil
	}
	if err != nil {
		return Close{}, false, fmt.Errorf("querying close: %w", err)
	}

	c.TradingDate, err = time.Parse(core.DateLayout, tradingDate)
	if err != nil {
		return Close{}, false, fmt.Errorf("parsing trading date %q: %w", tradingDate, err)
	}
	return c, true, nil
}

// PutClose caches a close, replacing any previous entry.
func (s *SQLiteStore) PutClose(ctx context.Context, c Close) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO closes (symbol, as_of, trading_date, price) VALUES (?, ?, ?, ?)`,
		c.Symbol, c.AsOf.Format(core.DateLayout), c.TradingDate.Format(core.DateLayout), c.Price,
	)
	if err != nil {
		return fmt.Errorf("storing close: %w", err)
	}
	return nil
}

// GetName looks up a cached name.
func (s *SQLiteStore) GetName(ctx context.Context, symbol string) (string, bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM names WHERE symbol = ?`, symbol).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying name: %w", err)
	}
	return name, true, nil
}

// PutName caches a name.
func (s *SQLiteStore) PutName(ctx context.Context, symbol, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO names (symbol, name) VALUES (?, ?)
		 ON CONFLICT(symbol) DO UPDATE SET name = excluded.name, updated_at = CURRENT_TIMESTAMP`,
		symbol, name,
	)
	if err != nil {
		return fmt.Errorf("storing name: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
