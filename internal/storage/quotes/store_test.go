package quotes

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testStores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache", "quotes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(100),
		"sqlite": sqlite,
	}
}

func TestStore_CloseRoundTrip(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := store.GetClose(ctx, "AAPL", day(2020, 1, 4))
			require.NoError(t, err)
			assert.False(t, ok)

			want := Close{Symbol: "AAPL", AsOf: day(2020, 1, 4), TradingDate: day(2020, 1, 3), Price: 74.36}
			require.NoError(t, store.PutClose(ctx, want))

			got, ok, err := store.GetClose(ctx, "AAPL", day(2020, 1, 4))
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, want.Price, got.Price)
			assert.True(t, want.TradingDate.Equal(got.TradingDate))

			_, ok, err = store.GetClose(ctx, "MSFT", day(2020, 1, 4))
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStore_PutCloseReplaces(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := Close{Symbol: "SPY", AsOf: day(2021, 5, 1), TradingDate: day(2021, 4, 30), Price: 417.3}

			require.NoError(t, store.PutClose(ctx, c))
			c.Price = 418.0
			require.NoError(t, store.PutClose(ctx, c))

			got, ok, err := store.GetClose(ctx, "SPY", day(2021, 5, 1))
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, 418.0, got.Price)
		})
	}
}

func TestStore_Names(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := store.GetName(ctx, "AAPL")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.PutName(ctx, "AAPL", "Apple"))
			require.NoError(t, store.PutName(ctx, "AAPL", "Apple Inc."))

			got, ok, err := store.GetName(ctx, "AAPL")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "Apple Inc.", got)
		})
	}
}

func TestMemoryStore_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(2)

	for i := 1; i <= 3; i++ {
		require.NoError(t, m.PutClose(ctx, Close{Symbol: "X", AsOf: day(2020, 1, i), TradingDate: day(2020, 1, i), Price: float64(i)}))
	}

	assert.Equal(t, 2, m.Len())
	_, ok, _ := m.GetClose(ctx, "X", day(2020, 1, 1))
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok, _ = m.GetClose(ctx, "X", day(2020, 1, 3))
	assert.True(t, ok)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "quotes.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.PutClose(ctx, Close{Symbol: "QQQ", AsOf: day(2022, 3, 1), TradingDate: day(2022, 3, 1), Price: 345.1}))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	got, ok, err := s.GetClose(ctx, "QQQ", day(2022, 3, 1))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 345.1, got.Price)
}
