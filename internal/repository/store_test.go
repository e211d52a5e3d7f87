package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain"
	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	pkgcache "StockPulse/pkg/cache"
	applogger "StockPulse/pkg/logger"
	pkgsqlite "StockPulse/pkg/sqlite"
)

func newSQLiteKV(t *testing.T) *SQLiteKV {
	t.Helper()
	kv, err := NewSQLiteKV(pkgsqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func newCacheKV(t *testing.T) *CacheKV {
	t.Helper()
	kv := NewCacheKV(pkgcache.NewMemoryCache(), "test")
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestKVStoresRoundTrip(t *testing.T) {
	backends := map[string]func(*testing.T) domrepo.KVStore{
		"sqlite": func(t *testing.T) domrepo.KVStore { return newSQLiteKV(t) },
		"cache":  func(t *testing.T) domrepo.KVStore { return newCacheKV(t) },
	}

	for name, mk := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			kv := mk(t)

			_, err := kv.Get(ctx, "missing")
			require.ErrorIs(t, err, domain.ErrNotFound)

			require.NoError(t, kv.Put(ctx, "k", []byte(`["AAPL"]`)))
			require.NoError(t, kv.Put(ctx, "k", []byte(`["MSFT"]`)))

			got, err := kv.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, `["MSFT"]`, string(got))
		})
	}
}

func TestLoadJSONFallsBack(t *testing.T) {
	ctx := context.Background()
	kv := newSQLiteKV(t)
	log := applogger.Nop()
	fallback := models.Watchlist{"AAPL"}

	assert.Equal(t, fallback, LoadJSON(ctx, kv, "absent", fallback, log))

	require.NoError(t, kv.Put(ctx, "bad", []byte(`{not json`)))
	assert.Equal(t, fallback, LoadJSON(ctx, kv, "bad", fallback, log))

	require.NoError(t, kv.Put(ctx, "shape", []byte(`{"symbol":"AAPL"}`)))
	assert.Equal(t, fallback, LoadJSON(ctx, kv, "shape", fallback, log))

	require.NoError(t, kv.Put(ctx, "ok", []byte(`["TSLA"]`)))
	assert.Equal(t, models.Watchlist{"TSLA"}, LoadJSON(ctx, kv, "ok", fallback, log))
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, error) { return nil, errors.New("disk gone") }
func (failingKV) Put(context.Context, string, []byte) error   { return errors.New("disk gone") }
func (failingKV) Health(context.Context) error                { return errors.New("disk gone") }
func (failingKV) Close() error                                { return nil }

func TestLoadJSONReadErrorFallsBack(t *testing.T) {
	got := LoadJSON(context.Background(), failingKV{}, WatchlistKey, models.Watchlist{}, applogger.Nop())
	assert.Empty(t, got)
}

func TestWatchlistStore(t *testing.T) {
	ctx := context.Background()
	store := NewWatchlistStore(newSQLiteKV(t), applogger.Nop())

	list, err := store.Add(ctx, "aapl")
	require.NoError(t, err)
	assert.Equal(t, models.Watchlist{"AAPL"}, list)

	list, err = store.Add(ctx, " AAPL ")
	require.NoError(t, err)
	assert.Equal(t, models.Watchlist{"AAPL"}, list)

	_, _ = store.Add(ctx, "MSFT")
	_, _ = store.Add(ctx, "TSLA")

	list, err = store.Remove(ctx, "msft")
	require.NoError(t, err)
	assert.Equal(t, models.Watchlist{"AAPL", "TSLA"}, list)

	list, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Watchlist{"AAPL", "TSLA"}, list)

	_, err = store.Add(ctx, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestWatchlistStoreSanitizesStoredData(t *testing.T) {
	ctx := context.Background()
	kv := newSQLiteKV(t)
	require.NoError(t, kv.Put(ctx, WatchlistKey, []byte(`["aapl","AAPL","", "msft"]`)))

	list, err := NewWatchlistStore(kv, applogger.Nop()).List(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Watchlist{"AAPL", "MSFT"}, list)
}

func newAlertStore(t *testing.T) *AlertStore {
	t.Helper()
	store := NewAlertStore(newCacheKV(t), applogger.Nop())
	n := 0
	store.newID = func() string {
		n++
		return fmt.Sprintf("alert-%d", n)
	}
	store.now = func() time.Time { return time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC) }
	return store
}

func TestAlertStoreAddPrepends(t *testing.T) {
	ctx := context.Background()
	store := newAlertStore(t)

	first, err := store.Add(ctx, "tsla", models.ConditionAbove, 100)
	require.NoError(t, err)
	assert.Equal(t, "TSLA", first.Symbol)
	assert.False(t, first.Triggered)
	assert.Nil(t, first.TriggeredAt)

	second, err := store.Add(ctx, "AAPL", models.ConditionBelow, 150)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	alerts, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, second.ID, alerts[0].ID)
	assert.Equal(t, first.ID, alerts[1].ID)
}

func TestAlertStoreGeneratesUUIDs(t *testing.T) {
	ctx := context.Background()
	store := NewAlertStore(newSQLiteKV(t), applogger.Nop())

	a, err := store.Add(ctx, "AAPL", models.ConditionAbove, 1)
	require.NoError(t, err)
	b, err := store.Add(ctx, "AAPL", models.ConditionAbove, 1)
	require.NoError(t, err)
	assert.Len(t, a.ID, 36)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestAlertStoreRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	store := newAlertStore(t)

	_, err := store.Add(ctx, "", models.ConditionAbove, 1)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = store.Add(ctx, "AAPL", models.AlertCondition("sideways"), 1)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = store.Add(ctx, "AAPL", models.ConditionAbove, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAlertStoreResetAndRemove(t *testing.T) {
	ctx := context.Background()
	store := newAlertStore(t)
	a, _ := store.Add(ctx, "TSLA", models.ConditionAbove, 100)

	at := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	_, _, err := store.Apply(ctx, func(as models.Alerts) models.Alerts {
		out, _ := as.Update(a.ID, func(x models.Alert) models.Alert {
			x.Triggered = true
			x.TriggeredAt = &at
			x.LastPrice = models.Float(101)
			return x
		})
		return out
	})
	require.NoError(t, err)

	reset, err := store.Reset(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, reset.ID)
	assert.False(t, reset.Triggered)
	assert.Nil(t, reset.TriggeredAt)
	require.NotNil(t, reset.LastPrice)
	assert.Equal(t, 101.0, *reset.LastPrice)

	_, err = store.Reset(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Remove(ctx, a.ID))
	assert.ErrorIs(t, store.Remove(ctx, a.ID), domain.ErrNotFound)

	alerts, _ := store.List(ctx)
	assert.Empty(t, alerts)
}

func TestAlertStoreApplyReturnsPrevAndNext(t *testing.T) {
	ctx := context.Background()
	store := newAlertStore(t)
	a, _ := store.Add(ctx, "TSLA", models.ConditionAbove, 100)

	prev, next, err := store.Apply(ctx, func(as models.Alerts) models.Alerts {
		out, _ := as.Update(a.ID, func(x models.Alert) models.Alert {
			x.Triggered = true
			return x
		})
		return out
	})
	require.NoError(t, err)
	assert.False(t, prev[0].Triggered)
	assert.True(t, next[0].Triggered)

	stored, _ := store.List(ctx)
	assert.True(t, stored[0].Triggered)
}

func TestAlertStoreDropsMalformedEntries(t *testing.T) {
	ctx := context.Background()
	kv := newSQLiteKV(t)
	raw := `[{"id":"a","symbol":"AAPL","condition":"above","target":1},{"id":"","symbol":"X","condition":"above"},{"id":"c","symbol":"Y","condition":"sideways"}]`
	require.NoError(t, kv.Put(ctx, AlertsKey, []byte(raw)))

	alerts, err := NewAlertStore(kv, applogger.Nop()).List(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "a", alerts[0].ID)
}

func TestSeriesCache(t *testing.T) {
	ctx := context.Background()
	c := NewSeriesCache(pkgcache.NewMemoryCache(), applogger.Nop())

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	res := models.NewSeriesResult("AAPL", "Yahoo Finance", []models.CanonicalPoint{
		{Date: "2025-01-02", Close: models.Float(186.21)},
	}, nil)
	c.Set(ctx, "k", res, time.Minute)

	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "AAPL", got.Symbol)
	require.NotNil(t, got.Latest)
	assert.Equal(t, 186.21, *got.Latest.Close)

	c.Set(ctx, "nottl", res, 0)
	_, ok = c.Get(ctx, "nottl")
	assert.False(t, ok)
}
