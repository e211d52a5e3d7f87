package repository

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
)

// SeriesQuery is what a provider needs to fetch one series.
type SeriesQuery struct {
	Symbol      string
	Interval    string
	PeriodStart time.Time
	PeriodEnd   time.Time
	OutputSize  string
	Note        string
	// Explicit is set when the caller passed period1/period2 instead of a range label.
	Explicit bool
}

// Meta returns the series meta block for q.
func (q SeriesQuery) Meta() *models.SeriesMeta {
	return &models.SeriesMeta{
		Interval:    q.Interval,
		PeriodStart: q.PeriodStart,
		PeriodEnd:   q.PeriodEnd,
		Note:        q.Note,
	}
}

// SeriesProvider fetches and normalizes a series from one upstream.
type SeriesProvider interface {
	Name() string
	FetchSeries(ctx context.Context, q SeriesQuery) (*models.SeriesResult, error)
}

// KVStore persists opaque values by key. Get returns domain.ErrNotFound for absent keys.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Health(ctx context.Context) error
	Close() error
}

type WatchlistRepository interface {
	List(ctx context.Context) (models.Watchlist, error)
	Add(ctx context.Context, symbol string) (models.Watchlist, error)
	Remove(ctx context.Context, symbol string) (models.Watchlist, error)
}

type AlertRepository interface {
	List(ctx context.Context) (models.Alerts, error)
	Add(ctx context.Context, symbol string, cond models.AlertCondition, target float64) (models.Alert, error)
	Remove(ctx context.Context, id string) error
	Reset(ctx context.Context, id string) (models.Alert, error)
	// Apply runs fn over the stored alerts and saves the result atomically with respect to other mutations.
	Apply(ctx context.Context, fn func(models.Alerts) models.Alerts) (prev, next models.Alerts, err error)
}

// SeriesCache keeps recent successful series.
type SeriesCache interface {
	Get(ctx context.Context, key string) (*models.SeriesResult, bool)
	Set(ctx context.Context, key string, res *models.SeriesResult, ttl time.Duration)
}

// PointHistory appends and reads back normalized points.
type PointHistory interface {
	Append(ctx context.Context, res *models.SeriesResult) error
	Query(ctx context.Context, symbol, interval string, limit int) ([]models.CanonicalPoint, error)
}

// AlertPublisher fans out rising-edge events.
type AlertPublisher interface {
	PublishTriggered(ctx context.Context, events []models.AlertEvent) error
}

// Locker guards jobs that must not overlap.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

type Metrics interface {
	RecordFetch(provider, outcome string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordAlertTriggered(symbol, condition string)
	RecordLatency(op string, seconds float64)
}
