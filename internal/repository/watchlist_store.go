package repository

import (
	"context"
	"sync"

	"StockPulse/internal/domain"
	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	applogger "StockPulse/pkg/logger"
)

// WatchlistKey is the storage key of the watchlist.
const WatchlistKey = "watchlist"

// WatchlistStore keeps the ordered symbol set in a KVStore.
type WatchlistStore struct {
	mu     sync.Mutex
	kv     domrepo.KVStore
	logger *applogger.Logger
}

func NewWatchlistStore(kv domrepo.KVStore, logger *applogger.Logger) *WatchlistStore {
	return &WatchlistStore{kv: kv, logger: logger}
}

var _ domrepo.WatchlistRepository = (*WatchlistStore)(nil)

func (s *WatchlistStore) List(ctx context.Context) (models.Watchlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx), nil
}

func (s *WatchlistStore) Add(ctx context.Context, symbol string) (models.Watchlist, error) {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, domain.NewValidationError("symbol", "Symbol is required.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.load(ctx)
	next := current.Add(symbol)
	if len(next) == len(current) {
		return current, nil
	}
	if err := SaveJSON(ctx, s.kv, WatchlistKey, next); err != nil {
		return current, err
	}
	return next, nil
}

func (s *WatchlistStore) Remove(ctx context.Context, symbol string) (models.Watchlist, error) {
	symbol = models.NormalizeSymbol(symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.load(ctx)
	next := current.Remove(symbol)
	if len(next) == len(current) {
		return current, nil
	}
	if err := SaveJSON(ctx, s.kv, WatchlistKey, next); err != nil {
		return current, err
	}
	return next, nil
}

func (s *WatchlistStore) load(ctx context.Context) models.Watchlist {
	return LoadJSON(ctx, s.kv, WatchlistKey, models.Watchlist{}, s.logger).Sanitize()
}
