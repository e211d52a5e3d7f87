package repository

import (
	"context"
	"errors"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	pkgcache "StockPulse/pkg/cache"
	applogger "StockPulse/pkg/logger"
)

// SeriesCache stores successful series results in a cache backend.
// Cache failures are logged and treated as misses.
type SeriesCache struct {
	cache  pkgcache.Service
	logger *applogger.Logger
}

func NewSeriesCache(c pkgcache.Service, logger *applogger.Logger) *SeriesCache {
	return &SeriesCache{cache: c, logger: logger}
}

var _ domrepo.SeriesCache = (*SeriesCache)(nil)

func (s *SeriesCache) Get(ctx context.Context, key string) (*models.SeriesResult, bool) {
	var res models.SeriesResult
	if err := s.cache.Get(ctx, key, &res); err != nil {
		if !errors.Is(err, pkgcache.ErrCacheMiss) {
			s.logger.Warn("Series cache read failed", applogger.String("key", key), applogger.Error(err))
		}
		return nil, false
	}
	return &res, true
}

func (s *SeriesCache) Set(ctx context.Context, key string, res *models.SeriesResult, ttl time.Duration) {
	if res == nil || ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, res, ttl); err != nil {
		s.logger.Warn("Series cache write failed", applogger.String("key", key), applogger.Error(err))
	}
}
