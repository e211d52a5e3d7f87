package repository

import (
	"context"
	"errors"
	"fmt"

	"StockPulse/internal/domain"
	domrepo "StockPulse/internal/domain/repository"
	pkgcache "StockPulse/pkg/cache"
)

// CacheKV implements KVStore on a cache backend (memory, redis or layered).
// Entries never expire.
type CacheKV struct {
	cache  pkgcache.Service
	prefix string
}

// NewCacheKV stores keys under prefix.
func NewCacheKV(c pkgcache.Service, prefix string) *CacheKV {
	return &CacheKV{cache: c, prefix: prefix}
}

var _ domrepo.KVStore = (*CacheKV)(nil)

func (s *CacheKV) Get(ctx context.Context, key string) ([]byte, error) {
	var raw []byte
	if err := s.cache.Get(ctx, s.key(key), &raw); err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("kv get %q: %w", key, err)
	}
	return raw, nil
}

func (s *CacheKV) Put(ctx context.Context, key string, value []byte) error {
	if err := s.cache.Set(ctx, s.key(key), value, 0); err != nil {
		return fmt.Errorf("kv put %q: %w", key, err)
	}
	return nil
}

func (s *CacheKV) Health(ctx context.Context) error {
	return s.cache.Ping(ctx)
}

func (s *CacheKV) Close() error {
	return s.cache.Close()
}

func (s *CacheKV) key(k string) string {
	return pkgcache.GenerateKey(s.prefix, k)
}
