package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"StockPulse/internal/domain"
	domrepo "StockPulse/internal/domain/repository"
	applogger "StockPulse/pkg/logger"
)

// LoadJSON reads key from kv and decodes it into T.
// Absent, unreadable or malformed values yield fallback; the failure is logged, never returned.
func LoadJSON[T any](ctx context.Context, kv domrepo.KVStore, key string, fallback T, logger *applogger.Logger) T {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Failed to read stored value, using fallback",
				applogger.String("key", key),
				applogger.Error(err),
			)
		}
		return fallback
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		logger.Warn("Stored value is malformed, using fallback",
			applogger.String("key", key),
			applogger.Error(err),
		)
		return fallback
	}
	return out
}

// SaveJSON encodes v and writes it under key.
func SaveJSON(ctx context.Context, kv domrepo.KVStore, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Put(ctx, key, raw)
}
