package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"StockPulse/internal/domain"
	domrepo "StockPulse/internal/domain/repository"
	pkgsqlite "StockPulse/pkg/sqlite"
)

// KVMigrations creates the key-value table.
var KVMigrations = []string{
	`CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
}

// SQLiteKV implements KVStore on a SQLite table.
type SQLiteKV struct {
	client *pkgsqlite.Client
}

// NewSQLiteKV opens the database at path and ensures the schema.
func NewSQLiteKV(path string) (*SQLiteKV, error) {
	client, err := pkgsqlite.Open(path, KVMigrations...)
	if err != nil {
		return nil, fmt.Errorf("sqlite kv: %w", err)
	}
	return &SQLiteKV{client: client}, nil
}

var _ domrepo.KVStore = (*SQLiteKV)(nil)

func (s *SQLiteKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.client.DB().QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv get %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteKV) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.client.DB().ExecContext(ctx,
		`INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("kv put %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteKV) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *SQLiteKV) Close() error {
	return s.client.Close()
}
