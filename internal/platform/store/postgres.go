package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockdesk/stockdesk/internal/platform/db"
)

const createRecordsTable = `CREATE TABLE IF NOT EXISTS kv_records (
	namespace  TEXT        NOT NULL,
	key        TEXT        NOT NULL,
	value      TEXT        NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (namespace, key)
)`

// PGStore keeps records in a PostgreSQL table keyed by namespace and key.
type PGStore struct {
	pool      *pgxpool.Pool
	namespace string
}

// NewPGStore wraps a pool and creates the records table when missing.
func NewPGStore(ctx context.Context, pool *pgxpool.Pool, namespace string) (*PGStore, error) {
	if _, err := pool.Exec(ctx, createRecordsTable); err != nil {
		return nil, fmt.Errorf("store: create kv_records: %w", err)
	}
	return &PGStore{pool: pool, namespace: namespace}, nil
}

// Get fetches the bytes stored at key.
func (s *PGStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.pool.QueryRow(ctx, `SELECT value FROM kv_records WHERE namespace = $1 AND key = $2`, s.namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: pg get %s: %w", key, err)
	}
	return []byte(value), nil
}

// Set upserts value at key.
func (s *PGStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.pool.Exec(ctx, upsertRecord, s.namespace, key, string(value)); err != nil {
		return fmt.Errorf("store: pg set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *PGStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM kv_records WHERE namespace = $1 AND key = $2`, s.namespace, key); err != nil {
		return fmt.Errorf("store: pg delete %s: %w", key, err)
	}
	return nil
}

const upsertRecord = `INSERT INTO kv_records (namespace, key, value, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

// Update takes a transaction-scoped advisory lock per key, in sorted order,
// before reading the snapshot.
func (s *PGStore) Update(ctx context.Context, keys []string, fn func(*Records) error) error {
	ordered := append([]string(nil), keys...)
	sort.Strings(ordered)
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		recs := newRecords(keys)
		for _, k := range ordered {
			if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, s.namespace+":"+k); err != nil {
				return fmt.Errorf("store: pg lock %s: %w", k, err)
			}
			var value string
			err := tx.QueryRow(ctx, `SELECT value FROM kv_records WHERE namespace = $1 AND key = $2`, s.namespace, k).Scan(&value)
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			if err != nil {
				return fmt.Errorf("store: pg get %s: %w", k, err)
			}
			recs.load(k, []byte(value))
		}
		if err := fn(recs); err != nil {
			return err
		}
		for k, v := range recs.changes() {
			var err error
			if v == nil {
				_, err = tx.Exec(ctx, `DELETE FROM kv_records WHERE namespace = $1 AND key = $2`, s.namespace, k)
			} else {
				_, err = tx.Exec(ctx, upsertRecord, s.namespace, k, string(v))
			}
			if err != nil {
				return fmt.Errorf("store: pg write %s: %w", k, err)
			}
		}
		return nil
	})
}

// Close releases the pool.
func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

var _ Store = (*PGStore)(nil)
