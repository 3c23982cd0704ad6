package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultRedisRetries = 8

// RedisStore keeps records as Redis strings under a namespace prefix.
type RedisStore struct {
	client     *redis.Client
	namespace  string
	maxRetries int
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace, maxRetries: defaultRedisRetries}
}

func (s *RedisStore) redisKey(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + ":" + key
}

// Get fetches the bytes stored at key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: redis get %s: %w", key, err)
	}
	return data, nil
}

// Set writes value at key without expiry.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.redisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("store: redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("store: redis del %s: %w", key, err)
	}
	return nil
}

// Update uses WATCH/MULTI optimistic locking and retries when a watched key
// changes before EXEC.
func (s *RedisStore) Update(ctx context.Context, keys []string, fn func(*Records) error) error {
	watched := make([]string, len(keys))
	for i, k := range keys {
		watched[i] = s.redisKey(k)
	}
	txf := func(tx *redis.Tx) error {
		recs := newRecords(keys)
		for _, k := range keys {
			data, err := tx.Get(ctx, s.redisKey(k)).Bytes()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				return fmt.Errorf("store: redis get %s: %w", k, err)
			}
			recs.load(k, data)
		}
		if err := fn(recs); err != nil {
			return err
		}
		changes := recs.changes()
		if len(changes) == 0 {
			return nil
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for k, v := range changes {
				if v == nil {
					pipe.Del(ctx, s.redisKey(k))
					continue
				}
				pipe.Set(ctx, s.redisKey(k), v, 0)
			}
			return nil
		})
		return err
	}
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, watched...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConflict
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
