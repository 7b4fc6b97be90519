package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store with one Redis hash per bucket. Batches are
// applied in a MULTI/EXEC pipeline.
type RedisStore struct {
	client    *redis.Client
	namespace string
	timeout   time.Duration
}

// Compile-time interface check.
var _ Store = (*RedisStore)(nil)

// OpenRedisStore connects to Redis. dsn is either a redis:// URL or a
// host:port address. Hash keys are prefixed with namespace.
func OpenRedisStore(dsn, namespace string) (*RedisStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: redis", ErrMissingDSN)
	}
	opts := &redis.Options{Addr: dsn}
	if strings.HasPrefix(dsn, "redis://") || strings.HasPrefix(dsn, "rediss://") {
		parsed, err := redis.ParseURL(dsn)
		if err != nil {
			return nil, fmt.Errorf("%w: parse redis url: %w", ErrIOFailure, err)
		}
		opts = parsed
	}
	s := &RedisStore{
		client:    redis.NewClient(opts),
		namespace: namespace,
		timeout:   5 * time.Second,
	}
	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		_ = s.client.Close()
		return nil, fmt.Errorf("%w: ping redis: %w", ErrIOFailure, err)
	}
	return s, nil
}

func (s *RedisStore) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *RedisStore) hashKey(bucket string) string {
	return s.namespace + ":" + bucket
}

// Get retrieves a value by bucket and key.
func (s *RedisStore) Get(bucket string, key []byte) ([]byte, error) {
	if err := checkKey(bucket, key); err != nil {
		return nil, err
	}
	ctx, cancel := s.ctx()
	defer cancel()
	v, err := s.client.HGet(ctx, s.hashKey(bucket), string(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return v, nil
}

// Write applies the batch in a transactional pipeline.
func (s *RedisStore) Write(batch *Batch) error {
	if err := batch.validate(); err != nil {
		return err
	}
	if batch.Len() == 0 {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, op := range batch.ops {
			if op.Delete {
				pipe.HDel(ctx, s.hashKey(op.Bucket), string(op.Key))
				continue
			}
			pipe.HSet(ctx, s.hashKey(op.Bucket), string(op.Key), op.Value)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return nil
}

// Scan loads the bucket hash and emits matching fields in key order.
func (s *RedisStore) Scan(bucket string, prefix []byte, fn func(key, value []byte) error) error {
	if bucket == "" {
		return ErrInvalidBucket
	}
	ctx, cancel := s.ctx()
	defer cancel()
	all, err := s.client.HGetAll(ctx, s.hashKey(bucket)).Result()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	var pairs []kv
	for k, v := range all {
		if bytes.HasPrefix([]byte(k), prefix) {
			pairs = append(pairs, kv{key: []byte(k), value: []byte(v)})
		}
	}
	return emit(pairs, fn)
}

// Close closes the client.
func (s *RedisStore) Close() error { return s.client.Close() }
