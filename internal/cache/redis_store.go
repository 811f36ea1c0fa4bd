package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-addrindex/pkg/batcher"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisTier = "redis"

type redisWrite struct {
	key   string
	value []byte
	ttl   time.Duration
}

// RedisStore is the optional shared tier. Values are stored as text with a PX expiry.
type RedisStore struct {
	client  RedisClient
	prefix  string
	logger  *zap.Logger
	metrics Metrics
	writer  *batcher.Batcher[redisWrite]
}

// NewRedisStore wraps a connected client. Every key is prefixed with namespace.
func NewRedisStore(client RedisClient, namespace string, logger *zap.Logger, metrics Metrics) *RedisStore {
	return &RedisStore{
		client:  client,
		prefix:  namespace,
		logger:  logger.Named("redis"),
		metrics: metrics,
	}
}

// DialShared connects to redis at url. When url is empty or the server does not answer a
// ping, a NopStore is returned so the caller keeps working without the shared tier.
func DialShared(ctx context.Context, url, namespace string, logger *zap.Logger, metrics Metrics) (Store, func()) {
	if url == "" {
		return NopStore{}, func() {}
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Warn("invalid redis url, shared cache disabled", zap.Error(err))
		return NopStore{}, func() {}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, shared cache disabled", zap.String("addr", opts.Addr), zap.Error(err))
		_ = client.Close()
		return NopStore{}, func() {}
	}
	return NewRedisStore(client, namespace, logger, metrics), func() { _ = client.Close() }
}

// EnableWriteBehind queues writes and flushes them from a background loop. Close stops the loop.
func (s *RedisStore) EnableWriteBehind(ctx context.Context, opts batcher.Options) {
	s.writer = batcher.New(s.logger.Named("writeBehind"), s.flush, opts)
	s.writer.Start(ctx)
}

// Close flushes queued writes.
func (s *RedisStore) Close() {
	if s.writer != nil {
		s.writer.Stop()
	}
}

func (s *RedisStore) Name() string { return redisTier }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		s.metrics.Observe(redisTier, EventMiss)
		return nil, false, nil
	}
	if err != nil {
		s.metrics.Observe(redisTier, EventError)
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	s.metrics.Observe(redisTier, EventHit)
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.writer != nil {
		if err := s.writer.Add(ctx, redisWrite{key: key, value: value, ttl: ttl}); err != nil {
			s.metrics.Observe(redisTier, EventError)
			return fmt.Errorf("queue redis set %s: %w", key, err)
		}
		return nil
	}
	return s.set(ctx, redisWrite{key: key, value: value, ttl: ttl})
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		s.metrics.Observe(redisTier, EventError)
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	s.metrics.Observe(redisTier, EventDelete)
	return nil
}

func (s *RedisStore) set(ctx context.Context, w redisWrite) error {
	if err := s.client.Set(ctx, s.prefix+w.key, string(w.value), w.ttl).Err(); err != nil {
		s.metrics.Observe(redisTier, EventError)
		return fmt.Errorf("redis set %s: %w", w.key, err)
	}
	s.metrics.Observe(redisTier, EventSet)
	return nil
}

func (s *RedisStore) flush(ctx context.Context, writes []redisWrite) error {
	var errs []error
	for _, w := range writes {
		if err := s.set(ctx, w); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
