package cache

import (
	"context"
	"encoding/json"
	"reflect"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const resolverTier = "resolver"

// Resolver applies the cache-aside policy over a Store. Concurrent misses for the same key
// share one source call, which is not cancelled when one of the callers gives up.
type Resolver struct {
	store   Store
	logger  *zap.Logger
	metrics Metrics
	group   singleflight.Group
}

// NewResolver creates a Resolver over store.
func NewResolver(store Store, logger *zap.Logger, metrics Metrics) *Resolver {
	return &Resolver{
		store:   store,
		logger:  logger.Named("resolver"),
		metrics: metrics,
	}
}

// Resolve returns the cached value for key or calls source and caches its result.
// A nil result is never cached; cacheable may veto caching, nil means always cache.
// Cache failures are logged and never returned.
func Resolve[T any](
	ctx context.Context,
	r *Resolver,
	key string,
	ttl time.Duration,
	source func(context.Context) (T, error),
	cacheable func(T) bool,
) (T, error) {
	if v, ok := Lookup[T](ctx, r, key); ok {
		r.metrics.Observe(resolverTier, EventHit)
		return v, nil
	}
	r.metrics.Observe(resolverTier, EventMiss)

	// the shared call outlives any single caller; each caller still honours its own ctx
	ch := r.group.DoChan(key, func() (interface{}, error) {
		shared := context.WithoutCancel(ctx)
		v, err := source(shared)
		if err != nil {
			return nil, err
		}
		if !isNil(v) && (cacheable == nil || cacheable(v)) {
			r.Put(shared, key, v, ttl)
		}
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(T)
		return v, nil
	}
}

// Lookup probes the cache only. Errors and undecodable values are logged and reported as a miss.
func Lookup[T any](ctx context.Context, r *Resolver, key string) (T, bool) {
	var v T
	raw, ok, err := r.store.Get(ctx, key)
	if err != nil {
		r.logger.Warn("cache get failed, treating as miss", zap.String("key", key), zap.Error(err))
		return v, false
	}
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		r.logger.Warn("cached value not decodable, treating as miss", zap.String("key", key), zap.Error(err))
		return v, false
	}
	return v, true
}

// Put encodes v and stores it. Failures are logged.
func (r *Resolver) Put(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		r.logger.Warn("cache value not encodable", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.store.Set(ctx, key, raw, ttl); err != nil {
		r.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		return
	}
	r.metrics.Observe(resolverTier, EventSet)
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
