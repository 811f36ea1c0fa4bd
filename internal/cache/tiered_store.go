package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TieredStore probes its tiers in order and writes through to all of them.
type TieredStore struct {
	tiers  []Store
	logger *zap.Logger
}

// NewTieredStore chains tiers, fastest first.
func NewTieredStore(logger *zap.Logger, tiers ...Store) *TieredStore {
	return &TieredStore{
		tiers:  tiers,
		logger: logger.Named("tiered"),
	}
}

func (s *TieredStore) Name() string {
	names := make([]string, 0, len(s.tiers))
	for _, t := range s.tiers {
		names = append(names, t.Name())
	}
	return strings.Join(names, "+")
}

// Get returns the first hit. A failing tier is logged and skipped.
func (s *TieredStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	for _, t := range s.tiers {
		value, ok, err := t.Get(ctx, key)
		if err != nil {
			s.logger.Warn("cache tier get failed", zap.String("tier", t.Name()), zap.String("key", key), zap.Error(err))
			continue
		}
		if ok {
			return value, true, nil
		}
	}
	return nil, false, nil
}

func (s *TieredStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var errs []error
	for _, t := range s.tiers {
		if err := t.Set(ctx, key, value, ttl); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *TieredStore) Delete(ctx context.Context, key string) error {
	var errs []error
	for _, t := range s.tiers {
		if err := t.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
