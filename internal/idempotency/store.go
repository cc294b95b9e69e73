// Package idempotency gives transfers at-most-once semantics across client
// retries: responses are cached in Redis keyed by the Idempotency-Key header
// and replayed on duplicates.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix        = "idempotency:v1:"
	inProgressMarker = "__in_progress__"
)

// ErrInFlight indicates another request with the same key is still being
// processed.
var ErrInFlight = errors.New("duplicate request currently processing")

// Response is the stored outcome replayed to duplicate requests.
type Response struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// Store persists transfer outcomes in Redis. A nil client disables the
// feature entirely; cache errors fail open so a degraded cache never blocks
// transfers.
type Store struct {
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New builds an idempotency store with the given record lifetime.
func New(cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{cache: cache, ttl: ttl, logger: logger}
}

// Enabled reports whether a cache is configured.
func (s *Store) Enabled() bool {
	return s != nil && s.cache != nil
}

// Begin reserves the key. It returns the stored response when the key has
// already completed, ErrInFlight when a duplicate is still processing, and
// (nil, nil) when the reservation is fresh and the caller should proceed.
func (s *Store) Begin(ctx context.Context, key string) (*Response, error) {
	if !s.Enabled() {
		return nil, nil
	}

	cacheKey := keyPrefix + key

	cached, err := s.cache.Get(ctx, cacheKey).Result()
	if err == nil {
		if cached == inProgressMarker {
			return nil, ErrInFlight
		}
		var stored Response
		if err := json.Unmarshal([]byte(cached), &stored); err != nil {
			s.logger.Warn("failed to decode stored idempotent response", slog.String("key", key), slog.Any("error", err))
			return nil, ErrInFlight
		}
		return &stored, nil
	}
	if err != redis.Nil {
		s.logger.Error("idempotency lookup failed", slog.String("key", key), slog.Any("error", err))
		return nil, nil
	}

	ok, err := s.cache.SetNX(ctx, cacheKey, inProgressMarker, s.ttl).Result()
	if err != nil {
		s.logger.Error("idempotency reservation failed", slog.String("key", key), slog.Any("error", err))
		return nil, nil
	}
	if !ok {
		// Lost the race to a concurrent duplicate.
		return nil, ErrInFlight
	}
	return nil, nil
}

// Complete stores the outcome for replay. Best effort: on failure the
// reservation is dropped so a retry reprocesses instead of replaying garbage.
func (s *Store) Complete(ctx context.Context, key string, resp Response) {
	if !s.Enabled() {
		return
	}

	cacheKey := keyPrefix + key
	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("failed to encode idempotent response", slog.String("key", key), slog.Any("error", err))
		s.cache.Del(ctx, cacheKey)
		return
	}
	if err := s.cache.Set(ctx, cacheKey, payload, s.ttl).Err(); err != nil {
		s.logger.Error("failed to persist idempotent response", slog.String("key", key), slog.Any("error", err))
		s.cache.Del(ctx, cacheKey)
	}
}

// Abort releases the reservation after a failed operation.
func (s *Store) Abort(ctx context.Context, key string) {
	if !s.Enabled() {
		return
	}
	s.cache.Del(ctx, keyPrefix+key)
}
