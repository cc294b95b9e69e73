package idempotency

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/teller/internal/logging"
)

func setupStore(t *testing.T) (*Store, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := New(cache, time.Minute, logging.Discard())
	return store, func() {
		cache.Close()
		mr.Close()
	}
}

func TestBeginCompleteReplay(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	stored, err := store.Begin(ctx, "abc123")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if stored != nil {
		t.Fatalf("fresh key must not replay, got %+v", stored)
	}

	store.Complete(ctx, "abc123", Response{Status: 200, Body: `{"message":"transfer complete"}`})

	replay, err := store.Begin(ctx, "abc123")
	if err != nil {
		t.Fatalf("begin replay: %v", err)
	}
	if replay == nil || replay.Status != 200 || replay.Body != `{"message":"transfer complete"}` {
		t.Fatalf("unexpected replay: %+v", replay)
	}
}

func TestBeginInFlightDuplicate(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.Begin(ctx, "abc123"); err != nil {
		t.Fatalf("begin: %v", err)
	}

	if _, err := store.Begin(ctx, "abc123"); err != ErrInFlight {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
}

func TestAbortReleasesReservation(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.Begin(ctx, "abc123"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	store.Abort(ctx, "abc123")

	stored, err := store.Begin(ctx, "abc123")
	if err != nil {
		t.Fatalf("begin after abort: %v", err)
	}
	if stored != nil {
		t.Fatalf("aborted key must not replay, got %+v", stored)
	}
}

func TestDisabledStoreIsNoOp(t *testing.T) {
	store := New(nil, time.Minute, logging.Discard())
	ctx := context.Background()

	if store.Enabled() {
		t.Fatalf("store without cache must report disabled")
	}
	stored, err := store.Begin(ctx, "abc123")
	if err != nil || stored != nil {
		t.Fatalf("disabled store must pass through, got %+v %v", stored, err)
	}
	store.Complete(ctx, "abc123", Response{Status: 200})
	store.Abort(ctx, "abc123")
}

func TestBeginFailsOpenOnCacheError(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()
	store := New(cache, time.Minute, logging.Discard())
	mr.Close()

	stored, err := store.Begin(context.Background(), "abc123")
	if err != nil || stored != nil {
		t.Fatalf("expected fail-open pass-through, got %+v %v", stored, err)
	}
}
