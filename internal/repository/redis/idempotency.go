package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Harsh-BH/Leadly/internal/repository"
)

var _ repository.IdempotencyStore = (*scanLock)(nil)

const (
	lockKeyPrefix = "leadly:scan:"
	// a scan over many subreddits with LLM classification can take a while
	lockTTL = 30 * time.Minute
	// completed scans stay marked for a day so broker redeliveries are skipped
	doneTTL = 24 * time.Hour
)

type scanLock struct {
	client *goredis.Client
}

// NewScanLockStore creates a Redis-backed idempotency store keyed by scan request id.
func NewScanLockStore(client *goredis.Client) repository.IdempotencyStore {
	return &scanLock{client: client}
}

// AcquireLock uses SETNX so only the first delivery of a scan request runs it.
func (r *scanLock) AcquireLock(ctx context.Context, requestID uuid.UUID) (bool, error) {
	ok, err := r.client.SetNX(ctx, lockKey(requestID), time.Now().Unix(), lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis: acquire scan lock: %w", err)
	}
	return ok, nil
}

// ReleaseLock keeps the key around with a longer TTL for eventual cleanup.
func (r *scanLock) ReleaseLock(ctx context.Context, requestID uuid.UUID) error {
	if err := r.client.Expire(ctx, lockKey(requestID), doneTTL).Err(); err != nil {
		return fmt.Errorf("redis: release scan lock: %w", err)
	}
	return nil
}

// ClearLock deletes the key so the next delivery acquires the lock again.
func (r *scanLock) ClearLock(ctx context.Context, requestID uuid.UUID) error {
	if err := r.client.Del(ctx, lockKey(requestID)).Err(); err != nil {
		return fmt.Errorf("redis: clear scan lock: %w", err)
	}
	return nil
}

func lockKey(id uuid.UUID) string {
	return lockKeyPrefix + id.String()
}
