// Package redis holds the per-show booking lock. The lock fences the
// check-then-reserve critical section: while one booking attempt holds a
// show's lock, no other attempt may read or write that show's inventory.
package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const defaultLockTTL = 10 * time.Second

type Locker struct {
	Client *redis.Client

	// TTL is a crash guard only: normal operation always unlocks explicitly,
	// the expiry just keeps a dead process from wedging a show forever.
	TTL time.Duration
}

// NewLocker wraps a Redis client as a show locker. A non-positive ttl falls
// back to the default.
func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Locker{Client: client, TTL: ttl}
}

// LockShow takes the lock for one show. Returns false when another booking
// attempt already holds it.
func (l *Locker) LockShow(ctx context.Context, showID, token string) (bool, error) {
	return l.Client.SetNX(ctx, lockKey(showID), token, l.TTL).Result()
}

// UnlockShow releases the lock, but only if this caller's token still holds
// it; an expired-and-retaken lock belongs to someone else now.
func (l *Locker) UnlockShow(ctx context.Context, showID, token string) error {
	key := lockKey(showID)
	val, err := l.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already released or expired
	}
	if err != nil {
		return err
	}
	if val == token {
		return l.Client.Del(ctx, key).Err()
	}
	return nil
}

func lockKey(showID string) string {
	return "show_lock:" + showID
}
