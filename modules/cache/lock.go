package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLeaseHeld is returned when another holder owns the lease.
var ErrLeaseHeld = errors.New("lease is held by another owner")

// releaseScript deletes the key only if it still carries our token, so an
// expired lease re-acquired by someone else is never released by us.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Locker hands out short-lived exclusive leases backed by Redis SET NX PX.
type Locker struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewLocker creates a Locker with the given key prefix.
func NewLocker(client redis.UniversalClient, keyPrefix string) *Locker {
	return &Locker{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Lease is an acquired lock. Release it when done; it expires on its own
// after the TTL.
type Lease struct {
	locker *Locker
	key    string
	token  string
}

// Acquire takes the lease named name for ttl, or returns ErrLeaseHeld.
func (l *Locker) Acquire(ctx context.Context, name string, ttl time.Duration) (*Lease, error) {
	key := l.keyPrefix + name
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lease error: %w", err)
	}
	if !ok {
		return nil, ErrLeaseHeld
	}
	return &Lease{locker: l, key: key, token: token}, nil
}

// Release frees the lease if it is still ours.
func (le *Lease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, le.locker.client, []string{le.key}, le.token).Err(); err != nil {
		return fmt.Errorf("redis release error: %w", err)
	}
	return nil
}
