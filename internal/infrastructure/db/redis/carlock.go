package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// lockTTL bounds how long a crashed holder can block a car.
	lockTTL        = 10 * time.Second
	acquireTimeout = 5 * time.Second
	retryInterval  = 50 * time.Millisecond
)

var ErrLockTimeout = errors.New("car lock: acquire timed out")

// releaseScript deletes the lock only when it still holds our token, so a
// holder whose lease expired cannot release a successor's lock.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// CarLock provides per-car mutual exclusion backed by Redis SET NX leases.
// Key format: booking_lock:<car_id>. The booking service holds the lease
// across its check-then-insert sequence.
type CarLock struct {
	client *redis.Client
}

// NewCarLock creates a CarLock wrapping the given Redis client.
func NewCarLock(client *redis.Client) *CarLock {
	return &CarLock{client: client}
}

// Acquire takes the lease for carID, polling until it succeeds, ctx is done,
// or acquireTimeout elapses. The returned function releases the lease and is
// safe to call after the request context is cancelled.
func (l *CarLock) Acquire(ctx context.Context, carID string) (func(), error) {
	token, err := lockToken()
	if err != nil {
		return nil, err
	}

	key := "booking_lock:" + carID
	deadline := time.Now().Add(acquireTimeout)

	for {
		ok, err := l.client.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("car lock: %w", err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	release := func() {
		relCtx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		_ = releaseScript.Run(relCtx, l.client, []string{key}, token).Err()
	}
	return release, nil
}

func lockToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("car lock: token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
