package shared

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockTimeout is returned when a lock cannot be acquired before the context ends.
var ErrLockTimeout = errors.New("lock: timed out waiting for lock")

// SheetLockKey builds redis keys for the spreadsheet critical section.
func SheetLockKey(spreadsheetID string) string {
	return fmt.Sprintf("ledgerbook:sheet:%s:lock", spreadsheetID)
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker provides mutual exclusion backed by Redis SET NX. Without a Redis
// client it falls back to an in-process mutex.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration

	mu sync.Mutex
}

// NewLocker constructs a Locker. ttl bounds how long a crashed holder can
// block others.
func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Locker{client: client, ttl: ttl, retry: 50 * time.Millisecond}
}

// WithLock runs fn while holding key.
func (l *Locker) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	if l == nil || l.client == nil {
		var mu *sync.Mutex
		if l != nil {
			mu = &l.mu
		} else {
			mu = &sync.Mutex{}
		}
		mu.Lock()
		defer mu.Unlock()
		return fn(ctx)
	}

	token := uuid.NewString()
	if err := l.acquire(ctx, key, token); err != nil {
		return err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}()
	return fn(ctx)
}

func (l *Locker) acquire(ctx context.Context, key, token string) error {
	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("lock: acquire %s: %w", key, err)
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s", ErrLockTimeout, key)
		case <-ticker.C:
		}
	}
}
