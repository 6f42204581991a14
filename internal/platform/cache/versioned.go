package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultVersionKey = "ledgerbook:version"
	// ChangeChannel carries the new version after every mutation.
	ChangeChannel = "ledgerbook.changed"
)

// Cache wraps Redis based caching with versioning controls. Every Bump
// invalidates all keys built before it and announces the new version on
// ChangeChannel. A Cache without a client degrades to loader pass-through
// and in-process notifications.
type Cache struct {
	client     *redis.Client
	ttl        time.Duration
	versionKey string
	channel    string

	mu        sync.Mutex
	local     int64
	listeners []func(int64)
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl, versionKey: defaultVersionKey, channel: ChangeChannel}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil {
		return 0, nil
	}
	if c.client == nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.local == 0 {
			c.local = 1
		}
		return c.local, nil
	}
	ver, err := c.client.Get(ctx, c.versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, c.versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, c.versionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, c.versionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchJSON loads a cached value or populates it using the loader.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c != nil && c.client != nil {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return json.Unmarshal(payload, dest)
		}
		if !errors.Is(err, redis.Nil) {
			return err
		}
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c != nil && c.client != nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return err
		}
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates the cache by incrementing the global version and publishing an event.
func (c *Cache) Bump(ctx context.Context) (int64, error) {
	if c == nil {
		return 0, nil
	}
	if c.client == nil {
		c.mu.Lock()
		if c.local == 0 {
			c.local = 1
		}
		c.local++
		ver := c.local
		listeners := append([]func(int64){}, c.listeners...)
		c.mu.Unlock()
		for _, fn := range listeners {
			fn(ver)
		}
		return ver, nil
	}
	ver, err := c.client.Incr(ctx, c.versionKey).Result()
	if err != nil {
		return 0, err
	}
	if err := c.client.Publish(ctx, c.channel, strconv.FormatInt(ver, 10)).Err(); err != nil {
		return ver, err
	}
	return ver, nil
}

// Subscribe invokes fn with the new version after every Bump, including
// bumps issued by other processes sharing the Redis instance. It returns
// once the subscription is confirmed; delivery stops when ctx is done.
func (c *Cache) Subscribe(ctx context.Context, fn func(version int64)) error {
	if c == nil || fn == nil {
		return nil
	}
	if c.client == nil {
		c.mu.Lock()
		c.listeners = append(c.listeners, fn)
		c.mu.Unlock()
		return nil
	}
	pubsub := c.client.Subscribe(ctx, c.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("cache: subscribe %s: %w", c.channel, err)
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ver, err := strconv.ParseInt(msg.Payload, 10, 64)
				if err != nil {
					continue
				}
				fn(ver)
			}
		}
	}()
	return nil
}
