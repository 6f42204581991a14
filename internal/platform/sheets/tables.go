package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

// Locker serialises read-modify-write cycles across processes.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(context.Context) error) error
}

// VersionCache is the versioned cache the tables read through. Bump both
// invalidates cached reads and announces the change to subscribers.
type VersionCache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
	Bump(ctx context.Context) (int64, error)
}

// Tables layers cached reads, read deduplication and serialised writes
// over a Store.
type Tables struct {
	store   Store
	cache   VersionCache
	locker  Locker
	lockKey string
	logger  *slog.Logger
	group   singleflight.Group
}

// NewTables wires a Store with its cache and lock. lockKey names the
// spreadsheet-wide critical section.
func NewTables(store Store, cache VersionCache, locker Locker, lockKey string) *Tables {
	return &Tables{store: store, cache: cache, locker: locker, lockKey: lockKey}
}

// SetLogger sets the logger used for cache failures that do not fail a
// committed write.
func (t *Tables) SetLogger(logger *slog.Logger) {
	t.logger = logger
}

// Store exposes the underlying store for tab management inside Mutate.
func (t *Tables) Store() Store {
	return t.store
}

// Read returns a decoded tab through the cache.
func (t *Tables) Read(ctx context.Context, title string) (Table, error) {
	if t.cache == nil {
		values, err := t.load(ctx, title, title)
		if err != nil {
			return Table{}, err
		}
		return Decode(values), nil
	}
	key, err := t.cache.BuildKey(ctx, "sheets", title)
	if err != nil {
		return Table{}, fmt.Errorf("sheets: cache key: %w", err)
	}
	var values [][]string
	err = t.cache.FetchJSON(ctx, key, &values, func(ctx context.Context) (any, error) {
		return t.load(ctx, key, title)
	})
	if err != nil {
		return Table{}, err
	}
	return Decode(values), nil
}

// ReadFresh bypasses the cache and read sharing. Use it inside Mutate.
func (t *Tables) ReadFresh(ctx context.Context, title string) (Table, error) {
	values, err := t.store.Read(ctx, title)
	if err != nil {
		return Table{}, err
	}
	return Decode(values), nil
}

// Write replaces a tab with header and rows.
func (t *Tables) Write(ctx context.Context, title string, header []string, rows []Record) error {
	return t.store.Write(ctx, title, Encode(header, rows))
}

// Mutate runs fn inside the spreadsheet lock and bumps the cache version
// when fn succeeds. The new version is returned. Once fn has succeeded the
// write is committed, so a failed bump is logged rather than returned;
// cached reads then expire with the cache TTL.
func (t *Tables) Mutate(ctx context.Context, fn func(context.Context) error) (int64, error) {
	run := func(ctx context.Context) error { return fn(ctx) }
	var err error
	if t.locker != nil {
		err = t.locker.WithLock(ctx, t.lockKey, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		return 0, err
	}
	if t.cache == nil {
		return 0, nil
	}
	ver, err := t.cache.Bump(ctx)
	if err != nil {
		t.log().Warn("sheets: bump cache version", slog.Any("error", err))
	}
	return ver, nil
}

// EnsureTab creates title with header when it does not exist yet, and
// writes the header into an existing but empty tab.
func (t *Tables) EnsureTab(ctx context.Context, title string, header []string) error {
	tabs, err := t.store.Tabs(ctx)
	if err != nil {
		return err
	}
	if _, ok := FindTab(tabs, title); !ok {
		if _, err := t.store.AddTab(ctx, title); err != nil {
			return err
		}
		return t.Write(ctx, title, header, nil)
	}
	values, err := t.store.Read(ctx, title)
	if err != nil && !errors.Is(err, ErrTabNotFound) {
		return err
	}
	if len(values) == 0 {
		return t.Write(ctx, title, header, nil)
	}
	return nil
}

func (t *Tables) log() *slog.Logger {
	if t.logger != nil {
		return t.logger
	}
	return slog.Default()
}

// load shares concurrent reads of the same versioned key, so a read never
// joins one that started before the latest write.
func (t *Tables) load(ctx context.Context, key, title string) ([][]string, error) {
	v, err, _ := t.group.Do(key, func() (any, error) {
		return t.store.Read(ctx, title)
	})
	if err != nil {
		return nil, err
	}
	return v.([][]string), nil
}
