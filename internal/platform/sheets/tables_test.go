package sheets

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/ledgerbook/internal/platform/cache"
)

type countingStore struct {
	*MemoryStore
	reads atomic.Int32
}

func (c *countingStore) Read(ctx context.Context, title string) ([][]string, error) {
	c.reads.Add(1)
	return c.MemoryStore.Read(ctx, title)
}

type recordingLocker struct {
	keys []string
}

func (r *recordingLocker) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	r.keys = append(r.keys, key)
	return fn(ctx)
}

func newTestTables(t *testing.T) (*Tables, *countingStore, *recordingLocker) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := &countingStore{MemoryStore: NewMemoryStore()}
	locker := &recordingLocker{}
	tables := NewTables(store, cache.NewCache(client, time.Minute), locker, "ledgerbook:sheet:test:lock")
	return tables, store, locker
}

func TestTablesReadIsCachedUntilMutate(t *testing.T) {
	ctx := context.Background()
	tables, store, locker := newTestTables(t)
	require.NoError(t, tables.EnsureTab(ctx, "CurrentData", []string{"id", "name"}))

	_, err := tables.Read(ctx, "CurrentData")
	require.NoError(t, err)
	_, err = tables.Read(ctx, "CurrentData")
	require.NoError(t, err)
	assert.EqualValues(t, 1, store.reads.Load())

	ver, err := tables.Mutate(ctx, func(ctx context.Context) error {
		current, err := tables.ReadFresh(ctx, "CurrentData")
		if err != nil {
			return err
		}
		rows := append(current.Rows, Record{"id": "a1", "name": "Ravi"})
		return tables.Write(ctx, "CurrentData", current.Header, rows)
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, ver)
	assert.Equal(t, []string{"ledgerbook:sheet:test:lock"}, locker.keys)

	table, err := tables.Read(ctx, "CurrentData")
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Ravi", table.Rows[0]["name"])
}

func TestTablesMutateSkipsBumpOnError(t *testing.T) {
	ctx := context.Background()
	tables, _, _ := newTestTables(t)

	_, err := tables.Mutate(ctx, func(ctx context.Context) error {
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
}

func TestTablesMutateSucceedsWhenBumpFails(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	store := NewMemoryStore()
	tables := NewTables(store, cache.NewCache(client, time.Minute), &recordingLocker{}, "ledgerbook:sheet:test:lock")
	tables.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, tables.EnsureTab(ctx, "CurrentData", []string{"id", "name"}))

	_, err := tables.Mutate(ctx, func(ctx context.Context) error {
		if err := tables.Write(ctx, "CurrentData", []string{"id", "name"}, []Record{{"id": "a1", "name": "Ravi"}}); err != nil {
			return err
		}
		mr.Close()
		return nil
	})
	require.NoError(t, err)

	values, err := store.Read(ctx, "CurrentData")
	require.NoError(t, err)
	assert.Len(t, values, 2)
}

func TestEnsureTabWritesHeaderOnce(t *testing.T) {
	ctx := context.Background()
	tables, store, _ := newTestTables(t)

	require.NoError(t, tables.EnsureTab(ctx, "SavedReports", []string{"reportId", "reportDate"}))
	require.NoError(t, store.Write(ctx, "SavedReports", [][]string{{"reportId", "reportDate"}, {"r1", "2024-01-05"}}))
	require.NoError(t, tables.EnsureTab(ctx, "SavedReports", []string{"reportId", "reportDate"}))

	values, err := store.MemoryStore.Read(ctx, "SavedReports")
	require.NoError(t, err)
	assert.Len(t, values, 2)
}
