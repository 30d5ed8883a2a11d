package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniformco/backoffice/internal/infrastructure/config"
)

func TestMemoryStore_GetSet(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	value := []byte("dashboard")
	require.NoError(t, store.Set(ctx, "report:dashboard", value, time.Hour))
	value[0] = 'X'

	got, ok, err := store.Get(ctx, "report:dashboard")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "dashboard", string(got))

	require.NoError(t, store.Set(ctx, "short", []byte("x"), 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)
	_, ok, err = store.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_DeletePrefix(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "report:a", []byte("1"), time.Hour))
	require.NoError(t, store.Set(ctx, "report:b", []byte("2"), time.Hour))
	require.NoError(t, store.Set(ctx, "other", []byte("3"), time.Hour))

	require.NoError(t, store.DeletePrefix(ctx, "report:"))
	assert.Equal(t, 1, store.Size())
}

func TestJSONHelpers(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	type payload struct {
		Count int `json:"count"`
	}
	require.NoError(t, SetJSON(ctx, store, "k", payload{Count: 3}, time.Hour))

	var got payload
	ok, err := GetJSON(ctx, store, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, got.Count)

	require.NoError(t, store.Set(ctx, "bad", []byte("{"), time.Hour))
	ok, err = GetJSON(ctx, store, "bad", &got)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_MarkProcessed(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	isNew, err := store.MarkProcessed(ctx, "msg-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.MarkProcessed(ctx, "msg-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, isNew, "already processed message should return false")

	processed, err := store.IsProcessed(ctx, "msg-1")
	require.NoError(t, err)
	assert.True(t, processed)

	_, err = store.MarkProcessed(ctx, "msg-2", 10*time.Millisecond)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	isNew, err = store.MarkProcessed(ctx, "msg-2", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew, "expired message should be reprocessable")
}

func TestMemoryStore_Cleanup(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	_, _ = store.MarkProcessed(ctx, "short-1", 10*time.Millisecond)
	_, _ = store.MarkProcessed(ctx, "short-2", 10*time.Millisecond)
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)
	assert.Equal(t, 3, store.Size())

	time.Sleep(20 * time.Millisecond)
	store.cleanup()
	assert.Equal(t, 1, store.Size())
}

func TestMemoryStore_ConcurrentMarkProcessed(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	const n = 100
	results := make(chan bool, n)
	for range n {
		go func() {
			isNew, err := store.MarkProcessed(ctx, "same", time.Hour)
			results <- err == nil && isNew
		}()
	}
	winners := 0
	for range n {
		if <-results {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestMemoryStore_CloseTwice(t *testing.T) {
	store := NewMemoryStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestFactory_DisabledUsesMemory(t *testing.T) {
	backend, err := NewFactory(configWithRedis(false)).Open(context.Background())
	require.NoError(t, err)
	defer backend.Close()
	assert.Nil(t, backend.Client)
	assert.IsType(t, &MemoryStore{}, backend.Store)
}

func TestFactory_UnreachableRedis(t *testing.T) {
	cfg := configWithRedis(true)

	backend, err := NewFactory(cfg).Open(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, backend.Store)
	_ = backend.Close()

	_, err = NewFactory(cfg, WithInMemoryFallback(false)).Open(context.Background())
	assert.Error(t, err)
}

// configWithRedis points at a port nothing listens on
func configWithRedis(enabled bool) config.RedisConfig {
	return config.RedisConfig{Enabled: enabled, Host: "127.0.0.1", Port: 1}
}
