package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return NewStore(client), mr, cleanup
}

func TestStore_IncrWithExpiry(t *testing.T) {
	store, mr, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("first increment sets window", func(t *testing.T) {
		count, err := store.IncrWithExpiry(ctx, "rate:1:/api/chat", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		assert.Equal(t, time.Minute, mr.TTL("rate:1:/api/chat"))
	})

	t.Run("later increments keep running window", func(t *testing.T) {
		mr.FastForward(20 * time.Second)

		count, err := store.IncrWithExpiry(ctx, "rate:1:/api/chat", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
		assert.Equal(t, 40*time.Second, mr.TTL("rate:1:/api/chat"))
	})

	t.Run("counter resets after window", func(t *testing.T) {
		mr.FastForward(41 * time.Second)
		assert.False(t, mr.Exists("rate:1:/api/chat"))

		count, err := store.IncrWithExpiry(ctx, "rate:1:/api/chat", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("key without ttl gets one", func(t *testing.T) {
		require.NoError(t, mr.Set("rate:2:/api/chat", "5"))

		count, err := store.IncrWithExpiry(ctx, "rate:2:/api/chat", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(6), count)
		assert.Equal(t, time.Minute, mr.TTL("rate:2:/api/chat"))
	})

	t.Run("sub-second window rounds up", func(t *testing.T) {
		_, err := store.IncrWithExpiry(ctx, "rate:3:/api/chat", 10*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, time.Second, mr.TTL("rate:3:/api/chat"))
	})
}

func TestStore_IncrWithExpiry_Concurrent(t *testing.T) {
	store, mr, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	const workers = 50
	const key = "rate:42:/api/chat"

	var wg sync.WaitGroup
	results := make(chan int64, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count, err := store.IncrWithExpiry(ctx, key, time.Minute)
			assert.NoError(t, err)
			results <- count
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool)
	for count := range results {
		assert.False(t, seen[count], "count %d returned twice", count)
		seen[count] = true
	}
	assert.Len(t, seen, workers)

	value, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprint(workers), value)
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestStore_IncrWithExpiry_Unreachable(t *testing.T) {
	store, mr, cleanup := setupTestStore(t)
	defer cleanup()

	mr.Close()

	_, err := store.IncrWithExpiry(context.Background(), "rate:1:/api/chat", time.Minute)
	assert.Error(t, err)
}

func TestStore_JSON(t *testing.T) {
	store, mr, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	type summary struct {
		SessionID int64  `json:"session_id"`
		Preview   string `json:"preview"`
	}

	err := store.SetJSON(ctx, "session:last:1", summary{SessionID: 9, Preview: "hi"}, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL("session:last:1"))

	var got summary
	found, err := store.GetJSON(ctx, "session:last:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(9), got.SessionID)
	assert.Equal(t, "hi", got.Preview)

	found, err = store.GetJSON(ctx, "session:last:404", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_Ping(t *testing.T) {
	store, mr, cleanup := setupTestStore(t)
	defer cleanup()

	assert.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}
