package gateway

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_SlidingWindow(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter().WithClock(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "ip", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "запрос %d", i)
		now = now.Add(10 * time.Second)
	}

	allowed, _ := limiter.Allow(ctx, "ip", 3, time.Minute)
	assert.False(t, allowed)

	other, _ := limiter.Allow(ctx, "other-ip", 3, time.Minute)
	assert.True(t, other)

	// первый запрос был в 12:00:00, окно сдвинулось
	now = time.Date(2025, 3, 1, 12, 1, 0, 0, time.UTC)
	allowed, _ = limiter.Allow(ctx, "ip", 3, time.Minute)
	assert.True(t, allowed)

	allowed, _ = limiter.Allow(ctx, "ip", 3, time.Minute)
	assert.False(t, allowed)
}

func TestMemoryLimiter_Concurrent(t *testing.T) {
	limiter := NewMemoryLimiter()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _ := limiter.Allow(context.Background(), "ip", 10, time.Minute)
			if ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
}

func TestMemoryLimiter_Disabled(t *testing.T) {
	limiter := NewMemoryLimiter()

	for i := 0; i < 5; i++ {
		ok, err := limiter.Allow(context.Background(), "", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, _ = limiter.Allow(context.Background(), "ip", 0, time.Minute)
		assert.True(t, ok)
	}
}

// Ключи без запросов в текущем окне удаляются
func TestMemoryLimiter_SweepsIdleKeys(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter().WithClock(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		_, err := limiter.Allow(ctx, fmt.Sprintf("ip-%d", i), 5, time.Minute)
		require.NoError(t, err)
	}
	assert.Equal(t, 20, limiter.Keys())

	now = now.Add(2 * time.Minute)
	allowed, err := limiter.Allow(ctx, "fresh", 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, limiter.Keys())

	// в пределах окна чистки нет, живой ключ остаётся
	now = now.Add(30 * time.Second)
	_, _ = limiter.Allow(ctx, "other", 5, time.Minute)
	assert.Equal(t, 2, limiter.Keys())
}

func TestRedisLimiter_FailOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	limiter := NewRedisLimiter(client, "ratelimit")
	allowed, err := limiter.Allow(context.Background(), "ip", 1, time.Minute)

	assert.True(t, allowed)
	assert.Error(t, err)
}
