package cache

import (
	"context"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mfreeman451/fleetradar/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedisBackend connects to a real server only when
// FLEETRADAR_TEST_REDIS_ADDR is set.
func newTestRedisBackend(t *testing.T) *RedisBackend {
	t.Helper()

	addr := os.Getenv("FLEETRADAR_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("FLEETRADAR_TEST_REDIS_ADDR not set")
	}

	backend, err := NewRedisBackend(context.Background(), RedisOptions{
		Addr:      addr,
		KeyPrefix: "fleetradar-test:" + uuid.NewString() + ":",
		Retention: time.Hour,
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = backend.Close() })

	return backend
}

func TestRedisBackend_Integration(t *testing.T) {
	ctx := context.Background()
	backend := newTestRedisBackend(t)

	_, ok, err := backend.GetEntry(ctx, "1")
	require.NoError(t, err)
	assert.False(t, ok)

	fetched := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, backend.PutEntry(ctx, &models.CacheEntry{
		DeviceID:          "1",
		Health:            testHealth("1", models.StatusCaution),
		FetchedAt:         fetched.Add(-2 * time.Hour),
		ThresholdsVersion: 2,
	}))
	require.NoError(t, backend.PutEntry(ctx, &models.CacheEntry{
		DeviceID:  "2",
		Health:    testHealth("2", models.StatusHealthy),
		FetchedAt: fetched,
	}))

	got, ok, err := backend.GetEntry(ctx, "1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), got.ThresholdsVersion)
	assert.Equal(t, models.StatusCaution, got.Health.Status)

	n, err := backend.DeleteEntriesBefore(ctx, fetched.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, err = backend.GetEntry(ctx, "1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = backend.GetEntry(ctx, "2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisBackend_ReapKeepsConcurrentlyRewrittenEntries(t *testing.T) {
	ctx := context.Background()
	backend := newTestRedisBackend(t)

	now := time.Now().UTC().Truncate(time.Second)

	const devices = 200

	ids := make([]string, devices)
	for i := range ids {
		ids[i] = strconv.Itoa(i)
		require.NoError(t, backend.PutEntry(ctx, &models.CacheEntry{
			DeviceID:  ids[i],
			Health:    testHealth(ids[i], models.StatusHealthy),
			FetchedAt: now.Add(-2 * time.Hour),
		}))
	}

	var wg sync.WaitGroup

	wg.Add(2)

	go func() {
		defer wg.Done()

		for _, id := range ids {
			assert.NoError(t, backend.PutEntry(ctx, &models.CacheEntry{
				DeviceID:  id,
				Health:    testHealth(id, models.StatusHealthy),
				FetchedAt: now,
			}))
		}
	}()

	go func() {
		defer wg.Done()

		for i := 0; i < 20; i++ {
			_, err := backend.DeleteEntriesBefore(ctx, now.Add(-time.Hour))
			assert.NoError(t, err)
		}
	}()

	wg.Wait()

	// every entry has been rewritten, so nothing is left to reap
	n, err := backend.DeleteEntriesBefore(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	for _, id := range ids {
		entry, ok, err := backend.GetEntry(ctx, id)
		require.NoError(t, err)
		require.True(t, ok, "device %s was reaped after being rewritten", id)
		assert.Equal(t, now, entry.FetchedAt.UTC())
	}
}
