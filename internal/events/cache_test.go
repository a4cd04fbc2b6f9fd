package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportsreg/sportsreg/internal/shared"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, time.Minute), mr
}

func sampleResult() *ListResult {
	return &ListResult{
		Events: []Event{{
			ID:                   1,
			Name:                 "City Marathon",
			EventDate:            shared.NewDate(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)),
			RegistrationDeadline: shared.NewDate(time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)),
			Status:               StatusUpcoming,
			Fee:                  25.5,
			OrganizerID:          2,
			OrganizerName:        "Olga",
		}},
		Pagination: shared.NewPagination(1, 10, 1),
	}
}

func TestRedisCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	filter := Filter{Status: StatusUpcoming, Page: 1, PerPage: 10}

	_, ok, err := cache.GetList(ctx, 0, filter)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.SetList(ctx, 0, filter, sampleResult()))

	got, ok, err := cache.GetList(ctx, 0, filter)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Events, 1)
	assert.Equal(t, "City Marathon", got.Events[0].Name)
	assert.Equal(t, "2026-06-01", got.Events[0].EventDate.String())
	assert.Equal(t, 25.5, got.Events[0].Fee)

	_, ok, err = cache.GetList(ctx, 0, Filter{Status: StatusOngoing, Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.False(t, ok, "different filters must not share entries")
}

func TestRedisCacheInvalidateBumpsVersion(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	filter := Filter{Page: 1, PerPage: 10}

	require.NoError(t, cache.SetList(ctx, 0, filter, sampleResult()))
	require.NoError(t, cache.Invalidate(ctx))

	version, err := cache.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	_, ok, err := cache.GetList(ctx, version, filter)
	require.NoError(t, err)
	assert.False(t, ok)

	raw, err := mr.Get(cacheVersionKey)
	require.NoError(t, err)
	assert.Equal(t, "1", raw)
}

func TestRedisCacheStaleVersionWriteIsNotServed(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	filter := Filter{Page: 1, PerPage: 10}

	before, err := cache.Version(ctx)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx))
	require.NoError(t, cache.SetList(ctx, before, filter, sampleResult()))

	current, err := cache.Version(ctx)
	require.NoError(t, err)
	_, ok, err := cache.GetList(ctx, current, filter)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheExpires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	filter := Filter{Page: 1, PerPage: 10}

	require.NoError(t, cache.SetList(ctx, 0, filter, sampleResult()))
	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.GetList(ctx, 0, filter)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNilRedisCacheIsNoop(t *testing.T) {
	var cache *RedisCache
	ctx := context.Background()
	version, err := cache.Version(ctx)
	require.NoError(t, err)
	assert.Zero(t, version)
	_, ok, err := cache.GetList(ctx, 0, Filter{})
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, cache.SetList(ctx, 0, Filter{}, sampleResult()))
	require.NoError(t, cache.Invalidate(ctx))
}
