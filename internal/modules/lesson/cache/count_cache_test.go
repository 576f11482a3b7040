package cache

import (
	"context"
	"testing"
	"time"

	"anoa.com/courseplatform/pkg/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	count int64
	calls int
}

func (f *fakeCounter) CountByCourse(context.Context, uuid.UUID) (int64, error) {
	f.calls++
	return f.count, nil
}

func TestCountCacheReadsThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	counter := &fakeCounter{count: 4}
	c := NewCountCache(rdb, counter, time.Minute, logger.Nop())
	ctx := context.Background()
	courseID := uuid.New()

	n, err := c.Count(ctx, courseID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	counter.count = 5
	n, err = c.Count(ctx, courseID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n, "served from cache")
	assert.Equal(t, 1, counter.calls)

	require.NoError(t, c.Invalidate(ctx, courseID))
	n, err = c.Count(ctx, courseID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, 2, counter.calls)
}

func TestCountCacheExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	counter := &fakeCounter{count: 1}
	c := NewCountCache(rdb, counter, time.Minute, logger.Nop())
	ctx := context.Background()
	courseID := uuid.New()

	_, err := c.Count(ctx, courseID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(key(courseID)))

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists(key(courseID)))
}

func TestCountCacheWithoutRedis(t *testing.T) {
	counter := &fakeCounter{count: 2}
	c := NewCountCache(nil, counter, time.Minute, logger.Nop())

	for i := 0; i < 3; i++ {
		n, err := c.Count(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	}
	assert.Equal(t, 3, counter.calls)
	assert.NoError(t, c.Invalidate(context.Background(), uuid.New()))
}

func TestCountCacheFallsBackWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	counter := &fakeCounter{count: 7}
	c := NewCountCache(rdb, counter, time.Minute, logger.Nop())

	n, err := c.Count(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
