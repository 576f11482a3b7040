package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"anoa.com/courseplatform/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// LessonCounter is the source of truth behind the cache.
type LessonCounter interface {
	CountByCourse(ctx context.Context, courseID uuid.UUID) (int64, error)
}

// CountCache caches the number of lessons per course.
type CountCache interface {
	Count(ctx context.Context, courseID uuid.UUID) (int64, error)
	Invalidate(ctx context.Context, courseID uuid.UUID) error
}

type countCache struct {
	redisClient *redis.Client
	counter     LessonCounter
	ttl         time.Duration
	log         *logger.Logger
}

// NewCountCache returns a redis-backed cache. A nil client reads straight through.
func NewCountCache(redisClient *redis.Client, counter LessonCounter, ttl time.Duration, log *logger.Logger) CountCache {
	return &countCache{
		redisClient: redisClient,
		counter:     counter,
		ttl:         ttl,
		log:         log,
	}
}

func key(courseID uuid.UUID) string {
	return fmt.Sprintf("course:lesson_count:%s", courseID)
}

func (c *countCache) Count(ctx context.Context, courseID uuid.UUID) (int64, error) {
	if c.redisClient == nil {
		return c.counter.CountByCourse(ctx, courseID)
	}

	cached, err := c.redisClient.Get(ctx, key(courseID)).Result()
	switch {
	case err == nil:
		if n, convErr := strconv.ParseInt(cached, 10, 64); convErr == nil {
			return n, nil
		}
	case !errors.Is(err, redis.Nil):
		c.log.Warn("lesson count cache read failed", "course_id", courseID, "error", err)
	}

	n, err := c.counter.CountByCourse(ctx, courseID)
	if err != nil {
		return 0, err
	}

	if err := c.redisClient.Set(ctx, key(courseID), n, c.ttl).Err(); err != nil {
		c.log.Warn("lesson count cache write failed", "course_id", courseID, "error", err)
	}
	return n, nil
}

func (c *countCache) Invalidate(ctx context.Context, courseID uuid.UUID) error {
	if c.redisClient == nil {
		return nil
	}
	if err := c.redisClient.Del(ctx, key(courseID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate lesson count: %w", err)
	}
	return nil
}
