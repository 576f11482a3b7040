package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"anoa.com/courseplatform/pkg/apperror"
	"github.com/redis/go-redis/v9"
)

const (
	ScopeLogin    = "login"
	ScopeRegister = "register"
)

// RateLimitError carries the wait time so handlers can emit Retry-After.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, apperror.ErrRateLimitExceeded) hold for every RateLimitError.
func (e *RateLimitError) Is(target error) bool {
	return target == apperror.ErrRateLimitExceeded
}

func key(subject, scope string) string {
	return fmt.Sprintf("rate_limit:%s:%s", scope, subject)
}

// CheckAndSetRateLimit claims the cooldown window for subject. It reports false when the
// window is already held. A nil client or a non-positive limit disables limiting.
func CheckAndSetRateLimit(ctx context.Context, rdb *redis.Client, subject, scope string, limit time.Duration) (bool, error) {
	if rdb == nil || limit <= 0 {
		return true, nil
	}

	wasSet, err := rdb.SetNX(ctx, key(subject, scope), "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

// Allow increments the attempt counter for subject and reports whether it is still within
// max attempts for the current window.
func Allow(ctx context.Context, rdb *redis.Client, subject, scope string, max int64, window time.Duration) (bool, time.Duration, error) {
	if rdb == nil || max <= 0 {
		return true, 0, nil
	}

	k := key(subject, scope)
	attempts, err := rdb.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	if attempts == 1 {
		if err := rdb.Expire(ctx, k, window).Err(); err != nil {
			return false, 0, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	if attempts > max {
		ttl, err := rdb.TTL(ctx, k).Result()
		if err != nil {
			return false, 0, fmt.Errorf("failed to read rate limit ttl: %w", err)
		}
		return false, ttl, nil
	}
	return true, 0, nil
}

func GetRateLimitTTL(ctx context.Context, rdb *redis.Client, subject, scope string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	return rdb.TTL(ctx, key(subject, scope)).Result()
}

func ClearRateLimit(ctx context.Context, rdb *redis.Client, subject, scope string) error {
	if rdb == nil {
		return nil
	}
	_, err := rdb.Del(ctx, key(subject, scope)).Result()
	return err
}
