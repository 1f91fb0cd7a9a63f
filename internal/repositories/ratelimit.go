package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/screwfx/storefront-platform/internal/config"
)

// Rate-limited scopes. Login protects credentials from brute force; the
// tracking scope bounds how hard a client may poll the order-status endpoint.
const (
	ScopeLogin        = "login_attempts"
	ScopeTrackingPoll = "tracking_poll"
)

type RateLimitRepository interface {
	Allow(ctx context.Context, scope, key string) (bool, int, int, error)
}

type redisRateLimiter struct {
	client *redis.Client
	cfg    *config.Config
}

func NewRateLimitRepo(client *redis.Client, cfg *config.Config) RateLimitRepository {
	return &redisRateLimiter{client: client, cfg: cfg}
}

// Allow records one attempt for key inside scope and reports whether it fits
// the sliding window. Returns allowed, attempts remaining, and seconds until
// the oldest attempt leaves the window when the limit is hit.
func (r *redisRateLimiter) Allow(ctx context.Context, scope, key string) (bool, int, int, error) {

	redisKey := fmt.Sprintf("%s:%s", scope, key)

	now := time.Now().Unix()

	// Attempts before the window start no longer count.
	windowStart := now - int64(r.cfg.RateConfig.WindowSize.Seconds())

	pipe := r.client.Pipeline()

	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart))

	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now), Member: now})

	count := pipe.ZCard(ctx, redisKey)

	pipe.Expire(ctx, redisKey, r.cfg.RateConfig.WindowSize)

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("Redis pipeline execution failed for rate limit", slog.String("key", redisKey), slog.Any("error", err))
		return false, 0, 0, fmt.Errorf("redis pipeline error for rate limit check: %w", err)
	}

	attempts := count.Val()
	remaining := r.cfg.RateConfig.MaxAttempts - attempts

	if attempts >= r.cfg.RateConfig.MaxAttempts {

		oldestScoreCmd := r.client.ZRangeArgsWithScores(ctx, redis.ZRangeArgs{
			Key: redisKey, Start: 0, Stop: 0,
		})

		scores, err := oldestScoreCmd.Result()
		if err != nil || len(scores) == 0 {
			slog.Error("Failed to get oldest attempt time for rate limit", slog.String("key", redisKey), slog.Any("error", err))
			return false, 0, int(r.cfg.RateConfig.WindowSize.Seconds()), fmt.Errorf("failed to get oldest attempt time: %w", err)
		}

		oldestTimestamp := int64(scores[0].Score)

		retryAfter := max((oldestTimestamp+int64(r.cfg.RateConfig.WindowSize.Seconds()))-now, 0)

		slog.Warn("Rate limit exceeded", slog.String("scope", scope), slog.String("key", key), slog.Int64("attempts", attempts))
		return false, 0, int(retryAfter), nil
	}

	return true, int(remaining), 0, nil
}
