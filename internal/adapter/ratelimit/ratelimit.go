package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Limiter gates requests per key over a fixed window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Config configuration for rate limiting
type Config struct {
	Enabled  bool
	RedisURL string
	Requests int
	Window   time.Duration
}

// redisLimiter counts requests in Redis with a fixed expiring window.
type redisLimiter struct {
	client   *redis.Client
	logger   *logrus.Logger
	requests int
	window   time.Duration
}

// NewLimiter creates a Redis-backed limiter, or a noop one when disabled
func NewLimiter(config Config, logger *logrus.Logger) (Limiter, error) {
	if !config.Enabled {
		logger.Info("Rate limiting disabled")
		return &noopLimiter{}, nil
	}

	opt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"requests": config.Requests,
		"window":   config.Window,
	}).Info("Rate limiting service initialized")

	return &redisLimiter{
		client:   client,
		logger:   logger,
		requests: config.Requests,
		window:   config.Window,
	}, nil
}

// Allow increments the counter for key and reports whether it is still
// under the per-window limit.
func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	pipeline := l.client.Pipeline()
	incrCmd := pipeline.Incr(ctx, key)
	pipeline.Expire(ctx, key, l.window)

	if _, err := pipeline.Exec(ctx); err != nil {
		l.logger.WithContext(ctx).WithError(err).Error("Failed to increment rate limit counter")
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	count := incrCmd.Val()
	allowed := count <= int64(l.requests)
	if !allowed {
		l.logger.WithContext(ctx).WithFields(logrus.Fields{
			"key":   key,
			"count": count,
			"limit": l.requests,
		}).Warn("Rate limit exceeded")
	}
	return allowed, nil
}

// noopLimiter is used when rate limiting is disabled
type noopLimiter struct{}

func (n *noopLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return true, nil
}
