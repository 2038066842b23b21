package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"loan-underwriter/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter counts requests per client IP in a fixed one-second window
// shared by every replica. Redis failures let the request through.
type RedisRateLimiter struct {
	redisClient *redis.Client
	cfg         config.RateLimitConfig
	logger      *slog.Logger
	window      time.Duration
}

func NewRedisRateLimiter(cfg config.RateLimitConfig, redisClient *redis.Client, logger *slog.Logger) *RedisRateLimiter {
	if cfg.Enabled && redisClient == nil {
		logger.Warn("Rate limiting enabled but no Redis client provided; disabling.")
		cfg.Enabled = false
	}
	return &RedisRateLimiter{
		redisClient: redisClient,
		cfg:         cfg,
		logger:      logger,
		window:      time.Second,
	}
}

func (rl *RedisRateLimiter) IsEnabled() bool {
	return rl.cfg.Enabled && rl.redisClient != nil
}

// limit is the number of requests allowed per window.
func (rl *RedisRateLimiter) limit() int64 {
	return int64(math.Max(1, math.Ceil(rl.cfg.RPS*rl.window.Seconds())))
}

func rateLimitKey(ip string) string {
	return fmt.Sprintf("ratelimit:%s", ip)
}

func (rl *RedisRateLimiter) Middleware(next http.Handler) http.Handler {
	if !rl.IsEnabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := clientIP(r)
		key := rateLimitKey(ip)

		pipe := rl.redisClient.Pipeline()
		incrCmd := pipe.Incr(ctx, key)
		ttlCmd := pipe.TTL(ctx, key)
		if _, err := pipe.Exec(ctx); err != nil {
			rl.logger.ErrorContext(ctx, "Redis pipeline failed during rate limiting check", "error", err, "ip", ip)
			next.ServeHTTP(w, r)
			return
		}

		// A key without expiry was just created by INCR.
		if ttl := ttlCmd.Val(); ttl < 0 {
			if err := rl.redisClient.Expire(ctx, key, rl.window).Err(); err != nil {
				rl.logger.ErrorContext(ctx, "Failed to set Redis EXPIRE for rate limit key", "error", err, "key", key)
			}
		}

		count := incrCmd.Val()
		if count > rl.limit() {
			rl.logger.WarnContext(ctx, "Rate limit exceeded", "ip", ip, "count", count, "limit", rl.limit())
			writeRateLimited(w,
				fmt.Sprintf("Rate limit exceeded. Limit is %d requests per %v.", rl.limit(), rl.window),
				fmt.Sprintf("%.0f", rl.window.Seconds()))
			return
		}

		next.ServeHTTP(w, r)
	})
}
