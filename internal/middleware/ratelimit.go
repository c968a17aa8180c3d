package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/vidtube-backend/pkg/clientip"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitKeyPrefix is the Redis key prefix for rate limiting.
const RateLimitKeyPrefix = "ratelimit:"

// RedisRateLimit is a fixed-window limiter shared by every instance behind
// the same Redis. When Redis fails the request is let through.
func RedisRateLimit(client *redis.Client, limit int, window time.Duration, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := RateLimitKeyPrefix + clientip.RealClientIP(r)

			var incr *redis.IntCmd
			var ttl *redis.DurationCmd
			_, err := client.TxPipelined(ctx, func(p redis.Pipeliner) error {
				incr = p.Incr(ctx, key)
				p.ExpireNX(ctx, key, window)
				ttl = p.PTTL(ctx, key)
				return nil
			})
			if err != nil {
				log.Warn("rate limiter unavailable, allowing request", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			count := int(incr.Val())
			reset := window
			if d := ttl.Val(); d > 0 {
				reset = d
			}
			remaining := limit - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(reset).Unix(), 10))

			if count > limit {
				w.Header().Set("Retry-After", strconv.Itoa(int(reset.Seconds())+1))
				tooManyRequests(w, "Rate limit exceeded. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
