package middleware

import (
	"fmt"
	"net/http"
	"time"

	"codeclash/internal/common"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RateLimiter is a fixed-window counter backed by redis, shared across
// instances. It shields the metered upstream proxies (code execution, AI
// completions) from a single hot client.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	// The window sizes the counter key's time bucket; a non-positive value
	// would divide by zero there.
	if window < time.Second {
		log.Warnf("rate limiter window %v too small, using 1m", window)
		window = time.Minute
	}
	return &RateLimiter{client: client, limit: limit, window: window}
}

// Limit keys the counter by authenticated user when available, falling back
// to the remote address. Redis outages fail open.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "ratelimit:"
		if userID, ok := GetUserIDFromContext(r.Context()); ok {
			key += userID
		} else {
			key += r.RemoteAddr
		}
		key += fmt.Sprintf(":%d", time.Now().Unix()/int64(rl.window.Seconds()))

		pipe := rl.client.TxPipeline()
		incr := pipe.Incr(r.Context(), key)
		pipe.Expire(r.Context(), key, rl.window)
		if _, err := pipe.Exec(r.Context()); err != nil {
			log.WithError(err).Warn("rate limiter unavailable, letting request through")
			next.ServeHTTP(w, r)
			return
		}

		if int(incr.Val()) > rl.limit {
			common.RespondWithError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
