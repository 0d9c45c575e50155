package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/scentarena/fragrance-battle-backend/internal/errors"
	"github.com/scentarena/fragrance-battle-backend/pkg/ratelimit"
)

// RateLimitMiddleware applies a fixed-window limit per client IP. Every
// response carries X-RateLimit-* headers; rejected requests get 429 with
// the standard error envelope.
//
// keyPrefix separates independent limiters (the AI endpoints run a much
// tighter budget than the general API) so they do not share counters.
func RateLimitMiddleware(limiter *ratelimit.Limiter, keyPrefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		result, err := limiter.Check(c.Request.Context(), keyPrefix+":"+c.ClientIP())
		if err != nil {
			// A broken counter store must not take the API down.
			log.Error("Rate limit check failed", err, map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			log.Warn("Rate limit exceeded", map[string]interface{}{
				"ip":       c.ClientIP(),
				"path":     c.Request.URL.Path,
				"limit":    result.Limit,
				"reset_at": result.ResetAt.Unix(),
			})
			errors.RespondWithError(c, http.StatusTooManyRequests, errors.RateLimitExceeded,
				"Too many requests. Please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
