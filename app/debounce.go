// app/debounce.go
package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Debounce rejects a second write in the same scope by the same user within
// window. Redis errors let the request through. A write that fails releases
// the window so the corrected retry is not rejected.
func Debounce(rdb *redis.Client, scope string, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString(KeyUserID)
		if uid == "" || window <= 0 {
			c.Next()
			return
		}

		key := "debounce:" + scope + ":" + uid
		ok, err := rdb.SetNX(c.Request.Context(), key, "1", window).Result()
		if err != nil {
			slog.Warn("debounce unavailable", "scope", scope, "err", err)
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, H{
				"error": "too many requests, try again shortly",
				"kind":  "rate_limited",
			})
			return
		}
		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := rdb.Del(c.Request.Context(), key).Err(); err != nil {
				slog.Warn("debounce release failed", "scope", scope, "err", err)
			}
		}
	}
}
