package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type cacheWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (cw *cacheWriter) Write(b []byte) (int, error) {
	cw.buf.Write(b)
	return cw.ResponseWriter.Write(b)
}

func cacheKey(prefix string, r *http.Request) string {
	sum := sha1.Sum([]byte(r.URL.Path + "?" + r.URL.RawQuery))
	return fmt.Sprintf("%s:%x", prefix, sum[:])
}

// CacheList serves successful GET list responses out of Redis for a short
// TTL. A nil client disables caching entirely, so the service runs without
// Redis in development.
func CacheList(rdb *redis.Client, prefix string, ttl time.Duration, logger *slog.Logger) gin.HandlerFunc {
	if rdb == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		key := cacheKey(prefix, c.Request)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 200*time.Millisecond)
		cached, err := rdb.Get(ctx, key).Bytes()
		cancel()
		if err == nil && len(cached) > 0 {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			c.Abort()
			return
		}

		cw := &cacheWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Next()

		if c.Writer.Status() != http.StatusOK || cw.buf.Len() == 0 {
			return
		}
		ctx, cancel = context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := rdb.Set(ctx, key, cw.buf.Bytes(), ttl).Err(); err != nil {
			logger.Debug("cache store failed", "key", key, "error", err)
		}
	}
}

// InvalidateCache drops every cached page under the prefix after a write.
func InvalidateCache(rdb *redis.Client, prefix string, logger *slog.Logger) gin.HandlerFunc {
	if rdb == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		c.Next()
		if c.Request.Method == http.MethodGet || c.Writer.Status() >= 400 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		iter := rdb.Scan(ctx, 0, prefix+":*", 100).Iterator()
		for iter.Next(ctx) {
			if err := rdb.Del(ctx, iter.Val()).Err(); err != nil {
				logger.Debug("cache invalidate failed", "key", iter.Val(), "error", err)
			}
		}
	}
}
