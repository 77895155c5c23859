package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coffee-change.backend/pkg/logger"
	"coffee-change.backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// LockDuration is the time we hold the lock while processing
	LockDuration = 30 * time.Second
	// RetentionDuration is how long we keep the response
	RetentionDuration = 24 * time.Hour

	idempotencyProcessing = "processing"
)

var (
	redisEnabled = redis.Enabled
	redisGet     = redis.Get
	redisSet     = redis.Set
	redisSetNX   = redis.SetNX
	redisDel     = redis.Del
)

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored 2xx body for a repeated
// Idempotency-Key on the same route with the same request body. Without
// Redis it passes through.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" || !redisEnabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()

		var bodyBytes []byte
		if c.Request.Body != nil {
			var err error
			bodyBytes, err = io.ReadAll(c.Request.Body)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"success": false,
					"error":   "Failed to read request body",
					"code":    "ERR_BAD_REQUEST",
				})
				return
			}
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}
		storageKey := idempotencyStorageKey(c.FullPath(), key, bodyBytes)

		val, err := redisGet(ctx, storageKey)
		switch {
		case err == nil:
			if val == idempotencyProcessing {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{
					"success": false,
					"error":   "Request already in progress",
					"code":    "ERR_IDEMPOTENCY_CONFLICT",
				})
				return
			}
			c.Header("X-Idempotency-Hit", "true")
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(val))
			c.Abort()
			return
		case !redis.IsNil(err):
			logger.Warn(ctx, "Idempotency lookup failed, processing without it", zap.Error(err))
			c.Next()
			return
		}

		acquired, err := redisSetNX(ctx, storageKey, idempotencyProcessing, LockDuration)
		if err != nil || !acquired {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"success": false,
				"error":   "Request already in progress",
				"code":    "ERR_IDEMPOTENCY_CONFLICT",
			})
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		if c.Writer.Status() >= 200 && c.Writer.Status() < 300 {
			_ = redisSet(ctx, storageKey, w.body.String(), RetentionDuration)
		} else {
			// Remove key so retry is possible
			_ = redisDel(ctx, storageKey)
		}
	}
}

// idempotencyStorageKey scopes a client key to the route and request body so
// two callers reusing one key never read each other's response.
func idempotencyStorageKey(route, key string, body []byte) string {
	sum := sha256.Sum256(body)
	return fmt.Sprintf("idempotency:%s:%s:%s", route, key, hex.EncodeToString(sum[:]))
}
