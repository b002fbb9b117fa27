package middleware

import (
	"github.com/gin-gonic/gin"

	"user-webclient/pkg/logger"
)

// RequestID propagates the caller's X-Request-ID, or a generated one, through
// the request context and echoes it on the response. A W3C traceparent, when
// present, is carried along as well.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := logger.ExtractTrace(c.Request.Context(), c.Request.Header)
		if id := c.GetHeader(logger.HeaderRequestID); id != "" {
			ctx = logger.WithRequestID(ctx, id)
		}
		ctx, id := logger.EnsureRequestID(ctx)

		c.Request = c.Request.WithContext(ctx)
		c.Header(logger.HeaderRequestID, id)
		c.Next()
	}
}
