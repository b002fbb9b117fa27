package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-webclient/pkg/logger"
)

// LoggerConfig configures the request logging middleware.
type LoggerConfig struct {
	// SkipPaths are routes that are never logged, such as health probes.
	SkipPaths []string
	// SlowRequestThreshold escalates the log entry to WARN when exceeded.
	SlowRequestThreshold time.Duration
}

// Logger logs every request with the default configuration.
func Logger(log *zap.Logger) gin.HandlerFunc {
	return LoggerWithConfig(log, LoggerConfig{
		SkipPaths:            []string{"/health"},
		SlowRequestThreshold: time.Second,
	})
}

// LoggerWithConfig logs every request once it has been handled.
func LoggerWithConfig(log *zap.Logger, cfg LoggerConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if _, ok := skip[c.FullPath()]; ok {
			return
		}

		latency := time.Since(start)
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		l := logger.WithContext(c.Request.Context(), log)
		switch {
		case status >= 500:
			l.Error("HTTP request", fields...)
		case status >= 400:
			l.Warn("HTTP request", fields...)
		case cfg.SlowRequestThreshold > 0 && latency > cfg.SlowRequestThreshold:
			l.Warn("HTTP request slow", fields...)
		default:
			l.Info("HTTP request", fields...)
		}
	}
}
