package middleware

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"alms/pkg/logger"
)

// AccessLogMiddleware 每个请求一行结构化日志
func AccessLogMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		c.Next(ctx)

		status := c.Response.StatusCode()
		fields := []zap.Field{
			zap.String("method", string(c.Method())),
			zap.String("path", string(c.Path())),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", RequestID(c)),
		}

		switch {
		case status >= 500:
			logger.Logger.Error("request", fields...)
		case status >= 400:
			logger.Logger.Warn("request", fields...)
		default:
			logger.Logger.Info("request", fields...)
		}
	}
}
