package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"alms/pkg/errors"
	"alms/pkg/logger"
	"alms/pkg/response"
)

// RecoverConfig recover 中间件配置
type RecoverConfig struct {
	EnableStackTrace bool
	// 生产环境不返回 panic 详情
	IsProduction bool
}

// RecoverMiddleware 记录 panic 与堆栈，返回 500
func RecoverMiddleware(cfg RecoverConfig) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				handlePanic(ctx, c, err, cfg)
			}
		}()

		c.Next(ctx)
	}
}

func handlePanic(ctx context.Context, c *app.RequestContext, err interface{}, cfg RecoverConfig) {
	var stack []byte
	if cfg.EnableStackTrace {
		stack = filterStack(debug.Stack())
	}

	fields := []zap.Field{
		zap.String("panic", fmt.Sprintf("%v", err)),
		zap.String("path", string(c.Path())),
		zap.String("method", string(c.Method())),
		zap.String("client_ip", c.ClientIP()),
		zap.String("request_id", RequestID(c)),
	}
	if len(stack) > 0 {
		fields = append(fields, zap.ByteString("stack", stack))
	}
	logger.Logger.Error("[PANIC RECOVERED]", fields...)

	errDef := errors.Definition{Code: "INTERNAL_SERVER_ERROR", Message: "Something went wrong, please try again."}
	c.Abort()
	if cfg.IsProduction {
		response.Error(ctx, c, errDef)
		return
	}
	response.ErrorWithDetails(ctx, c, errDef, map[string]interface{}{
		"panic":      fmt.Sprintf("%v", err),
		"request_id": RequestID(c),
	})
}

// filterStack 去掉 runtime 与 recover 自身的帧
func filterStack(stack []byte) []byte {
	lines := strings.Split(string(stack), "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.Contains(line, "/runtime/") || strings.Contains(line, "runtime/debug") {
			continue
		}
		filtered = append(filtered, line)
	}
	return []byte(strings.Join(filtered, "\n"))
}
