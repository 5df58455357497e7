package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/csrf"
	"go.uber.org/zap"

	"alms/internal/session"
	"alms/pkg/logger"
)

const (
	// CSRFFormField 表单里隐藏字段名
	CSRFFormField  = "_csrf"
	csrfEnabledKey = "csrf_enabled"
)

// CSRFMiddleware 依赖 CookieSessions；校验失败回首页并提示重新提交
func CSRFMiddleware(secret string) app.HandlerFunc {
	protect := csrf.New(
		csrf.WithSecret(secret),
		csrf.WithKeyLookUp("form:"+CSRFFormField),
		csrf.WithErrorFunc(func(ctx context.Context, c *app.RequestContext) {
			logger.Logger.Warn("CSRF check failed",
				zap.String("path", string(c.Path())),
				zap.String("client_ip", c.ClientIP()),
				zap.String("request_id", RequestID(c)),
			)
			RedirectHome(c, session.LevelWarning, "Your form expired, please try again.")
			c.Abort()
		}),
	)

	return func(ctx context.Context, c *app.RequestContext) {
		c.Set(csrfEnabledKey, true)
		protect(ctx, c)
	}
}

// CSRFToken 模板中使用；未启用 CSRF 时返回空串
func CSRFToken(c *app.RequestContext) string {
	if !c.GetBool(csrfEnabledKey) {
		return ""
	}
	return csrf.GetToken(c)
}
