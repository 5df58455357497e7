package middleware

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/sessions"
	"github.com/hertz-contrib/sessions/cookie"
	"go.uber.org/zap"

	"alms/internal/session"
	"alms/pkg/logger"
)

// SessionCookieName 浏览器端会话 cookie 名
const SessionCookieName = "alms_session"

// StoreProvider 取出当前请求的会话存储
type StoreProvider func(c *app.RequestContext) session.Store

// CookieSessions 签名 cookie 会话，secret 决定会话能否跨进程重启
func CookieSessions(secret []byte, maxAge int, secure bool) app.HandlerFunc {
	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.New(SessionCookieName, store)
}

// CookieStore 与 CookieSessions 配套
func CookieStore(c *app.RequestContext) session.Store {
	return sessions.Default(c)
}

// SessionMiddleware 把 *session.Controller 放进 RequestContext
func SessionMiddleware(provider StoreProvider) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		c.Set(session.ContextKey, session.New(provider(c)))
		c.Next(ctx)
	}
}

// GetSession 未挂 SessionMiddleware 时返回 nil
func GetSession(c *app.RequestContext) *session.Controller {
	v, ok := c.Get(session.ContextKey)
	if !ok {
		return nil
	}
	ctrl, _ := v.(*session.Controller)
	return ctrl
}

// RedirectHome 写入提示后 303 回首页
func RedirectHome(c *app.RequestContext, level, text string) {
	if s := GetSession(c); s != nil {
		if text != "" {
			s.AddFlash(level, text)
		}
		if err := s.Save(); err != nil {
			logger.Logger.Error("Failed to save session", zap.Error(err), zap.String("request_id", RequestID(c)))
		}
	}
	c.Redirect(http.StatusSeeOther, []byte("/"))
}

// RequireLogin 未登录时带提示回到登录页
func RequireLogin() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		s := GetSession(c)
		if s == nil || s.State() != session.LoggedIn {
			RedirectHome(c, session.LevelWarning, "Please log in first.")
			c.Abort()
			return
		}
		c.Next(ctx)
	}
}
