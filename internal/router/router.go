package router

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"

	"alms/internal/handler"
	"alms/internal/middleware"
	"alms/web"
)

// Options 由 cmd/server 按配置组装
type Options struct {
	Recover middleware.RecoverConfig
	// Sessions 为 nil 时只用 Store 取会话，测试中配合 MemoryStore
	Sessions app.HandlerFunc
	Store    middleware.StoreProvider
	// CSRFSecret 为空时不启用 CSRF
	CSRFSecret string
	// RateLimiter 为 nil 时不限流
	RateLimiter *middleware.RateLimiter
	// Observability 追踪与指标中间件，挂在最外层
	Observability []app.HandlerFunc
}

func Register(h *server.Hertz, hd *handler.Handler, opts Options) {
	h.SetHTMLTemplate(web.Templates())

	h.Use(middleware.RecoverMiddleware(opts.Recover))
	h.Use(middleware.RequestIDMiddleware())
	h.Use(opts.Observability...)
	h.Use(middleware.AccessLogMiddleware())

	h.GET("/healthz", handler.Healthz)

	portal := h.Group("/")
	if opts.Sessions != nil {
		portal.Use(opts.Sessions)
	}
	portal.Use(middleware.SessionMiddleware(opts.Store))
	if opts.CSRFSecret != "" {
		portal.Use(middleware.CSRFMiddleware(opts.CSRFSecret))
	}

	portal.GET("/", hd.Index)
	portal.POST("/logout", hd.Logout)

	login := []app.HandlerFunc{}
	if opts.RateLimiter != nil {
		login = append(login, middleware.LoginRateLimitMiddleware(opts.RateLimiter))
	}
	portal.POST("/login", append(login, hd.Login)...)

	// 需要登录
	member := portal.Group("/", middleware.RequireLogin())
	{
		member.POST("/attendance/clock-in", hd.ClockIn)
		member.POST("/attendance/clock-out", hd.ClockOut)
		member.POST("/leave", hd.ApplyLeave)
	}
}
