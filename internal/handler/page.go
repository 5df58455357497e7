package handler

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"go.uber.org/zap"

	"alms/internal/middleware"
	"alms/internal/model/dto"
	"alms/internal/session"
	"alms/pkg/logger"
	"alms/web"
)

// Index 未登录显示登录页，已登录显示打卡与请假页；待展示的提示在这里被消费
// GET /
func (h *Handler) Index(ctx context.Context, c *app.RequestContext) {
	s := middleware.GetSession(c)
	flashes := s.Flashes()

	data := utils.H{
		"Flashes": flashes,
		"CSRF":    middleware.CSRFToken(c),
	}

	name := web.LoginPage
	if identity, ok := s.Identity(); ok {
		name = web.MainPage
		at, clockedIn := s.ClockInAt()
		data["Identity"] = identity
		data["ClockedIn"] = clockedIn
		data["ClockInAt"] = at
		data["Today"] = h.now().Format("2006-01-02")
	} else {
		employees, err := h.auth.ListEmployees(ctx)
		if err != nil {
			logger.Logger.Error("Failed to list employees",
				zap.Error(err),
				zap.String("request_id", middleware.RequestID(c)),
			)
			employees = []dto.EmployeeOption{}
			data["Flashes"] = append(flashes, session.Flash{Level: session.LevelError, Text: somethingWrong})
		}
		data["Employees"] = employees
	}

	if err := s.Save(); err != nil {
		logger.Logger.Error("Failed to save session", zap.Error(err), zap.String("request_id", middleware.RequestID(c)))
	}

	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, name, data)
}
