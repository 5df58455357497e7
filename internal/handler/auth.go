package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"alms/internal/middleware"
	"alms/internal/model/dto"
	"alms/internal/session"
	"alms/pkg/errors"
	"alms/pkg/logger"
)

// Login 选择员工并校验口令，失败时会话状态不变
// POST /login
func (h *Handler) Login(ctx context.Context, c *app.RequestContext) {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		middleware.RedirectHome(c, session.LevelWarning, errors.InvalidRequest.Message)
		return
	}

	if req.RegisteredID == "" {
		middleware.RedirectHome(c, session.LevelWarning, errors.EmployeeRequired.Message)
		return
	}

	employee, err := h.auth.Authenticate(ctx, req.RegisteredID, req.Passkey)
	if err != nil {
		if def, ok := errors.From(err); ok {
			level := session.LevelError
			if errors.IsValidation(err) {
				level = session.LevelWarning
			}
			middleware.RedirectHome(c, level, def.Message)
			return
		}

		logger.Logger.Error("Login failed",
			zap.Error(err),
			zap.String("request_id", middleware.RequestID(c)),
		)
		middleware.RedirectHome(c, session.LevelError, somethingWrong)
		return
	}

	s := middleware.GetSession(c)
	s.Login(employee.Identity())
	middleware.RedirectHome(c, session.LevelSuccess, "Login successful!")
}

// Logout 无条件回到未登录状态
// POST /logout
func (h *Handler) Logout(ctx context.Context, c *app.RequestContext) {
	s := middleware.GetSession(c)
	if identity, ok := s.Identity(); ok {
		logger.Logger.Info("Logged out", zap.String("registered_id", identity.RegisteredID))
	}
	s.Logout()
	middleware.RedirectHome(c, "", "")
}
