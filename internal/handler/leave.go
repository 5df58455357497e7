package handler

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"alms/internal/middleware"
	"alms/internal/model"
	"alms/internal/model/dto"
	"alms/internal/session"
	"alms/pkg/errors"
	"alms/pkg/logger"
)

// ApplyLeave 日期在调用服务前校验；通知失败只提示，请假记录保留
// POST /leave
func (h *Handler) ApplyLeave(ctx context.Context, c *app.RequestContext) {
	s := middleware.GetSession(c)
	identity, _ := s.Identity()

	var req dto.LeaveRequest
	if err := c.Bind(&req); err != nil {
		middleware.RedirectHome(c, session.LevelWarning, errors.InvalidRequest.Message)
		return
	}

	start, errStart := parseDate(req.StartDate)
	end, errEnd := parseDate(req.EndDate)
	if errStart != nil || errEnd != nil {
		middleware.RedirectHome(c, session.LevelWarning, errors.LeaveDateInvalid.Message)
		return
	}
	if start.After(end) {
		middleware.RedirectHome(c, session.LevelWarning, errors.LeaveDateReversed.Message)
		return
	}

	result, err := h.leave.Apply(ctx, identity, start, end, strings.TrimSpace(req.Reason))
	if err != nil {
		if errors.IsValidation(err) {
			def, _ := errors.From(err)
			middleware.RedirectHome(c, session.LevelWarning, def.Message)
			return
		}
		logger.Logger.Error("Leave submission failed",
			zap.String("registered_id", identity.RegisteredID),
			zap.Error(err),
			zap.String("request_id", middleware.RequestID(c)),
		)
		middleware.RedirectHome(c, session.LevelError, somethingWrong)
		return
	}

	if result.NotifyErr != nil {
		logger.Logger.Warn("Leave notification failed",
			zap.String("registered_id", identity.RegisteredID),
			zap.Int64("leave_id", result.Leave.ID),
			zap.Error(result.NotifyErr),
		)
		middleware.RedirectHome(c, session.LevelWarning, errors.NotifyFailed.Message)
		return
	}

	middleware.RedirectHome(c, session.LevelSuccess, "Leave application submitted successfully!")
}

func parseDate(value string) (time.Time, error) {
	return time.ParseInLocation(model.DateLayout, strings.TrimSpace(value), time.Local)
}
