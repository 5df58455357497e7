package handler

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"alms/internal/middleware"
	"alms/internal/session"
	"alms/pkg/errors"
	"alms/pkg/logger"
)

// ClockIn 已有打卡标记时只提示，不写库
// POST /attendance/clock-in
func (h *Handler) ClockIn(ctx context.Context, c *app.RequestContext) {
	s := middleware.GetSession(c)
	identity, _ := s.Identity()

	if _, ok := s.ClockInAt(); ok {
		middleware.RedirectHome(c, session.LevelWarning, errors.AlreadyClockedIn.Message)
		return
	}

	now := h.now()
	if _, err := h.attendance.OpenClockIn(ctx, identity, now); err != nil {
		logger.Logger.Error("Clock in failed",
			zap.String("registered_id", identity.RegisteredID),
			zap.Error(err),
			zap.String("request_id", middleware.RequestID(c)),
		)
		middleware.RedirectHome(c, session.LevelError, somethingWrong)
		return
	}

	s.StartClock(now)
	middleware.RedirectHome(c, session.LevelSuccess, "Clocked in at "+now.Format(timeLayout))
}

// ClockOut 没有未关闭记录时吞掉 NotFound，只展示下班时间；两种情况都清除打卡标记
// POST /attendance/clock-out
func (h *Handler) ClockOut(ctx context.Context, c *app.RequestContext) {
	s := middleware.GetSession(c)
	identity, _ := s.Identity()

	if _, ok := s.ClockInAt(); !ok {
		middleware.RedirectHome(c, session.LevelWarning, errors.NotClockedIn.Message)
		return
	}

	now := h.now()
	record, err := h.attendance.CloseLatestOpenClock(ctx, identity, now)
	switch {
	case err == nil:
		s.StopClock()
		msg := fmt.Sprintf("Clocked out at %s, Duration: %.2f hours", now.Format(timeLayout), *record.Duration)
		middleware.RedirectHome(c, session.LevelSuccess, msg)
	case errors.Is(err, errors.NoOpenAttendance):
		logger.Logger.Warn("Clock out without an open attendance record",
			zap.String("registered_id", identity.RegisteredID),
		)
		s.StopClock()
		middleware.RedirectHome(c, session.LevelSuccess, "Clocked out at "+now.Format(timeLayout))
	default:
		// 数据库故障时保留标记，用户可以重试
		logger.Logger.Error("Clock out failed",
			zap.String("registered_id", identity.RegisteredID),
			zap.Error(err),
			zap.String("request_id", middleware.RequestID(c)),
		)
		middleware.RedirectHome(c, session.LevelError, somethingWrong)
	}
}
