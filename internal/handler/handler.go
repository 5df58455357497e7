package handler

import (
	"context"
	"time"

	"alms/internal/model"
	"alms/internal/model/dto"
	"alms/internal/service"
)

type authService interface {
	ListEmployees(ctx context.Context) ([]dto.EmployeeOption, error)
	Authenticate(ctx context.Context, registeredID, passkey string) (*model.Employee, error)
}

type attendanceService interface {
	OpenClockIn(ctx context.Context, identity model.Identity, ts time.Time) (*model.Attendance, error)
	CloseLatestOpenClock(ctx context.Context, identity model.Identity, ts time.Time) (*model.Attendance, error)
}

type leaveService interface {
	Apply(ctx context.Context, identity model.Identity, start, end time.Time, reason string) (*service.LeaveResult, error)
}

// Handler 门户的表单处理，所有 POST 以 303 回到首页
type Handler struct {
	auth       authService
	attendance attendanceService
	leave      leaveService
	now        func() time.Time
}

type Option func(*Handler)

// WithClock 测试中固定打卡时间
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

func New(auth authService, attendance attendanceService, leave leaveService, opts ...Option) *Handler {
	h := &Handler{
		auth:       auth,
		attendance: attendance,
		leave:      leave,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Default 使用 service 包的全局单例
func Default() *Handler {
	return New(service.Auth(), service.Attendance(), service.Leave())
}

// 出现未预期错误时展示给用户的提示
const somethingWrong = "Something went wrong, please try again."

const timeLayout = "2006-01-02 15:04:05"
