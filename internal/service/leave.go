package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"alms/internal/model"
	"alms/internal/repository"
	"alms/pkg/errors"
	"alms/pkg/logger"
	"alms/pkg/metrics"
	"alms/storage/database"
)

type leaveStore interface {
	Create(ctx context.Context, leave *model.Leave) error
}

var (
	leaveService *LeaveService
	leaveOnce    sync.Once
)

// Leave 依赖 InitNotification 已执行
func Leave() *LeaveService {
	leaveOnce.Do(func() {
		var notifier LeaveNotifier
		if n := Notification(); n != nil {
			notifier = n
		}
		leaveService = NewLeaveService(repository.NewLeaveRepository(database.DB()), notifier)
	})
	return leaveService
}

type LeaveService struct {
	leaves   leaveStore
	notifier LeaveNotifier
}

func NewLeaveService(leaves leaveStore, notifier LeaveNotifier) *LeaveService {
	return &LeaveService{leaves: leaves, notifier: notifier}
}

// LeaveResult NotifyErr 非空时请假已入库，只是通知没发出去
type LeaveResult struct {
	Leave     *model.Leave
	NotifyErr error
}

// SubmitLeave 开始日期晚于结束日期时不写库
func (s *LeaveService) SubmitLeave(ctx context.Context, identity model.Identity, start, end time.Time, reason string) (*model.Leave, error) {
	if identity.IsZero() {
		return nil, errors.Unauthorized
	}
	if start.IsZero() || end.IsZero() {
		return nil, errors.LeaveDateInvalid
	}
	if start.After(end) {
		metrics.RecordLeave(ctx, "invalid")
		return nil, errors.LeaveDateReversed
	}

	leave := &model.Leave{
		Name:         identity.Name,
		Email:        identity.Email,
		RegisteredID: identity.RegisteredID,
		StartDate:    start,
		EndDate:      end,
		Reason:       reason,
	}
	if err := s.leaves.Create(ctx, leave); err != nil {
		metrics.RecordLeave(ctx, "error")
		return nil, fmt.Errorf("submit leave: %w", err)
	}

	logger.Logger.Info("Leave submitted",
		zap.String("registered_id", identity.RegisteredID),
		zap.Int64("leave_id", leave.ID),
		zap.Int("days", leave.Days()),
	)
	metrics.RecordLeave(ctx, "success")
	return leave, nil
}

// Apply 写库后发通知；通知失败记在 NotifyErr，不影响返回的 Leave
func (s *LeaveService) Apply(ctx context.Context, identity model.Identity, start, end time.Time, reason string) (*LeaveResult, error) {
	leave, err := s.SubmitLeave(ctx, identity, start, end, reason)
	if err != nil {
		return nil, err
	}

	result := &LeaveResult{Leave: leave}
	if s.notifier == nil {
		result.NotifyErr = errors.NotifyUnavailable
		return result, nil
	}
	result.NotifyErr = s.notifier.NotifyLeaveSubmitted(ctx, identity, leave)
	return result, nil
}
