package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"alms/internal/model"
	"alms/internal/repository"
	"alms/pkg/errors"
	"alms/pkg/logger"
	"alms/pkg/metrics"
	"alms/storage/database"
)

type attendanceStore interface {
	Create(ctx context.Context, record *model.Attendance) error
	LatestOpen(ctx context.Context, registeredID string) (*model.Attendance, error)
	Close(ctx context.Context, id int64, clockOut time.Time, duration float64) (int64, error)
}

var (
	attendanceService *AttendanceService
	attendanceOnce    sync.Once
)

func Attendance() *AttendanceService {
	attendanceOnce.Do(func() {
		attendanceService = NewAttendanceService(repository.NewAttendanceRepository(database.DB()))
	})
	return attendanceService
}

type AttendanceService struct {
	records attendanceStore
}

func NewAttendanceService(records attendanceStore) *AttendanceService {
	return &AttendanceService{records: records}
}

// OpenClockIn 新增一条未下班记录，不检查是否已有未关闭的记录
func (s *AttendanceService) OpenClockIn(ctx context.Context, identity model.Identity, ts time.Time) (*model.Attendance, error) {
	if identity.IsZero() {
		return nil, errors.AttendanceIdentityNA
	}

	record := &model.Attendance{
		Name:         identity.Name,
		Email:        identity.Email,
		RegisteredID: identity.RegisteredID,
		ClockIn:      ts,
	}
	if err := s.records.Create(ctx, record); err != nil {
		metrics.RecordAttendance(ctx, "clock_in", "error")
		return nil, fmt.Errorf("open clock in: %w", err)
	}

	logger.Logger.Info("Clocked in",
		zap.String("registered_id", identity.RegisteredID),
		zap.Int64("attendance_id", record.ID),
		zap.Time("clock_in", ts),
	)
	metrics.RecordAttendance(ctx, "clock_in", "success")
	return record, nil
}

// CloseLatestOpenClock 关闭 id 最大的未下班记录；没有可关闭的记录时返回 NoOpenAttendance 且不写库
func (s *AttendanceService) CloseLatestOpenClock(ctx context.Context, identity model.Identity, ts time.Time) (*model.Attendance, error) {
	if identity.IsZero() {
		return nil, errors.AttendanceIdentityNA
	}

	record, err := s.records.LatestOpen(ctx, identity.RegisteredID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			metrics.RecordAttendance(ctx, "clock_out", "not_found")
			return nil, errors.NoOpenAttendance
		}
		metrics.RecordAttendance(ctx, "clock_out", "error")
		return nil, fmt.Errorf("find open attendance: %w", err)
	}
	if !record.IsOpen() {
		metrics.RecordAttendance(ctx, "clock_out", "not_found")
		return nil, errors.NoOpenAttendance
	}

	duration := model.HoursBetween(record.ClockIn, ts)
	affected, err := s.records.Close(ctx, record.ID, ts, duration)
	if err != nil {
		metrics.RecordAttendance(ctx, "clock_out", "error")
		return nil, fmt.Errorf("close attendance %d: %w", record.ID, err)
	}
	if affected == 0 {
		// 并发请求已先关闭
		metrics.RecordAttendance(ctx, "clock_out", "not_found")
		return nil, errors.NoOpenAttendance
	}

	record.ClockOut = &ts
	record.Duration = &duration

	logger.Logger.Info("Clocked out",
		zap.String("registered_id", identity.RegisteredID),
		zap.Int64("attendance_id", record.ID),
		zap.Float64("duration_hours", duration),
	)
	metrics.RecordAttendance(ctx, "clock_out", "success")
	metrics.RecordShiftHours(ctx, duration)
	return record, nil
}
