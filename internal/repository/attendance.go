package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"alms/internal/model"
)

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) Create(ctx context.Context, record *model.Attendance) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// LatestOpen 该员工 clock_out 为空且 id 最大的一条；读主库，避免副本延迟看不到刚打的卡
func (r *AttendanceRepository) LatestOpen(ctx context.Context, registeredID string) (*model.Attendance, error) {
	var record model.Attendance
	err := r.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("registered_id = ? AND clock_out IS NULL", registeredID).
		Order("id DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Close 条件更新，只有仍未下班的行会被写入；返回受影响行数
func (r *AttendanceRepository) Close(ctx context.Context, id int64, clockOut time.Time, duration float64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("id = ? AND clock_out IS NULL", id).
		Updates(map[string]interface{}{
			"clock_out": clockOut,
			"duration":  duration,
		})
	return result.RowsAffected, result.Error
}

func (r *AttendanceRepository) ListByRegisteredID(ctx context.Context, registeredID string) ([]model.Attendance, error) {
	var records []model.Attendance
	err := r.db.WithContext(ctx).
		Where("registered_id = ?", registeredID).
		Order("id").
		Find(&records).Error
	return records, err
}
