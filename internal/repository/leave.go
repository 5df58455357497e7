package repository

import (
	"context"

	"gorm.io/gorm"

	"alms/internal/model"
)

type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) Create(ctx context.Context, leave *model.Leave) error {
	return r.db.WithContext(ctx).Create(leave).Error
}

func (r *LeaveRepository) ListByRegisteredID(ctx context.Context, registeredID string) ([]model.Leave, error) {
	var leaves []model.Leave
	err := r.db.WithContext(ctx).
		Where("registered_id = ?", registeredID).
		Order("id").
		Find(&leaves).Error
	return leaves, err
}
