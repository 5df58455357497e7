package repository

import (
	"context"

	"gorm.io/gorm"

	"alms/internal/model"
	"alms/internal/model/dto"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// ListOptions 按 id 顺序返回下拉框选项，不读取口令列
func (r *EmployeeRepository) ListOptions(ctx context.Context) ([]dto.EmployeeOption, error) {
	var options []dto.EmployeeOption
	err := r.db.WithContext(ctx).
		Model(&model.Employee{}).
		Select("name", "registered_id").
		Order("id").
		Scan(&options).Error
	return options, err
}

// GetByRegisteredID 未找到时返回 gorm.ErrRecordNotFound
func (r *EmployeeRepository) GetByRegisteredID(ctx context.Context, registeredID string) (*model.Employee, error) {
	var employee model.Employee
	err := r.db.WithContext(ctx).
		Where("registered_id = ?", registeredID).
		First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, employee *model.Employee) error {
	return r.db.WithContext(ctx).Create(employee).Error
}
