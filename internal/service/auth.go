package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"alms/internal/model"
	"alms/internal/model/dto"
	"alms/internal/repository"
	"alms/pkg/errors"
	"alms/pkg/logger"
	"alms/pkg/metrics"
	"alms/pkg/passkey"
	"alms/storage/database"
)

type employeeStore interface {
	ListOptions(ctx context.Context) ([]dto.EmployeeOption, error)
	GetByRegisteredID(ctx context.Context, registeredID string) (*model.Employee, error)
	Create(ctx context.Context, employee *model.Employee) error
}

var (
	authService *AuthService
	authOnce    sync.Once
)

// Auth 使用全局数据库连接的单例
func Auth() *AuthService {
	authOnce.Do(func() {
		authService = NewAuthService(repository.NewEmployeeRepository(database.DB()))
	})
	return authService
}

type AuthService struct {
	employees employeeStore
}

func NewAuthService(employees employeeStore) *AuthService {
	return &AuthService{employees: employees}
}

// ListEmployees 登录页下拉框数据，按 id 顺序
func (s *AuthService) ListEmployees(ctx context.Context) ([]dto.EmployeeOption, error) {
	options, err := s.employees.ListOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return options, nil
}

// ListEmployeeNames 只取姓名，允许重名
func (s *AuthService) ListEmployeeNames(ctx context.Context) ([]string, error) {
	options, err := s.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(options))
	for _, o := range options {
		names = append(names, o.Name)
	}
	return names, nil
}

// Authenticate 员工不存在与口令错误返回同一个错误
func (s *AuthService) Authenticate(ctx context.Context, registeredID, given string) (*model.Employee, error) {
	registeredID = strings.TrimSpace(registeredID)
	if registeredID == "" {
		metrics.RecordLogin(ctx, "invalid")
		return nil, errors.EmployeeRequired
	}

	employee, err := s.employees.GetByRegisteredID(ctx, registeredID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			logger.Logger.Info("Login failed: unknown employee", zap.String("registered_id", registeredID))
			metrics.RecordLogin(ctx, "failed")
			return nil, errors.AuthFailed
		}
		return nil, fmt.Errorf("load employee %s: %w", registeredID, err)
	}

	ok, legacy := passkey.Verify(employee.Passkey, given)
	if !ok {
		logger.Logger.Info("Login failed: wrong passkey", zap.String("registered_id", registeredID))
		metrics.RecordLogin(ctx, "failed")
		return nil, errors.AuthFailed
	}

	if legacy {
		logger.Logger.Warn("Employee still has a plaintext passkey, re-seed to hash it",
			zap.String("registered_id", registeredID),
		)
	}

	logger.Logger.Info("Login successful", zap.String("registered_id", registeredID))
	metrics.RecordLogin(ctx, "success")
	return employee, nil
}

// CreateEmployee 供 cmd/seed 使用，写库前把口令做 bcrypt
func (s *AuthService) CreateEmployee(ctx context.Context, employee *model.Employee) error {
	if employee.RegisteredID == "" || employee.Name == "" {
		return errors.InvalidRequest
	}

	if !passkey.IsHashed(employee.Passkey) {
		hashed, err := passkey.Hash(employee.Passkey)
		if err != nil {
			return fmt.Errorf("hash passkey: %w", err)
		}
		employee.Passkey = hashed
	}

	if err := s.employees.Create(ctx, employee); err != nil {
		return fmt.Errorf("create employee %s: %w", employee.RegisteredID, err)
	}
	return nil
}
