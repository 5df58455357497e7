package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"alms/internal/model"
	"alms/pkg/logger"
)

// Migrate 建表：employees, attendance, leaves
func Migrate(gormDB *gorm.DB) error {
	if gormDB == nil {
		return gorm.ErrInvalidDB
	}

	logger.Logger.Info("Starting database migration...")

	err := gormDB.AutoMigrate(
		&model.Employee{},
		&model.Attendance{},
		&model.Leave{},
	)
	if err != nil {
		logger.Logger.Error("Database migration failed", zap.Error(err))
		return err
	}

	logger.Logger.Info("Database migration completed successfully")
	return nil
}
