package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"alms/config"
	dbotel "alms/pkg/database"
	"alms/pkg/logger"
)

var (
	db     *gorm.DB
	dbOnce sync.Once
	dbErr  error
)

// Init 按 config.Cfg 打开数据库并完成迁移
func Init() error {
	dbOnce.Do(func() {
		cfg := config.Cfg

		var gormDB *gorm.DB
		gormDB, dbErr = Open(cfg.DatabaseDriver, cfg.GetDSN())
		if dbErr != nil {
			logger.Logger.Error("Failed to open database",
				zap.String("driver", cfg.DatabaseDriver),
				zap.Error(dbErr),
			)
			return
		}

		if len(cfg.DatabaseReplicaDSNs) > 0 {
			if dbErr = useReplicas(gormDB, cfg.DatabaseDriver, cfg.DatabaseReplicaDSNs); dbErr != nil {
				logger.Logger.Error("Failed to register read replicas", zap.Error(dbErr))
				return
			}
		}

		if cfg.OTelEnabled {
			if dbErr = gormDB.Use(dbotel.NewPlugin(cfg.ServiceName, cfg.DatabaseDriver)); dbErr != nil {
				logger.Logger.Error("Failed to install gorm tracing plugin", zap.Error(dbErr))
				return
			}
		}

		sqlDB, err := gormDB.DB()
		if err != nil {
			dbErr = err
			logger.Logger.Error("Failed to get sql.DB from gorm", zap.Error(err))
			return
		}
		configureConnectionPool(sqlDB, cfg.DatabaseMaxIdle, cfg.DatabaseMaxOpen)

		if err := sqlDB.Ping(); err != nil {
			dbErr = err
			logger.Logger.Error("Failed to ping database", zap.Error(err))
			return
		}

		if dbErr = Migrate(gormDB); dbErr != nil {
			return
		}

		db = gormDB
		logger.Logger.Info("Database initialized successfully",
			zap.String("driver", cfg.DatabaseDriver),
			zap.Int("replicas", len(cfg.DatabaseReplicaDSNs)),
		)
	})

	return dbErr
}

// Open 打开 gorm 连接，不做迁移
func Open(driver, dsn string) (*gorm.DB, error) {
	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger:                                   newLogger(),
		DisableForeignKeyConstraintWhenMigrating: true,
		SkipDefaultTransaction:                   true,
	})
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// useReplicas 读走副本，写和 FOR UPDATE 走主库
func useReplicas(gormDB *gorm.DB, driver string, dsns []string) error {
	replicas := make([]gorm.Dialector, 0, len(dsns))
	for _, dsn := range dsns {
		d, err := dialectorFor(driver, dsn)
		if err != nil {
			return err
		}
		replicas = append(replicas, d)
	}

	return gormDB.Use(dbresolver.Register(dbresolver.Config{
		Replicas: replicas,
		Policy:   dbresolver.RandomPolicy{},
	}))
}

func DB() *gorm.DB {
	return db
}

func Close(ctx context.Context) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- sqlDB.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func configureConnectionPool(sqlDB *sql.DB, maxIdle, maxOpen int) {
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	sqlDB.SetConnMaxLifetime(2 * time.Hour)
}

func newLogger() gormlogger.Interface {
	level := gormlogger.Warn
	switch config.Cfg.LoggerLevel {
	case "DEBUG":
		level = gormlogger.Info
	case "ERROR":
		level = gormlogger.Error
	}

	return gormlogger.New(zapWriter{}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

type zapWriter struct{}

func (zapWriter) Printf(format string, args ...interface{}) {
	logger.Logger.Sugar().Infof(format, args...)
}
