package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"alms/pkg/logger"
	"alms/storage/database"
	"alms/storage/mq"
	"alms/storage/redis"
)

// Close 关闭顺序 MQ -> Redis -> Database，未打开的连接跳过
func Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	closers := []struct {
		name  string
		close func(context.Context) error
	}{
		{"rabbitmq", mq.Close},
		{"redis", redis.Close},
		{"database", database.Close},
	}

	for _, c := range closers {
		if err := c.close(ctx); err != nil {
			logger.Logger.Error("Failed to close storage connection",
				zap.String("component", c.name),
				zap.Error(err),
			)
			continue
		}
		logger.Logger.Info("Storage connection closed", zap.String("component", c.name))
	}
}
