package storage

import (
	"alms/storage/database"
	"alms/storage/mq"
	"alms/storage/redis"
)

// Options 决定除数据库外还需要哪些连接
type Options struct {
	Redis    bool
	RabbitMQ bool
}

// Init 数据库总是打开，Redis / RabbitMQ 按需
func Init(opts Options) error {
	if err := database.Init(); err != nil {
		return err
	}

	if opts.Redis {
		if err := redis.Init(); err != nil {
			return err
		}
	}

	if opts.RabbitMQ {
		if err := mq.Init(); err != nil {
			return err
		}
	}

	return nil
}
