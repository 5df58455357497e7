package mq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"alms/config"
	"alms/pkg/logger"
)

// 请假通知拓扑
const (
	NotifyExchange   = "alms.notify"
	NotifyQueue      = "alms.notify.leave"
	LeaveSubmittedRK = "leave.submitted"
	deadExchange     = "alms.notify.dlx"
	deadQueue        = "alms.notify.leave.dead"
)

var (
	conn     *amqp.Connection
	connOnce sync.Once
	connErr  error
)

func Init() error {
	connOnce.Do(func() {
		c, err := amqp.Dial(config.Cfg.GetRabbitMQURL())
		if err != nil {
			connErr = fmt.Errorf("dial rabbitmq: %w", err)
			return
		}

		if err := declareTopology(c); err != nil {
			_ = c.Close()
			connErr = err
			return
		}

		conn = c
		logger.Logger.Info("RabbitMQ connected",
			zap.String("exchange", NotifyExchange),
			zap.String("queue", NotifyQueue),
		)
	})

	return connErr
}

func Connection() *amqp.Connection {
	return conn
}

// declareTopology 处理失败的消息进入死信队列，不无限重投
func declareTopology(c *amqp.Connection) error {
	ch, err := c.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(NotifyExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", NotifyExchange, err)
	}
	if err := ch.ExchangeDeclare(deadExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", deadExchange, err)
	}

	if _, err := ch.QueueDeclare(deadQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", deadQueue, err)
	}
	if err := ch.QueueBind(deadQueue, "", deadExchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", deadQueue, err)
	}

	if _, err := ch.QueueDeclare(NotifyQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange": deadExchange,
	}); err != nil {
		return fmt.Errorf("declare queue %s: %w", NotifyQueue, err)
	}
	if err := ch.QueueBind(NotifyQueue, LeaveSubmittedRK, NotifyExchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", NotifyQueue, err)
	}
	return nil
}

func Close(ctx context.Context) error {
	if conn == nil {
		return nil
	}

	closePublisher()

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
