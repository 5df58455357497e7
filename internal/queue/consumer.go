package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"alms/internal/model"
	"alms/pkg/logger"
	"alms/storage/mq"
)

// LeaveDeliverer worker 侧真正发信的一方
type LeaveDeliverer interface {
	DeliverLeaveNotification(ctx context.Context, msg model.LeaveNotificationMessage) error
}

// Deduper 消息幂等标记
type Deduper interface {
	TryMarkProcessing(ctx context.Context, messageID string) (bool, error)
	MarkProcessed(ctx context.Context, messageID string) error
	Unmark(ctx context.Context, messageID string) error
}

// StartLeaveNotificationConsumer 阻塞消费，直到 ctx 取消
func StartLeaveNotificationConsumer(ctx context.Context, deliverer LeaveDeliverer, dedupe Deduper) error {
	handle := LeaveNotificationHandler(deliverer, dedupe)

	return mq.Consume(ctx, mq.ConsumeOptions{
		Queue:         mq.NotifyQueue,
		ConsumerTag:   "leave_notification_consumer",
		PrefetchCount: 10,
		Handler: func(ctx context.Context, d amqp.Delivery) error {
			return handle(ctx, d.Body)
		},
	})
}

// LeaveNotificationHandler 解码、去重、发信；返回错误时消息进入死信队列
func LeaveNotificationHandler(deliverer LeaveDeliverer, dedupe Deduper) func(ctx context.Context, body []byte) error {
	return func(ctx context.Context, body []byte) error {
		var msg model.LeaveNotificationMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal leave notification: %w", err)
		}

		if dedupe != nil && msg.MessageID != "" {
			first, err := dedupe.TryMarkProcessing(ctx, msg.MessageID)
			if err != nil {
				// Redis 不可用时继续发送，可能重复
				logger.Logger.Warn("Failed to check message processed status",
					zap.String("message_id", msg.MessageID),
					zap.Error(err),
				)
			} else if !first {
				logger.Logger.Info("Message already processed or being processed, skipping",
					zap.String("message_id", msg.MessageID),
				)
				return nil
			}
		}

		if err := deliverer.DeliverLeaveNotification(ctx, msg); err != nil {
			if dedupe != nil && msg.MessageID != "" {
				_ = dedupe.Unmark(ctx, msg.MessageID)
			}
			return fmt.Errorf("deliver leave notification %s: %w", msg.MessageID, err)
		}

		if dedupe != nil && msg.MessageID != "" {
			if err := dedupe.MarkProcessed(ctx, msg.MessageID); err != nil {
				logger.Logger.Warn("Failed to mark message as processed",
					zap.String("message_id", msg.MessageID),
					zap.Error(err),
				)
			}
		}

		logger.Logger.Info("Leave notification delivered",
			zap.String("message_id", msg.MessageID),
			zap.String("registered_id", msg.RegisteredID),
		)
		return nil
	}
}
