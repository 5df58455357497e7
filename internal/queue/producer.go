package queue

import (
	"context"

	"go.uber.org/zap"

	"alms/internal/model"
	"alms/pkg/logger"
	"alms/storage/mq"
)

// Producer 发布到 alms.notify / leave.submitted
type Producer struct{}

func (Producer) PublishLeaveNotification(ctx context.Context, msg model.LeaveNotificationMessage) error {
	err := mq.Publish(ctx, mq.NotifyExchange, mq.LeaveSubmittedRK, msg.MessageID, msg)
	if err != nil {
		logger.Logger.Error("Failed to publish leave notification",
			zap.String("message_id", msg.MessageID),
			zap.Int64("leave_id", msg.LeaveID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published leave notification",
		zap.String("message_id", msg.MessageID),
		zap.Int64("leave_id", msg.LeaveID),
	)
	return nil
}
