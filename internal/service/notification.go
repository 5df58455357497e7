package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"alms/config"
	"alms/internal/model"
	"alms/internal/queue"
	"alms/pkg/breaker"
	"alms/pkg/errors"
	"alms/pkg/logger"
	"alms/pkg/mail"
	"alms/pkg/metrics"
	"alms/pkg/snowflake"
)

// LeaveSubject 请假通知邮件的固定主题
const LeaveSubject = "Leave Application Submitted"

// LeaveNotifier 请假写库成功后调用，失败不回滚
type LeaveNotifier interface {
	NotifyLeaveSubmitted(ctx context.Context, identity model.Identity, leave *model.Leave) error
}

// LeavePublisher 队列模式下把通知交给 worker
type LeavePublisher interface {
	PublishLeaveNotification(ctx context.Context, msg model.LeaveNotificationMessage) error
}

var (
	notificationService *NotificationService
	notificationOnce    sync.Once
	notificationErr     error
)

// InitNotification 按 NOTIFY_MODE 组装通知服务，server 和 worker 启动时调用
func InitNotification(cfg config.Config) error {
	notificationOnce.Do(func() {
		if err := cfg.ValidateNotifier(); err != nil {
			notificationErr = err
			return
		}

		sender := mail.NewSMTPSender(mail.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPSender,
			Timeout:  cfg.SMTPTimeout,
		})
		cb := breaker.New("smtp", cfg.NotifyBreakerFails, cfg.NotifyBreakerReset)

		switch cfg.NotifyMode {
		case config.NotifyModeQueue:
			notificationService = NewQueueNotifier(queue.Producer{}, cfg.LeaveNotifyRecipient)
			// worker 端用同一个实例直接发信
			notificationService.sender = sender
			notificationService.breaker = cb
		default:
			notificationService = NewSMTPNotifier(sender, cb, cfg.LeaveNotifyRecipient)
		}
	})
	return notificationErr
}

// Notification InitNotification 之前返回 nil
func Notification() *NotificationService {
	return notificationService
}

type NotificationService struct {
	mode      string
	sender    mail.Sender
	breaker   *breaker.CircuitBreaker
	publisher LeavePublisher
	recipient string
	nextID    func() (int64, error)
	now       func() time.Time
}

type NotifierOption func(*NotificationService)

// WithIDGenerator 替换 snowflake，测试用
func WithIDGenerator(fn func() (int64, error)) NotifierOption {
	return func(s *NotificationService) { s.nextID = fn }
}

func WithClock(now func() time.Time) NotifierOption {
	return func(s *NotificationService) { s.now = now }
}

func NewSMTPNotifier(sender mail.Sender, cb *breaker.CircuitBreaker, recipient string, opts ...NotifierOption) *NotificationService {
	return newNotificationService(&NotificationService{
		mode:      config.NotifyModeSMTP,
		sender:    sender,
		breaker:   cb,
		recipient: recipient,
	}, opts)
}

func NewQueueNotifier(publisher LeavePublisher, recipient string, opts ...NotifierOption) *NotificationService {
	return newNotificationService(&NotificationService{
		mode:      config.NotifyModeQueue,
		publisher: publisher,
		recipient: recipient,
	}, opts)
}

func newNotificationService(s *NotificationService, opts []NotifierOption) *NotificationService {
	s.nextID = snowflake.NextID
	s.now = time.Now
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *NotificationService) Mode() string {
	return s.mode
}

// NotifyLeaveSubmitted 尽力而为，最多一次；错误链中带 NotifyFailed 或 NotifyUnavailable
func (s *NotificationService) NotifyLeaveSubmitted(ctx context.Context, identity model.Identity, leave *model.Leave) error {
	start := time.Now()

	id, err := s.nextID()
	if err != nil {
		return fmt.Errorf("%w: generate message id: %w", errors.NotifyFailed, err)
	}
	msg := NewLeaveNotificationMessage(strconv.FormatInt(id, 10), identity, leave, s.now())

	switch s.mode {
	case config.NotifyModeQueue:
		err = s.publisher.PublishLeaveNotification(ctx, msg)
		if err != nil {
			err = fmt.Errorf("%w: publish: %w", errors.NotifyFailed, err)
		}
	default:
		err = s.DeliverLeaveNotification(ctx, msg)
	}

	result := "success"
	if err != nil {
		result = "failed"
		logger.Logger.Warn("Leave notification failed, leave stays recorded",
			zap.String("mode", s.mode),
			zap.String("message_id", msg.MessageID),
			zap.Int64("leave_id", msg.LeaveID),
			zap.Error(err),
		)
	} else {
		logger.Logger.Info("Leave notification sent",
			zap.String("mode", s.mode),
			zap.String("message_id", msg.MessageID),
			zap.Int64("leave_id", msg.LeaveID),
		)
	}
	metrics.RecordNotify(ctx, s.mode, result, time.Since(start))
	return err
}

// DeliverLeaveNotification 通过 SMTP 发出邮件，熔断打开时快速失败
func (s *NotificationService) DeliverLeaveNotification(ctx context.Context, msg model.LeaveNotificationMessage) error {
	if s.sender == nil {
		return errors.NotifyUnavailable
	}

	mailMsg := BuildLeaveMail(msg, s.recipient)
	send := func(ctx context.Context) error { return s.sender.Send(ctx, mailMsg) }

	var err error
	if s.breaker != nil {
		err = s.breaker.Call(ctx, send)
	} else {
		err = send(ctx)
	}

	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, breaker.ErrOpen):
		return fmt.Errorf("%w: %w", errors.NotifyUnavailable, err)
	default:
		return fmt.Errorf("%w: smtp: %w", errors.NotifyFailed, err)
	}
}

func NewLeaveNotificationMessage(id string, identity model.Identity, leave *model.Leave, now time.Time) model.LeaveNotificationMessage {
	return model.LeaveNotificationMessage{
		MessageID:    id,
		Name:         identity.Name,
		Email:        identity.Email,
		RegisteredID: identity.RegisteredID,
		StartDate:    leave.StartDate.Format(model.DateLayout),
		EndDate:      leave.EndDate.Format(model.DateLayout),
		Reason:       leave.Reason,
		LeaveID:      leave.ID,
		SubmittedAt:  now.Format(time.RFC3339),
	}
}

// BuildLeaveMail 纯文本邮件正文
func BuildLeaveMail(msg model.LeaveNotificationMessage, recipient string) mail.Message {
	var b strings.Builder
	b.WriteString("A new leave application has been submitted.\n\n")
	fmt.Fprintf(&b, "Name: %s\n", msg.Name)
	fmt.Fprintf(&b, "Email: %s\n", msg.Email)
	fmt.Fprintf(&b, "Registered ID: %s\n", msg.RegisteredID)
	fmt.Fprintf(&b, "Start Date: %s\n", msg.StartDate)
	fmt.Fprintf(&b, "End Date: %s\n", msg.EndDate)
	fmt.Fprintf(&b, "Reason: %s\n", msg.Reason)

	return mail.Message{
		ID:      msg.MessageID,
		To:      recipient,
		Subject: LeaveSubject,
		Body:    b.String(),
	}
}
