package service

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"alms/internal/model"
	"alms/internal/repository"
	"alms/internal/testutil"
	"alms/pkg/mail"
)

var errRelayDown = stderrors.New("dial tcp: connection refused")

type fakeSender struct {
	sent []mail.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakePublisher struct {
	published []model.LeaveNotificationMessage
	err       error
}

func (f *fakePublisher) PublishLeaveNotification(_ context.Context, msg model.LeaveNotificationMessage) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

func fixedID(id int64) NotifierOption {
	return WithIDGenerator(func() (int64, error) { return id, nil })
}

type fixture struct {
	db         *gorm.DB
	auth       *AuthService
	attendance *AttendanceService
	leave      *LeaveService
	sender     *fakeSender
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	sender := &fakeSender{}
	notifier := NewSMTPNotifier(sender, nil, "admin@corp.example", fixedID(1))

	return &fixture{
		db:         db,
		auth:       NewAuthService(repository.NewEmployeeRepository(db)),
		attendance: NewAttendanceService(repository.NewAttendanceRepository(db)),
		leave:      NewLeaveService(repository.NewLeaveRepository(db), notifier),
		sender:     sender,
	}
}

func (f *fixture) seed(t *testing.T, name, registeredID, plain string) *model.Employee {
	t.Helper()
	e := &model.Employee{
		Name:          name,
		Passkey:       plain,
		Email:         registeredID + "@corp.example",
		RegisteredID:  registeredID,
		ContactNumber: "555-0100",
	}
	require.NoError(t, f.auth.CreateEmployee(context.Background(), e))
	return e
}

func (f *fixture) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

func day(d int) time.Time {
	return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
}
