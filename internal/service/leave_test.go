package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alms/internal/model"
	"alms/internal/repository"
	"alms/pkg/breaker"
	"alms/pkg/errors"
)

func TestSubmitLeave_ReversedDatesWritesNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.leave.SubmitLeave(context.Background(), asha, day(5), day(3), "travel")
	assert.ErrorIs(t, err, errors.LeaveDateReversed)
	assert.True(t, errors.IsValidation(err))
	assert.Equal(t, int64(0), f.count(t, &model.Leave{}))
}

func TestSubmitLeave_SameDayAllowed(t *testing.T) {
	f := newFixture(t)

	leave, err := f.leave.SubmitLeave(context.Background(), asha, day(3), day(3), "")
	require.NoError(t, err)
	assert.Equal(t, 1, leave.Days())
	assert.Equal(t, int64(1), f.count(t, &model.Leave{}))
}

func TestApply_SendsMail(t *testing.T) {
	f := newFixture(t)

	result, err := f.leave.Apply(context.Background(), asha, day(3), day(5), "travel")
	require.NoError(t, err)
	assert.NoError(t, result.NotifyErr)

	require.Len(t, f.sender.sent, 1)
	msg := f.sender.sent[0]
	assert.Equal(t, LeaveSubject, msg.Subject)
	assert.Equal(t, "admin@corp.example", msg.To)
	assert.Equal(t, "1", msg.ID)
	assert.Contains(t, msg.Body, "Name: Asha")
	assert.Contains(t, msg.Body, "Registered ID: E001")
	assert.Contains(t, msg.Body, "Start Date: 2024-05-03")
	assert.Contains(t, msg.Body, "End Date: 2024-05-05")
	assert.Contains(t, msg.Body, "Reason: travel")
}

func TestApply_RelayDownStillRecords(t *testing.T) {
	f := newFixture(t)
	f.sender.err = errRelayDown

	result, err := f.leave.Apply(context.Background(), asha, day(3), day(5), "travel")
	require.NoError(t, err)
	require.NotNil(t, result.Leave)
	assert.ErrorIs(t, result.NotifyErr, errors.NotifyFailed)
	assert.ErrorIs(t, result.NotifyErr, errRelayDown)
	assert.Equal(t, int64(1), f.count(t, &model.Leave{}))
}

func TestApply_OpenBreakerFailsFast(t *testing.T) {
	db := newFixture(t).db
	sender := &fakeSender{err: errRelayDown}
	cb := breaker.New("smtp", 1, time.Hour)
	notifier := NewSMTPNotifier(sender, cb, "admin@corp.example", fixedID(9))
	svc := NewLeaveService(repository.NewLeaveRepository(db), notifier)
	ctx := context.Background()

	first, err := svc.Apply(ctx, asha, day(3), day(5), "travel")
	require.NoError(t, err)
	assert.ErrorIs(t, first.NotifyErr, errors.NotifyFailed)

	second, err := svc.Apply(ctx, asha, day(6), day(7), "family")
	require.NoError(t, err)
	assert.ErrorIs(t, second.NotifyErr, errors.NotifyUnavailable)
	assert.ErrorIs(t, second.NotifyErr, breaker.ErrOpen)

	var n int64
	require.NoError(t, db.Model(&model.Leave{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestApply_QueueMode(t *testing.T) {
	db := newFixture(t).db
	pub := &fakePublisher{}
	notifier := NewQueueNotifier(pub, "admin@corp.example", fixedID(77))
	svc := NewLeaveService(repository.NewLeaveRepository(db), notifier)

	result, err := svc.Apply(context.Background(), asha, day(3), day(5), "travel")
	require.NoError(t, err)
	assert.NoError(t, result.NotifyErr)

	require.Len(t, pub.published, 1)
	assert.Equal(t, "77", pub.published[0].MessageID)
	assert.Equal(t, result.Leave.ID, pub.published[0].LeaveID)
	assert.Equal(t, "2024-05-03", pub.published[0].StartDate)

	pub.err = errRelayDown
	result, err = svc.Apply(context.Background(), asha, day(8), day(9), "x")
	require.NoError(t, err)
	assert.ErrorIs(t, result.NotifyErr, errors.NotifyFailed)
}

func TestApply_NoNotifierConfigured(t *testing.T) {
	db := newFixture(t).db
	svc := NewLeaveService(repository.NewLeaveRepository(db), nil)

	result, err := svc.Apply(context.Background(), asha, day(3), day(5), "travel")
	require.NoError(t, err)
	assert.ErrorIs(t, result.NotifyErr, errors.NotifyUnavailable)
}

func TestDeliverLeaveNotification_FromQueueMessage(t *testing.T) {
	sender := &fakeSender{}
	notifier := NewSMTPNotifier(sender, nil, "admin@corp.example")

	err := notifier.DeliverLeaveNotification(context.Background(), model.LeaveNotificationMessage{
		MessageID: "5", Name: "Asha", RegisteredID: "E001", StartDate: "2024-05-03", EndDate: "2024-05-05", Reason: "travel",
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "5", sender.sent[0].ID)
}

// 登录、上班 09:00、下班 17:30、请假 3..5 日，邮件中继不可用
func TestAshaScenario(t *testing.T) {
	f := newFixture(t)
	f.sender.err = errRelayDown
	f.seed(t, "Asha", "E001", "1234")
	ctx := context.Background()

	employee, err := f.auth.Authenticate(ctx, "E001", "1234")
	require.NoError(t, err)
	identity := employee.Identity()

	in := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	out := time.Date(2024, 5, 1, 17, 30, 0, 0, time.UTC)
	_, err = f.attendance.OpenClockIn(ctx, identity, in)
	require.NoError(t, err)
	closed, err := f.attendance.CloseLatestOpenClock(ctx, identity, out)
	require.NoError(t, err)
	assert.InDelta(t, 8.5, *closed.Duration, 1e-9)

	result, err := f.leave.Apply(ctx, identity, day(3), day(5), "travel")
	require.NoError(t, err)
	assert.Error(t, result.NotifyErr)

	assert.Equal(t, int64(1), f.count(t, &model.Attendance{}))
	assert.Equal(t, int64(1), f.count(t, &model.Leave{}))
}
