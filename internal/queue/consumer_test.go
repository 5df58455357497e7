package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alms/internal/cache"
	"alms/internal/model"
)

type fakeDeliverer struct {
	delivered []model.LeaveNotificationMessage
	err       error
}

func (f *fakeDeliverer) DeliverLeaveNotification(_ context.Context, msg model.LeaveNotificationMessage) error {
	if f.err != nil {
		return f.err
	}
	f.delivered = append(f.delivered, msg)
	return nil
}

func newGuard(t *testing.T) *cache.MessageGuard {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewMessageGuard(client)
}

func body(t *testing.T, msg model.LeaveNotificationMessage) []byte {
	t.Helper()
	b, err := json.Marshal(msg)
	require.NoError(t, err)
	return b
}

func TestLeaveNotificationHandler_DeliversOnce(t *testing.T) {
	d := &fakeDeliverer{}
	handle := LeaveNotificationHandler(d, newGuard(t))
	ctx := context.Background()

	msg := model.LeaveNotificationMessage{MessageID: "100", Name: "Asha", RegisteredID: "E001", Reason: "travel"}
	require.NoError(t, handle(ctx, body(t, msg)))
	require.NoError(t, handle(ctx, body(t, msg)))

	require.Len(t, d.delivered, 1)
	assert.Equal(t, "travel", d.delivered[0].Reason)
}

func TestLeaveNotificationHandler_FailureReleasesMark(t *testing.T) {
	d := &fakeDeliverer{err: errors.New("relay down")}
	guard := newGuard(t)
	handle := LeaveNotificationHandler(d, guard)
	ctx := context.Background()

	msg := model.LeaveNotificationMessage{MessageID: "200", RegisteredID: "E001"}
	err := handle(ctx, body(t, msg))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay down")

	d.err = nil
	require.NoError(t, handle(ctx, body(t, msg)))
	assert.Len(t, d.delivered, 1)
}

func TestLeaveNotificationHandler_BadBody(t *testing.T) {
	handle := LeaveNotificationHandler(&fakeDeliverer{}, nil)
	assert.Error(t, handle(context.Background(), []byte("{")))
}

func TestLeaveNotificationHandler_NoDeduper(t *testing.T) {
	d := &fakeDeliverer{}
	handle := LeaveNotificationHandler(d, nil)
	msg := model.LeaveNotificationMessage{MessageID: "300"}

	require.NoError(t, handle(context.Background(), body(t, msg)))
	require.NoError(t, handle(context.Background(), body(t, msg)))
	assert.Len(t, d.delivered, 2)
}
