package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRelay = errors.New("relay down")

func fail(context.Context) error { return errRelay }
func ok(context.Context) error   { return nil }

func newTestBreaker(clock *time.Time) *CircuitBreaker {
	cb := New("smtp", 2, time.Minute)
	cb.now = func() time.Time { return *clock }
	return cb
}

func TestOpensAfterMaxFailures(t *testing.T) {
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	cb := newTestBreaker(&clock)
	ctx := context.Background()

	require.ErrorIs(t, cb.Call(ctx, fail), errRelay)
	assert.Equal(t, StateClosed, cb.GetState())
	require.ErrorIs(t, cb.Call(ctx, fail), errRelay)
	assert.Equal(t, StateOpen, cb.GetState())

	called := false
	err := cb.Call(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestHalfOpenRecovers(t *testing.T) {
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	cb := newTestBreaker(&clock)
	ctx := context.Background()

	_ = cb.Call(ctx, fail)
	_ = cb.Call(ctx, fail)
	require.Equal(t, StateOpen, cb.GetState())

	clock = clock.Add(2 * time.Minute)
	require.NoError(t, cb.Call(ctx, ok))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestHalfOpenFailureReopens(t *testing.T) {
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	cb := newTestBreaker(&clock)
	ctx := context.Background()

	_ = cb.Call(ctx, fail)
	_ = cb.Call(ctx, fail)

	clock = clock.Add(2 * time.Minute)
	require.ErrorIs(t, cb.Call(ctx, fail), errRelay)
	assert.Equal(t, StateOpen, cb.GetState())
	assert.ErrorIs(t, cb.Call(ctx, ok), ErrOpen)
}

func TestSuccessResetsFailures(t *testing.T) {
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	cb := newTestBreaker(&clock)
	ctx := context.Background()

	_ = cb.Call(ctx, fail)
	require.NoError(t, cb.Call(ctx, ok))
	_ = cb.Call(ctx, fail)
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(7).String())
}
