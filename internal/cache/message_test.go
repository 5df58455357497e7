package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuard(t *testing.T) (*MessageGuard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewMessageGuard(client), mr
}

func TestMessageGuard_OnlyFirstWins(t *testing.T) {
	g, mr := newGuard(t)
	ctx := context.Background()

	ok, err := g.TryMarkProcessing(ctx, "42")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.TryMarkProcessing(ctx, "42")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, g.MarkProcessed(ctx, "42"))
	v, err := mr.Get("alms:mq:processed:42")
	require.NoError(t, err)
	assert.Equal(t, "completed", v)
	assert.Equal(t, processedTTL, mr.TTL("alms:mq:processed:42"))
}

func TestMessageGuard_UnmarkAllowsRetry(t *testing.T) {
	g, _ := newGuard(t)
	ctx := context.Background()

	ok, err := g.TryMarkProcessing(ctx, "7")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, g.Unmark(ctx, "7"))

	ok, err = g.TryMarkProcessing(ctx, "7")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMessageGuard_RedisDown(t *testing.T) {
	g, mr := newGuard(t)
	mr.Close()

	_, err := g.TryMarkProcessing(context.Background(), "1")
	assert.Error(t, err)
}
