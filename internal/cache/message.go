package cache

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"alms/storage/redis"
)

const (
	messageProcessedPrefix = "mq:processed"
	processingTTL          = 10 * time.Minute
	processedTTL           = 48 * time.Hour
)

// MessageGuard 用 SETNX 保证同一条队列消息只被处理一次
type MessageGuard struct {
	client goredis.Cmdable
}

func NewMessageGuard(client goredis.Cmdable) *MessageGuard {
	return &MessageGuard{client: client}
}

// Messages 使用全局 Redis 客户端
func Messages() *MessageGuard {
	return NewMessageGuard(redis.Client())
}

// TryMarkProcessing 返回 false 表示其他消费者已经处理或正在处理
func (g *MessageGuard) TryMarkProcessing(ctx context.Context, messageID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, redis.Key(messageProcessedPrefix, messageID), "processing", processingTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message as processing: %w", err)
	}
	return ok, nil
}

// MarkProcessed 处理成功后延长保留时间
func (g *MessageGuard) MarkProcessed(ctx context.Context, messageID string) error {
	return g.client.Set(ctx, redis.Key(messageProcessedPrefix, messageID), "completed", processedTTL).Err()
}

// Unmark 处理失败时释放，死信重放时可再次处理
func (g *MessageGuard) Unmark(ctx context.Context, messageID string) error {
	return g.client.Del(ctx, redis.Key(messageProcessedPrefix, messageID)).Err()
}
