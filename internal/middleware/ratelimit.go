package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"alms/internal/session"
	"alms/pkg/errors"
	"alms/pkg/logger"
	"alms/storage/redis"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// 时间窗口（秒）
	Window int
	// 时间窗口内最大请求数
	MaxRequests int
	KeyPrefix   string
	// 超限后封禁时长（秒）
	BlockDuration int
}

// RateLimiter Redis ZSET 滑动窗口
type RateLimiter struct {
	config RateLimitConfig
	client goredis.Cmdable
	now    func() time.Time
}

func NewRateLimiter(config RateLimitConfig, client goredis.Cmdable) *RateLimiter {
	return &RateLimiter{config: config, client: client, now: time.Now}
}

func (rl *RateLimiter) key(identifier string) string {
	return redis.Key(rl.config.KeyPrefix, identifier)
}

func (rl *RateLimiter) blockKey(identifier string) string {
	return redis.Key(rl.config.KeyPrefix, "block", identifier)
}

// Allow 记录一次请求并返回窗口内计数
func (rl *RateLimiter) Allow(ctx context.Context, identifier string) (bool, int, error) {
	key := rl.key(identifier)
	now := rl.now()
	windowStart := now.Add(-time.Duration(rl.config.Window) * time.Second)

	pipe := rl.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	pipe.ZAdd(ctx, key, goredis.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	zcard := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, time.Duration(rl.config.Window+10)*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to execute pipeline: %w", err)
	}

	count := int(zcard.Val())
	return count <= rl.config.MaxRequests, count, nil
}

func (rl *RateLimiter) Block(ctx context.Context, identifier string) error {
	return rl.client.Set(ctx, rl.blockKey(identifier), "1", time.Duration(rl.config.BlockDuration)*time.Second).Err()
}

func (rl *RateLimiter) IsBlocked(ctx context.Context, identifier string) (bool, error) {
	n, err := rl.client.Exists(ctx, rl.blockKey(identifier)).Result()
	return n > 0, err
}

// LoginRateLimitMiddleware 按客户端 IP 限制登录尝试；Redis 故障时放行
func LoginRateLimitMiddleware(rl *RateLimiter) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		ip := c.ClientIP()

		blocked, err := rl.IsBlocked(ctx, ip)
		if err != nil {
			logger.Logger.Warn("Failed to check block status, allowing request", zap.Error(err))
			c.Next(ctx)
			return
		}
		if blocked {
			reject(c, ip)
			return
		}

		allowed, count, err := rl.Allow(ctx, ip)
		if err != nil {
			logger.Logger.Warn("Failed to check rate limit, allowing request", zap.Error(err))
			c.Next(ctx)
			return
		}

		c.Response.Header.Set("X-RateLimit-Limit", strconv.Itoa(rl.config.MaxRequests))
		c.Response.Header.Set("X-RateLimit-Remaining", strconv.Itoa(max(rl.config.MaxRequests-count, 0)))

		if !allowed {
			if err := rl.Block(ctx, ip); err != nil {
				logger.Logger.Error("Failed to block client", zap.Error(err))
			}
			reject(c, ip)
			return
		}

		c.Next(ctx)
	}
}

func reject(c *app.RequestContext, ip string) {
	logger.Logger.Warn("Login rate limited",
		zap.String("client_ip", ip),
		zap.String("request_id", RequestID(c)),
	)
	RedirectHome(c, session.LevelError, errors.TooManyRequests.Message)
	c.Abort()
}
