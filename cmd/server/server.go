package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/config"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	appconfig "alms/config"
	"alms/internal/handler"
	"alms/internal/middleware"
	"alms/internal/router"
	"alms/internal/service"
	"alms/pkg/logger"
	"alms/pkg/metrics"
	almsotel "alms/pkg/otel"
	"alms/pkg/snowflake"
	"alms/storage"
	"alms/storage/redis"
)

var version = "dev"

func main() {
	if err := appconfig.Init(); err != nil {
		panic(err)
	}
	cfg := appconfig.Cfg

	// 日志部分
	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	// 通知配置缺失时直接退出
	if err := service.InitNotification(cfg); err != nil {
		logger.Logger.Fatal("Failed to initialize notifier", zap.Error(err))
	}

	if cfg.OTelEnabled {
		shutdown, err := almsotel.InitOpenTelemetry(ctx, almsotel.Config{
			ServiceName:    cfg.ServiceName,
			ServiceVersion: version,
			Environment:    cfg.Environment,
			OTLPEndpoint:   cfg.OTelEndpoint,
			SampleRatio:    cfg.OTelSampleRatio,
		})
		if err != nil {
			logger.Logger.Fatal("Failed to initialize OpenTelemetry", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
			}
		}()
	}
	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	// 初始化存储层，记得关闭外部连接
	if err := storage.Init(storage.Options{
		Redis:    cfg.NeedsRedis(),
		RabbitMQ: cfg.NotifyMode == appconfig.NotifyModeQueue,
	}); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(cfg.SnowflakeMachineID, cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	opts := routerOptions(cfg)

	addr := net.JoinHostPort(cfg.ServerHost, cfg.ServerPort)
	serverOpts := []config.Option{server.WithHostPorts(addr)}
	if cfg.OTelEnabled {
		tracer, tracing := middleware.NewServerTracerConfig()
		serverOpts = append(serverOpts, tracer)
		opts.Observability = append(opts.Observability, tracing)
	}
	httpMetrics, err := middleware.NewHTTPMetrics(otel.Meter("alms/http"))
	if err != nil {
		logger.Logger.Fatal("Failed to initialize HTTP metrics", zap.Error(err))
	}
	opts.Observability = append(opts.Observability, httpMetrics.Middleware())

	h := server.Default(serverOpts...)
	router.Register(h, handler.Default(), opts)

	logger.Logger.Info("Server starting",
		zap.String("service", cfg.ServiceName),
		zap.String("port", cfg.ServerPort),
		zap.String("environment", cfg.Environment),
		zap.String("notify_mode", cfg.NotifyMode),
	)

	// 优雅关闭：在单独的 goroutine 中监听关闭信号并调用 Shutdown
	go func() {
		<-ctx.Done()
		logger.Logger.Info("Initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}()

	logger.Logger.Info("HTTP server listening", zap.String("addr", addr))

	h.Spin()

	logger.Logger.Info("Server shutting down gracefully")
}

func routerOptions(cfg appconfig.Config) router.Options {
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		// 未配置时每次启动随机生成，重启后所有会话失效
		secret = randomSecret()
		logger.Logger.Warn("SESSION_SECRET is not set, sessions will not survive a restart")
	}

	opts := router.Options{
		Recover: middleware.RecoverConfig{
			EnableStackTrace: true,
			IsProduction:     cfg.IsProduction(),
		},
		Sessions: middleware.CookieSessions(secret, cfg.SessionMaxAge, cfg.IsProduction()),
		Store:    middleware.CookieStore,
	}

	if cfg.CSRFEnabled {
		opts.CSRFSecret = cfg.CSRFSecret
		if opts.CSRFSecret == "" {
			opts.CSRFSecret = hex.EncodeToString(randomSecret())
		}
	}

	if cfg.RateLimitEnabled {
		opts.RateLimiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			Window:        cfg.LoginRateLimitWindow,
			MaxRequests:   cfg.LoginRateLimitMax,
			KeyPrefix:     "ratelimit:login",
			BlockDuration: cfg.LoginRateLimitBlockTo,
		}, redis.Client())
	}
	return opts
}

func randomSecret() []byte {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		logger.Logger.Fatal("Failed to generate secret", zap.Error(err))
	}
	return b
}
