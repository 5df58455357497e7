package main

import (
	"context"
	stderrors "errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"alms/config"
	"alms/internal/cache"
	"alms/internal/queue"
	"alms/internal/service"
	"alms/pkg/logger"
	"alms/pkg/metrics"
	almsotel "alms/pkg/otel"
	"alms/storage"
)

func main() {
	if err := config.Init(); err != nil {
		panic(err)
	}
	cfg := config.Cfg

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

	if cfg.NotifyMode != config.NotifyModeQueue {
		logger.Logger.Fatal("Worker requires NOTIFY_MODE=queue", zap.String("notify_mode", cfg.NotifyMode))
	}

	// worker 与 server 共用一份通知配置，缺失时直接退出
	if err := service.InitNotification(cfg); err != nil {
		logger.Logger.Fatal("Failed to initialize notifier", zap.Error(err))
	}

	if cfg.OTelEnabled {
		shutdown, err := almsotel.InitOpenTelemetry(ctx, almsotel.Config{
			ServiceName:  cfg.ServiceName + "-worker",
			Environment:  cfg.Environment,
			OTLPEndpoint: cfg.OTelEndpoint,
			SampleRatio:  cfg.OTelSampleRatio,
		})
		if err != nil {
			logger.Logger.Fatal("Failed to initialize OpenTelemetry", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}
	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	if err := storage.Init(storage.Options{Redis: true, RabbitMQ: true}); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	logger.Logger.Info("Worker service starting",
		zap.String("service", cfg.ServiceName+"-worker"),
		zap.String("environment", cfg.Environment),
	)

	err := queue.StartLeaveNotificationConsumer(ctx, service.Notification(), cache.Messages())
	if err != nil && !stderrors.Is(err, context.Canceled) {
		logger.Logger.Error("Leave notification consumer stopped", zap.Error(err))
	}

	logger.Logger.Info("Worker service shutting down gracefully")
}
