package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzzap "github.com/hertz-contrib/logger/zap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"alms/config"
)

var (
	// Init 之前为 no-op，测试里可以直接使用
	Logger = zap.NewNop()
	sink   io.Closer
)

// Options 日志输出方式
type Options struct {
	Level string
	// json 或 text；Console 为 true 时总是 text
	Format  string
	Console bool
	// stdout 或文件路径
	Output string
}

// Init 按 config.Cfg 构建日志并接管 hertz 的 hlog
func Init() {
	opts := Options{
		Level:   config.Cfg.LoggerLevel,
		Format:  config.Cfg.LoggerFormat,
		Console: config.Cfg.IsDevelopment(),
		Output:  config.Cfg.LoggerOutputPath,
	}

	hzLogger, closer, err := New(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	sink = closer

	hlog.SetLogger(hzLogger)
	hlog.SetLevel(toHlogLevel(parseZapLevel(opts.Level)))
	Logger = hzLogger.Logger()

	Logger.Info("Logger initialized",
		zap.String("level", strings.ToUpper(opts.Level)),
		zap.String("format", opts.Format),
		zap.String("environment", config.Cfg.Environment),
	)
}

// New 返回的 closer 在输出到文件时非空
func New(opts Options) (*hertzzap.Logger, io.Closer, error) {
	ws, closer, err := writeSyncer(opts.Output)
	if err != nil {
		return nil, nil, err
	}

	level := zap.NewAtomicLevelAt(parseZapLevel(opts.Level))
	return hertzzap.NewLogger(
		hertzzap.WithCoreEnc(encoder(opts)),
		hertzzap.WithCoreWs(ws),
		hertzzap.WithCoreLevel(level),
		hertzzap.WithZapOptions(zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)),
	), closer, nil
}

func Sync() {
	_ = Logger.Sync()
	if sink != nil {
		_ = sink.Close()
	}
}

func encoder(opts Options) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeCaller = zapcore.ShortCallerEncoder

	if opts.Console || strings.EqualFold(opts.Format, "text") {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(ec)
}

func writeSyncer(output string) (zapcore.WriteSyncer, io.Closer, error) {
	if output == "" || strings.EqualFold(output, "stdout") {
		return zapcore.AddSync(os.Stdout), nil, nil
	}

	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", output, err)
	}
	return zapcore.AddSync(f), f, nil
}

// parseZapLevel 无法识别时退回 info
func parseZapLevel(level string) zapcore.Level {
	l, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil || l < zapcore.DebugLevel || l > zapcore.ErrorLevel {
		return zapcore.InfoLevel
	}
	return l
}

var hlogLevels = map[zapcore.Level]hlog.Level{
	zapcore.DebugLevel: hlog.LevelDebug,
	zapcore.InfoLevel:  hlog.LevelInfo,
	zapcore.WarnLevel:  hlog.LevelWarn,
	zapcore.ErrorLevel: hlog.LevelError,
}

func toHlogLevel(level zapcore.Level) hlog.Level {
	if l, ok := hlogLevels[level]; ok {
		return l
	}
	return hlog.LevelInfo
}
