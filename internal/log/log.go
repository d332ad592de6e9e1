package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps a zap logger with context hooks.
type Logger struct {
	zl *zap.Logger

	mu    sync.RWMutex
	hooks []Hook
}

var global atomic.Pointer[Logger]

//nolint:gochecknoinits // default logger before config is loaded.
func init() {
	global.Store(New(Config{Name: "ecagate", Level: "info", Encoding: "json"}))
}

// New builds a logger from the given config. Unknown levels fall back to info.
func New(cfg Config) *Logger {
	level := zapcore.InfoLevel
	if cfg.Debug {
		level = zapcore.DebugLevel
	} else if cfg.Level != "" {
		if parsed, err := zapcore.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Encoding == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(newWriter(cfg)), level)

	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(3))
	if cfg.Name != "" {
		zl = zl.Named(cfg.Name)
	}

	return &Logger{
		zl:    zl,
		hooks: []Hook{HookFunc(traceFields)},
	}
}

func newWriter(cfg Config) io.Writer {
	switch strings.ToLower(cfg.Output) {
	case "", "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	default:
		return &lumberjack.Logger{
			Filename:   cfg.Output,
			MaxSize:    defaultIfZero(cfg.File.MaxSizeMB, 100),
			MaxBackups: defaultIfZero(cfg.File.MaxBackups, 7),
			MaxAge:     defaultIfZero(cfg.File.MaxAgeDays, 30),
			Compress:   cfg.File.Compress,
		}
	}
}

func defaultIfZero(v, def int) int {
	if v == 0 {
		return def
	}

	return v
}

// AddHook registers a hook applied to every entry of this logger.
func (l *Logger) AddHook(hook Hook) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.hooks = append(l.hooks, hook)
}

// Zap exposes the underlying zap logger.
func (l *Logger) Zap() *zap.Logger {
	return l.zl
}

func (l *Logger) Sync() error {
	return l.zl.Sync()
}

func (l *Logger) DebugEnabled() bool {
	return l.zl.Core().Enabled(zapcore.DebugLevel)
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.DebugLevel, msg, fields)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.InfoLevel, msg, fields)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.WarnLevel, msg, fields)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.ErrorLevel, msg, fields)
}

func (l *Logger) log(ctx context.Context, level zapcore.Level, msg string, fields []Field) {
	ce := l.zl.Check(level, msg)
	if ce == nil {
		return
	}

	l.mu.RLock()
	for _, hook := range l.hooks {
		fields = hook.Apply(ctx, msg, fields...)
	}
	l.mu.RUnlock()

	ce.Write(fields...)
}

// SetGlobalConfig replaces the global logger.
func SetGlobalConfig(cfg Config) {
	global.Store(New(cfg))
}

func GetGlobalLogger() *Logger {
	return global.Load()
}

func DebugEnabled(ctx context.Context) bool {
	return global.Load().DebugEnabled()
}

func Debug(ctx context.Context, msg string, fields ...Field) {
	global.Load().Debug(ctx, msg, fields...)
}

func Info(ctx context.Context, msg string, fields ...Field) {
	global.Load().Info(ctx, msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...Field) {
	global.Load().Warn(ctx, msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...Field) {
	global.Load().Error(ctx, msg, fields...)
}

func Fatalf(ctx context.Context, format string, args ...any) {
	global.Load().log(ctx, zapcore.FatalLevel, fmt.Sprintf(format, args...), nil)
}
