package logging

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields is a map of structured logging fields
type Fields map[string]any

// Logger is the structured logging interface used across the application
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)
	WithFields(fields Fields) Logger
}

type zapLogger struct {
	base   *zap.Logger
	fields Fields
}

var (
	defaultLogger Logger
	defaultOnce   sync.Once
	defaultMu     sync.RWMutex
)

// NewDefaultLogger creates a logger writing structured output to stderr at
// the level named by BEEWATCH_LOG_LEVEL (info when unset)
func NewDefaultLogger() Logger {
	return NewLoggerWithLevel(os.Getenv("BEEWATCH_LOG_LEVEL"))
}

// NewLoggerWithLevel creates a logger at the given level (debug, info, warn, error)
func NewLoggerWithLevel(level string) Logger {
	zapLevel := zapcore.InfoLevel
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(os.Stderr),
		zapLevel,
	)

	return &zapLogger{base: zap.New(core)}
}

// SetDefaultLogger replaces the process-wide logger used by the package-level helpers
func SetDefaultLogger(l Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

func getDefault() Logger {
	defaultOnce.Do(func() {
		defaultMu.Lock()
		if defaultLogger == nil {
			defaultLogger = NewDefaultLogger()
		}
		defaultMu.Unlock()
	})
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

func (l *zapLogger) zapFields(extra []Fields) []zap.Field {
	merged := make(Fields, len(l.fields)+4)
	for k, v := range l.fields {
		merged[k] = v
	}
	for _, f := range extra {
		for k, v := range f {
			merged[k] = v
		}
	}
	out := make([]zap.Field, 0, len(merged))
	for k, v := range merged {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func (l *zapLogger) Debug(msg string, fields ...Fields) {
	l.base.Debug(msg, l.zapFields(fields)...)
}

func (l *zapLogger) Info(msg string, fields ...Fields) {
	l.base.Info(msg, l.zapFields(fields)...)
}

func (l *zapLogger) Warn(msg string, fields ...Fields) {
	l.base.Warn(msg, l.zapFields(fields)...)
}

func (l *zapLogger) Error(err error, msg string, fields ...Fields) {
	zf := l.zapFields(fields)
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	l.base.Error(msg, zf...)
}

func (l *zapLogger) WithFields(fields Fields) Logger {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &zapLogger{base: l.base, fields: merged}
}

// WithFields returns the default logger with the given fields attached
func WithFields(fields Fields) Logger {
	return getDefault().WithFields(fields)
}

// Debug logs a debug message on the default logger
func Debug(msg string, fields ...Fields) {
	getDefault().Debug(msg, fields...)
}

// Info logs an info message on the default logger
func Info(msg string, fields ...Fields) {
	getDefault().Info(msg, fields...)
}

// Warn logs a warning on the default logger
func Warn(msg string, fields ...Fields) {
	getDefault().Warn(msg, fields...)
}

// Error logs an error on the default logger
func Error(err error, msg string, fields ...Fields) {
	getDefault().Error(err, msg, fields...)
}
