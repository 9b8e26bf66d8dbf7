package logging

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogger is a zap-backed console logger.
// Debug/Info -> stdout
// Warn/Error/Fatal -> stderr
// Levels are colored when stdout is a terminal.
type DefaultLogger struct {
	logger *zap.Logger
	level  zap.AtomicLevel
}

// NewDefaultLogger creates a new default logger at InfoLevel
func NewDefaultLogger() *DefaultLogger {
	return newConsoleLogger(isTerminal())
}

// NewLoggerWithCore wraps an existing zap core. The core's own level still
// applies on top of SetLevel.
func NewLoggerWithCore(core zapcore.Core) *DefaultLogger {
	level := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	return &DefaultLogger{
		logger: zap.New(&levelFilteredCore{Core: core, level: level}),
		level:  level,
	}
}

func newConsoleLogger(useColors bool) *DefaultLogger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if useColors {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return level.Enabled(l) && l < zapcore.WarnLevel
	})
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return level.Enabled(l) && l >= zapcore.WarnLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), low),
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), high),
	)

	return &DefaultLogger{
		logger: zap.New(core),
		level:  level,
	}
}

// isTerminal reports whether stdout is a character device
func isTerminal() bool {
	if fileInfo, _ := os.Stdout.Stat(); fileInfo != nil {
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// levelFilteredCore applies the logger's atomic level to a wrapped core
type levelFilteredCore struct {
	zapcore.Core
	level zap.AtomicLevel
}

func (c *levelFilteredCore) Enabled(l zapcore.Level) bool {
	return c.level.Enabled(l) && c.Core.Enabled(l)
}

func (c *levelFilteredCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilteredCore{Core: c.Core.With(fields), level: c.level}
}

func (c *levelFilteredCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.level.Enabled(entry.Level) {
		return checked
	}
	return c.Core.Check(entry, checked)
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func zapFields(err error, fields []Fields) []zap.Field {
	count := 0
	for _, f := range fields {
		count += len(f)
	}
	out := make([]zap.Field, 0, count+1)
	if err != nil {
		out = append(out, zap.Error(err))
	}
	for _, f := range fields {
		for key, value := range f {
			if key == "" {
				continue
			}
			out = append(out, zap.Any(key, value))
		}
	}
	return out
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	d.logger.Debug(msg, zapFields(nil, fields)...)
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	d.logger.Info(msg, zapFields(nil, fields)...)
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	d.logger.Warn(msg, zapFields(nil, fields)...)
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.logger.Error(msg, zapFields(err, fields)...)
}

// Fatal logs and exits the process with status 1
func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.logger.Fatal(msg, zapFields(err, fields)...)
}

func (d *DefaultLogger) WithFields(fields Fields) Logger {
	return &DefaultLogger{
		logger: d.logger.With(zapFields(nil, []Fields{fields})...),
		level:  d.level,
	}
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := FieldsFromContext(ctx); ok {
		return d.WithFields(fields)
	}
	return d
}

// SetLevel changes the level for this logger and every logger derived from it
func (d *DefaultLogger) SetLevel(level Level) {
	d.level.SetLevel(toZapLevel(level))
}

// Sync flushes buffered output
func (d *DefaultLogger) Sync() error {
	return d.logger.Sync()
}

// NoOpLogger discards everything. Tests and library callers that want
// silence pass it explicitly.
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, fields ...Fields)            {}
func (n *NoOpLogger) Info(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Warn(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Error(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) Fatal(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) WithFields(fields Fields) Logger               { return n }
func (n *NoOpLogger) WithContext(ctx context.Context) Logger        { return n }
func (n *NoOpLogger) SetLevel(level Level)                          {}
