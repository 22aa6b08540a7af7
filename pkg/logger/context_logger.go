package logger

import (
	"context"
	"time"

	ctxutil "github.com/arclyte/accounts/pkg/context"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogBuilder accumulates fields for a single context-aware log entry.
type LogBuilder struct {
	level   zapcore.Level
	message string
	fields  []zap.Field
}

func withContext(ctx context.Context, level zapcore.Level, message string) *LogBuilder {
	b := &LogBuilder{
		level:   level,
		message: message,
		fields:  make([]zap.Field, 0, 8),
	}
	b.extractContextFields(ctx)
	return b
}

// DebugWithContext starts a debug entry enriched with context fields.
func DebugWithContext(ctx context.Context, message string) *LogBuilder {
	return withContext(ctx, zapcore.DebugLevel, message)
}

// InfoWithContext starts an info entry enriched with context fields.
func InfoWithContext(ctx context.Context, message string) *LogBuilder {
	return withContext(ctx, zapcore.InfoLevel, message)
}

// WarnWithContext starts a warn entry enriched with context fields.
func WarnWithContext(ctx context.Context, message string) *LogBuilder {
	return withContext(ctx, zapcore.WarnLevel, message)
}

// ErrorWithContext starts an error entry enriched with context fields.
func ErrorWithContext(ctx context.Context, message string) *LogBuilder {
	return withContext(ctx, zapcore.ErrorLevel, message)
}

func (b *LogBuilder) extractContextFields(ctx context.Context) {
	if ctx == nil {
		return
	}

	if requestID := ctxutil.GetRequestID(ctx); requestID != "" {
		b.fields = append(b.fields, zap.String("request_id", requestID))
	}
	if userID := ctxutil.GetUserID(ctx); userID != "" {
		b.fields = append(b.fields, zap.String("user_id", userID))
	}
	if clientIP := ctxutil.GetClientIP(ctx); clientIP != "" {
		b.fields = append(b.fields, zap.String("client_ip", clientIP))
	}
	if module := ctxutil.GetModule(ctx); module != "" {
		b.fields = append(b.fields, zap.String("module", module))
	}
	if function := ctxutil.GetFunction(ctx); function != "" {
		b.fields = append(b.fields, zap.String("function", function))
	}
}

func (b *LogBuilder) String(key, value string) *LogBuilder {
	b.fields = append(b.fields, zap.String(key, value))
	return b
}

func (b *LogBuilder) Int(key string, value int) *LogBuilder {
	b.fields = append(b.fields, zap.Int(key, value))
	return b
}

func (b *LogBuilder) Int64(key string, value int64) *LogBuilder {
	b.fields = append(b.fields, zap.Int64(key, value))
	return b
}

func (b *LogBuilder) Bool(key string, value bool) *LogBuilder {
	b.fields = append(b.fields, zap.Bool(key, value))
	return b
}

func (b *LogBuilder) Duration(value time.Duration) *LogBuilder {
	b.fields = append(b.fields, zap.Duration("duration", value))
	return b
}

func (b *LogBuilder) Err(err error) *LogBuilder {
	b.fields = append(b.fields, zap.Error(err))
	return b
}

// Log emits the accumulated entry.
func (b *LogBuilder) Log() {
	if Logger == nil {
		return
	}

	switch b.level {
	case zapcore.DebugLevel:
		Logger.Debug(b.message, b.fields...)
	case zapcore.InfoLevel:
		Logger.Info(b.message, b.fields...)
	case zapcore.WarnLevel:
		Logger.Warn(b.message, b.fields...)
	case zapcore.ErrorLevel:
		Logger.Error(b.message, b.fields...)
	}
}
