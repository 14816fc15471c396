package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQuery = 200 * time.Millisecond

// GormLogger routes gorm's output through slog. It implements
// gormlogger.Interface.
type GormLogger struct {
	log   *slog.Logger
	level gormlogger.LogLevel
}

// NewGormLogger wraps log at the given gorm level.
func NewGormLogger(log *slog.Logger, level gormlogger.LogLevel) *GormLogger {
	return &GormLogger{log: log.With("subsystem", "gorm"), level: level}
}

// LogMode returns a copy logging at level.
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

// Info logs a formatted message at info level.
func (l *GormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.log.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

// Warn logs a formatted message at warn level.
func (l *GormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.log.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

// Error logs a formatted message at error level.
func (l *GormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.log.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

// Trace logs one statement. Record misses are expected (absent layout
// keys) and never logged as errors.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		sql, rows := fc()
		l.log.ErrorContext(ctx, "query failed", "sql", sql, "rows", rows, "elapsed", elapsed, "err", err)
	case elapsed > slowQuery && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.log.WarnContext(ctx, "slow query", "sql", sql, "rows", rows, "elapsed", elapsed)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.log.DebugContext(ctx, "query", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
