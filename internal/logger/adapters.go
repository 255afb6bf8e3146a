package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Migration 将 goose 的 Printf 风格输出转到 zap。
type Migration struct {
	l *zap.SugaredLogger
}

// NewMigration 构造迁移日志适配器。
func NewMigration(l *zap.Logger) *Migration {
	return &Migration{l: l.Named("migrate").Sugar()}
}

// Printf 以 info 级别输出。
func (m *Migration) Printf(format string, v ...any) {
	m.l.Infof(format, v...)
}

// Fatalf 以 fatal 级别输出并退出进程。
func (m *Migration) Fatalf(format string, v ...any) {
	m.l.Fatalf(format, v...)
}

// Gorm 将 gorm 日志转到 zap，慢查询以 warn 级别记录。
type Gorm struct {
	l             *zap.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewGorm 构造 gorm 日志适配器。
func NewGorm(l *zap.Logger, level gormlogger.LogLevel) *Gorm {
	return &Gorm{
		l:             l.Named("gorm").WithOptions(zap.AddCallerSkip(3)),
		level:         level,
		slowThreshold: 200 * time.Millisecond,
	}
}

// LogMode 返回指定级别的副本。
func (g *Gorm) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *Gorm) Info(_ context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Info {
		g.l.Info(fmt.Sprintf(msg, args...))
	}
}

func (g *Gorm) Warn(_ context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Warn {
		g.l.Warn(fmt.Sprintf(msg, args...))
	}
}

func (g *Gorm) Error(_ context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Error {
		g.l.Error(fmt.Sprintf(msg, args...))
	}
}

// Trace 记录 SQL 执行情况；记录不存在不视为错误。
func (g *Gorm) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && g.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		g.l.Error("query failed", zap.Error(err), zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	case elapsed > g.slowThreshold && g.level >= gormlogger.Warn:
		sql, rows := fc()
		g.l.Warn("slow query", zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.l.Debug("query", zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	}
}
