package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"book-club-go/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// gormLog routes GORM output through the service logger. Record-not-found
// is expected by repositories and never logged.
type gormLog struct {
	log           logger.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func newGormLog(log logger.Logger, slowThreshold time.Duration) *gormLog {
	if slowThreshold <= 0 {
		slowThreshold = defaultSlowQuery
	}
	return &gormLog{log: log, level: gormlogger.Warn, slowThreshold: slowThreshold}
}

func (g *gormLog) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *gormLog) Info(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Info {
		logger.WithTrace(ctx, g.log).Info("db: " + fmt.Sprintf(msg, args...))
	}
}

func (g *gormLog) Warn(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Warn {
		logger.WithTrace(ctx, g.log).Warn("db: " + fmt.Sprintf(msg, args...))
	}
}

func (g *gormLog) Error(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Error {
		logger.WithTrace(ctx, g.log).Error("db: " + fmt.Sprintf(msg, args...))
	}
}

func (g *gormLog) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	log := logger.WithTrace(ctx, g.log)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= gormlogger.Error:
		sql, rows := fc()
		log.Error("db: query failed", "err", err, "elapsed", elapsed, "rows", rows, "sql", sql)
	case elapsed > g.slowThreshold && g.level >= gormlogger.Warn:
		sql, rows := fc()
		log.Warn("db: slow query", "elapsed", elapsed, "threshold", g.slowThreshold, "rows", rows, "sql", sql)
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		log.Debug("db: query", "elapsed", elapsed, "rows", rows, "sql", sql)
	}
}
