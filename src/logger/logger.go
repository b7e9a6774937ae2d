package logger

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"
)

// slowThreshold marks the query duration past which a statement is logged
// as slow instead of routine.
const slowThreshold = 200 * time.Millisecond

// GormLogger sends the artifact store's SQL through the same logrus stream
// the rest of a run logs to, so trade persistence and simulation output
// interleave in one place.
type GormLogger struct {
	logger *logrus.Logger
	level  logger.LogLevel
}

func NewGormLogger() *GormLogger {
	return &GormLogger{
		logger: logrus.StandardLogger(),
		level:  logger.Warn,
	}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	out := *l
	out.level = level
	return &out
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Info {
		l.logger.WithContext(ctx).Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Warn {
		l.logger.WithContext(ctx).Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Error {
		l.logger.WithContext(ctx).Errorf(msg, data...)
	}
}

// Trace logs failed statements as errors and slow ones as warnings; routine
// statements only appear at Info level.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := logrus.Fields{
		"elapsed": elapsed,
		"rows":    rows,
		"sql":     sql,
	}

	switch {
	case err != nil && l.level >= logger.Error:
		l.logger.WithContext(ctx).WithFields(fields).Error(err)
	case elapsed >= slowThreshold && l.level >= logger.Warn:
		l.logger.WithContext(ctx).WithFields(fields).Warnf("SLOW SQL >= %s", slowThreshold)
	case l.level >= logger.Info:
		l.logger.WithContext(ctx).WithFields(fields).Info("SQL")
	}
}
