package app

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/fd1az/rewards-distributor/internal/logger"
)

// cronLogger adapts LoggerInterface to cron.Logger.
type cronLogger struct {
	log logger.LoggerInterface
}

var _ cron.Logger = cronLogger{}

// Info is only used by cron for schedule bookkeeping, so it goes to debug.
func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugc(context.Background(), 1, "cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorc(context.Background(), 1, "cron: "+msg, append(keysAndValues, "error", err)...)
}
