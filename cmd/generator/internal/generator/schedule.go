package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var _ Scheduler = (*CronScheduler)(nil)

// CronScheduler runs registered funcs on a robfig/cron "@every" schedule.
// A run that is still in progress when the next one fires causes that next
// one to be skipped. Intervals below one second are rounded up by cron.
type CronScheduler struct {
	cron *cron.Cron
}

func NewCronScheduler(logger *zap.Logger) *CronScheduler {
	l := cronLogger{logger.Sugar()}
	return &CronScheduler{
		cron: cron.New(
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
	}
}

func (s *CronScheduler) Every(interval time.Duration, fn func()) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}
	s.cron.Schedule(cron.Every(interval), cron.FuncJob(fn))
	return nil
}

func (s *CronScheduler) Start() { s.cron.Start() }

func (s *CronScheduler) Stop() context.Context { return s.cron.Stop() }

// cronLogger adapts zap to cron.Logger
type cronLogger struct{ s *zap.SugaredLogger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
