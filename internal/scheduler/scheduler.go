// Package scheduler runs the housekeeping jobs of the console.
package scheduler

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	MonthlyResetSpec = "@monthly"
	SessionSweepSpec = "@every 1m"
	SessionMaxAge    = 30 * time.Minute
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type CounterResetter interface {
	ResetMonthlyCounters()
}

type SessionSweeper interface {
	Sweep(maxAge time.Duration) int
}

type Scheduler struct {
	cron   *cron.Cron
	logger *logrus.Logger
}

func New(loc *time.Location, logger *logrus.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc), cron.WithParser(cronParser)),
		logger: logger,
	}
}

// Add registers fn under spec. A panicking job is logged and does not stop
// the scheduler.
func (s *Scheduler) Add(spec, name string, fn func()) error {
	_, err := s.cron.AddFunc(spec, s.wrap(name, fn))
	if err != nil {
		return errors.Wrapf(err, "schedule %s (%s)", name, spec)
	}
	return nil
}

func (s *Scheduler) wrap(name string, fn func()) func() {
	return func() {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				s.logger.WithFields(logrus.Fields{"job": name, "panic": r}).Error("scheduled job panicked")
			}
		}()
		fn()
		s.logger.WithFields(logrus.Fields{"job": name, "duration": time.Since(start)}).Debug("scheduled job done")
	}
}

// RegisterDefaults installs the menu quota reset and the payment session sweep.
func (s *Scheduler) RegisterDefaults(menus CounterResetter, sessions SessionSweeper) error {
	if err := s.Add(MonthlyResetSpec, "menu-quota-reset", menus.ResetMonthlyCounters); err != nil {
		return err
	}
	return s.Add(SessionSweepSpec, "payment-session-sweep", func() {
		if n := sessions.Sweep(SessionMaxAge); n > 0 {
			s.logger.WithField("sessions", n).Info("stale payment sessions dropped")
		}
	})
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}
