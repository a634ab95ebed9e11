package service

import (
	"context"
	"errors"
	"fmt"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"
	"go-bank-ledger/repository"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrSchedulerRunning     = errors.New("interest scheduler is already running")
	ErrSchedulerNotStopping = errors.New("interest scheduler stop has not been requested")
	ErrInvalidInterval      = errors.New("interest interval must be positive")
	ErrInvalidRate          = errors.New("interest rate must be a fraction between 0 and 1")
)

// SchedulerState follows Stopped -> Running -> StopRequested -> Stopped.
type SchedulerState int32

const (
	SchedulerStopped SchedulerState = iota
	SchedulerRunning
	SchedulerStopRequested
)

func (s SchedulerState) String() string {
	switch s {
	case SchedulerStopped:
		return "stopped"
	case SchedulerRunning:
		return "running"
	case SchedulerStopRequested:
		return "stop_requested"
	default:
		return fmt.Sprintf("SchedulerState(%d)", int32(s))
	}
}

// everySchedule fires a fixed interval after the previous activation.
// cron.Every rounds to whole seconds, which is too coarse for short intervals.
type everySchedule time.Duration

func (e everySchedule) Next(t time.Time) time.Time {
	return t.Add(time.Duration(e))
}

// InterestScheduler periodically applies interest to every account in the
// store from a background cron job.
type InterestScheduler struct {
	repo     repository.IAccountRepository
	interval time.Duration
	rate     decimal.Decimal

	mu      sync.Mutex
	state   SchedulerState
	cron    *cron.Cron
	stopped context.Context

	stopRequested atomic.Bool
	ticks         atomic.Uint64
}

// NewInterestScheduler validates interval and rate; the scheduler starts stopped.
func NewInterestScheduler(repo repository.IAccountRepository, interval time.Duration, rate decimal.Decimal) (*InterestScheduler, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if !rate.IsPositive() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidRate, rate)
	}
	return &InterestScheduler{
		repo:     repo,
		interval: interval,
		rate:     rate,
	}, nil
}

// Start launches the background accrual job. Ticks never overlap: a tick
// that is still running when the next one is due causes that one to be skipped.
func (s *InterestScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SchedulerStopped {
		return ErrSchedulerRunning
	}

	cronLog := cron.PrintfLogger(logger.Log)
	c := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	c.Schedule(everySchedule(s.interval), cron.FuncJob(s.tick))

	s.stopRequested.Store(false)
	s.cron = c
	s.stopped = nil
	s.state = SchedulerRunning
	c.Start()

	logger.Log.WithFields(logrus.Fields{
		"interval": s.interval.String(),
		"rate":     s.rate.String(),
	}).Info("Interest scheduler started")
	return nil
}

// RequestStop asks the job to exit at its next check point. A tick that is
// already iterating finishes. Calling it again, or on a stopped scheduler,
// does nothing.
func (s *InterestScheduler) RequestStop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SchedulerRunning {
		return
	}
	s.stopRequested.Store(true)
	s.stopped = s.cron.Stop()
	s.state = SchedulerStopRequested

	logger.Log.Info("Interest scheduler stop requested")
}

// AwaitStopped blocks until the background job has fully exited or ctx ends.
// It returns immediately when the scheduler is already stopped.
func (s *InterestScheduler) AwaitStopped(ctx context.Context) error {
	s.mu.Lock()
	state, done := s.state, s.stopped
	s.mu.Unlock()

	switch state {
	case SchedulerStopped:
		return nil
	case SchedulerRunning:
		return ErrSchedulerNotStopping
	}

	select {
	case <-done.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.Lock()
	if s.stopped == done {
		s.state = SchedulerStopped
		s.cron = nil
	}
	s.mu.Unlock()

	logger.Log.WithField("ticks", s.ticks.Load()).Info("Interest scheduler stopped")
	return nil
}

// Stop requests a stop and waits for it to complete.
func (s *InterestScheduler) Stop(ctx context.Context) error {
	s.RequestStop()
	return s.AwaitStopped(ctx)
}

// State returns the current lifecycle state.
func (s *InterestScheduler) State() SchedulerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ticks reports how many accrual passes have completed.
func (s *InterestScheduler) Ticks() uint64 {
	return s.ticks.Load()
}

func (s *InterestScheduler) tick() {
	if s.stopRequested.Load() {
		return
	}

	start := time.Now()
	var applied, skipped, failed int
	s.repo.ForEach(func(acc *model.Account) {
		ok, err := s.accrue(acc)
		switch {
		case err != nil:
			failed++
			logger.Log.WithError(err).Error("Interest accrual failed for account")
		case ok:
			applied++
		default:
			skipped++
		}
	})
	s.ticks.Add(1)

	logger.Log.WithFields(logrus.Fields{
		"applied":  applied,
		"skipped":  skipped,
		"failed":   failed,
		"duration": time.Since(start).String(),
	}).Debug("Interest accrual pass completed")
}

// accrue isolates one account so a failure there cannot abort the pass.
func (s *InterestScheduler) accrue(acc *model.Account) (applied bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered from panic: %v", r)
		}
	}()
	_, applied = acc.ApplyInterest(s.rate)
	return applied, nil
}
