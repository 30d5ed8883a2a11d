// Package scheduler runs periodic back-office sweeps on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/uniformco/backoffice/internal/infrastructure/telemetry"
)

// JobFunc is the body of a scheduled job
type JobFunc func(ctx context.Context) error

// Config holds scheduler settings
type Config struct {
	JobTimeout time.Duration
	Location   *time.Location
}

type job struct {
	name     string
	schedule string
	fn       JobFunc
	entry    cron.EntryID
}

// Scheduler wraps robfig/cron. Each run gets its own timeout, a panic guard,
// a log line and a metric; a run still in progress causes the next tick to be skipped.
type Scheduler struct {
	cfg     Config
	cron    *cron.Cron
	logger  *zap.Logger
	metrics *telemetry.Metrics

	mu   sync.Mutex
	jobs map[string]*job
}

// New creates a stopped scheduler
func New(cfg Config, logger *zap.Logger, metrics *telemetry.Metrics) *Scheduler {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("scheduler")
	cl := cronLogger{l: logger.Sugar()}
	return &Scheduler{
		cfg: cfg,
		cron: cron.New(
			cron.WithLocation(cfg.Location),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		metrics: metrics,
		jobs:    make(map[string]*job),
	}
}

// Register adds a job under a standard five-field cron expression or a
// descriptor such as "@hourly"
func (s *Scheduler) Register(name, schedule string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}
	j := &job{name: name, schedule: schedule, fn: fn}
	id, err := s.cron.AddFunc(schedule, func() {
		_ = s.run(context.Background(), j)
	})
	if err != nil {
		return fmt.Errorf("%w %q for %s: %v", ErrInvalidSchedule, schedule, name, err)
	}
	j.entry = id
	s.jobs[name] = j
	s.logger.Info("job registered", zap.String("job", name), zap.String("schedule", schedule))
	return nil
}

// RunNow executes a registered job synchronously
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.run(ctx, j)
}

// Next returns the next scheduled run of a job; zero before Start
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(j.entry).Next
}

// Jobs returns the registered job names
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// Start begins firing jobs
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.Jobs())))
}

// Stop prevents new runs and waits for running jobs until ctx ends
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

func (s *Scheduler) run(parent context.Context, j *job) (err error) {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", j.name, r)
		}
		s.metrics.JobRun(j.name, err)
		fields := []zap.Field{zap.String("job", j.name), zap.Duration("duration", time.Since(start))}
		if err != nil {
			s.logger.Error("job failed", append(fields, zap.Error(err))...)
			return
		}
		s.logger.Info("job finished", fields...)
	}()

	return j.fn(ctx)
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
