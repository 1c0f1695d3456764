// Package jobs runs periodic maintenance over reservations.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Completer переводит прошедшие подтвержденные брони в completed
type Completer interface {
	CompletePast(ctx context.Context) (int64, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
	Printf(format string, v ...interface{})
}

// Scheduler cron-планировщик фоновых задач
type Scheduler struct {
	cron      *cron.Cron
	completer Completer
	spec      string
	timeout   time.Duration
	logger    Logger
}

// NewScheduler создает планировщик; spec в стандартном 5-польном формате cron
func NewScheduler(completer Completer, spec string, loc *time.Location, timeout time.Duration, logger Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if timeout <= 0 {
		timeout = time.Minute
	}

	cronLogger := cron.PrintfLogger(logger)
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	return &Scheduler{
		cron:      c,
		completer: completer,
		spec:      spec,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start регистрирует задачи и запускает планировщик
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.completePast); err != nil {
		return fmt.Errorf("jobs: invalid schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info("Jobs: completion job scheduled with %q", s.spec)
	return nil
}

// Stop останавливает планировщик и ждет завершения запущенных задач
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Error("Jobs: stop timed out: %v", ctx.Err())
	}
}

// RunOnce выполняет задачу завершения немедленно
func (s *Scheduler) RunOnce(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.completer.CompletePast(ctx)
	if err != nil {
		return 0, fmt.Errorf("jobs: complete past reservations: %w", err)
	}
	return n, nil
}

func (s *Scheduler) completePast() {
	n, err := s.RunOnce(context.Background())
	if err != nil {
		s.logger.Error("Jobs: %v", err)
		return
	}
	s.logger.Info("Jobs: %d reservations marked completed", n)
}
