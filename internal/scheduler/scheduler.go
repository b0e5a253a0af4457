package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/precipitation-tracker/internal/weather"
)

// Collector runs one collection cycle.
type Collector interface {
	Collect(ctx context.Context) weather.CycleSummary
}

// Scheduler periodically runs collection cycles.
type Scheduler struct {
	scheduler *gocron.Scheduler
	collector Collector
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler. Each run is bounded by timeout.
func New(collector Collector, interval, timeout time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		collector: collector,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first cycle runs immediately. A cycle still running when the next one
// is due causes that run to be skipped.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return errors.New("scheduler: interval must be positive")
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	slog.Debug("scheduler: running collection job")
	s.collector.Collect(ctx)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
