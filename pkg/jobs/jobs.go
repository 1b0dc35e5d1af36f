// Package jobs runs periodic background work on a cron schedule.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

// New builds a scheduler firing in loc; nil loc means time.Local.
func New(loc *time.Location, log *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc), cron.WithParser(parser)),
		log:  log,
	}
}

// Add registers fn under the cron expression spec. Each run gets its own
// context and a panic in fn is logged rather than crashing the process.
func (s *Scheduler) Add(name, spec string, fn func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		l := s.log.With("job", name)
		defer func() {
			if r := recover(); r != nil {
				l.Error("job_panic", "panic", r)
			}
		}()
		start := time.Now()
		if err := fn(context.Background()); err != nil {
			l.Error("job_failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
			return
		}
		l.Info("job_done", "duration_ms", time.Since(start).Milliseconds())
	})
	return err
}

func (s *Scheduler) Entries() int { return len(s.cron.Entries()) }

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}
