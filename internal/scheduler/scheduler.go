// Package scheduler runs the periodic background jobs: generating last
// week's summaries for pro users and purging expired usage counters and
// idempotency keys.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-habit-backend/internal/config"
	"github.com/tbourn/go-habit-backend/internal/services"
)

// WeeklyGenerator produces summaries for every pro user for one week.
type WeeklyGenerator interface {
	GenerateForAllPro(ctx context.Context, weekKey string) (int, error)
}

// Purger deletes expired bookkeeping rows.
type Purger interface {
	PurgeExpired(ctx context.Context) (usage, idem int64, err error)
}

var jobRuns = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "scheduler_job_runs_total",
		Help: "Background job executions by job and result.",
	},
	[]string{"job", "result"},
)

func init() {
	prometheus.MustRegister(jobRuns)
}

// Scheduler owns a cron instance with the weekly and purge jobs registered.
// All schedules are evaluated in UTC.
type Scheduler struct {
	cron    *cron.Cron
	weekly  WeeklyGenerator
	purger  Purger
	timeout time.Duration
	now     func() time.Time
}

// New parses the schedules in cfg and registers both jobs. It does not
// start them.
func New(cfg config.SchedulerConfig, weekly WeeklyGenerator, purger Purger) (*Scheduler, error) {
	lg := cronLogger{log.Logger.With().Str("component", "scheduler").Logger()}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(lg),
			cron.WithChain(cron.Recover(lg), cron.SkipIfStillRunning(lg)),
		),
		weekly:  weekly,
		purger:  purger,
		timeout: 30 * time.Minute,
		now:     time.Now,
	}
	if _, err := s.cron.AddFunc(cfg.WeeklySpec, func() { s.run("weekly_summaries", s.RunWeekly) }); err != nil {
		return nil, fmt.Errorf("weekly spec %q: %w", cfg.WeeklySpec, err)
	}
	if _, err := s.cron.AddFunc(cfg.PurgeSpec, func() { s.run("purge", s.RunPurge) }); err != nil {
		return nil, fmt.Errorf("purge spec %q: %w", cfg.PurgeSpec, err)
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunWeekly generates summaries for the week before the current one.
func (s *Scheduler) RunWeekly(ctx context.Context) error {
	week := services.PreviousWeekKey(s.now().UTC())
	n, err := s.weekly.GenerateForAllPro(ctx, week)
	zerolog.Ctx(ctx).Info().Str("week", week).Int("generated", n).Msg("weekly summaries")
	return err
}

// RunPurge removes expired usage counters and idempotency keys.
func (s *Scheduler) RunPurge(ctx context.Context) error {
	usage, idem, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Int64("usage_rows", usage).Int64("idempotency_rows", idem).Msg("purged expired rows")
	return nil
}

func (s *Scheduler) run(job string, fn func(context.Context) error) {
	lg := log.Logger.With().Str("component", "scheduler").Str("job", job).Logger()
	ctx, cancel := context.WithTimeout(lg.WithContext(context.Background()), s.timeout)
	defer cancel()

	start := time.Now()
	if err := fn(ctx); err != nil {
		jobRuns.WithLabelValues(job, "error").Inc()
		lg.Error().Err(err).Dur("took", time.Since(start)).Msg("job failed")
		return
	}
	jobRuns.WithLabelValues(job, "ok").Inc()
	lg.Debug().Dur("took", time.Since(start)).Msg("job done")
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct{ l zerolog.Logger }

func (c cronLogger) Info(msg string, kv ...interface{}) {
	c.l.Debug().Fields(kv).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, kv ...interface{}) {
	c.l.Error().Err(err).Fields(kv).Msg(msg)
}
