package cron

import (
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/robfig/cron/v3"

	"github.com/ManuelReschke/LaunchBoard/internal/pkg/database"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/env"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/launch"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/statistics"
)

// Runner drives the recurring background jobs: the daily launch cycle,
// the abandoned payment sweep and the view counter flush. All schedules
// run in UTC because launch days are defined as UTC calendar days.
type Runner struct {
	cron *cron.Cron
}

func NewRunner() *Runner {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cron.DefaultLogger)),
	)
	return &Runner{cron: c}
}

// Start registers all jobs and starts the scheduler in its own goroutine.
func (r *Runner) Start() error {
	// Flip scheduled -> ongoing -> launched and rank the new day at 08:00 UTC.
	if _, err := r.cron.AddFunc("0 8 * * *", r.runLaunchCycle); err != nil {
		return err
	}
	// Release slots held by checkouts nobody finished.
	if _, err := r.cron.AddFunc("*/15 * * * *", r.sweepAbandonedPayments); err != nil {
		return err
	}
	// Drain the Redis view counters into the projects table.
	if _, err := r.cron.AddFunc("*/5 * * * *", r.flushCounters); err != nil {
		return err
	}

	r.cron.Start()
	log.Info("[Cron] Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	log.Info("[Cron] Scheduler stopped")
}

func (r *Runner) runLaunchCycle() {
	svc := launch.NewServiceFromDB(database.GetDB())
	result, err := svc.RunLaunchCycle()
	if err != nil {
		log.Errorf("[Cron] Launch cycle failed: %v", err)
		return
	}
	log.Infof("[Cron] Launch cycle done: %d ongoing, %d launched, %d ranked, %d swept",
		len(result.MovedToOngoing), len(result.MovedToLaunched), len(result.Ranked), result.SweptPayments)
	statistics.ResetCacheUpdateTimer()
}

func (r *Runner) sweepAbandonedPayments() {
	svc := launch.NewServiceFromDB(database.GetDB())
	swept, err := svc.SweepAbandonedPayments()
	if err != nil {
		log.Errorf("[Cron] Payment sweep failed: %v", err)
		return
	}
	if swept > 0 {
		log.Infof("[Cron] Payment sweep released %d abandoned slots", swept)
	}
}

func (r *Runner) flushCounters() {
	if err := counter.FlushAll(); err != nil {
		log.Errorf("[Cron] Counter flush failed: %v", err)
	}
}

// StartFromEnv starts the scheduler unless CRON_ENABLED is set to false.
// It returns the runner so the caller can stop it on shutdown, or nil
// when the scheduler is disabled.
func StartFromEnv() (*Runner, error) {
	if env.GetEnv("CRON_ENABLED", "true") == "false" {
		log.Info("[Cron] Scheduler disabled via CRON_ENABLED")
		return nil, nil
	}
	r := NewRunner()
	if err := r.Start(); err != nil {
		return nil, err
	}
	return r, nil
}
