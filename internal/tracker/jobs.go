package tracker

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
	"github.com/jon4hz/mealtrack/internal/scheduler"
)

// Scheduler returns the scheduler running the background jobs.
func (t *Tracker) Scheduler() *scheduler.Scheduler {
	return t.scheduler
}

// Run starts the background jobs and blocks until ctx is canceled.
func (t *Tracker) Run(ctx context.Context) error {
	t.scheduler.Start()
	<-ctx.Done()
	return nil
}

// Close stops the background jobs.
func (t *Tracker) Close() error {
	return t.scheduler.Stop()
}

// setupJobs configures all scheduled jobs.
func (t *Tracker) setupJobs() error {
	cleanupSchedule := t.cfg.SessionCleanupSchedule
	if cleanupSchedule == "" {
		cleanupSchedule = "0 * * * *"
	}
	if err := t.scheduler.AddSingletonJob(
		"purge_sessions",
		"Purge Sessions",
		"Removes expired sessions",
		cleanupSchedule,
		gocron.CronJob(cleanupSchedule, false),
		t.PurgeExpiredSessions,
		true,
	); err != nil {
		return fmt.Errorf("failed to add session cleanup job: %w", err)
	}

	if t.notifier != nil && t.cfg.Reminders != nil && t.cfg.Reminders.Enabled {
		if err := t.scheduler.AddSingletonJob(
			"meal_reminders",
			"Meal Reminders",
			"Emails users that have not logged a meal within their reminder interval",
			t.cfg.Reminders.Schedule,
			gocron.CronJob(t.cfg.Reminders.Schedule, false),
			t.runRemindersJob,
			false,
		); err != nil {
			return fmt.Errorf("failed to add reminders job: %w", err)
		}
	}

	log.Info("Scheduled jobs configured successfully")
	return nil
}
