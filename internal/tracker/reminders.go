package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/mealtrack/internal/database"
	"github.com/jon4hz/mealtrack/internal/notify/email"
	"github.com/mergestat/timediff"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const defaultReminderConcurrency = 4

// dueForReminder reports whether a user whose last meal was at lastMeal should be reminded at now.
// A reminder is sent at most once per last meal.
func dueForReminder(lastMeal time.Time, settings *database.Settings, now time.Time) bool {
	if settings.ReminderInterval <= 0 || settings.ReminderInterval > MaxReminderInterval {
		return false
	}
	interval := time.Duration(settings.ReminderInterval) * time.Hour
	if now.Sub(lastMeal) < interval {
		return false
	}
	if settings.LastReminderAt != nil && !settings.LastReminderAt.Before(lastMeal) {
		return false
	}
	return true
}

// SendDueReminders notifies every user that has not logged a meal within their reminder
// interval and returns how many reminders were sent. Failures are logged per user.
func (t *Tracker) SendDueReminders(ctx context.Context) (int, error) {
	if t.notifier == nil {
		return 0, nil
	}

	users, err := t.db.GetAllUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get users: %w", err)
	}

	limit := defaultReminderConcurrency
	if t.cfg.Reminders != nil && t.cfg.Reminders.Concurrency > 0 {
		limit = t.cfg.Reminders.Concurrency
	}

	now := t.now()
	var sent atomic.Int64

	var g errgroup.Group
	g.SetLimit(limit)
	for _, user := range users {
		g.Go(func() error {
			ok, err := t.remindUser(ctx, user, now)
			if err != nil {
				log.Error("Failed to send reminder", "user", user.ID, "error", err)
				return nil
			}
			if ok {
				sent.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(sent.Load()), err
	}

	count := int(sent.Load())
	log.Info("Reminders sent", "count", count, "users", len(users))
	return count, ctx.Err()
}

func (t *Tracker) remindUser(ctx context.Context, user database.User, now time.Time) (bool, error) {
	last, err := t.db.GetLatestMeal(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get latest meal: %w", err)
	}

	settings, err := t.GetSettings(ctx, user.ID)
	if err != nil {
		return false, err
	}
	if !dueForReminder(last.Timestamp, settings, now) {
		return false, nil
	}

	reminder := email.Reminder{
		UserEmail:     user.Email,
		UserName:      user.Name,
		LastMealName:  last.Name,
		LastMealAt:    last.Timestamp.In(t.Location()),
		LastMealAgo:   timediff.TimeDiff(last.Timestamp, timediff.WithStartTime(now)),
		IntervalHours: settings.ReminderInterval,
		ServerURL:     t.cfg.ServerURL,
	}
	if err := t.notifier.SendReminder(ctx, reminder); err != nil {
		return false, err
	}

	if _, err := t.db.SaveSettings(ctx, user.ID, func(s *database.Settings) error {
		s.LastReminderAt = &now
		return nil
	}); err != nil {
		return true, fmt.Errorf("failed to record reminder: %w", err)
	}
	return true, nil
}

func (t *Tracker) runRemindersJob(ctx context.Context) error {
	_, err := t.SendDueReminders(ctx)
	return err
}
