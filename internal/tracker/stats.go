package tracker

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jon4hz/mealtrack/internal/stats"
	"github.com/mergestat/timediff"
)

// Dashboard is the overview of the current day.
type Dashboard struct {
	LastMealAt    *time.Time
	LastMealName  string
	LastMealAgo   string
	TodayCount    int
	TodayCalories float64
	CalorieGoal   float64
	Remaining     float64
}

// Stats returns the rolling calorie totals and averages of the user.
func (t *Tracker) Stats(ctx context.Context, userID string) (stats.Summary, error) {
	meals, err := t.db.GetMealsByUser(ctx, userID)
	if err != nil {
		return stats.Summary{}, fmt.Errorf("failed to get meals: %w", err)
	}
	return stats.Compute(meals, t.now()), nil
}

// Dashboard returns today's totals compared to the calorie goal.
// Today is the calendar date of now in loc, the configured timezone when loc is nil.
func (t *Tracker) Dashboard(ctx context.Context, userID string, loc *time.Location) (*Dashboard, error) {
	if loc == nil {
		loc = t.Location()
	}

	meals, err := t.db.GetMealsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get meals: %w", err)
	}
	settings, err := t.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := t.now()
	d := &Dashboard{
		TodayCount:    stats.TodayCount(meals, now, loc),
		TodayCalories: stats.TodayCalories(meals, now, loc),
		CalorieGoal:   settings.CalorieGoal,
	}
	d.Remaining = math.Max(d.CalorieGoal-d.TodayCalories, 0)

	if last := stats.LastMeal(meals); last != nil {
		ts := last.Timestamp.In(loc)
		d.LastMealAt = &ts
		d.LastMealName = last.Name
		d.LastMealAgo = timediff.TimeDiff(last.Timestamp, timediff.WithStartTime(now))
	}
	return d, nil
}
