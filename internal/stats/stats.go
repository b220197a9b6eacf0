package stats

import (
	"strconv"
	"time"

	"github.com/jon4hz/mealtrack/internal/database"
	"github.com/samber/lo"
)

// Day is the fixed length of a day used by the rolling windows.
const Day = 24 * time.Hour

// Rolling window lengths measured back from now.
const (
	DailyWindow   = Day
	WeeklyWindow  = 7 * Day
	MonthlyWindow = 30 * Day
)

// Summary holds the calorie totals of the rolling windows and their daily averages.
type Summary struct {
	Daily   float64 `json:"daily"`
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
	Avg7    string  `json:"avg7"`
	Avg30   string  `json:"avg30"`
}

// Compute sums the calories of all meals within 1, 7 and 30 days of now.
// The windows are inclusive and overlap, a meal from two hours ago counts
// toward all three. Meals dated after now have a negative age and count everywhere.
func Compute(meals []database.Meal, now time.Time) Summary {
	var s Summary
	for _, meal := range meals {
		age := now.Sub(meal.Timestamp)
		if age <= DailyWindow {
			s.Daily += meal.Calories
		}
		if age <= WeeklyWindow {
			s.Weekly += meal.Calories
		}
		if age <= MonthlyWindow {
			s.Monthly += meal.Calories
		}
	}
	s.Avg7 = FormatAverage(s.Weekly / 7)
	s.Avg30 = FormatAverage(s.Monthly / 30)
	return s
}

// FormatAverage renders v with exactly one decimal.
func FormatAverage(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// LocalDate returns the calendar date of t in loc.
func LocalDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}

// Today returns the meals whose local calendar date equals the one of now.
// This is not the rolling Daily window: a meal logged two hours ago before
// local midnight is not part of today.
func Today(meals []database.Meal, now time.Time, loc *time.Location) []database.Meal {
	today := LocalDate(now, loc)
	return lo.Filter(meals, func(meal database.Meal, _ int) bool {
		return LocalDate(meal.Timestamp, loc) == today
	})
}

// TodayCount returns the number of meals logged on the local calendar date of now.
func TodayCount(meals []database.Meal, now time.Time, loc *time.Location) int {
	return len(Today(meals, now, loc))
}

// TodayCalories returns the calories logged on the local calendar date of now.
func TodayCalories(meals []database.Meal, now time.Time, loc *time.Location) float64 {
	return lo.SumBy(Today(meals, now, loc), func(meal database.Meal) float64 {
		return meal.Calories
	})
}

// LastMeal returns the meal with the latest timestamp, nil for an empty ledger.
func LastMeal(meals []database.Meal) *database.Meal {
	if len(meals) == 0 {
		return nil
	}
	latest := lo.MaxBy(meals, func(a, b database.Meal) bool {
		return a.Timestamp.After(b.Timestamp)
	})
	return &latest
}
