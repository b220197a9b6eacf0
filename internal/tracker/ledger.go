package tracker

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jon4hz/mealtrack/internal/database"
	"github.com/samber/lo"
)

// NewMeal is the input of AddMeal. A nil Calories means the value was absent or unparseable.
type NewMeal struct {
	Name       string
	Calories   *float64
	Comments   string
	PresetID   string
	ClientTime string
}

// ComboItem is one food of a combo meal.
type ComboItem struct {
	Name     string
	Calories float64
}

// Combo is the input of AddCombo. Only the aggregated meal is stored.
type Combo struct {
	Name       string
	Items      []ComboItem
	Comments   string
	ClientTime string
}

// MealPatch holds the fields of a meal edit, nil fields are left unchanged.
type MealPatch struct {
	Name       *string
	Calories   *float64
	Comments   *string
	ClientTime *string
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateTime,
}

// ParseClientTime interprets a timestamp sent by a client. It accepts RFC 3339, local
// date-times without offset (interpreted in loc) and integer epoch milliseconds.
// Times outside the years 1 to 9999 are rejected, the database cannot store them.
func ParseClientTime(s string, loc *time.Location) (time.Time, bool) {
	ts, ok := parseClientTime(s, loc)
	if !ok || ts.UTC().Year() < minClientYear || ts.UTC().Year() > maxClientYear {
		return time.Time{}, false
	}
	return ts, true
}

const (
	minClientYear = 1
	maxClientYear = 9999
)

func parseClientTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), true
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, true
	}
	for _, layout := range localLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// timestamp returns the parsed client time or now.
func (t *Tracker) timestamp(clientTime string) time.Time {
	if ts, ok := ParseClientTime(clientTime, t.Location()); ok {
		return ts
	}
	return t.now()
}

func clampCalories(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

// AddMeal records a meal for the user. Negative calories are stored as zero.
func (t *Tracker) AddMeal(ctx context.Context, userID string, m NewMeal) (*database.Meal, error) {
	name := strings.TrimSpace(m.Name)
	if name == "" || m.Calories == nil {
		return nil, fmt.Errorf("%w: name and calories are required", ErrMissingField)
	}

	meal := &database.Meal{
		UserID:    userID,
		Name:      name,
		Calories:  clampCalories(*m.Calories),
		Comments:  strings.TrimSpace(m.Comments),
		Timestamp: t.timestamp(m.ClientTime),
	}
	if presetID := strings.TrimSpace(m.PresetID); presetID != "" {
		meal.PresetID = &presetID
	}

	if err := t.db.CreateMeal(ctx, meal); err != nil {
		return nil, fmt.Errorf("failed to create meal: %w", err)
	}
	return meal, nil
}

// AddCombo records several foods as one meal with the summed calories.
// Without a name the item names are joined.
func (t *Tracker) AddCombo(ctx context.Context, userID string, c Combo) (*database.Meal, error) {
	if len(c.Items) == 0 {
		return nil, fmt.Errorf("%w: a combo needs at least one item", ErrMissingField)
	}

	name := strings.TrimSpace(c.Name)
	if name == "" {
		names := lo.FilterMap(c.Items, func(item ComboItem, _ int) (string, bool) {
			n := strings.TrimSpace(item.Name)
			return n, n != ""
		})
		name = strings.Join(names, ", ")
	}
	if name == "" {
		return nil, fmt.Errorf("%w: combo items need a name", ErrMissingField)
	}

	meal := &database.Meal{
		UserID: userID,
		Name:   name,
		Calories: lo.SumBy(c.Items, func(item ComboItem) float64 {
			return clampCalories(item.Calories)
		}),
		Comments:  strings.TrimSpace(c.Comments),
		Timestamp: t.timestamp(c.ClientTime),
	}
	if err := t.db.CreateMeal(ctx, meal); err != nil {
		return nil, fmt.Errorf("failed to create meal: %w", err)
	}
	return meal, nil
}

// LogPreset records a meal from one of the user's presets.
func (t *Tracker) LogPreset(ctx context.Context, userID, presetID, clientTime string) (*database.Meal, error) {
	preset, err := t.db.GetPreset(ctx, userID, presetID)
	if err != nil {
		return nil, notFound(err, "preset")
	}

	meal := &database.Meal{
		UserID:    userID,
		Name:      preset.Name,
		Calories:  preset.Calories,
		PresetID:  &preset.ID,
		Timestamp: t.timestamp(clientTime),
	}
	if err := t.db.CreateMeal(ctx, meal); err != nil {
		return nil, fmt.Errorf("failed to create meal: %w", err)
	}
	return meal, nil
}

// ListMeals returns the meals of the user in the order they were logged.
func (t *Tracker) ListMeals(ctx context.Context, userID string) ([]database.Meal, error) {
	meals, err := t.db.GetMealsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get meals: %w", err)
	}
	return meals, nil
}

// EditMeal applies the present fields of the patch to a meal of the user.
func (t *Tracker) EditMeal(ctx context.Context, userID, mealID string, patch MealPatch) (*database.Meal, error) {
	var name string
	if patch.Name != nil {
		name = strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be blank", ErrMissingField)
		}
	}

	var ts time.Time
	if patch.ClientTime != nil && strings.TrimSpace(*patch.ClientTime) != "" {
		var ok bool
		ts, ok = ParseClientTime(*patch.ClientTime, t.Location())
		if !ok {
			return nil, fmt.Errorf("%w: unparseable time %q", ErrInvalidField, *patch.ClientTime)
		}
	}

	meal, err := t.db.UpdateMeal(ctx, userID, mealID, func(m *database.Meal) error {
		if patch.Name != nil {
			m.Name = name
		}
		if patch.Calories != nil {
			m.Calories = clampCalories(*patch.Calories)
		}
		if patch.Comments != nil {
			m.Comments = strings.TrimSpace(*patch.Comments)
		}
		if !ts.IsZero() {
			m.Timestamp = ts
		}
		return nil
	})
	if err != nil {
		return nil, notFound(err, "meal")
	}
	return meal, nil
}

// DeleteMeal removes a meal of the user.
func (t *Tracker) DeleteMeal(ctx context.Context, userID, mealID string) error {
	if err := t.db.DeleteMeal(ctx, userID, mealID); err != nil {
		return notFound(err, "meal")
	}
	return nil
}
