package models

import (
	"fmt"
	"math"

	"github.com/ccoveille/go-safecast"
	"github.com/jon4hz/mealtrack/internal/config"
	"github.com/jon4hz/mealtrack/internal/database"
	"github.com/jon4hz/mealtrack/internal/gravatar"
	"github.com/jon4hz/mealtrack/internal/stats"
	"github.com/jon4hz/mealtrack/internal/tracker"
	"github.com/samber/lo"
)

// ToUser converts a database.User to its public form.
func ToUser(u *database.User, avatar *config.GravatarConfig) User {
	return User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: gravatar.AvatarURL(u.Email, avatar),
	}
}

// ToMeal converts a database.Meal to its API form.
func ToMeal(m database.Meal) Meal {
	return Meal{
		ID:        m.ID,
		Name:      m.Name,
		Calories:  m.Calories,
		Comments:  m.Comments,
		PresetID:  m.PresetID,
		Timestamp: m.Timestamp.UnixMilli(),
	}
}

// ToMeals converts a slice of database.Meal.
func ToMeals(meals []database.Meal) []Meal {
	result := make([]Meal, len(meals))
	for i, m := range meals {
		result[i] = ToMeal(m)
	}
	return result
}

// ToPreset converts a database.Preset with its ordered items.
func ToPreset(p database.Preset) Preset {
	return Preset{
		ID:       p.ID,
		Name:     p.Name,
		Calories: p.Calories,
		Items: lo.Map(p.Items, func(item database.PresetItem, _ int) PresetItem {
			return PresetItem{Name: item.Name, Calories: item.Calories}
		}),
	}
}

// ToPresets converts a slice of database.Preset.
func ToPresets(presets []database.Preset) []Preset {
	result := make([]Preset, len(presets))
	for i, p := range presets {
		result[i] = ToPreset(p)
	}
	return result
}

// ToFoodItem converts a database.FoodItem.
func ToFoodItem(f database.FoodItem) FoodItem {
	return FoodItem{
		ID:       f.ID,
		Name:     f.Name,
		Calories: f.Calories,
	}
}

// ToFoodItems converts a slice of database.FoodItem.
func ToFoodItems(items []database.FoodItem) []FoodItem {
	result := make([]FoodItem, len(items))
	for i, f := range items {
		result[i] = ToFoodItem(f)
	}
	return result
}

// ToStats converts a stats.Summary.
func ToStats(s stats.Summary) Stats {
	return Stats(s)
}

// ToDashboard converts a tracker.Dashboard, times become epoch milliseconds.
func ToDashboard(d *tracker.Dashboard) Dashboard {
	out := Dashboard{
		LastMealName:  d.LastMealName,
		LastMealAgo:   d.LastMealAgo,
		TodayCount:    d.TodayCount,
		TodayCalories: d.TodayCalories,
		CalorieGoal:   d.CalorieGoal,
		Remaining:     d.Remaining,
	}
	if d.LastMealAt != nil {
		out.LastMealAt = lo.ToPtr(d.LastMealAt.UnixMilli())
	}
	return out
}

// ToSettings converts a database.Settings.
func ToSettings(s *database.Settings) Settings {
	out := Settings{
		ReminderInterval: s.ReminderInterval,
		CalorieGoal:      s.CalorieGoal,
	}
	if s.LastReminderAt != nil {
		out.LastReminderAt = lo.ToPtr(s.LastReminderAt.UnixMilli())
	}
	return out
}

// ToNewMeal converts the request into the ledger input.
func (r MealRequest) ToNewMeal() tracker.NewMeal {
	return tracker.NewMeal{
		Name:       r.Name,
		Calories:   r.Calories.Ptr(),
		Comments:   r.Comments,
		PresetID:   r.PresetID,
		ClientTime: r.ClientTime.String(),
	}
}

// ToCombo converts the request into the ledger input. Unparseable item calories count as zero.
func (r ComboRequest) ToCombo() tracker.Combo {
	return tracker.Combo{
		Name: r.Name,
		Items: lo.Map(r.Items, func(item ComboItemRequest, _ int) tracker.ComboItem {
			return tracker.ComboItem{Name: item.Name, Calories: lo.FromPtr(item.Calories.Ptr())}
		}),
		Comments:   r.Comments,
		ClientTime: r.ClientTime.String(),
	}
}

// ToMealPatch converts the request into a ledger patch.
func (r MealPatchRequest) ToMealPatch() (tracker.MealPatch, error) {
	if r.Calories.Invalid() {
		return tracker.MealPatch{}, fmt.Errorf("%w: calories must be a number", tracker.ErrInvalidField)
	}
	patch := tracker.MealPatch{
		Name:     r.Name,
		Calories: r.Calories.Ptr(),
		Comments: r.Comments,
	}
	if r.ClientTime != nil {
		patch.ClientTime = lo.ToPtr(r.ClientTime.String())
	}
	return patch, nil
}

func toPresetItems(items []PresetItemRequest) []tracker.PresetItem {
	return lo.Map(items, func(item PresetItemRequest, _ int) tracker.PresetItem {
		return tracker.PresetItem{Name: item.Name, Calories: lo.FromPtr(item.Calories.Ptr())}
	})
}

// ToNewPreset converts the request into a preset to create.
func (r PresetRequest) ToNewPreset() tracker.NewPreset {
	p := tracker.NewPreset{
		Name:     lo.FromPtr(r.Name),
		Calories: r.Calories.Ptr(),
	}
	if r.Items != nil {
		p.Items = toPresetItems(*r.Items)
	}
	return p
}

// ToPresetPatch converts the request into a preset patch.
func (r PresetRequest) ToPresetPatch() (tracker.PresetPatch, error) {
	if r.Calories.Invalid() {
		return tracker.PresetPatch{}, fmt.Errorf("%w: calories must be a number", tracker.ErrInvalidField)
	}
	patch := tracker.PresetPatch{
		Name:     r.Name,
		Calories: r.Calories.Ptr(),
	}
	if r.Items != nil {
		patch.Items = lo.ToPtr(toPresetItems(*r.Items))
	}
	return patch, nil
}

// ToFoodItemPatch converts the request into a food item patch.
func (r FoodItemRequest) ToFoodItemPatch() (tracker.FoodItemPatch, error) {
	if r.Calories.Invalid() {
		return tracker.FoodItemPatch{}, fmt.Errorf("%w: calories must be a number", tracker.ErrInvalidField)
	}
	return tracker.FoodItemPatch{
		Name:     r.Name,
		Calories: r.Calories.Ptr(),
	}, nil
}

// ToSettingsPatch converts the request into a settings patch.
// The reminder interval must be a whole number of hours.
func (r SettingsRequest) ToSettingsPatch() (tracker.SettingsPatch, error) {
	if r.ReminderInterval.Invalid() || r.CalorieGoal.Invalid() {
		return tracker.SettingsPatch{}, fmt.Errorf("%w: settings must be numbers", tracker.ErrInvalidField)
	}

	patch := tracker.SettingsPatch{CalorieGoal: r.CalorieGoal.Ptr()}
	if v := r.ReminderInterval.Ptr(); v != nil {
		if *v != math.Trunc(*v) {
			return tracker.SettingsPatch{}, fmt.Errorf("%w: reminder interval must be whole hours", tracker.ErrInvalidField)
		}
		hours, err := safecast.ToInt(*v)
		if err != nil {
			return tracker.SettingsPatch{}, fmt.Errorf("%w: reminder interval out of range", tracker.ErrInvalidField)
		}
		patch.ReminderInterval = &hours
	}
	return patch, nil
}
