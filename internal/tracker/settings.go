package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/jon4hz/mealtrack/internal/database"
	"gorm.io/gorm"
)

// MaxReminderInterval is the longest reminder interval in hours, one year.
const MaxReminderInterval = 24 * 365

// SettingsPatch holds the fields of a settings update, nil fields are left unchanged.
type SettingsPatch struct {
	ReminderInterval *int
	CalorieGoal      *float64
}

// GetSettings returns the settings of the user. Users that never saved any get the
// defaults, which are not persisted.
func (t *Tracker) GetSettings(ctx context.Context, userID string) (*database.Settings, error) {
	settings, err := t.db.GetSettings(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			defaults := database.DefaultSettings(userID)
			return &defaults, nil
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings applies the patch. The first update persists the defaults for omitted fields.
func (t *Tracker) UpdateSettings(ctx context.Context, userID string, patch SettingsPatch) (*database.Settings, error) {
	if patch.ReminderInterval != nil && *patch.ReminderInterval < 1 {
		return nil, fmt.Errorf("%w: reminder interval must be at least one hour", ErrInvalidField)
	}
	if patch.ReminderInterval != nil && *patch.ReminderInterval > MaxReminderInterval {
		return nil, fmt.Errorf("%w: reminder interval cannot exceed %d hours", ErrInvalidField, MaxReminderInterval)
	}
	if patch.CalorieGoal != nil && *patch.CalorieGoal < 0 {
		return nil, fmt.Errorf("%w: calorie goal cannot be negative", ErrInvalidField)
	}

	settings, err := t.db.SaveSettings(ctx, userID, func(s *database.Settings) error {
		if patch.ReminderInterval != nil {
			s.ReminderInterval = *patch.ReminderInterval
		}
		if patch.CalorieGoal != nil {
			s.CalorieGoal = *patch.CalorieGoal
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	return settings, nil
}
