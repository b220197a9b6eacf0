package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

const (
	// DefaultReminderInterval is the reminder interval in hours of users without settings.
	DefaultReminderInterval = 4
	// DefaultCalorieGoal is the calorie goal of users without settings.
	DefaultCalorieGoal = 0
)

// Settings holds the per-user preferences.
type Settings struct {
	UserID           string `gorm:"primaryKey;size:36"`
	ReminderInterval int
	CalorieGoal      float64
	LastReminderAt   *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DefaultSettings returns the settings a user has before ever saving any.
func DefaultSettings(userID string) Settings {
	return Settings{
		UserID:           userID,
		ReminderInterval: DefaultReminderInterval,
		CalorieGoal:      DefaultCalorieGoal,
	}
}

// GetSettings returns the stored settings, gorm.ErrRecordNotFound if the user never saved any.
func (c *Client) GetSettings(ctx context.Context, userID string) (*Settings, error) {
	var settings Settings
	err := c.read(ctx, func(db *gorm.DB) error {
		return db.Where("user_id = ?", userID).First(&settings).Error
	})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// SaveSettings applies mutate to the stored settings, starting from the defaults on first write.
func (c *Client) SaveSettings(ctx context.Context, userID string, mutate func(*Settings) error) (*Settings, error) {
	var settings Settings
	err := c.write(ctx, func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&settings).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			settings = DefaultSettings(userID)
		} else if err != nil {
			return err
		}
		if err := mutate(&settings); err != nil {
			return err
		}
		settings.UserID = userID
		return tx.Save(&settings).Error
	})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}
