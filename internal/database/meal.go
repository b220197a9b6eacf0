package database

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// Meal is a single timestamped meal event owned by a user.
// PresetID is a weak reference, deleting the preset leaves the meal untouched.
type Meal struct {
	Model
	UserID    string `gorm:"not null;index"`
	Name      string `gorm:"not null"`
	Calories  float64
	Comments  string
	PresetID  *string
	Timestamp time.Time `gorm:"not null;index"`
}

// BeforeSave stores timestamps in UTC so that they order as text.
func (m *Meal) BeforeSave(_ *gorm.DB) error {
	m.Timestamp = m.Timestamp.UTC()
	return nil
}

func (c *Client) CreateMeal(ctx context.Context, meal *Meal) error {
	return c.write(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(meal).Error; err != nil {
			log.Error("failed to create meal", "error", err)
			return err
		}
		return nil
	})
}

// GetMealsByUser returns all meals of a user in storage order.
func (c *Client) GetMealsByUser(ctx context.Context, userID string) ([]Meal, error) {
	var meals []Meal
	err := c.read(ctx, func(db *gorm.DB) error {
		return db.Where("user_id = ?", userID).Order("rowid").Find(&meals).Error
	})
	if err != nil {
		log.Error("failed to get meals", "error", err)
		return nil, err
	}
	return meals, nil
}

// GetLatestMeal returns the meal with the most recent timestamp.
func (c *Client) GetLatestMeal(ctx context.Context, userID string) (*Meal, error) {
	var meal Meal
	err := c.read(ctx, func(db *gorm.DB) error {
		return db.Where("user_id = ?", userID).Order("timestamp DESC").First(&meal).Error
	})
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get latest meal", "error", err)
		}
		return nil, err
	}
	return &meal, nil
}

// UpdateMeal applies mutate to the meal if it is owned by userID.
func (c *Client) UpdateMeal(ctx context.Context, userID, id string, mutate func(*Meal) error) (*Meal, error) {
	var meal Meal
	err := c.write(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&meal).Error; err != nil {
			return err
		}
		if err := mutate(&meal); err != nil {
			return err
		}
		// owner is immutable
		meal.UserID = userID
		return tx.Save(&meal).Error
	})
	if err != nil {
		return nil, err
	}
	return &meal, nil
}

// DeleteMeal removes the meal if it is owned by userID, gorm.ErrRecordNotFound otherwise.
func (c *Client) DeleteMeal(ctx context.Context, userID, id string) error {
	return c.write(ctx, func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&Meal{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
