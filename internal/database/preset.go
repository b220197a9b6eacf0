package database

import (
	"context"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// Preset is a reusable meal template owned by a user.
type Preset struct {
	Model
	UserID   string `gorm:"not null;index"`
	Name     string `gorm:"not null"`
	Calories float64
	Items    []PresetItem `gorm:"constraint:OnDelete:CASCADE;"`
}

// PresetItem is one ordered entry of a preset.
type PresetItem struct {
	ID       uint   `gorm:"primaryKey"`
	PresetID string `gorm:"not null;index"`
	Position int
	Name     string
	Calories float64
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

func numberItems(items []PresetItem) {
	for i := range items {
		items[i].ID = 0
		items[i].Position = i
	}
}

func (c *Client) CreatePreset(ctx context.Context, preset *Preset) error {
	numberItems(preset.Items)
	return c.write(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(preset).Error; err != nil {
			log.Error("failed to create preset", "error", err)
			return err
		}
		return nil
	})
}

func (c *Client) GetPresetsByUser(ctx context.Context, userID string) ([]Preset, error) {
	var presets []Preset
	err := c.read(ctx, func(db *gorm.DB) error {
		return db.Preload("Items", orderedItems).Where("user_id = ?", userID).Order("rowid").Find(&presets).Error
	})
	if err != nil {
		log.Error("failed to get presets", "error", err)
		return nil, err
	}
	return presets, nil
}

func (c *Client) GetPreset(ctx context.Context, userID, id string) (*Preset, error) {
	var preset Preset
	err := c.read(ctx, func(db *gorm.DB) error {
		return db.Preload("Items", orderedItems).Where("id = ? AND user_id = ?", id, userID).First(&preset).Error
	})
	if err != nil {
		return nil, err
	}
	return &preset, nil
}

// UpdatePreset applies mutate to the preset if it is owned by userID.
// The items are replaced with whatever mutate leaves in preset.Items.
func (c *Client) UpdatePreset(ctx context.Context, userID, id string, mutate func(*Preset) error) (*Preset, error) {
	var preset Preset
	err := c.write(ctx, func(tx *gorm.DB) error {
		if err := tx.Preload("Items", orderedItems).Where("id = ? AND user_id = ?", id, userID).First(&preset).Error; err != nil {
			return err
		}
		if err := mutate(&preset); err != nil {
			return err
		}
		preset.UserID = userID

		if err := tx.Omit("Items").Save(&preset).Error; err != nil {
			return err
		}
		if err := tx.Where("preset_id = ?", preset.ID).Delete(&PresetItem{}).Error; err != nil {
			return err
		}
		if len(preset.Items) == 0 {
			return nil
		}
		numberItems(preset.Items)
		for i := range preset.Items {
			preset.Items[i].PresetID = preset.ID
		}
		return tx.Create(&preset.Items).Error
	})
	if err != nil {
		return nil, err
	}
	return &preset, nil
}

// DeletePreset removes the preset and its items if it is owned by userID.
func (c *Client) DeletePreset(ctx context.Context, userID, id string) error {
	return c.write(ctx, func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&Preset{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("preset_id = ?", id).Delete(&PresetItem{}).Error
	})
}
