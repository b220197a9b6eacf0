package database

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// FoodItem is an entry of the catalog shared by all users.
// NameKey is the normalized name, uniqueness is enforced on it.
type FoodItem struct {
	Model
	Name     string `gorm:"not null"`
	NameKey  string `gorm:"uniqueIndex;not null"`
	Calories float64
}

// FoodItemKey returns the normalized form of a food item name.
func FoodItemKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// BeforeSave keeps NameKey in sync with Name.
func (f *FoodItem) BeforeSave(_ *gorm.DB) error {
	f.NameKey = FoodItemKey(f.Name)
	return nil
}

func foodItemExists(tx *gorm.DB, name, exceptID string) (bool, error) {
	q := tx.Model(&FoodItem{}).Where("name_key = ?", FoodItemKey(name))
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (c *Client) CreateFoodItem(ctx context.Context, item *FoodItem) error {
	return c.write(ctx, func(tx *gorm.DB) error {
		exists, err := foodItemExists(tx, item.Name, "")
		if err != nil {
			return err
		}
		if exists {
			return ErrFoodItemExists
		}
		if err := tx.Create(item).Error; err != nil {
			log.Error("failed to create food item", "error", err)
			return err
		}
		return nil
	})
}

func (c *Client) GetFoodItems(ctx context.Context) ([]FoodItem, error) {
	var items []FoodItem
	err := c.read(ctx, func(db *gorm.DB) error {
		return db.Order("name_key").Find(&items).Error
	})
	if err != nil {
		log.Error("failed to get food items", "error", err)
		return nil, err
	}
	return items, nil
}

// UpdateFoodItem applies mutate to the item, a rename onto an existing name returns ErrFoodItemExists.
func (c *Client) UpdateFoodItem(ctx context.Context, id string, mutate func(*FoodItem) error) (*FoodItem, error) {
	var item FoodItem
	err := c.write(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
			return err
		}
		if err := mutate(&item); err != nil {
			return err
		}
		exists, err := foodItemExists(tx, item.Name, item.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrFoodItemExists
		}
		return tx.Save(&item).Error
	})
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, ErrFoodItemExists) {
			log.Error("failed to update food item", "error", err)
		}
		return nil, err
	}
	return &item, nil
}

func (c *Client) DeleteFoodItem(ctx context.Context, id string) error {
	return c.write(ctx, func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&FoodItem{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
