package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jon4hz/mealtrack/internal/database"
)

// FoodItemPatch holds the fields of a food item update, nil fields are left unchanged.
type FoodItemPatch struct {
	Name     *string
	Calories *float64
}

func duplicateFoodItem(err error, name string) error {
	if errors.Is(err, database.ErrFoodItemExists) {
		return fmt.Errorf("%w: %s", ErrDuplicateFoodItem, name)
	}
	return err
}

// ListFoodItems returns the shared food catalog ordered by name.
func (t *Tracker) ListFoodItems(ctx context.Context) ([]database.FoodItem, error) {
	items, err := t.db.GetFoodItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get food items: %w", err)
	}
	return items, nil
}

// CreateFoodItem adds a food to the catalog. Names are unique regardless of case.
func (t *Tracker) CreateFoodItem(ctx context.Context, name string, calories *float64) (*database.FoodItem, error) {
	name = strings.TrimSpace(name)
	if name == "" || calories == nil {
		return nil, fmt.Errorf("%w: name and calories are required", ErrMissingField)
	}

	item := &database.FoodItem{Name: name, Calories: clampCalories(*calories)}
	if err := t.db.CreateFoodItem(ctx, item); err != nil {
		if errors.Is(err, database.ErrFoodItemExists) {
			return nil, duplicateFoodItem(err, name)
		}
		return nil, fmt.Errorf("failed to create food item: %w", err)
	}
	return item, nil
}

// UpdateFoodItem applies the patch to a catalog entry.
func (t *Tracker) UpdateFoodItem(ctx context.Context, id string, patch FoodItemPatch) (*database.FoodItem, error) {
	var name string
	if patch.Name != nil {
		name = strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be blank", ErrMissingField)
		}
	}

	item, err := t.db.UpdateFoodItem(ctx, id, func(f *database.FoodItem) error {
		if patch.Name != nil {
			f.Name = name
		}
		if patch.Calories != nil {
			f.Calories = clampCalories(*patch.Calories)
		}
		return nil
	})
	if err != nil {
		return nil, notFound(duplicateFoodItem(err, name), "food item")
	}
	return item, nil
}

// DeleteFoodItem removes a catalog entry.
func (t *Tracker) DeleteFoodItem(ctx context.Context, id string) error {
	if err := t.db.DeleteFoodItem(ctx, id); err != nil {
		return notFound(err, "food item")
	}
	return nil
}
