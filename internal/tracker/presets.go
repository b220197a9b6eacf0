package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/jon4hz/mealtrack/internal/database"
	"github.com/samber/lo"
)

// PresetItem is one food of a preset.
type PresetItem struct {
	Name     string
	Calories float64
}

// NewPreset is the input of CreatePreset.
type NewPreset struct {
	Name     string
	Calories *float64
	Items    []PresetItem
}

// PresetPatch holds the fields of a preset update. A non-nil Items replaces all items.
type PresetPatch struct {
	Name     *string
	Calories *float64
	Items    *[]PresetItem
}

func toPresetItems(items []PresetItem) ([]database.PresetItem, error) {
	out := make([]database.PresetItem, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: preset items need a name", ErrMissingField)
		}
		out = append(out, database.PresetItem{Name: name, Calories: clampCalories(item.Calories)})
	}
	return out, nil
}

func sumItems(items []database.PresetItem) float64 {
	return lo.SumBy(items, func(item database.PresetItem) float64 {
		return item.Calories
	})
}

// ListPresets returns the presets of the user.
func (t *Tracker) ListPresets(ctx context.Context, userID string) ([]database.Preset, error) {
	presets, err := t.db.GetPresetsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get presets: %w", err)
	}
	return presets, nil
}

// CreatePreset stores a new preset. With items the calories are their sum,
// otherwise the calories are required.
func (t *Tracker) CreatePreset(ctx context.Context, userID string, p NewPreset) (*database.Preset, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrMissingField)
	}
	if len(p.Items) == 0 && p.Calories == nil {
		return nil, fmt.Errorf("%w: calories or items are required", ErrMissingField)
	}

	items, err := toPresetItems(p.Items)
	if err != nil {
		return nil, err
	}

	preset := &database.Preset{
		UserID: userID,
		Name:   name,
		Items:  items,
	}
	if len(items) > 0 {
		preset.Calories = sumItems(items)
	} else {
		preset.Calories = clampCalories(*p.Calories)
	}

	if err := t.db.CreatePreset(ctx, preset); err != nil {
		return nil, fmt.Errorf("failed to create preset: %w", err)
	}
	return preset, nil
}

// UpdatePreset applies the patch to a preset of the user. As long as the preset has
// items its calories follow their sum.
func (t *Tracker) UpdatePreset(ctx context.Context, userID, presetID string, patch PresetPatch) (*database.Preset, error) {
	var name string
	if patch.Name != nil {
		name = strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be blank", ErrMissingField)
		}
	}

	var items []database.PresetItem
	if patch.Items != nil {
		var err error
		items, err = toPresetItems(*patch.Items)
		if err != nil {
			return nil, err
		}
	}

	preset, err := t.db.UpdatePreset(ctx, userID, presetID, func(p *database.Preset) error {
		if patch.Name != nil {
			p.Name = name
		}
		if patch.Items != nil {
			p.Items = items
		}
		if patch.Calories != nil {
			p.Calories = clampCalories(*patch.Calories)
		}
		if len(p.Items) > 0 {
			p.Calories = sumItems(p.Items)
		}
		return nil
	})
	if err != nil {
		return nil, notFound(err, "preset")
	}
	return preset, nil
}

// DeletePreset removes a preset of the user. Meals logged from it are kept.
func (t *Tracker) DeletePreset(ctx context.Context, userID, presetID string) error {
	if err := t.db.DeletePreset(ctx, userID, presetID); err != nil {
		return notFound(err, "preset")
	}
	return nil
}
