package models

import "github.com/jon4hz/mealtrack/internal/scheduler"

// Requests

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type PasswordRequest struct {
	Current string `json:"current"`
	Next    string `json:"next"`
}

type MealRequest struct {
	Name       string     `json:"name"`
	Calories   Number     `json:"calories"`
	Comments   string     `json:"comments"`
	PresetID   string     `json:"presetId"`
	ClientTime ClientTime `json:"clientTime"`
}

type ComboItemRequest struct {
	Name     string `json:"name"`
	Calories Number `json:"calories"`
}

type ComboRequest struct {
	Name       string             `json:"name"`
	Items      []ComboItemRequest `json:"items"`
	Comments   string             `json:"comments"`
	ClientTime ClientTime         `json:"clientTime"`
}

type MealPatchRequest struct {
	Name       *string     `json:"name"`
	Calories   Number      `json:"calories"`
	Comments   *string     `json:"comments"`
	ClientTime *ClientTime `json:"clientTime"`
}

type PresetItemRequest struct {
	Name     string `json:"name"`
	Calories Number `json:"calories"`
}

// PresetRequest is used for creating and updating presets. On update a present
// items array replaces all items.
type PresetRequest struct {
	Name     *string              `json:"name"`
	Calories Number               `json:"calories"`
	Items    *[]PresetItemRequest `json:"items"`
}

type LogPresetRequest struct {
	ClientTime ClientTime `json:"clientTime"`
}

type FoodItemRequest struct {
	Name     *string `json:"name"`
	Calories Number  `json:"calories"`
}

type SettingsRequest struct {
	ReminderInterval Number `json:"reminderInterval"`
	CalorieGoal      Number `json:"calorieGoal"`
}

// Responses

type Message struct {
	Message string `json:"message"`
}

type Error struct {
	Error string `json:"error"`
}

type Health struct {
	Status string              `json:"status"`
	Jobs   []scheduler.JobInfo `json:"jobs,omitempty"`
}

type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Meal is a logged meal, Timestamp is in epoch milliseconds.
type Meal struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Calories  float64 `json:"calories"`
	Comments  string  `json:"comments"`
	PresetID  *string `json:"presetId"`
	Timestamp int64   `json:"timestamp"`
}

type PresetItem struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
}

type Preset struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Calories float64      `json:"calories"`
	Items    []PresetItem `json:"items"`
}

type FoodItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
}

type Stats struct {
	Daily   float64 `json:"daily"`
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
	Avg7    string  `json:"avg7"`
	Avg30   string  `json:"avg30"`
}

type Dashboard struct {
	LastMealAt    *int64  `json:"lastMealAt,omitempty"`
	LastMealName  string  `json:"lastMealName,omitempty"`
	LastMealAgo   string  `json:"lastMealAgo,omitempty"`
	TodayCount    int     `json:"todayCount"`
	TodayCalories float64 `json:"todayCalories"`
	CalorieGoal   float64 `json:"calorieGoal"`
	Remaining     float64 `json:"remaining"`
}

type Settings struct {
	ReminderInterval int     `json:"reminderInterval"`
	CalorieGoal      float64 `json:"calorieGoal"`
	LastReminderAt   *int64  `json:"lastReminderAt,omitempty"`
}
