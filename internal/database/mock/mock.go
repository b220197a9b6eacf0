package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jon4hz/mealtrack/internal/database"
	"gorm.io/gorm"
)

var _ database.DB = (*MockDB)(nil)

// MockDB is an in-memory implementation of database.DB for testing.
// It mirrors the semantics of the sqlite client, including gorm.ErrRecordNotFound on misses.
type MockDB struct {
	mu sync.RWMutex

	users     map[string]*database.User
	sessions  map[string]*database.Session
	meals     []*database.Meal
	presets   []*database.Preset
	foodItems []*database.FoodItem
	settings  map[string]*database.Settings

	// Error simulation
	CreateUserError   error
	GetUserError      error
	CreateMealError   error
	GetMealsError     error
	SaveSettingsError error
}

// NewMockDB creates a new MockDB instance.
func NewMockDB() *MockDB {
	return &MockDB{
		users:    make(map[string]*database.User),
		sessions: make(map[string]*database.Session),
		settings: make(map[string]*database.Settings),
	}
}

// Reset clears all data and errors from the mock database.
func (m *MockDB) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users = make(map[string]*database.User)
	m.sessions = make(map[string]*database.Session)
	m.meals = nil
	m.presets = nil
	m.foodItems = nil
	m.settings = make(map[string]*database.Settings)

	m.CreateUserError = nil
	m.GetUserError = nil
	m.CreateMealError = nil
	m.GetMealsError = nil
	m.SaveSettingsError = nil
}

func stamp(model *database.Model) {
	now := time.Now()
	if model.ID == "" {
		model.ID = uuid.NewString()
	}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	model.UpdatedAt = now
}

// User operations

func (m *MockDB) CreateUser(ctx context.Context, user *database.User) error {
	if m.CreateUserError != nil {
		return m.CreateUserError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return database.ErrEmailTaken
		}
	}
	stamp(&user.Model)
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *MockDB) GetUserByID(ctx context.Context, id string) (*database.User, error) {
	if m.GetUserError != nil {
		return nil, m.GetUserError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *MockDB) GetUserByEmail(ctx context.Context, email string) (*database.User, error) {
	if m.GetUserError != nil {
		return nil, m.GetUserError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockDB) UpdateUser(ctx context.Context, id string, mutate func(*database.User) error) (*database.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *user
	if err := mutate(&clone); err != nil {
		return nil, err
	}
	for _, u := range m.users {
		if u.ID != id && u.Email == clone.Email {
			return nil, database.ErrEmailTaken
		}
	}
	clone.ID = id
	clone.UpdatedAt = time.Now()
	m.users[id] = &clone
	result := clone
	return &result, nil
}

func (m *MockDB) GetAllUsers(ctx context.Context) ([]database.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]database.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

// Session operations

func (m *MockDB) CreateSession(ctx context.Context, session *database.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	clone := *session
	m.sessions[session.Token] = &clone
	return nil
}

func (m *MockDB) GetSession(ctx context.Context, token string) (*database.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *session
	return &clone, nil
}

func (m *MockDB) DeleteSession(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, token)
	return nil
}

func (m *MockDB) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for token, session := range m.sessions {
		if session.Expired(now) {
			delete(m.sessions, token)
			deleted++
		}
	}
	return deleted, nil
}

// SessionCount returns the number of stored sessions.
func (m *MockDB) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Meal operations

func (m *MockDB) CreateMeal(ctx context.Context, meal *database.Meal) error {
	if m.CreateMealError != nil {
		return m.CreateMealError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stamp(&meal.Model)
	clone := *meal
	m.meals = append(m.meals, &clone)
	return nil
}

func (m *MockDB) GetMealsByUser(ctx context.Context, userID string) ([]database.Meal, error) {
	if m.GetMealsError != nil {
		return nil, m.GetMealsError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var meals []database.Meal
	for _, meal := range m.meals {
		if meal.UserID == userID {
			meals = append(meals, *meal)
		}
	}
	return meals, nil
}

func (m *MockDB) GetLatestMeal(ctx context.Context, userID string) (*database.Meal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *database.Meal
	for _, meal := range m.meals {
		if meal.UserID != userID {
			continue
		}
		if latest == nil || meal.Timestamp.After(latest.Timestamp) {
			latest = meal
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *latest
	return &clone, nil
}

func (m *MockDB) UpdateMeal(ctx context.Context, userID, id string, mutate func(*database.Meal) error) (*database.Meal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, meal := range m.meals {
		if meal.ID != id || meal.UserID != userID {
			continue
		}
		clone := *meal
		if err := mutate(&clone); err != nil {
			return nil, err
		}
		clone.ID = id
		clone.UserID = userID
		clone.UpdatedAt = time.Now()
		m.meals[i] = &clone
		result := clone
		return &result, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockDB) DeleteMeal(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, meal := range m.meals {
		if meal.ID == id && meal.UserID == userID {
			m.meals = append(m.meals[:i], m.meals[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// MealCount returns the number of stored meals across all users.
func (m *MockDB) MealCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.meals)
}

// Preset operations

func clonePreset(p *database.Preset) database.Preset {
	clone := *p
	clone.Items = append([]database.PresetItem(nil), p.Items...)
	return clone
}

func numberItems(presetID string, items []database.PresetItem) {
	for i := range items {
		items[i].ID = uint(i + 1)
		items[i].PresetID = presetID
		items[i].Position = i
	}
}

func (m *MockDB) CreatePreset(ctx context.Context, preset *database.Preset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stamp(&preset.Model)
	numberItems(preset.ID, preset.Items)
	clone := clonePreset(preset)
	m.presets = append(m.presets, &clone)
	return nil
}

func (m *MockDB) GetPresetsByUser(ctx context.Context, userID string) ([]database.Preset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var presets []database.Preset
	for _, p := range m.presets {
		if p.UserID == userID {
			presets = append(presets, clonePreset(p))
		}
	}
	return presets, nil
}

func (m *MockDB) GetPreset(ctx context.Context, userID, id string) (*database.Preset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.presets {
		if p.ID == id && p.UserID == userID {
			clone := clonePreset(p)
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockDB) UpdatePreset(ctx context.Context, userID, id string, mutate func(*database.Preset) error) (*database.Preset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, p := range m.presets {
		if p.ID != id || p.UserID != userID {
			continue
		}
		clone := clonePreset(p)
		if err := mutate(&clone); err != nil {
			return nil, err
		}
		clone.ID = id
		clone.UserID = userID
		clone.UpdatedAt = time.Now()
		numberItems(id, clone.Items)
		m.presets[i] = &clone
		result := clonePreset(&clone)
		return &result, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockDB) DeletePreset(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, p := range m.presets {
		if p.ID == id && p.UserID == userID {
			m.presets = append(m.presets[:i], m.presets[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// Food item operations

func (m *MockDB) foodItemExists(name, exceptID string) bool {
	key := database.FoodItemKey(name)
	for _, item := range m.foodItems {
		if item.ID != exceptID && item.NameKey == key {
			return true
		}
	}
	return false
}

func (m *MockDB) CreateFoodItem(ctx context.Context, item *database.FoodItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.foodItemExists(item.Name, "") {
		return database.ErrFoodItemExists
	}
	stamp(&item.Model)
	item.NameKey = database.FoodItemKey(item.Name)
	clone := *item
	m.foodItems = append(m.foodItems, &clone)
	return nil
}

func (m *MockDB) GetFoodItems(ctx context.Context) ([]database.FoodItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]database.FoodItem, 0, len(m.foodItems))
	for _, item := range m.foodItems {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].NameKey < items[j].NameKey })
	return items, nil
}

func (m *MockDB) UpdateFoodItem(ctx context.Context, id string, mutate func(*database.FoodItem) error) (*database.FoodItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, item := range m.foodItems {
		if item.ID != id {
			continue
		}
		clone := *item
		if err := mutate(&clone); err != nil {
			return nil, err
		}
		if m.foodItemExists(clone.Name, id) {
			return nil, database.ErrFoodItemExists
		}
		clone.ID = id
		clone.NameKey = database.FoodItemKey(clone.Name)
		clone.UpdatedAt = time.Now()
		m.foodItems[i] = &clone
		result := clone
		return &result, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockDB) DeleteFoodItem(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, item := range m.foodItems {
		if item.ID == id {
			m.foodItems = append(m.foodItems[:i], m.foodItems[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// Settings operations

func (m *MockDB) GetSettings(ctx context.Context, userID string) (*database.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	settings, ok := m.settings[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *settings
	return &clone, nil
}

func (m *MockDB) SaveSettings(ctx context.Context, userID string, mutate func(*database.Settings) error) (*database.Settings, error) {
	if m.SaveSettingsError != nil {
		return nil, m.SaveSettingsError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	settings := database.DefaultSettings(userID)
	if existing, ok := m.settings[userID]; ok {
		settings = *existing
	}
	if err := mutate(&settings); err != nil {
		return nil, err
	}
	settings.UserID = userID
	settings.UpdatedAt = time.Now()
	m.settings[userID] = &settings
	result := settings
	return &result, nil
}

// HasSettings reports whether a settings record was persisted for the user.
func (m *MockDB) HasSettings(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.settings[userID]
	return ok
}

// Utility

func (m *MockDB) GetCounts(ctx context.Context) (*database.Counts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return &database.Counts{
		Users:     int64(len(m.users)),
		Sessions:  int64(len(m.sessions)),
		Meals:     int64(len(m.meals)),
		Presets:   int64(len(m.presets)),
		FoodItems: int64(len(m.foodItems)),
		Settings:  int64(len(m.settings)),
	}, nil
}

func (m *MockDB) Close() error {
	return nil
}
