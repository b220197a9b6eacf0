package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ DB = (*Client)(nil) // Ensure Client implements DB

var (
	// ErrEmailTaken is returned when a user with the same email already exists.
	ErrEmailTaken = errors.New("email already in use")
	// ErrFoodItemExists is returned when a food item with the same name already exists.
	ErrFoodItemExists = errors.New("food item already exists")
)

// DB is the storage abstraction consumed by the tracker.
// Methods taking a mutate func run it inside a single write transaction,
// a non-nil error from the func rolls the transaction back.
type DB interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, id string, mutate func(*User) error) (*User, error)
	GetAllUsers(ctx context.Context) ([]User, error)

	// Sessions
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	// Meals
	CreateMeal(ctx context.Context, meal *Meal) error
	GetMealsByUser(ctx context.Context, userID string) ([]Meal, error)
	GetLatestMeal(ctx context.Context, userID string) (*Meal, error)
	UpdateMeal(ctx context.Context, userID, id string, mutate func(*Meal) error) (*Meal, error)
	DeleteMeal(ctx context.Context, userID, id string) error

	// Presets
	CreatePreset(ctx context.Context, preset *Preset) error
	GetPresetsByUser(ctx context.Context, userID string) ([]Preset, error)
	GetPreset(ctx context.Context, userID, id string) (*Preset, error)
	UpdatePreset(ctx context.Context, userID, id string, mutate func(*Preset) error) (*Preset, error)
	DeletePreset(ctx context.Context, userID, id string) error

	// Food items
	CreateFoodItem(ctx context.Context, item *FoodItem) error
	GetFoodItems(ctx context.Context) ([]FoodItem, error)
	UpdateFoodItem(ctx context.Context, id string, mutate func(*FoodItem) error) (*FoodItem, error)
	DeleteFoodItem(ctx context.Context, id string) error

	// Settings
	GetSettings(ctx context.Context, userID string) (*Settings, error)
	SaveSettings(ctx context.Context, userID string, mutate func(*Settings) error) (*Settings, error)

	// Utility
	GetCounts(ctx context.Context) (*Counts, error)
	Close() error
}

// Model is the base of all records with an opaque string id.
type Model struct {
	ID        string `gorm:"primaryKey;size:36"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate assigns a random id to new records.
func (m *Model) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Counts holds the number of rows per table.
type Counts struct {
	Users     int64
	Sessions  int64
	Meals     int64
	Presets   int64
	FoodItems int64
	Settings  int64
}

// Client wraps the gorm.DB instance.
// sqlite allows a single writer, mu serializes writes and lets reads run concurrently.
type Client struct {
	db *gorm.DB
	mu sync.RWMutex
}

// New creates a new database connection and performs migrations.
func New(dbpath string) (*Client, error) {
	if dir := filepath.Dir(dbpath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbpath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(
		&User{},
		&Session{},
		&Meal{},
		&Preset{},
		&PresetItem{},
		&FoodItem{},
		&Settings{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Client{db: db}, nil
}

// Close closes the underlying database connection.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// write runs fn in a transaction while holding the write lock.
func (c *Client) write(ctx context.Context, fn func(tx *gorm.DB) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.WithContext(ctx).Transaction(fn)
}

// read runs fn while holding the read lock.
func (c *Client) read(ctx context.Context, fn func(db *gorm.DB) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fn(c.db.WithContext(ctx))
}

// GetCounts returns the number of rows in every table.
func (c *Client) GetCounts(ctx context.Context) (*Counts, error) {
	var counts Counts
	err := c.read(ctx, func(db *gorm.DB) error {
		for _, q := range []struct {
			model any
			dest  *int64
		}{
			{&User{}, &counts.Users},
			{&Session{}, &counts.Sessions},
			{&Meal{}, &counts.Meals},
			{&Preset{}, &counts.Presets},
			{&FoodItem{}, &counts.FoodItems},
			{&Settings{}, &counts.Settings},
		} {
			if err := db.Model(q.model).Count(q.dest).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}
	return &counts, nil
}
