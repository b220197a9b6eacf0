package database

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// User represents an account.
// PasswordSalt and PasswordHash are empty for users that only ever logged in through OIDC.
type User struct {
	Model
	Name               string
	Email              string `gorm:"uniqueIndex;not null"`
	PasswordSalt       string
	PasswordHash       string
	PasswordIterations int
}

// HasPassword reports whether the user can log in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordSalt != "" && u.PasswordHash != ""
}

func (c *Client) CreateUser(ctx context.Context, user *User) error {
	return c.write(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		if err := tx.Create(user).Error; err != nil {
			log.Error("failed to create user", "error", err)
			return err
		}
		return nil
	})
}

func (c *Client) GetUserByID(ctx context.Context, id string) (*User, error) {
	var user User
	err := c.read(ctx, func(db *gorm.DB) error {
		return db.Where("id = ?", id).First(&user).Error
	})
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get user by ID", "error", err)
		}
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := c.read(ctx, func(db *gorm.DB) error {
		return db.Where("email = ?", email).First(&user).Error
	})
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get user by email", "error", err)
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies mutate to the user and saves it.
// An email change that collides with another user returns ErrEmailTaken.
func (c *Client) UpdateUser(ctx context.Context, id string, mutate func(*User) error) (*User, error) {
	var user User
	err := c.write(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			return err
		}
		if err := mutate(&user); err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&User{}).Where("email = ? AND id <> ?", user.Email, user.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetAllUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := c.read(ctx, func(db *gorm.DB) error {
		return db.Find(&users).Error
	})
	if err != nil {
		log.Error("failed to get all users", "error", err)
		return nil, err
	}
	return users, nil
}
