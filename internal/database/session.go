package database

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Session maps an opaque token to a user until it expires.
type Session struct {
	Token     string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// BeforeSave stores expiries in UTC so that they compare as text.
func (s *Session) BeforeSave(_ *gorm.DB) error {
	s.ExpiresAt = s.ExpiresAt.UTC()
	return nil
}

func (c *Client) CreateSession(ctx context.Context, session *Session) error {
	return c.write(ctx, func(tx *gorm.DB) error {
		return tx.Create(session).Error
	})
}

func (c *Client) GetSession(ctx context.Context, token string) (*Session, error) {
	var session Session
	err := c.read(ctx, func(db *gorm.DB) error {
		return db.Where("token = ?", token).First(&session).Error
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) DeleteSession(ctx context.Context, token string) error {
	return c.write(ctx, func(tx *gorm.DB) error {
		return tx.Where("token = ?", token).Delete(&Session{}).Error
	})
}

// DeleteExpiredSessions removes all sessions expired at now and returns how many were removed.
func (c *Client) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	var deleted int64
	err := c.write(ctx, func(tx *gorm.DB) error {
		result := tx.Where("expires_at <= ?", now.UTC()).Delete(&Session{})
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, err
}
