package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jon4hz/mealtrack/internal/cache"
	"github.com/jon4hz/mealtrack/internal/database"
	"gorm.io/gorm"
)

// IssueSession creates a new session for the user and returns its token.
func (t *Tracker) IssueSession(ctx context.Context, userID string) (string, error) {
	now := t.now()
	session := &database.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(t.cfg.SessionTTL()),
		CreatedAt: now,
	}
	if err := t.db.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	t.sessions.Set(ctx, session.Token, cache.CachedSession{
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
	}, now)

	return session.Token, nil
}

// ResolveSession returns the user a token belongs to.
// Empty, unknown and expired tokens as well as deleted users yield ErrUnauthorized.
func (t *Tracker) ResolveSession(ctx context.Context, token string) (*database.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	now := t.now()
	cached, ok := t.sessions.Get(ctx, token, now)
	if !ok {
		session, err := t.db.GetSession(ctx, token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUnauthorized
			}
			return nil, fmt.Errorf("failed to get session: %w", err)
		}
		if session.Expired(now) {
			return nil, fmt.Errorf("%w: session expired", ErrUnauthorized)
		}
		cached = cache.CachedSession{UserID: session.UserID, ExpiresAt: session.ExpiresAt}
		t.sessions.Set(ctx, token, cached, now)
	}

	user, err := t.db.GetUserByID(ctx, cached.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			t.sessions.Delete(ctx, token)
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// EndSession revokes a token. Unknown tokens are ignored.
func (t *Tracker) EndSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	t.sessions.Delete(ctx, token)
	if err := t.db.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PurgeExpiredSessions removes all expired sessions from the store.
func (t *Tracker) PurgeExpiredSessions(ctx context.Context) error {
	deleted, err := t.db.DeleteExpiredSessions(ctx, t.now())
	if err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	log.Debug("Purged expired sessions", "count", deleted)
	return nil
}
