package cache

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/eko/gocache/lib/v4/codec"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/jon4hz/mealtrack/internal/config"
)

// SessionCachePrefix is the key prefix of resolved sessions.
const SessionCachePrefix = "session-"

// CachedSession is what the session resolver remembers about a token.
type CachedSession struct {
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionCache maps session tokens to their owner so that not every request hits the database.
type SessionCache struct {
	cache *PrefixedCache[CachedSession]
	ttl   time.Duration
}

// NewSessionCache creates a session cache backed by the configured store.
func NewSessionCache(cfg *config.CacheConfig, ttl time.Duration) *SessionCache {
	return &SessionCache{
		cache: NewPrefixedCache[CachedSession](
			newCacheInstanceByType(cfg, ttl),
			cfg.Type,
			SessionCachePrefix,
		),
		ttl: ttl,
	}
}

// Get returns the cached session for token. A miss or a cached session that
// expired before now reports false.
func (s *SessionCache) Get(ctx context.Context, token string, now time.Time) (CachedSession, bool) {
	session, err := s.cache.Get(ctx, token)
	if err != nil {
		return CachedSession{}, false
	}
	if !now.Before(session.ExpiresAt) {
		s.Delete(ctx, token)
		return CachedSession{}, false
	}
	return session, true
}

// Set remembers a resolved session. The entry never outlives the session itself.
func (s *SessionCache) Set(ctx context.Context, token string, session CachedSession, now time.Time) {
	ttl := s.ttl
	if remaining := session.ExpiresAt.Sub(now); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, token, session, store.WithExpiration(ttl)); err != nil {
		log.Warn("failed to cache session", "error", err)
	}
}

// Delete forgets a token.
func (s *SessionCache) Delete(ctx context.Context, token string) {
	if err := s.cache.Delete(ctx, token); err != nil {
		log.Debug("failed to delete cached session", "error", err)
	}
}

// Clear drops all cached sessions.
func (s *SessionCache) Clear(ctx context.Context) {
	if err := s.cache.Clear(ctx); err != nil {
		log.Errorf("failed to clear cache: %v", err)
	}
}

// GetStats returns the hit and miss counters of the underlying store.
func (s *SessionCache) GetStats() *codec.Stats {
	return s.cache.GetStats()
}
