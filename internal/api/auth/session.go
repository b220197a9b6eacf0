package auth

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/mealtrack/internal/api/models"
	"github.com/jon4hz/mealtrack/internal/database"
	"github.com/jon4hz/mealtrack/internal/tracker"
)

// SessionName is the name of the signed session cookie.
const SessionName = "mealtrack_session"

const (
	sessionTokenKey = "session_token"
	oauthStateKey   = "oauth_state"
	userContextKey  = "user"
)

// SessionToken returns the server side session token stored in the cookie.
func SessionToken(c *gin.Context) string {
	token, _ := sessions.Default(c).Get(sessionTokenKey).(string)
	return token
}

func setSessionToken(c *gin.Context, token string) error {
	session := sessions.Default(c)
	session.Set(sessionTokenKey, token)
	return session.Save()
}

func clearSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}

// CurrentUser returns the user resolved by RequireAuth.
func CurrentUser(c *gin.Context) *database.User {
	return c.MustGet(userContextKey).(*database.User)
}

// StatusFor maps a tracker error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, tracker.ErrMissingField),
		errors.Is(err, tracker.ErrInvalidField),
		errors.Is(err, tracker.ErrDuplicateEmail),
		errors.Is(err, tracker.ErrDuplicateFoodItem),
		errors.Is(err, tracker.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, tracker.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, tracker.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// AbortWithError writes the JSON error response for err. Internal errors are logged
// and never exposed to the client.
func AbortWithError(c *gin.Context, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, models.Error{Error: msg})
}

// RequireAuth resolves the session cookie to a user and rejects the request otherwise.
func RequireAuth(tr *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := tr.ResolveSession(c.Request.Context(), SessionToken(c))
		if err != nil {
			if !errors.Is(err, tracker.ErrUnauthorized) {
				AbortWithError(c, err)
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.Error{Error: "unauthorized"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}
