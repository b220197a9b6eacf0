package auth

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/mealtrack/internal/api/models"
	"github.com/jon4hz/mealtrack/internal/config"
	"github.com/jon4hz/mealtrack/internal/tracker"
)

// Handler serves the password based signup, login and logout endpoints.
type Handler struct {
	tracker  *tracker.Tracker
	gravatar *config.GravatarConfig
}

// NewHandler creates a new auth handler.
func NewHandler(tr *tracker.Tracker, gravatar *config.GravatarConfig) *Handler {
	return &Handler{tracker: tr, gravatar: gravatar}
}

func (h *Handler) startSession(c *gin.Context, userID string) bool {
	token, err := h.tracker.IssueSession(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return false
	}
	if err := setSessionToken(c, token); err != nil {
		AbortWithError(c, err)
		return false
	}
	return true
}

// Signup registers a new user and logs them in.
func (h *Handler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Error{Error: "invalid request body"})
		return
	}

	user, err := h.tracker.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !h.startSession(c, user.ID) {
		return
	}

	c.JSON(http.StatusCreated, models.ToUser(user, h.gravatar))
}

// Login verifies the credentials and starts a session.
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Error{Error: "invalid request body"})
		return
	}

	user, err := h.tracker.Verify(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !h.startSession(c, user.ID) {
		return
	}

	log.Debug("User logged in", "user", user.ID)
	c.JSON(http.StatusOK, models.Message{Message: "Logged in"})
}

// Logout revokes the server side session and drops the cookie.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.tracker.EndSession(c.Request.Context(), SessionToken(c)); err != nil {
		log.Warn("Failed to end session", "error", err)
	}
	if err := clearSession(c); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Message{Message: "Logged out"})
}
