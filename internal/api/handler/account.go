package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/mealtrack/internal/api/auth"
	"github.com/jon4hz/mealtrack/internal/api/models"
)

// Me returns the logged in user.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, models.ToUser(auth.CurrentUser(c), h.gravatar))
}

// UpdateMe changes name and email of the logged in user.
func (h *Handler) UpdateMe(c *gin.Context) {
	var req models.ProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user := auth.CurrentUser(c)
	if _, err := h.tracker.UpdateProfile(c.Request.Context(), user.ID, req.Name, req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Message{Message: "Profile updated"})
}

// ChangePassword replaces the password of the logged in user.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req models.PasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	user := auth.CurrentUser(c)
	if err := h.tracker.ChangePassword(c.Request.Context(), user.ID, req.Current, req.Next); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Message{Message: "Password changed"})
}
