package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/mealtrack/internal/api/auth"
	"github.com/jon4hz/mealtrack/internal/api/models"
)

func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.tracker.GetSettings(c.Request.Context(), auth.CurrentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToSettings(settings))
}

// UpdateSettings patches the settings, only supplied fields change.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req models.SettingsRequest
	if !bindJSON(c, &req) {
		return
	}
	patch, err := req.ToSettingsPatch()
	if err != nil {
		respondError(c, err)
		return
	}

	settings, err := h.tracker.UpdateSettings(c.Request.Context(), auth.CurrentUser(c).ID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToSettings(settings))
}
