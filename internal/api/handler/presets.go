package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/mealtrack/internal/api/auth"
	"github.com/jon4hz/mealtrack/internal/api/models"
)

func (h *Handler) ListPresets(c *gin.Context) {
	presets, err := h.tracker.ListPresets(c.Request.Context(), auth.CurrentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToPresets(presets))
}

func (h *Handler) CreatePreset(c *gin.Context) {
	var req models.PresetRequest
	if !bindJSON(c, &req) {
		return
	}

	preset, err := h.tracker.CreatePreset(c.Request.Context(), auth.CurrentUser(c).ID, req.ToNewPreset())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.ToPreset(*preset))
}

func (h *Handler) UpdatePreset(c *gin.Context) {
	var req models.PresetRequest
	if !bindJSON(c, &req) {
		return
	}
	patch, err := req.ToPresetPatch()
	if err != nil {
		respondError(c, err)
		return
	}

	preset, err := h.tracker.UpdatePreset(c.Request.Context(), auth.CurrentUser(c).ID, c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToPreset(*preset))
}

func (h *Handler) DeletePreset(c *gin.Context) {
	if err := h.tracker.DeletePreset(c.Request.Context(), auth.CurrentUser(c).ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Message{Message: "Deleted"})
}

// LogPreset logs a meal from a preset. The body is optional.
func (h *Handler) LogPreset(c *gin.Context) {
	var req models.LogPresetRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, models.Error{Error: "invalid request body"})
		return
	}

	meal, err := h.tracker.LogPreset(c.Request.Context(), auth.CurrentUser(c).ID, c.Param("id"), req.ClientTime.String())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.ToMeal(*meal))
}
