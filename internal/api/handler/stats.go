package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/mealtrack/internal/api/auth"
	"github.com/jon4hz/mealtrack/internal/api/models"
)

// Stats returns the rolling calorie totals.
func (h *Handler) Stats(c *gin.Context) {
	summary, err := h.tracker.Stats(c.Request.Context(), auth.CurrentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToStats(summary))
}

// Dashboard returns today's overview. ?tz=Area/City selects the calendar day.
func (h *Handler) Dashboard(c *gin.Context) {
	var loc *time.Location
	if tz := c.Query("tz"); tz != "" {
		var err error
		loc, err = time.LoadLocation(tz)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.Error{Error: "invalid timezone"})
			return
		}
	}

	dashboard, err := h.tracker.Dashboard(c.Request.Context(), auth.CurrentUser(c).ID, loc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToDashboard(dashboard))
}
