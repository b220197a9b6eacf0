package handler

import (
	"net/http"
	"strconv"

	"github.com/ccoveille/go-safecast"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/mealtrack/internal/api/auth"
	"github.com/jon4hz/mealtrack/internal/api/models"
	"github.com/jon4hz/mealtrack/internal/config"
	"github.com/jon4hz/mealtrack/internal/tracker"
)

// Handler serves the authenticated JSON API.
type Handler struct {
	tracker  *tracker.Tracker
	gravatar *config.GravatarConfig
}

// New creates a new Handler.
func New(tr *tracker.Tracker, gravatar *config.GravatarConfig) *Handler {
	return &Handler{tracker: tr, gravatar: gravatar}
}

// Health reports that the server is up together with the state of the background jobs.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.Health{
		Status: "ok",
		Jobs:   h.tracker.Scheduler().Jobs(),
	})
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, models.Error{Error: "invalid request body"})
		return false
	}
	return true
}

func parseUintParam(param string) (uint64, error) {
	return strconv.ParseUint(param, 10, 64)
}

// limitParam returns the optional ?limit query parameter, 0 when absent.
func limitParam(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	l, err := parseUintParam(raw)
	if err != nil {
		return 0, false
	}
	limit, err := safecast.ToInt(l)
	if err != nil {
		return 0, false
	}
	return limit, true
}

func respondError(c *gin.Context, err error) {
	auth.AbortWithError(c, err)
}
