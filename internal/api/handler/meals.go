package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/mealtrack/internal/api/auth"
	"github.com/jon4hz/mealtrack/internal/api/models"
)

// ListMeals returns the meals of the user in logging order.
// With ?limit=n only the last n meals are returned.
func (h *Handler) ListMeals(c *gin.Context) {
	limit, ok := limitParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, models.Error{Error: "invalid limit parameter"})
		return
	}

	meals, err := h.tracker.ListMeals(c.Request.Context(), auth.CurrentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if limit > 0 && len(meals) > limit {
		meals = meals[len(meals)-limit:]
	}
	c.JSON(http.StatusOK, models.ToMeals(meals))
}

// AddMeal logs a single meal.
func (h *Handler) AddMeal(c *gin.Context) {
	var req models.MealRequest
	if !bindJSON(c, &req) {
		return
	}

	meal, err := h.tracker.AddMeal(c.Request.Context(), auth.CurrentUser(c).ID, req.ToNewMeal())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.ToMeal(*meal))
}

// AddCombo logs several foods as one meal.
func (h *Handler) AddCombo(c *gin.Context) {
	var req models.ComboRequest
	if !bindJSON(c, &req) {
		return
	}

	meal, err := h.tracker.AddCombo(c.Request.Context(), auth.CurrentUser(c).ID, req.ToCombo())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.ToMeal(*meal))
}

// EditMeal applies a partial update to a meal.
func (h *Handler) EditMeal(c *gin.Context) {
	var req models.MealPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	patch, err := req.ToMealPatch()
	if err != nil {
		respondError(c, err)
		return
	}

	meal, err := h.tracker.EditMeal(c.Request.Context(), auth.CurrentUser(c).ID, c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToMeal(*meal))
}

// DeleteMeal removes a meal.
func (h *Handler) DeleteMeal(c *gin.Context) {
	if err := h.tracker.DeleteMeal(c.Request.Context(), auth.CurrentUser(c).ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Message{Message: "Deleted"})
}
