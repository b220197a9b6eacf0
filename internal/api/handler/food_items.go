package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/mealtrack/internal/api/models"
)

func (h *Handler) ListFoodItems(c *gin.Context) {
	items, err := h.tracker.ListFoodItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToFoodItems(items))
}

func (h *Handler) CreateFoodItem(c *gin.Context) {
	var req models.FoodItemRequest
	if !bindJSON(c, &req) {
		return
	}

	var name string
	if req.Name != nil {
		name = *req.Name
	}
	item, err := h.tracker.CreateFoodItem(c.Request.Context(), name, req.Calories.Ptr())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.ToFoodItem(*item))
}

func (h *Handler) UpdateFoodItem(c *gin.Context) {
	var req models.FoodItemRequest
	if !bindJSON(c, &req) {
		return
	}
	patch, err := req.ToFoodItemPatch()
	if err != nil {
		respondError(c, err)
		return
	}

	item, err := h.tracker.UpdateFoodItem(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToFoodItem(*item))
}

func (h *Handler) DeleteFoodItem(c *gin.Context) {
	if err := h.tracker.DeleteFoodItem(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Message{Message: "Deleted"})
}
