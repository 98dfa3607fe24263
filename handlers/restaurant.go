package handlers

import (
	"net/http"

	"food-ordering-api/middleware"
	"food-ordering-api/services"

	"github.com/gin-gonic/gin"
)

// ── Categories ───────────────────────────────────────────────────────────────

type CreateCategoryRequest struct {
	CategoryName string `json:"category_name" binding:"required,max=50"`
}

// AddCategory creates a catalog category
func (h *Handler) AddCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.catalog.CreateCategory(c.Request.Context(), req.CategoryName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// ── Food Items ───────────────────────────────────────────────────────────────

type CreateFoodItemRequest struct {
	Name        string   `json:"name" binding:"required,max=100"`
	Description string   `json:"description" binding:"max=500"`
	Ingredients []string `json:"ingredients"`
	Price       float64  `json:"price"`
	CategoryID  uint     `json:"category_id" binding:"required"`
	IsActive    *bool    `json:"is_active"`
}

type UpdateFoodItemRequest struct {
	Name        *string   `json:"name" binding:"omitempty,max=100"`
	Description *string   `json:"description" binding:"omitempty,max=500"`
	Ingredients *[]string `json:"ingredients"`
	Price       *float64  `json:"price"`
	CategoryID  *uint     `json:"category_id"`
	IsActive    *bool     `json:"is_active"`
}

// CreateFood adds an item to the calling shop's menu
func (h *Handler) CreateFood(c *gin.Context) {
	var req CreateFoodItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.catalog.CreateFoodItem(c.Request.Context(), middleware.GetShop(c), services.FoodItemInput{
		Name:        req.Name,
		Description: req.Description,
		Ingredients: req.Ingredients,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateFood applies only the supplied fields
func (h *Handler) UpdateFood(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateFoodItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.catalog.UpdateFoodItem(c.Request.Context(), middleware.GetShop(c), id, services.FoodItemPatch{
		Name:        req.Name,
		Description: req.Description,
		Ingredients: req.Ingredients,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteFood(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteFoodItem(c.Request.Context(), middleware.GetShop(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"operation": "success"})
}
