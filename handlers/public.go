package handlers

import (
	"net/http"

	"food-ordering-api/statemachine"

	"github.com/gin-gonic/gin"
)

// ListShops returns every shop's public profile
func (h *Handler) ListShops(c *gin.Context) {
	shops, err := h.catalog.ListShops(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]shopView, 0, len(shops))
	for i := range shops {
		views = append(views, newShopView(&shops[i]))
	}
	c.JSON(http.StatusOK, views)
}

// GetShop returns a shop with its active menu
func (h *Handler) GetShop(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	menu, err := h.catalog.GetShop(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shopMenuView{shopView: newShopView(menu.Shop), FoodItems: menu.Items})
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// ListFoods searches active food items. A numeric q matches the price, any
// other q matches name, description or category.
func (h *Handler) ListFoods(c *gin.Context) {
	items, err := h.catalog.ListFoodItems(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetFood(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := h.catalog.GetFoodItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// GetStateMachineInfo returns the order lifecycle for informational purposes
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"initial_state":   statemachine.Initial,
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": statemachine.TerminalStates(),
		"description":     "Food ordering lifecycle",
	})
}
