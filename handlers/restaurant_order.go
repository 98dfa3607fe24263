package handlers

import (
	"net/http"

	"food-ordering-api/middleware"
	"food-ordering-api/models"

	"github.com/gin-gonic/gin"
)

type UpdateStatusRequest struct {
	OrderStatus string `json:"order_status" binding:"required"`
	Note        string `json:"note" binding:"max=255"`
}

// GetShopOrders lists the orders received by the calling shop, optionally
// filtered by ?q=STATUS
func (h *Handler) GetShopOrders(c *gin.Context) {
	shop := middleware.GetShop(c)
	orders, err := h.orders.ShopOrders(c.Request.Context(), shop, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]shopOrderView, 0, len(orders))
	for i := range orders {
		views = append(views, newShopOrderView(&orders[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"restaurant": newShopView(shop),
		"orders":     views,
	})
}

func (h *Handler) GetShopOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.ShopOrder(c.Request.Context(), middleware.GetShop(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newShopOrderView(order))
}

// UpdateOrderStatus moves an order forward along the shop's side of the
// lifecycle
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	status, err := models.ParseOrderStatus(req.OrderStatus)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	order, err := h.orders.UpdateOrderStatus(c.Request.Context(), middleware.GetShop(c), id, status, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success", "order": order})
}
