package handlers

import (
	"net/http"

	"food-ordering-api/middleware"
	"food-ordering-api/models"
	"food-ordering-api/services"

	"github.com/gin-gonic/gin"
)

type OrderLineRequest struct {
	FoodItemID uint   `json:"food_item_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,gt=0"`
	Comment    string `json:"comment" binding:"max=20"`
}

type PlaceOrderRequest struct {
	RestaurantID    uint               `json:"restaurant_id" binding:"required"`
	DeliveryAddress string             `json:"delivery_address" binding:"required,max=255"`
	Comment         string             `json:"comment" binding:"max=255"`
	ListOrders      []OrderLineRequest `json:"list_orders" binding:"required,min=1,dive"`
}

type OrderLinePatchRequest struct {
	ID       uint    `json:"id" binding:"required"`
	Quantity *int    `json:"quantity" binding:"omitempty,gt=0"`
	Comment  *string `json:"comment" binding:"omitempty,max=20"`
}

type UpdateOrderRequest struct {
	OrderStatus     *string                 `json:"order_status"`
	DeliveryAddress *string                 `json:"delivery_address" binding:"omitempty,max=255"`
	Comment         *string                 `json:"comment" binding:"omitempty,max=255"`
	ListOrders      []OrderLinePatchRequest `json:"list_orders" binding:"dive"`
}

// PlaceOrder creates a PENDING order for the calling customer
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	lines := make([]services.LineInput, 0, len(req.ListOrders))
	for _, l := range req.ListOrders {
		lines = append(lines, services.LineInput{FoodItemID: l.FoodItemID, Quantity: l.Quantity, Comment: l.Comment})
	}
	order, err := h.orders.PlaceOrder(c.Request.Context(), middleware.GetCustomer(c), services.PlaceOrderInput{
		ShopID:          req.RestaurantID,
		DeliveryAddress: req.DeliveryAddress,
		Comment:         req.Comment,
		Lines:           lines,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetOrder returns an order to the customer who placed it or the shop that
// received it
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)
	order, err := h.orders.GetOrder(c.Request.Context(), services.Caller{Kind: claims.Kind, Username: claims.Subject}, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetMyOrders returns the customer's profile with their order history
func (h *Handler) GetMyOrders(c *gin.Context) {
	customer, err := h.orders.CustomerOrders(c.Request.Context(), middleware.GetCustomer(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// UpdateOrder edits an open order or cancels it
func (h *Handler) UpdateOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	in := services.UpdateOrderInput{
		DeliveryAddress: req.DeliveryAddress,
		Comment:         req.Comment,
	}
	if req.OrderStatus != nil {
		status, err := models.ParseOrderStatus(*req.OrderStatus)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		in.Status = &status
	}
	for _, l := range req.ListOrders {
		in.Lines = append(in.Lines, services.LinePatch{ID: l.ID, Quantity: l.Quantity, Comment: l.Comment})
	}

	order, err := h.orders.UpdateOrder(c.Request.Context(), middleware.GetCustomer(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success", "order": order})
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.orders.DeleteOrder(c.Request.Context(), middleware.GetCustomer(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
