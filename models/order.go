package models

import (
	"fmt"
	"strings"
	"time"
)

// OrderStatus is the closed set of states an order moves through.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusInTransit OrderStatus = "IN-TRANSIT"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCanceled  OrderStatus = "CANCELED"
)

var orderStatusAliases = map[string]OrderStatus{
	"PENDING":    StatusPending,
	"IN-TRANSIT": StatusInTransit,
	"IN_TRANSIT": StatusInTransit,
	"DELIVERED":  StatusDelivered,
	"CANCELED":   StatusCanceled,
	"CANCELLED":  StatusCanceled,
	"CANCEL":     StatusCanceled,
}

// ParseOrderStatus accepts the wire value in any case plus the historical
// spellings IN_TRANSIT, CANCEL and CANCELLED.
func ParseOrderStatus(s string) (OrderStatus, error) {
	if st, ok := orderStatusAliases[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCanceled
}

type Order struct {
	ID               uint                 `json:"id" gorm:"primaryKey"`
	Status           OrderStatus          `json:"order_status" gorm:"size:20;not null;index"`
	OrderTime        time.Time            `json:"order_time" gorm:"not null"`
	EstimatedTime    time.Time            `json:"estimated_time"`
	EstimatedMinutes int                  `json:"estimated_minutes"`
	DeliveryAddress  string               `json:"delivery_address" gorm:"size:255;not null"`
	Comment          string               `json:"comment" gorm:"size:255"`
	CustomerID       uint                 `json:"customer_id" gorm:"not null;index"`
	Customer         *Customer            `json:"-" gorm:"foreignKey:CustomerID"`
	ShopID           uint                 `json:"shop_id" gorm:"not null;index"`
	Shop             *Shop                `json:"-" gorm:"foreignKey:ShopID"`
	Lines            []OrderLine          `json:"lines" gorm:"foreignKey:OrderID"`
	StatusHistory    []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

type OrderLine struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	OrderID    uint      `json:"order_id" gorm:"not null;index"`
	FoodItemID uint      `json:"food_item_id" gorm:"not null;index"`
	FoodItem   *FoodItem `json:"food_item,omitempty" gorm:"foreignKey:FoodItemID"`
	Quantity   int       `json:"quantity" gorm:"not null"`
	Comment    string    `json:"comment" gorm:"size:20"`
}

// OrderStatusHistory records every status change of an order.
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status" gorm:"size:20"`
	ToStatus   OrderStatus `json:"to_status" gorm:"size:20;not null"`
	Actor      AccountKind `json:"actor" gorm:"size:20;not null"`
	ChangedBy  uint        `json:"changed_by"`
	Note       string      `json:"note" gorm:"size:255"`
	CreatedAt  time.Time   `json:"created_at"`
}
