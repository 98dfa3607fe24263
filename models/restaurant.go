package models

import "time"

// Shop is the restaurant-side account. Staff and administrator flags gate
// catalog management and order fulfilment.
type Shop struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	Username        string     `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Name            string     `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Email           string     `json:"email" gorm:"size:120;uniqueIndex;not null"`
	PhoneNumber     string     `json:"phone_number" gorm:"size:20"`
	Address         string     `json:"address" gorm:"size:255"`
	PasswordHash    string     `json:"-" gorm:"not null"`
	IsStaff         bool       `json:"is_staff" gorm:"not null"`
	IsAdministrator bool       `json:"is_administrator" gorm:"not null"`
	FoodItems       []FoodItem `json:"food_items,omitempty" gorm:"foreignKey:ShopID"`
	CreatedAt       time.Time  `json:"created_at"`
}

// CanManage reports whether the account may manage a catalog and fulfil orders.
func (s *Shop) CanManage() bool {
	return s.IsStaff || s.IsAdministrator
}

type Category struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	CategoryName string `json:"category_name" gorm:"size:50;uniqueIndex;not null"`
}

type FoodItem struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description string    `json:"description" gorm:"size:500"`
	Ingredients string    `json:"ingredients" gorm:"size:500"`
	Price       float64   `json:"price" gorm:"type:decimal(8,2);not null"`
	IsActive    bool      `json:"is_active" gorm:"not null"`
	CategoryID  uint      `json:"category_id" gorm:"not null;index"`
	Category    *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	ShopID      uint      `json:"shop_id" gorm:"not null;index"`
	Shop        *Shop     `json:"-" gorm:"foreignKey:ShopID"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
