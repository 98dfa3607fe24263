package models

import "time"

// RevokedToken blocks a refresh token id until the token would have expired
// on its own.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey"`
	JTI       string    `gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&Customer{},
		&Shop{},
		&Category{},
		&FoodItem{},
		&Order{},
		&OrderLine{},
		&OrderStatusHistory{},
		&RevokedToken{},
	}
}
