package models

import (
	"time"
)

// AccountKind separates the two independent account tables. A username is
// only unique within its kind.
type AccountKind string

const (
	KindCustomer AccountKind = "customer"
	KindShop     AccountKind = "shop"
)

func (k AccountKind) Valid() bool {
	return k == KindCustomer || k == KindShop
}

type Customer struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"size:50;not null"`
	Lastname     string    `json:"lastname" gorm:"size:50"`
	Email        string    `json:"email" gorm:"size:120;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	PhoneNumber  string    `json:"phone_number" gorm:"size:20;not null"`
	Address      string    `json:"address" gorm:"size:255"`
	IsActive     bool      `json:"is_active" gorm:"not null"`
	TimeJoined   time.Time `json:"time_joined"`
	Orders       []Order   `json:"orders,omitempty" gorm:"foreignKey:CustomerID"`
}
