package handlers

import (
	"time"

	"food-ordering-api/models"
)

// shopView is what other accounts may see of a shop. Staff flags stay private.
type shopView struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

func newShopView(s *models.Shop) shopView {
	return shopView{
		ID:          s.ID,
		Username:    s.Username,
		Name:        s.Name,
		Email:       s.Email,
		PhoneNumber: s.PhoneNumber,
		Address:     s.Address,
	}
}

type shopMenuView struct {
	shopView
	FoodItems []models.FoodItem `json:"food_items"`
}

// shopAccountView is returned to the shop itself after sign-up.
type shopAccountView struct {
	shopView
	IsStaff         bool      `json:"is_staff"`
	IsAdministrator bool      `json:"is_administrator"`
	CreatedAt       time.Time `json:"created_at"`
}

type customerProfile struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Name        string `json:"name"`
	Lastname    string `json:"lastname"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

func newCustomerProfile(c *models.Customer) *customerProfile {
	if c == nil {
		return nil
	}
	return &customerProfile{
		ID:          c.ID,
		Username:    c.Username,
		Name:        c.Name,
		Lastname:    c.Lastname,
		PhoneNumber: c.PhoneNumber,
		Address:     c.Address,
	}
}

// shopOrderView is an order as the receiving shop sees it, with the ordering
// customer's public profile under "user".
type shopOrderView struct {
	models.Order
	User *customerProfile `json:"user"`
}

func newShopOrderView(o *models.Order) shopOrderView {
	return shopOrderView{Order: *o, User: newCustomerProfile(o.Customer)}
}
