package handlers

import (
	"net/http"

	"food-ordering-api/middleware"
	"food-ordering-api/models"
	"food-ordering-api/services"

	"github.com/gin-gonic/gin"
)

type SignUpRequest struct {
	Username    string `json:"username" binding:"required,max=50"`
	Name        string `json:"name" binding:"required,max=50"`
	Lastname    string `json:"lastname" binding:"max=50"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required,max=20"`
	Address     string `json:"address"`
}

type ShopSignUpRequest struct {
	Username        string `json:"username" binding:"required,max=50"`
	Name            string `json:"name" binding:"required,max=100"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	PhoneNumber     string `json:"phone_number" binding:"max=20"`
	Address         string `json:"address"`
	IsStaff         *bool  `json:"is_staff"`
	IsAdministrator *bool  `json:"is_administrator"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignUp creates a customer account
func (h *Handler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if !bindJSON(c, &req) {
		return
	}
	customer, err := h.accounts.RegisterCustomer(c.Request.Context(), services.CustomerSignUp{
		Username:    req.Username,
		Name:        req.Name,
		Lastname:    req.Lastname,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// ShopSignUp creates a shop account
func (h *Handler) ShopSignUp(c *gin.Context) {
	var req ShopSignUpRequest
	if !bindJSON(c, &req) {
		return
	}
	shop, err := h.accounts.RegisterShop(c.Request.Context(), services.ShopSignUp{
		Username:        req.Username,
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		PhoneNumber:     req.PhoneNumber,
		Address:         req.Address,
		IsStaff:         req.IsStaff,
		IsAdministrator: req.IsAdministrator,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shopAccountView{
		shopView:        newShopView(shop),
		IsStaff:         shop.IsStaff,
		IsAdministrator: shop.IsAdministrator,
		CreatedAt:       shop.CreatedAt,
	})
}

// Login authenticates a customer and returns an access/refresh pair
func (h *Handler) Login(c *gin.Context) {
	h.login(c, models.KindCustomer)
}

// ShopLogin authenticates a shop account
func (h *Handler) ShopLogin(c *gin.Context) {
	h.login(c, models.KindShop)
}

func (h *Handler) login(c *gin.Context, kind models.AccountKind) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	subject, err := h.accounts.Authenticate(c.Request.Context(), kind, req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	pair, err := h.tokens.IssuePair(subject, kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// RefreshToken swaps a refresh token for a fresh access token. The refresh
// token itself stays valid.
func (h *Handler) RefreshToken(c *gin.Context) {
	claims := middleware.GetClaims(c)
	access, err := h.tokens.IssueAccess(claims.Subject, claims.Kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": access})
}

// Logout revokes the presented refresh token
func (h *Handler) Logout(c *gin.Context) {
	if err := h.tokens.Revoke(c.Request.Context(), middleware.GetClaims(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
