package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"food-ordering-api/logging"
	"food-ordering-api/models"
	"food-ordering-api/services"
	"food-ordering-api/tokens"

	"github.com/gin-gonic/gin"
)

const (
	claimsKey   = "claims"
	customerKey = "customer"
	shopKey     = "shop"
)

// AccountLoader resolves a token subject to its account row.
type AccountLoader interface {
	CustomerBySubject(ctx context.Context, subject string) (*models.Customer, error)
	ShopBySubject(ctx context.Context, subject string) (*models.Shop, error)
}

type Authenticator struct {
	tokens   *tokens.Service
	accounts AccountLoader
}

func NewAuthenticator(t *tokens.Service, accounts AccountLoader) *Authenticator {
	return &Authenticator{tokens: t, accounts: accounts}
}

func unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
}

// accountError answers 401 when the token's account is missing or disabled
// and 500 when it could not be loaded at all.
func accountError(c *gin.Context, err error, detail string) {
	if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrUnauthorized) {
		unauthorized(c, detail)
		return
	}
	logging.FromContext(c.Request.Context()).WithError(err).Error("account lookup failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
}

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

func (a *Authenticator) verify(c *gin.Context, typ tokens.Type) bool {
	raw := bearer(c)
	if raw == "" {
		unauthorized(c, "Missing Authorization header (Bearer <token>)")
		return false
	}
	claims, err := a.tokens.Verify(c.Request.Context(), raw, typ)
	if err != nil {
		if !errors.Is(err, tokens.ErrInvalidToken) {
			logging.FromContext(c.Request.Context()).WithError(err).Error("token verification failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
			return false
		}
		unauthorized(c, strings.TrimPrefix(err.Error(), tokens.ErrInvalidToken.Error()+": "))
		return false
	}
	c.Set(claimsKey, claims)
	return true
}

// RequireSubject accepts any valid access token.
func (a *Authenticator) RequireSubject() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.verify(c, tokens.Access) {
			c.Next()
		}
	}
}

// RequireRefresh accepts a valid refresh token only.
func (a *Authenticator) RequireRefresh() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.verify(c, tokens.Refresh) {
			c.Next()
		}
	}
}

// RequireCustomer accepts an access token issued to an active customer and
// loads that customer.
func (a *Authenticator) RequireCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.verify(c, tokens.Access) {
			return
		}
		claims := GetClaims(c)
		if claims.Kind != models.KindCustomer {
			unauthorized(c, "Customer account required")
			return
		}
		customer, err := a.accounts.CustomerBySubject(c.Request.Context(), claims.Subject)
		if err != nil {
			accountError(c, err, "Customer account not found or disabled")
			return
		}
		c.Set(customerKey, customer)
		c.Next()
	}
}

// RequireShopStaff accepts an access token issued to a shop account that is
// staff or administrator, and loads that shop.
func (a *Authenticator) RequireShopStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.verify(c, tokens.Access) {
			return
		}
		claims := GetClaims(c)
		if claims.Kind != models.KindShop {
			unauthorized(c, "Shop account required")
			return
		}
		shop, err := a.accounts.ShopBySubject(c.Request.Context(), claims.Subject)
		if err != nil {
			accountError(c, err, "Shop account not found")
			return
		}
		if !shop.CanManage() {
			unauthorized(c, "Shop staff or administrator rights required")
			return
		}
		c.Set(shopKey, shop)
		c.Next()
	}
}

// GetClaims returns the verified token claims
func GetClaims(c *gin.Context) *tokens.Claims {
	val, _ := c.Get(claimsKey)
	claims, _ := val.(*tokens.Claims)
	return claims
}

// GetCustomer returns the customer loaded by RequireCustomer
func GetCustomer(c *gin.Context) *models.Customer {
	val, _ := c.Get(customerKey)
	customer, _ := val.(*models.Customer)
	return customer
}

// GetShop returns the shop loaded by RequireShopStaff
func GetShop(c *gin.Context) *models.Shop {
	val, _ := c.Get(shopKey)
	shop, _ := val.(*models.Shop)
	return shop
}
