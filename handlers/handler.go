package handlers

import (
	"context"
	"net/http"
	"strconv"

	"food-ordering-api/services"
	"food-ordering-api/tokens"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the services every route needs.
type Handler struct {
	accounts *services.AccountService
	tokens   *tokens.Service
	catalog  *services.CatalogService
	orders   *services.OrderService
	db       Pinger
}

func New(accounts *services.AccountService, t *tokens.Service, catalog *services.CatalogService, orders *services.OrderService, db Pinger) *Handler {
	return &Handler{accounts: accounts, tokens: t, catalog: catalog, orders: orders, db: db}
}

// paramID reads a positive numeric path parameter. It answers 400 itself
// when the value is unusable.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return false
	}
	return true
}
