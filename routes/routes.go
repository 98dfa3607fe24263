package routes

import (
	"net/http"

	"food-ordering-api/handlers"
	"food-ordering-api/metrics"
	"food-ordering-api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter builds the engine with the shared middleware chain and every
// route registered.
func NewRouter(log *logrus.Logger, h *handlers.Handler, auth *middleware.Authenticator) *gin.Engine {
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.Metrics(), middleware.CORS())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Food Ordering API",
			"docs":    "/state-machine",
			"health":  "/health/ready",
		})
	})
	r.GET("/health/live", h.Live)
	r.GET("/health/ready", h.Ready)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	SetupRoutes(r, h, auth)
	return r
}

// both registers a route with and without its trailing slash.
func both(g *gin.RouterGroup, method, path string, chain ...gin.HandlerFunc) {
	g.Handle(method, path, chain...)
	g.Handle(method, path+"/", chain...)
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, auth *middleware.Authenticator) {
	// ── Public routes ──────────────────────────────────────────────
	r.GET("/state-machine", h.GetStateMachineInfo)

	// ── Auth ───────────────────────────────────────────────────────
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/sign_up", h.SignUp)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/refresh-token", auth.RequireRefresh(), h.RefreshToken)
		authGroup.POST("/logout", auth.RequireRefresh(), h.Logout)
		authGroup.POST("/shop/sign-up", h.ShopSignUp)
		authGroup.POST("/shop/login", h.ShopLogin)
	}

	// ── Catalog reads (any access token) ───────────────────────────
	browse := r.Group("/")
	browse.Use(auth.RequireSubject())
	{
		browse.GET("/shops", h.ListShops)
		browse.GET("/shop/:id", h.GetShop)
		browse.GET("/categories", h.ListCategories)
		browse.GET("/foods", h.ListFoods)
		browse.GET("/food/:id", h.GetFood)
	}

	// ── Orders ─────────────────────────────────────────────────────
	order := r.Group("/order")
	{
		order.GET("/order/:id", auth.RequireSubject(), h.GetOrder)

		customer := order.Group("")
		customer.Use(auth.RequireCustomer())
		customer.POST("/place-order", h.PlaceOrder)
		customer.GET("/my-orders", h.GetMyOrders)
		customer.PUT("/update-order/:id", h.UpdateOrder)
		customer.DELETE("/delete/:id", h.DeleteOrder)

		order.PATCH("/update-order-status/:id", auth.RequireShopStaff(), h.UpdateOrderStatus)
	}

	// ── Shop staff routes ──────────────────────────────────────────
	shop := r.Group("/shop")
	shop.Use(auth.RequireShopStaff())
	{
		both(shop, http.MethodPost, "/create-food", h.CreateFood)
		shop.PATCH("/update-food/:id", h.UpdateFood)
		shop.DELETE("/delete-food/:id", h.DeleteFood)
		both(shop, http.MethodPost, "/add-category", h.AddCategory)
		shop.GET("/orders", h.GetShopOrders)
		shop.GET("/orders/:id", h.GetShopOrder)
	}
}
