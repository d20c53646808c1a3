package handlers

import (
	"net/http"
	"os"

	"primestore/internal/auth"
	"primestore/internal/cart"
	"primestore/internal/orders"
	"primestore/internal/payments"
	"primestore/internal/products"
	"primestore/internal/stores/kafka"
	"primestore/internal/users"
	"primestore/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	u        *users.Conf
	p        products.Conf
	c        cart.Conf
	o        *orders.Conf
	pay      payments.Conf
	k        *kafka.Conf // nil when eventing is disabled
	a        *auth.Keys
	validate *validator.Validate
}

func NewHandler(a *auth.Keys, u *users.Conf, p products.Conf, ct cart.Conf,
	o *orders.Conf, pay payments.Conf, k *kafka.Conf) *Handler {
	return &Handler{
		u:        u,
		p:        p,
		c:        ct,
		o:        o,
		pay:      pay,
		k:        k,
		a:        a,
		validate: validator.New(),
	}
}

func API(a *auth.Keys, u *users.Conf, p products.Conf, ct cart.Conf,
	o *orders.Conf, pay payments.Conf, k *kafka.Conf) *gin.Engine {

	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	m, err := middleware.NewMid(a)
	if err != nil {
		panic(err)
	}
	h := NewHandler(a, u, p, ct, o, pay, k)

	r.Use(middleware.Logger(), gin.Recovery())
	r.GET("/ping", healthCheck)

	api := r.Group("/api")
	{
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
		api.POST("/auth/logout", h.Logout)

		api.GET("/categories", h.ListCategories)
		api.GET("/categories/:slug", h.GetCategoryBySlug)
		api.GET("/products", h.ListProducts)
		api.GET("/products/search/:query", h.SearchProducts)
		api.GET("/products/:id", h.GetProduct)

		// Stripe calls this back; it authenticates via event payload, not session.
		api.POST("/webhook", h.Webhook)
	}

	authed := api.Group("")
	authed.Use(m.Authentication())
	{
		authed.GET("/auth/me", h.Me)

		authed.GET("/cart", h.GetCart)
		authed.POST("/cart", h.AddToCart)
		authed.PUT("/cart/:productId", h.UpdateCartItem)
		authed.DELETE("/cart/:productId", h.RemoveFromCart)
		authed.DELETE("/cart", h.ClearCart)

		authed.POST("/create-payment-intent", h.CreatePaymentIntent)
		authed.POST("/orders", h.CreateOrder)
		authed.GET("/orders", h.ListOrders)
		authed.GET("/orders/:id", h.GetOrder)

		authed.POST("/categories", m.Authorize(h.CreateCategory, auth.RoleAdmin))
		authed.POST("/products", m.Authorize(h.CreateProduct, auth.RoleAdmin))
		authed.PUT("/products/:id", m.Authorize(h.UpdateProduct, auth.RoleAdmin))
		authed.DELETE("/products/:id", m.Authorize(h.DeleteProduct, auth.RoleAdmin))
	}

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// claimsFromRequest pulls the identity the authentication middleware stored
// on the request context.
func claimsFromRequest(c *gin.Context) (auth.Claims, bool) {
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	return claims, ok
}
