package handlers

import (
	"embed"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"storefront/internal/auth"
	"storefront/internal/orders"
	"storefront/internal/products"
	"storefront/internal/users"
	"storefront/middleware"
)

//go:embed web/index.html
var web embed.FS

type Handler struct {
	p        products.Conf
	u        *users.Conf
	o        *orders.Conf
	validate *validator.Validate
}

func NewHandler(p products.Conf, u *users.Conf, o *orders.Conf) *Handler {
	return &Handler{
		p:        p,
		u:        u,
		o:        o,
		validate: validator.New(),
	}
}

// API builds the gin engine with every storefront route. mode is the gin
// mode; anything but release runs in debug mode.
func API(p products.Conf, u *users.Conf, o *orders.Conf, k *auth.Keys, mode string) (*gin.Engine, error) {
	if u == nil || o == nil {
		return nil, errors.New("customer and order services are required")
	}
	switch mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(mode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	m, err := middleware.NewMid(k)
	if err != nil {
		return nil, err
	}
	h := NewHandler(p, u, o)

	r := gin.New()
	r.Use(middleware.Logger(), middleware.Recovery(), middleware.Tracing())

	r.GET("/", h.Index)
	r.GET("/ping", healthCheck)

	api := r.Group("/api")
	{
		api.POST("/cadastro", h.Signup)
		api.POST("/login", h.Login)
		api.GET("/produtos", h.ListProducts)
		api.GET("/produto/:id", h.GetProduct)

		secured := api.Group("", m.Authentication())
		secured.GET("/verify-token", h.VerifyToken)
		secured.GET("/cliente/:email", m.Authorize(h.GetCustomer))
		secured.PUT("/cliente/:email", m.Authorize(h.UpdateCustomer))
		secured.POST("/favoritos/:email", m.Authorize(h.AddFavorite))
		secured.DELETE("/favoritos/:email/:produtoId", m.Authorize(h.RemoveFavorite))
		secured.POST("/pedido/:email", m.Authorize(h.PlaceOrder))
		secured.GET("/pedidos/:email", m.Authorize(h.ListOrders))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})
	return r, nil
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Index serves the landing page.
func (h *Handler) Index(c *gin.Context) {
	page, err := web.ReadFile("web/index.html")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
