package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skorin/webshop/internal/auth"
)

type Deps struct {
	ProductHandler  *ProductHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	WebhookHandler  *WebhookHandler
	SearchHandler   *SearchHandler
	AccountHandler  *AccountHandler
	Auth            *auth.Middleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AccountHandler.Register)
	v1.POST("/login", d.AccountHandler.Login)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)

	admin := v1.Group("/admin", d.Auth.RequireAdmin)
	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)

	if d.SearchHandler != nil {
		v1.GET("/search", d.SearchHandler.Search)
	}

	cartGrp := v1.Group("/cart")
	cartGrp.GET("", d.CartHandler.GetCart)
	cartGrp.POST("", d.CartHandler.AddToCart)
	cartGrp.PATCH("", d.CartHandler.UpdateCart)
	cartGrp.DELETE("", d.CartHandler.DeleteFromCart)

	// session-cart checkout for the web client, body-cart checkout for bots
	v1.POST("/checkout/session", d.CheckoutHandler.Checkout, d.Auth.Optional)
	v1.POST("/checkout", d.CheckoutHandler.CheckoutAPI, d.Auth.Optional)

	pay := e.Group("/payment")
	pay.GET("/success", d.CheckoutHandler.PaymentSuccess)
	pay.GET("/failed", d.CheckoutHandler.PaymentFailed)
	pay.POST("/webhook/stripe", d.WebhookHandler.StripeWebhook)
	pay.POST("/webhook/bitpay", d.WebhookHandler.BitPayWebhook)
}
