package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/paperdesk/papermart/internal/config"
	"github.com/paperdesk/papermart/internal/gateway/paypal"
	"github.com/paperdesk/papermart/internal/server/http/handlers"
	"github.com/paperdesk/papermart/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.BillingFacade, verifier paypal.Verifier, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	basketHandler := handlers.NewBasketHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	subscriptionHandler := handlers.NewSubscriptionHandler(facade)
	paypalHandler := handlers.NewPayPalWebhookHandler(facade, facade, verifier, cfg.PayPal, cfg.TenantName, logger)
	twocheckoutHandler := handlers.NewTwoCheckoutWebhookHandler(facade, cfg.TwoCheckout, logger)

	api := engine.Group("/api")

	customer := api.Group("/customer")
	customer.POST("/register", authHandler.Register)
	customer.POST("/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(facade))
	authed.GET("/basket", basketHandler.Get)
	authed.DELETE("/basket", basketHandler.Clear)
	authed.POST("/basket/lines", basketHandler.AddLine)
	authed.DELETE("/basket/lines/:id", basketHandler.RemoveLine)
	authed.POST("/basket/lines/:id/attachments", basketHandler.AddAttachment)
	authed.POST("/basket/coupon", basketHandler.ApplyCoupon)
	authed.GET("/basket/coupon/suggest", basketHandler.SuggestCoupon)
	authed.POST("/basket/checkout", basketHandler.Checkout)
	authed.GET("/orders", orderHandler.List)
	authed.GET("/orders/:id", orderHandler.Get)
	authed.GET("/subscription/current", subscriptionHandler.Current)
	authed.GET("/subscription/payments", subscriptionHandler.BillingHistory)

	webhooks := api.Group("/webhooks")
	webhooks.POST("/paypal", paypalHandler.Orders)
	webhooks.POST("/paypal/subscription", paypalHandler.Subscriptions)
	webhooks.POST("/twocheckout", twocheckoutHandler.Notify)

	return engine
}
