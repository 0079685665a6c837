package router

import (
	"net/http"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/shared"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/auth"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/interfaces/http/dto"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/interfaces/http/handler"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// StorefrontHandlers bundles the handlers behind the storefront API
type StorefrontHandlers struct {
	Checkout *handler.CheckoutHandler
	Payment  *handler.PaymentHandler
	Order    *handler.OrderHandler
	Admin    *handler.AdminHandler
	Shipping *handler.ShippingWebhookHandler
}

// StorefrontConfig holds what the storefront groups need besides handlers
type StorefrontConfig struct {
	JWTService *auth.JWTService
	// Limiter throttles checkout and payment verification; nil disables it
	Limiter *middleware.RateLimiter
}

// RegisterStorefront registers the checkout, payment, order, shipping and
// admin groups on r. Webhook routes stay unauthenticated since the
// gateway and the carrier authenticate by signature or shared secret.
func RegisterStorefront(r *Router, h StorefrontHandlers, cfg StorefrontConfig) *Router {
	authn := []gin.HandlerFunc{
		middleware.JWTAuthMiddleware(cfg.JWTService),
		middleware.TracingAttributeInjector(),
	}
	throttled := authn
	if cfg.Limiter != nil {
		throttled = append(append([]gin.HandlerFunc{}, authn...), middleware.RateLimitByUser(cfg.Limiter))
	}

	checkoutRoutes := NewDomainGroup("checkout", "/checkout").Use(throttled...)
	checkoutRoutes.POST("", h.Checkout.Checkout)

	paymentRoutes := NewDomainGroup("payments", "/payments")
	paymentRoutes.POST("/webhook", h.Payment.Webhook)
	paymentRoutes.Group("verify", "/verify").
		Use(throttled...).
		POST("", h.Payment.Verify)

	shippingRoutes := NewDomainGroup("shipping", "/shipping")
	shippingRoutes.POST("/webhook", h.Shipping.Tracking)

	orderRoutes := NewDomainGroup("orders", "/orders").Use(authn...)
	orderRoutes.GET("", h.Order.List)
	orderRoutes.GET("/:id", h.Order.Get)
	orderRoutes.POST("/:id/cancel", h.Order.Cancel)

	adminRoutes := NewDomainGroup("admin", "/admin").
		Use(authn...).
		Use(middleware.RequireRole(shared.RoleAdmin))
	adminRoutes.Group("orders", "/orders").
		GET("", h.Admin.ListOrders).
		POST("/:id/refund", h.Admin.Refund)
	adminRoutes.Group("shipping", "/shipping").
		POST("/create", h.Admin.CreateShipment).
		POST("/pickup", h.Admin.RequestPickup)
	adminRoutes.Group("reports", "/reports").
		POST("/gst", h.Admin.ExportGST)

	return r.Register(checkoutRoutes).
		Register(paymentRoutes).
		Register(shippingRoutes).
		Register(orderRoutes).
		Register(adminRoutes)
}

// NoRoute answers unknown paths with the standard error body
func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeNotFound, "Route not found"))
}
