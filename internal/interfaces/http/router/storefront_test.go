package router

import (
	"net/http"
	"testing"
	"time"

	apporder "github.com/Taitilchheda/Taitil-Graphics-sub001/internal/application/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/shared"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/auth"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/config"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/interfaces/http/dto"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/interfaces/http/handler"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/interfaces/http/middleware"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storefrontFixture struct {
	engine *gin.Engine
	jwt    *auth.JWTService
}

// newStorefront mounts the storefront routes over a service with no
// backing stores; only requests rejected before the workflow runs are safe.
func newStorefront(t *testing.T, limiter *middleware.RateLimiter) *storefrontFixture {
	t.Helper()
	middleware.SetupValidator()

	jwt := auth.NewJWTService(config.JWTConfig{
		Secret:                "router-test-secret-at-least-32-chars",
		AccessTokenExpiration: time.Hour,
		Issuer:                "storefront-test",
	})
	svc := apporder.NewService(apporder.ServiceConfig{
		Options: apporder.Options{TrackingWebhookSecret: "carrier-secret"},
	})

	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))
	RegisterStorefront(r, StorefrontHandlers{
		Checkout: handler.NewCheckoutHandler(svc),
		Payment:  handler.NewPaymentHandler(svc),
		Order:    handler.NewOrderHandler(svc),
		Admin:    handler.NewAdminHandler(svc),
		Shipping: handler.NewShippingWebhookHandler(svc),
	}, StorefrontConfig{JWTService: jwt, Limiter: limiter}).Setup()
	engine.NoRoute(NoRoute)

	return &storefrontFixture{engine: engine, jwt: jwt}
}

func (f *storefrontFixture) bearer(t *testing.T, role shared.Role) map[string]string {
	t.Helper()
	token, _, err := f.jwt.GenerateAccessToken(shared.NewPrincipal(uuid.New(), role))
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestRegisterStorefront_Authentication(t *testing.T) {
	f := newStorefront(t, nil)
	id := uuid.NewString()

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/checkout"},
		{http.MethodPost, "/api/v1/payments/verify"},
		{http.MethodGet, "/api/v1/orders"},
		{http.MethodGet, "/api/v1/orders/" + id},
		{http.MethodPost, "/api/v1/orders/" + id + "/cancel"},
		{http.MethodGet, "/api/v1/admin/orders"},
		{http.MethodPost, "/api/v1/admin/orders/" + id + "/refund"},
		{http.MethodPost, "/api/v1/admin/shipping/create"},
		{http.MethodPost, "/api/v1/admin/shipping/pickup"},
		{http.MethodPost, "/api/v1/admin/reports/gst"},
	} {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			w := testutil.PerformRequest(t, f.engine, route.method, route.path, nil, nil)
			testutil.AssertErrorResponse(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized)
		})
	}
}

func TestRegisterStorefront_AdminRoutesRequireAdmin(t *testing.T) {
	f := newStorefront(t, nil)

	w := testutil.PerformRequest(t, f.engine, http.MethodGet, "/api/v1/admin/orders", nil, f.bearer(t, shared.RoleCustomer))
	testutil.AssertErrorResponse(t, w, http.StatusForbidden, dto.ErrCodeForbidden)

	w = testutil.PerformRequest(t, f.engine, http.MethodPost, "/api/v1/admin/shipping/create",
		map[string]any{}, f.bearer(t, shared.RoleAdmin))
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
}

func TestRegisterStorefront_WebhooksArePublic(t *testing.T) {
	f := newStorefront(t, nil)

	w := testutil.PerformRequest(t, f.engine, http.MethodPost, "/api/v1/shipping/webhook",
		[]byte(`{"waybill":"WB1","status":"Delivered"}`), map[string]string{handler.TrackingSecretHeader: "wrong"})
	testutil.AssertErrorResponse(t, w, http.StatusUnauthorized, dto.ErrCodeInvalidSig)
}

func TestRegisterStorefront_RateLimitsCheckout(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, time.Minute)
	t.Cleanup(limiter.Stop)
	f := newStorefront(t, limiter)
	headers := f.bearer(t, shared.RoleCustomer)

	w := testutil.PerformRequest(t, f.engine, http.MethodPost, "/api/v1/checkout", map[string]any{}, headers)
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)

	w = testutil.PerformRequest(t, f.engine, http.MethodPost, "/api/v1/checkout", map[string]any{}, headers)
	testutil.AssertErrorResponse(t, w, http.StatusTooManyRequests, dto.ErrCodeRateLimited)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Order reads are not throttled
	w = testutil.PerformRequest(t, f.engine, http.MethodGet, "/api/v1/orders/not-a-uuid", nil, headers)
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
}

func TestNoRoute(t *testing.T) {
	f := newStorefront(t, nil)

	w := testutil.PerformRequest(t, f.engine, http.MethodGet, "/api/v1/unknown", nil, nil)
	testutil.AssertErrorResponse(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
}
