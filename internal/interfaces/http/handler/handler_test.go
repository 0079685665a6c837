package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apporder "github.com/Taitilchheda/Taitil-Graphics-sub001/internal/application/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/catalog"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/shared"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/auth"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/cache"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/config"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/payment"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/persistence"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/shipping"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/interfaces/http/dto"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/interfaces/http/middleware"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testKeySecret      = "rzp_test_secret"
	testWebhookSecret  = "rzp_webhook_secret"
	testTrackingSecret = "carrier-shared-secret"
)

var apiBaseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// razorpayStub serves the gateway endpoints the adapter calls
type razorpayStub struct {
	server      *httptest.Server
	failIntents atomic.Bool
	intents     atomic.Int64
	refunds     atomic.Int64
}

func newRazorpayStub(t *testing.T) *razorpayStub {
	t.Helper()
	stub := &razorpayStub{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders", func(w http.ResponseWriter, r *http.Request) {
		if stub.failIntents.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"code":"SERVER_ERROR","description":"gateway down"}}`))
			return
		}
		var req struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Receipt  string `json:"receipt"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		n := stub.intents.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":       fmt.Sprintf("order_test%04d", n),
			"amount":   req.Amount,
			"currency": req.Currency,
			"receipt":  req.Receipt,
			"status":   "created",
		})
	})
	mux.HandleFunc("POST /payments/{id}/refund", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Amount int64 `json:"amount"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		stub.refunds.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         "rfnd_" + r.PathValue("id"),
			"payment_id": r.PathValue("id"),
			"amount":     req.Amount,
			"status":     "processed",
		})
	})

	stub.server = httptest.NewServer(mux)
	t.Cleanup(stub.server.Close)
	return stub
}

// delhiveryStub serves the carrier endpoints the adapter calls
type delhiveryStub struct {
	server    *httptest.Server
	reject    atomic.Bool
	shipments atomic.Int64
	pickups   atomic.Int64
}

func newDelhiveryStub(t *testing.T) *delhiveryStub {
	t.Helper()
	stub := &delhiveryStub{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/cmu/create.json", func(w http.ResponseWriter, r *http.Request) {
		n := stub.shipments.Add(1)
		if stub.reject.Load() {
			_, _ = w.Write([]byte(`{"success":false,"error":true,"rmk":"Pincode not serviceable","packages":[]}`))
			return
		}
		_, _ = fmt.Fprintf(w, `{"success":true,"packages":[{"waybill":"WB%04d","status":"Success"}]}`, n)
	})
	mux.HandleFunc("POST /fm/request/new/", func(w http.ResponseWriter, r *http.Request) {
		stub.pickups.Add(1)
		_, _ = w.Write([]byte(`{"pickup_id":9001,"pickup_location_name":"Main Warehouse","pickup_date":"2026-03-02"}`))
	})

	stub.server = httptest.NewServer(mux)
	t.Cleanup(stub.server.Close)
	return stub
}

type memoryReports struct {
	mu      sync.Mutex
	uploads map[string][]byte
}

func (m *memoryReports) Upload(_ context.Context, key, _ string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploads == nil {
		m.uploads = map[string][]byte{}
	}
	m.uploads[key] = body
	return nil
}

func (m *memoryReports) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://reports.example/" + key + "?X-Amz-Signature=test", nil
}

type apiHarness struct {
	router   *gin.Engine
	db       *gorm.DB
	jwt      *auth.JWTService
	clock    *testutil.Clock
	gateway  *razorpayStub
	carrier  *delhiveryStub
	reports  *memoryReports
	customer shared.Principal
	admin    shared.Principal
}

type harnessOptions struct {
	withoutReports bool
}

func newAPIHarness(t *testing.T, opts ...func(*harnessOptions)) *apiHarness {
	t.Helper()
	var ho harnessOptions
	for _, opt := range opts {
		opt(&ho)
	}

	db := testutil.NewSQLiteDB(t)
	h := &apiHarness{
		db: db,
		jwt: auth.NewJWTService(config.JWTConfig{
			Secret:                "handler-test-secret-at-least-32-chars",
			AccessTokenExpiration: time.Hour,
			Issuer:                "storefront-test",
		}),
		clock:    testutil.NewClock(apiBaseTime),
		gateway:  newRazorpayStub(t),
		carrier:  newDelhiveryStub(t),
		reports:  &memoryReports{},
		customer: shared.NewPrincipal(uuid.New(), shared.RoleCustomer),
		admin:    shared.NewPrincipal(uuid.New(), shared.RoleAdmin),
	}

	gateway, err := payment.NewRazorpayAdapter(&payment.RazorpayConfig{
		KeyID:         "rzp_test_key",
		KeySecret:     testKeySecret,
		WebhookSecret: testWebhookSecret,
		BaseURL:       h.gateway.server.URL,
		Timeout:       5 * time.Second,
	})
	require.NoError(t, err)
	carrier, err := shipping.NewDelhiveryAdapter(&shipping.DelhiveryConfig{
		BaseURL:        h.carrier.server.URL,
		APIToken:       "dlv-token",
		PickupLocation: "Main Warehouse",
		Timeout:        5 * time.Second,
	})
	require.NoError(t, err)

	dedup := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = dedup.Close() })

	cfg := apporder.ServiceConfig{
		UnitOfWork:   persistence.NewGormUnitOfWork(db),
		Orders:       persistence.NewGormOrderRepository(db),
		Products:     persistence.NewGormProductRepository(db),
		Gateway:      gateway,
		Carrier:      carrier,
		WebhookDedup: dedup,
		Options: apporder.Options{
			Currency:              "INR",
			TaxPercent:            decimal.NewFromInt(18),
			TrackingWebhookSecret: testTrackingSecret,
		},
		Clock: h.clock.Now,
	}
	if !ho.withoutReports {
		cfg.Reports = h.reports
	}
	svc := apporder.NewService(cfg)

	middleware.SetupValidator()
	r := gin.New()
	payments := NewPaymentHandler(svc)
	r.POST("/payments/webhook", payments.Webhook)
	r.POST("/shipping/webhook", NewShippingWebhookHandler(svc).Tracking)

	authed := r.Group("", middleware.JWTAuthMiddleware(h.jwt))
	authed.POST("/checkout", NewCheckoutHandler(svc).Checkout)
	authed.POST("/payments/verify", payments.Verify)
	orders := NewOrderHandler(svc)
	authed.GET("/orders", orders.List)
	authed.GET("/orders/:id", orders.Get)
	authed.POST("/orders/:id/cancel", orders.Cancel)

	admin := authed.Group("/admin", middleware.RequireRole(shared.RoleAdmin))
	adminHandler := NewAdminHandler(svc)
	admin.GET("/orders", adminHandler.ListOrders)
	admin.POST("/orders/:id/refund", adminHandler.Refund)
	admin.POST("/shipping/create", adminHandler.CreateShipment)
	admin.POST("/shipping/pickup", adminHandler.RequestPickup)
	admin.POST("/reports/gst", adminHandler.ExportGST)

	h.router = r
	return h
}

func withoutReports(o *harnessOptions) { o.withoutReports = true }

func (h *apiHarness) headers(t *testing.T, p shared.Principal) map[string]string {
	t.Helper()
	token, _, err := h.jwt.GenerateAccessToken(p)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func (h *apiHarness) do(t *testing.T, p *shared.Principal, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var headers map[string]string
	if p != nil {
		headers = h.headers(t, *p)
	}
	return testutil.PerformRequest(t, h.router, method, path, body, headers)
}

func (h *apiHarness) product(t *testing.T, priceCents int64, stock int) *catalog.Product {
	t.Helper()
	return testutil.SeedProduct(t, h.db, catalog.ProductTypePhysical, priceCents, nil, testutil.IntPtr(stock))
}

func checkoutBody(items ...dto.CheckoutItemRequest) dto.CheckoutRequest {
	return dto.CheckoutRequest{
		Address: dto.AddressRequest{
			Name:       "Asha Rao",
			Phone:      "9876543210",
			Line1:      "12 Residency Road",
			City:       "Bengaluru",
			State:      "KA",
			PostalCode: "560025",
		},
		Items: items,
	}
}

func line(p *catalog.Product, qty int) dto.CheckoutItemRequest {
	return dto.CheckoutItemRequest{ID: p.ID.String(), Quantity: qty}
}

func (h *apiHarness) checkout(t *testing.T, p shared.Principal, items ...dto.CheckoutItemRequest) dto.CheckoutResponse {
	t.Helper()
	w := h.do(t, &p, http.MethodPost, "/checkout", checkoutBody(items...))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp dto.CheckoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func verifyBody(co dto.CheckoutResponse, paymentID string) dto.VerifyPaymentRequest {
	return dto.VerifyPaymentRequest{
		OrderID:   co.OrderID,
		IntentID:  co.GatewayIntentID,
		PaymentID: paymentID,
		Signature: payment.Sign(testKeySecret, []byte(co.GatewayIntentID+"|"+paymentID)),
	}
}

func (h *apiHarness) pay(t *testing.T, p shared.Principal, co dto.CheckoutResponse, paymentID string) {
	t.Helper()
	w := h.do(t, &p, http.MethodPost, "/payments/verify", verifyBody(co, paymentID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func (h *apiHarness) order(t *testing.T, p shared.Principal, id string) dto.OrderResponse {
	t.Helper()
	w := h.do(t, &p, http.MethodGet, "/orders/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.OrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
