package order

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/catalog"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/shared"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/persistence"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var serviceBaseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeGateway struct {
	mu        sync.Mutex
	intentErr error
	refundErr error
	intents   int
	refunds   []string
	receipts  []string
	event     PaymentEvent
	// onIntent runs before the intent is returned, outside the lock
	onIntent func(receipt string)
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) CreateIntent(_ context.Context, receipt string, amountCents int64, currency string) (*PaymentIntent, error) {
	if g.onIntent != nil {
		g.onIntent(receipt)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.intentErr != nil {
		return nil, g.intentErr
	}
	g.intents++
	return &PaymentIntent{ID: "order_" + receipt[:8], AmountCents: amountCents, Currency: currency}, nil
}

func (g *fakeGateway) CreateRefund(_ context.Context, paymentID, receipt string, amountCents int64) (*Refund, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	g.refunds = append(g.refunds, paymentID)
	g.receipts = append(g.receipts, receipt)
	return &Refund{ID: "rfnd_" + paymentID, PaymentID: paymentID, AmountCents: amountCents, Status: "processed"}, nil
}

func (g *fakeGateway) VerifyPaymentSignature(intentID, paymentID, signature string) bool {
	return signature == validSignature(intentID, paymentID)
}

func (g *fakeGateway) VerifyWebhookSignature(_ []byte, signature string) bool {
	return signature == "good"
}

func (g *fakeGateway) ParseWebhookEvent([]byte) PaymentEvent {
	return g.event
}

func validSignature(intentID, paymentID string) string {
	return "sig:" + intentID + "|" + paymentID
}

type fakeCarrier struct {
	mu       sync.Mutex
	err      error
	calls    int
	pickups  []PickupRequest
	tracking *TrackingUpdate
}

func (c *fakeCarrier) Name() string { return "fakecarrier" }

func (c *fakeCarrier) CreateShipment(_ context.Context, o *order.Order) (*Shipment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	wb := "WB" + o.ID.String()[:8]
	return &Shipment{
		Provider:    "fakecarrier",
		Waybill:     wb,
		TrackingURL: "https://track.example/" + wb,
		Raw:         json.RawMessage(`{"waybill":"` + wb + `"}`),
	}, nil
}

func (c *fakeCarrier) RequestPickup(_ context.Context, req PickupRequest) (*Pickup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	c.pickups = append(c.pickups, req)
	return &Pickup{ID: "pk_1"}, nil
}

func (c *fakeCarrier) ParseTrackingUpdate([]byte) (*TrackingUpdate, bool) {
	if c.tracking == nil {
		return nil, false
	}
	return c.tracking, true
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, msg Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, msg.Event.EventType())
	return n.err
}

func (n *recordingNotifier) Types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

type recordingTracker struct {
	mu    sync.Mutex
	names []string
}

func (r *recordingTracker) Track(_ context.Context, name string, _ map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
	return nil
}

func (r *recordingTracker) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

type fakeReports struct {
	uploads map[string][]byte
	err     error
}

func (f *fakeReports) Upload(_ context.Context, key, _ string, body []byte) error {
	if f.err != nil {
		return f.err
	}
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	f.uploads[key] = body
	return nil
}

func (f *fakeReports) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://reports.example/" + key + "?sig=x", nil
}

type memoryDedup struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (m *memoryDedup) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys == nil {
		m.keys = map[string]bool{}
	}
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *memoryDedup) IsProcessed(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys[key], nil
}

func (m *memoryDedup) Close() error { return nil }

type harness struct {
	svc      *Service
	db       *gorm.DB
	orders   *persistence.GormOrderRepository
	gateway  *fakeGateway
	carrier  *fakeCarrier
	notifier *recordingNotifier
	tracker  *recordingTracker
	reports  *fakeReports
	clock    *testutil.Clock
	customer shared.Principal
	admin    shared.Principal
}

func newHarness(t *testing.T, opts ...func(*ServiceConfig)) *harness {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	h := &harness{
		db:       db,
		orders:   persistence.NewGormOrderRepository(db),
		gateway:  &fakeGateway{},
		carrier:  &fakeCarrier{},
		notifier: &recordingNotifier{},
		tracker:  &recordingTracker{},
		reports:  &fakeReports{},
		clock:    testutil.NewClock(serviceBaseTime),
		customer: shared.NewPrincipal(uuid.New(), shared.RoleCustomer),
		admin:    shared.NewPrincipal(uuid.New(), shared.RoleAdmin),
	}

	cfg := ServiceConfig{
		UnitOfWork:   persistence.NewGormUnitOfWork(db),
		Orders:       h.orders,
		Products:     persistence.NewGormProductRepository(db),
		Gateway:      h.gateway,
		Carrier:      h.carrier,
		Notifier:     h.notifier,
		Analytics:    h.tracker,
		Reports:      h.reports,
		WebhookDedup: &memoryDedup{},
		Options: Options{
			Currency:   "INR",
			TaxPercent: decimal.NewFromInt(18),
		},
		Clock: h.clock.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	h.svc = NewService(cfg)
	return h
}

func (h *harness) product(t *testing.T, priceCents int64, stock *int) *catalog.Product {
	t.Helper()
	return testutil.SeedProduct(t, h.db, catalog.ProductTypePhysical, priceCents, nil, stock)
}

func (h *harness) checkout(t *testing.T, p shared.Principal, items ...CheckoutItem) *CheckoutResult {
	t.Helper()
	res, err := h.svc.Checkout(context.Background(), p, CheckoutRequest{Address: testAddress(), Items: items})
	require.NoError(t, err)
	return res
}

func (h *harness) verify(t *testing.T, p shared.Principal, res *CheckoutResult, paymentID string) {
	t.Helper()
	require.NoError(t, h.svc.VerifyPayment(context.Background(), p, VerifyPaymentRequest{
		OrderID:   res.OrderID,
		IntentID:  res.GatewayIntentID,
		PaymentID: paymentID,
		Signature: validSignature(res.GatewayIntentID, paymentID),
	}))
}

func (h *harness) load(t *testing.T, id uuid.UUID) *order.Order {
	t.Helper()
	o, err := h.orders.FindByID(context.Background(), id)
	require.NoError(t, err)
	return o
}

func testAddress() order.AddressInput {
	return order.AddressInput{
		Name:       "Asha Rao",
		Phone:      "9876543210",
		Line1:      "12 Residency Road",
		City:       "Bengaluru",
		State:      "KA",
		PostalCode: "560025",
	}
}

func item(p *catalog.Product, qty int) CheckoutItem {
	return CheckoutItem{ProductID: p.ID, Quantity: qty}
}

func errorCode(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
