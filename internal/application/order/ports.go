package order

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/order"
)

// PaymentIntent is a gateway order created for a checkout total
type PaymentIntent struct {
	ID          string
	AmountCents int64
	Currency    string
}

// Refund is a refund issued by the gateway
type Refund struct {
	ID          string
	PaymentID   string
	AmountCents int64
	Status      string
}

// PaymentEventKind classifies an inbound payment webhook
type PaymentEventKind string

const (
	PaymentEventCaptured     PaymentEventKind = "captured"
	PaymentEventRefunded     PaymentEventKind = "refunded"
	PaymentEventUnrecognized PaymentEventKind = "unrecognized"
)

// PaymentEvent is the parsed form of a payment webhook body
type PaymentEvent struct {
	Kind      PaymentEventKind
	EventType string
	IntentID  string
	PaymentID string
	RefundID  string
}

// PaymentGateway creates intents and refunds and authenticates gateway callbacks
type PaymentGateway interface {
	Name() string
	CreateIntent(ctx context.Context, receipt string, amountCents int64, currency string) (*PaymentIntent, error)
	// CreateRefund refunds a captured payment; receipt ties the refund to the order on the gateway side
	CreateRefund(ctx context.Context, paymentID, receipt string, amountCents int64) (*Refund, error)
	// VerifyPaymentSignature checks the client-side checkout signature over intentID|paymentID
	VerifyPaymentSignature(intentID, paymentID, signature string) bool
	// VerifyWebhookSignature checks the signature header over the raw webhook body
	VerifyWebhookSignature(body []byte, signature string) bool
	ParseWebhookEvent(body []byte) PaymentEvent
}

// Shipment is the carrier's answer to a shipment request
type Shipment struct {
	Provider    string
	Waybill     string
	TrackingURL string
	Raw         json.RawMessage
}

// PickupRequest asks the carrier to collect parcels from a warehouse
type PickupRequest struct {
	Location      string
	Date          time.Time
	ExpectedCount int
}

// Pickup is the carrier's pickup confirmation
type Pickup struct {
	ID  string
	Raw json.RawMessage
}

// TrackingUpdate is one carrier status push
type TrackingUpdate struct {
	Waybill string
	Status  string
	Raw     json.RawMessage
}

// Carrier books shipments and parses tracking pushes
type Carrier interface {
	Name() string
	CreateShipment(ctx context.Context, o *order.Order) (*Shipment, error)
	RequestPickup(ctx context.Context, req PickupRequest) (*Pickup, error)
	// ParseTrackingUpdate returns false when the body matches no known payload shape
	ParseTrackingUpdate(body []byte) (*TrackingUpdate, bool)
}

// Notification is a customer-facing message about an order event
type Notification struct {
	Event     *order.OrderEvent
	Recipient order.Address
}

// Notifier delivers customer notifications
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// AnalyticsTracker records product analytics events
type AnalyticsTracker interface {
	Track(ctx context.Context, name string, props map[string]any) error
}

// Metrics counts workflow outcomes
type Metrics interface {
	ObserveWorkflow(operation, outcome string)
}

// ReportStorage stores generated reports and hands out download links
type ReportStorage interface {
	Upload(ctx context.Context, key, contentType string, body []byte) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Notification) error { return nil }

type nopTracker struct{}

func (nopTracker) Track(context.Context, string, map[string]any) error { return nil }

type nopMetrics struct{}

func (nopMetrics) ObserveWorkflow(string, string) {}
