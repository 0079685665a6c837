package order

import (
	"time"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderPlaced     = "OrderPlaced"
	EventTypeOrderPaid       = "OrderPaid"
	EventTypeOrderCancelled  = "OrderCancelled"
	EventTypeShipmentCreated = "ShipmentCreated"
	EventTypeOrderShipped    = "OrderShipped"
	EventTypeOrderDelivered  = "OrderDelivered"
	EventTypeOrderRefunded   = "OrderRefunded"
)

// OrderEvent is the payload shared by every order lifecycle event.
// Consumers (notifications, analytics) need nothing beyond it.
type OrderEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	Status      Status    `json:"status"`
	TotalCents  int64     `json:"total_cents"`
	Currency    string    `json:"currency"`
	ItemCount   int       `json:"item_count"`
	PaymentID   string    `json:"payment_id,omitempty"`
	TrackingID  string    `json:"tracking_id,omitempty"`
	TrackingURL string    `json:"tracking_url,omitempty"`
	RefundID    string    `json:"refund_id,omitempty"`
}

func newOrderEvent(eventType string, o *Order, at time.Time) *OrderEvent {
	return &OrderEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeOrder, o.ID, at),
		OrderID:         o.ID,
		CustomerID:      o.CustomerID,
		Status:          o.Status,
		TotalCents:      o.TotalCents,
		Currency:        o.Currency,
		ItemCount:       o.ItemCount(),
		PaymentID:       o.GatewayPaymentID,
		TrackingID:      o.TrackingID,
		TrackingURL:     o.TrackingURL,
		RefundID:        o.RefundID,
	}
}

// NewOrderPlacedEvent is raised when a PENDING order is created at checkout
func NewOrderPlacedEvent(o *Order, at time.Time) *OrderEvent {
	return newOrderEvent(EventTypeOrderPlaced, o, at)
}

// NewOrderPaidEvent is raised when a payment is verified
func NewOrderPaidEvent(o *Order, at time.Time) *OrderEvent {
	return newOrderEvent(EventTypeOrderPaid, o, at)
}

// NewOrderCancelledEvent is raised when the customer cancels
func NewOrderCancelledEvent(o *Order, at time.Time) *OrderEvent {
	return newOrderEvent(EventTypeOrderCancelled, o, at)
}

// NewShipmentCreatedEvent is raised when the carrier issues a waybill
func NewShipmentCreatedEvent(o *Order, at time.Time) *OrderEvent {
	return newOrderEvent(EventTypeShipmentCreated, o, at)
}

// NewOrderShippedEvent is raised when tracking reports the parcel in transit
func NewOrderShippedEvent(o *Order, at time.Time) *OrderEvent {
	return newOrderEvent(EventTypeOrderShipped, o, at)
}

// NewOrderDeliveredEvent is raised when tracking reports delivery
func NewOrderDeliveredEvent(o *Order, at time.Time) *OrderEvent {
	return newOrderEvent(EventTypeOrderDelivered, o, at)
}

// NewOrderRefundedEvent is raised when a refund is recorded
func NewOrderRefundedEvent(o *Order, at time.Time) *OrderEvent {
	return newOrderEvent(EventTypeOrderRefunded, o, at)
}
