package order

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/catalog"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CancellationWindow is how long after creation a customer may cancel
const CancellationWindow = 24 * time.Hour

// Error codes raised by the order aggregate
var (
	ErrEmptyCart              = shared.NewDomainError("EMPTY_CART", "Order must contain at least one item")
	ErrServiceNotAllowed      = shared.NewDomainError("SERVICE_NOT_ALLOWED", "Service products cannot be ordered online")
	ErrCancellationExpired    = shared.NewDomainError("CANCELLATION_WINDOW_EXPIRED", "Order can no longer be cancelled")
	ErrShipmentAlreadyCreated = shared.NewDomainError("SHIPMENT_ALREADY_CREATED", "A shipment has already been created for this order")
	ErrInventoryAdjusted      = shared.NewDomainError("INVENTORY_ALREADY_ADJUSTED", "Inventory has already been adjusted for this order")
	ErrNotPaid                = shared.NewDomainError("ORDER_NOT_PAID", "Order has not been paid")
)

// Line is a requested product and quantity at checkout
type Line struct {
	Product  *catalog.Product
	Quantity int
}

// Item is an order line with the unit price frozen at checkout
type Item struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	ProductID      uuid.UUID
	ProductName    string
	Quantity       int
	UnitPriceCents int64
	LineTotalCents int64
}

// TrackingEntry is one carrier update kept in the order's tracking history
type TrackingEntry struct {
	At      time.Time       `json:"at"`
	Status  string          `json:"status"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Order is one checkout attempt and its lifecycle. It owns its items and
// address snapshot and is the unit of transactional consistency.
type Order struct {
	shared.BaseAggregateRoot
	ID            uuid.UUID
	CustomerID    uuid.UUID
	Address       Address
	Items         []Item
	Currency      string
	SubtotalCents int64
	TaxCents      int64
	TotalCents    int64
	Status        Status
	PaymentStatus PaymentStatus

	GatewayIntentID  string
	GatewayPaymentID string
	GatewaySignature string

	InventoryAdjusted bool

	ShippingProvider  string
	ShippingStatus    string
	TrackingID        string
	TrackingURL       string
	TrackingHistory   []TrackingEntry
	ShipmentCreatedAt *time.Time
	ShippingUpdatedAt *time.Time
	ShippingError     string
	ShippingErrorAt   *time.Time

	PaidAt     *time.Time
	RefundedAt *time.Time
	RefundID   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder validates the requested lines against the catalog and builds a
// PENDING order. Duplicate product lines are merged before stock checks.
func NewOrder(customerID uuid.UUID, addr Address, lines []Line, taxPercent decimal.Decimal, currency string, now time.Time) (*Order, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if taxPercent.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX", "Tax percent cannot be negative")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}

	merged, err := mergeLines(lines)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:            uuid.New(),
		CustomerID:    customerID,
		Address:       addr,
		Currency:      currency,
		Status:        StatusPending,
		PaymentStatus: PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	o.Address.CustomerID = customerID

	for _, l := range merged {
		p := l.Product
		if !p.IsPhysical() {
			return nil, shared.NewDomainError(ErrServiceNotAllowed.Code,
				fmt.Sprintf("Product %s is a service and cannot be ordered online", p.Name))
		}
		if !p.HasStockFor(l.Quantity) {
			return nil, shared.NewDomainError(shared.ErrInsufficientStock.Code,
				fmt.Sprintf("Insufficient stock for %s: requested %d, available %d", p.Name, l.Quantity, *p.Stock))
		}

		unit := p.EffectivePriceCents()
		item := Item{
			ID:             uuid.New(),
			OrderID:        o.ID,
			ProductID:      p.ID,
			ProductName:    p.Name,
			Quantity:       l.Quantity,
			UnitPriceCents: unit,
			LineTotalCents: unit * int64(l.Quantity),
		}
		o.Items = append(o.Items, item)
		o.SubtotalCents += item.LineTotalCents
	}

	o.TaxCents = decimal.NewFromInt(o.SubtotalCents).Mul(taxPercent).Div(decimal.NewFromInt(100)).Floor().IntPart()
	o.TotalCents = o.SubtotalCents + o.TaxCents

	o.AddDomainEvent(NewOrderPlacedEvent(o, now))
	return o, nil
}

func mergeLines(lines []Line) ([]Line, error) {
	index := make(map[uuid.UUID]int, len(lines))
	merged := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.Product == nil {
			return nil, shared.NewDomainError("UNKNOWN_PRODUCT", "Product not found")
		}
		if l.Quantity < 1 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
		}
		if i, ok := index[l.Product.ID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.Product.ID] = len(merged)
		merged = append(merged, l)
	}
	return merged, nil
}

// AttachIntent stores the gateway intent created for this order
func (o *Order) AttachIntent(intentID string, now time.Time) error {
	if strings.TrimSpace(intentID) == "" {
		return shared.NewDomainError("INVALID_INTENT", "Gateway intent ID cannot be empty")
	}
	if o.Status != StatusPending {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "Cannot attach a payment intent to a "+o.Status.String()+" order")
	}
	o.GatewayIntentID = intentID
	o.UpdatedAt = now
	return nil
}

// IsPaid reports whether the payment has been captured
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// MarkPaid records a verified payment and moves the order to PAID
func (o *Order) MarkPaid(paymentID, signature string, now time.Time) error {
	if o.IsPaid() {
		return nil
	}
	if o.PaymentStatus == PaymentStatusRefunded {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "Order payment has been refunded")
	}
	if !o.Status.CanTransitionTo(StatusPaid) {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "Cannot mark a "+o.Status.String()+" order as paid")
	}

	o.Status = StatusPaid
	o.PaymentStatus = PaymentStatusPaid
	o.GatewayPaymentID = paymentID
	o.GatewaySignature = signature
	o.PaidAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderPaidEvent(o, now))
	return nil
}

// NeedsInventoryAdjustment reports whether stock still has to be decremented
func (o *Order) NeedsInventoryAdjustment() bool {
	return !o.InventoryAdjusted
}

// MarkInventoryAdjusted flips the adjustment flag. It fails if the flag is already set.
func (o *Order) MarkInventoryAdjusted(now time.Time) error {
	if o.InventoryAdjusted {
		return ErrInventoryAdjusted
	}
	o.InventoryAdjusted = true
	o.UpdatedAt = now
	return nil
}

// CheckCancellable evaluates the cancellation guards in order: ownership,
// window, status, shipment.
func (o *Order) CheckCancellable(p shared.Principal, now time.Time) error {
	if !p.Owns(o.CustomerID) {
		return shared.NewDomainError(shared.ErrForbidden.Code, "Order belongs to another customer")
	}
	if now.Sub(o.CreatedAt) > CancellationWindow {
		return ErrCancellationExpired
	}
	switch o.Status {
	case StatusShipped, StatusDelivered, StatusCancelled:
		return shared.NewDomainError(shared.ErrInvalidState.Code, "Cannot cancel a "+o.Status.String()+" order")
	}
	if o.ShipmentCreatedAt != nil {
		return ErrShipmentAlreadyCreated
	}
	return nil
}

// Cancel moves the order to CANCELLED. It returns true when stock that was
// previously decremented must be restored by the caller.
func (o *Order) Cancel(p shared.Principal, now time.Time) (restoreStock bool, err error) {
	if err := o.CheckCancellable(p, now); err != nil {
		return false, err
	}

	o.Status = StatusCancelled
	if o.ShippingStatus != "" {
		o.ShippingStatus = ShippingStatusCancelled
	}
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderCancelledEvent(o, now))
	return o.InventoryAdjusted, nil
}

// CheckShippable verifies a shipment may be requested from the carrier
func (o *Order) CheckShippable() error {
	if !o.IsPaid() {
		return ErrNotPaid
	}
	if o.Status != StatusPaid {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "Cannot ship a "+o.Status.String()+" order")
	}
	if o.ShipmentCreatedAt != nil {
		return ErrShipmentAlreadyCreated
	}
	return nil
}

// RecordShipment stores the carrier waybill and marks the shipment CREATED
func (o *Order) RecordShipment(provider, waybill, trackingURL string, now time.Time) error {
	if err := o.CheckShippable(); err != nil {
		return err
	}
	if strings.TrimSpace(waybill) == "" {
		return shared.NewDomainError("INVALID_WAYBILL", "Carrier returned an empty waybill")
	}

	o.ShippingProvider = provider
	o.TrackingID = waybill
	o.TrackingURL = trackingURL
	o.ShippingStatus = ShippingStatusCreated
	o.ShipmentCreatedAt = &now
	o.ShippingUpdatedAt = &now
	o.ShippingError = ""
	o.ShippingErrorAt = nil
	o.UpdatedAt = now

	o.AddDomainEvent(NewShipmentCreatedEvent(o, now))
	return nil
}

// RecordShippingError keeps the carrier failure on the order so an admin can retry
func (o *Order) RecordShippingError(provider, message string, now time.Time) {
	o.ShippingProvider = provider
	o.ShippingError = message
	o.ShippingErrorAt = &now
	o.UpdatedAt = now
}

// ApplyTrackingUpdate records a carrier update and advances the status when
// the carrier status maps to a legal forward transition. It returns true if
// the order status changed.
func (o *Order) ApplyTrackingUpdate(rawStatus string, payload json.RawMessage, now time.Time) bool {
	if o.isRedelivery(rawStatus, payload) {
		return false
	}
	o.TrackingHistory = append(o.TrackingHistory, TrackingEntry{At: now, Status: rawStatus, Payload: payload})
	o.ShippingStatus = rawStatus
	o.ShippingUpdatedAt = &now
	o.UpdatedAt = now

	target, ok := MapCarrierStatus(rawStatus)
	if !ok || target == o.Status || !o.Status.CanTransitionTo(target) {
		return false
	}

	o.Status = target
	switch target {
	case StatusShipped:
		o.AddDomainEvent(NewOrderShippedEvent(o, now))
	case StatusDelivered:
		o.AddDomainEvent(NewOrderDeliveredEvent(o, now))
	}
	return true
}

// isRedelivery reports whether the push repeats the latest history entry
func (o *Order) isRedelivery(rawStatus string, payload json.RawMessage) bool {
	n := len(o.TrackingHistory)
	if n == 0 {
		return false
	}
	last := o.TrackingHistory[n-1]
	return last.Status == rawStatus && samePayload(last.Payload, payload)
}

// samePayload compares JSON payloads ignoring insignificant whitespace,
// since stored history is re-encoded compactly
func samePayload(a, b json.RawMessage) bool {
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return bytes.Equal(a, b)
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}

// CheckRefundable verifies a gateway refund may be issued for the order
func (o *Order) CheckRefundable() error {
	if !o.IsPaid() {
		return ErrNotPaid
	}
	if o.GatewayPaymentID == "" {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "Order has no gateway payment to refund")
	}
	return nil
}

// MarkRefunded records a processed refund
func (o *Order) MarkRefunded(refundID string, now time.Time) error {
	if o.PaymentStatus == PaymentStatusRefunded {
		return nil
	}
	if err := o.CheckRefundable(); err != nil {
		return err
	}
	o.PaymentStatus = PaymentStatusRefunded
	o.RefundID = refundID
	o.RefundedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderRefundedEvent(o, now))
	return nil
}

// ItemCount returns the total number of units in the order
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
