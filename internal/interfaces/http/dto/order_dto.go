package dto

import (
	"encoding/json"
	"time"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/order"
)

// AddressRequest is the delivery address submitted at checkout.
// Field rules are enforced by the order domain.
type AddressRequest struct {
	Name       string `json:"name" binding:"max=200"`
	Phone      string `json:"phone" binding:"max=32"`
	Line1      string `json:"line1" binding:"max=300"`
	Line2      string `json:"line2" binding:"max=300"`
	City       string `json:"city" binding:"max=100"`
	State      string `json:"state" binding:"max=100"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country" binding:"max=56"`
}

// ToInput converts the request into the domain address input
func (r AddressRequest) ToInput() order.AddressInput {
	return order.AddressInput{
		Name:       r.Name,
		Phone:      r.Phone,
		Line1:      r.Line1,
		Line2:      r.Line2,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
	}
}

// CheckoutItemRequest is one cart line
type CheckoutItemRequest struct {
	ID       string `json:"id" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"required,min=1,max=1000"`
}

// CheckoutRequest is the body of POST /checkout
type CheckoutRequest struct {
	Address AddressRequest        `json:"address" binding:"required"`
	Items   []CheckoutItemRequest `json:"items" binding:"dive"`
}

// CheckoutResponse carries what the client needs to open the payment widget
type CheckoutResponse struct {
	OrderID         string `json:"orderId"`
	GatewayIntentID string `json:"gatewayIntentId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

// VerifyPaymentRequest is the body of POST /payments/verify
type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId" binding:"required,uuid"`
	IntentID  string `json:"intentId" binding:"required,max=64"`
	PaymentID string `json:"paymentId" binding:"required,max=64"`
	Signature string `json:"signature" binding:"required,max=256"`
}

// CreateShipmentRequest is the body of POST /admin/shipping/create
type CreateShipmentRequest struct {
	OrderID string `json:"orderId" binding:"required,uuid"`
}

// ShipmentResponse is the order after a shipment attempt
type ShipmentResponse struct {
	Order           OrderResponse   `json:"order"`
	CarrierResponse json.RawMessage `json:"carrierResponse,omitempty"`
}

// ShipmentErrorResponse is returned with 502 when the carrier failed.
// The order already carries the stored shipping error.
type ShipmentErrorResponse struct {
	ErrorResponse
	Order OrderResponse `json:"order"`
}

// PickupRequest is the body of POST /admin/shipping/pickup
type PickupRequest struct {
	Location      string `json:"location" binding:"max=200"`
	Date          string `json:"date" binding:"required,datetime=2006-01-02"`
	ExpectedCount int    `json:"expectedCount" binding:"required,min=1,max=1000"`
}

// PickupResponse is the carrier's pickup confirmation
type PickupResponse struct {
	PickupID        string          `json:"pickupId"`
	CarrierResponse json.RawMessage `json:"carrierResponse,omitempty"`
}

// GSTReportRequest is the body of POST /admin/reports/gst. Dates are
// inclusive calendar days in UTC.
type GSTReportRequest struct {
	From string `json:"from" binding:"required,datetime=2006-01-02"`
	To   string `json:"to" binding:"required,datetime=2006-01-02"`
}

// GSTReportResponse locates the uploaded report
type GSTReportResponse struct {
	Key        string    `json:"key"`
	URL        string    `json:"url"`
	OrderCount int       `json:"orderCount"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// TrackingWebhookResponse acknowledges a carrier push
type TrackingWebhookResponse struct {
	OK      bool `json:"ok"`
	Updated int  `json:"updated"`
}

// AddressResponse is the stored address snapshot
type AddressResponse struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// OrderItemResponse is one order line
type OrderItemResponse struct {
	ProductID      string `json:"productId"`
	ProductName    string `json:"productName"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	LineTotalCents int64  `json:"lineTotalCents"`
}

// TrackingEntryResponse is one carrier update
type TrackingEntryResponse struct {
	At      time.Time       `json:"at"`
	Status  string          `json:"status"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// OrderResponse is the API view of an order
type OrderResponse struct {
	ID                string                  `json:"id"`
	CustomerID        string                  `json:"customerId"`
	Status            string                  `json:"status"`
	PaymentStatus     string                  `json:"paymentStatus"`
	Currency          string                  `json:"currency"`
	SubtotalCents     int64                   `json:"subtotalCents"`
	TaxCents          int64                   `json:"taxCents"`
	TotalCents        int64                   `json:"totalCents"`
	Address           AddressResponse         `json:"address"`
	Items             []OrderItemResponse     `json:"items"`
	GatewayIntentID   string                  `json:"gatewayIntentId,omitempty"`
	GatewayPaymentID  string                  `json:"gatewayPaymentId,omitempty"`
	RefundID          string                  `json:"refundId,omitempty"`
	ShippingProvider  string                  `json:"shippingProvider,omitempty"`
	ShippingStatus    string                  `json:"shippingStatus,omitempty"`
	TrackingID        string                  `json:"trackingId,omitempty"`
	TrackingURL       string                  `json:"trackingUrl,omitempty"`
	TrackingHistory   []TrackingEntryResponse `json:"trackingHistory,omitempty"`
	ShippingError     string                  `json:"shippingError,omitempty"`
	ShippingErrorAt   *time.Time              `json:"shippingErrorAt,omitempty"`
	ShipmentCreatedAt *time.Time              `json:"shipmentCreatedAt,omitempty"`
	PaidAt            *time.Time              `json:"paidAt,omitempty"`
	RefundedAt        *time.Time              `json:"refundedAt,omitempty"`
	CreatedAt         time.Time               `json:"createdAt"`
	UpdatedAt         time.Time               `json:"updatedAt"`
}

// NewOrderResponse maps an order aggregate to its API view. The payment
// signature is never exposed.
func NewOrderResponse(o *order.Order) OrderResponse {
	resp := OrderResponse{
		ID:            o.ID.String(),
		CustomerID:    o.CustomerID.String(),
		Status:        o.Status.String(),
		PaymentStatus: string(o.PaymentStatus),
		Currency:      o.Currency,
		SubtotalCents: o.SubtotalCents,
		TaxCents:      o.TaxCents,
		TotalCents:    o.TotalCents,
		Address: AddressResponse{
			Name:       o.Address.Name,
			Phone:      o.Address.Phone,
			Line1:      o.Address.Line1,
			Line2:      o.Address.Line2,
			City:       o.Address.City,
			State:      o.Address.State,
			PostalCode: o.Address.PostalCode,
			Country:    o.Address.Country,
		},
		Items:             make([]OrderItemResponse, 0, len(o.Items)),
		GatewayIntentID:   o.GatewayIntentID,
		GatewayPaymentID:  o.GatewayPaymentID,
		RefundID:          o.RefundID,
		ShippingProvider:  o.ShippingProvider,
		ShippingStatus:    o.ShippingStatus,
		TrackingID:        o.TrackingID,
		TrackingURL:       o.TrackingURL,
		ShippingError:     o.ShippingError,
		ShippingErrorAt:   o.ShippingErrorAt,
		ShipmentCreatedAt: o.ShipmentCreatedAt,
		PaidAt:            o.PaidAt,
		RefundedAt:        o.RefundedAt,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID:      item.ProductID.String(),
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			LineTotalCents: item.LineTotalCents,
		})
	}
	for _, entry := range o.TrackingHistory {
		resp.TrackingHistory = append(resp.TrackingHistory, TrackingEntryResponse(entry))
	}
	return resp
}

// NewOrderResponses maps a page of orders
func NewOrderResponses(orders []*order.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewOrderResponse(o))
	}
	return out
}

// OrderListResponse is a page of orders
type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Meta   ListMeta        `json:"meta"`
}
