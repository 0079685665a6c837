package order

import "strings"

// Status is the lifecycle state of an order
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are possible
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo checks if the status can move forward to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusPaid || target == StatusCancelled
	case StatusPaid:
		return target == StatusShipped || target == StatusDelivered || target == StatusCancelled
	case StatusShipped:
		return target == StatusDelivered
	case StatusDelivered, StatusCancelled:
		return false // Terminal states
	}
	return false
}

// PaymentStatus tracks the money side of an order independently of fulfilment
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// IsValid checks if the payment status is known
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}

// Shipping status values written by the workflow itself. Carrier webhooks
// store whatever status string the carrier reports.
const (
	ShippingStatusCreated   = "CREATED"
	ShippingStatusCancelled = "CANCELLED"
)

// MapCarrierStatus maps a free-form carrier status onto an order status.
// The second return value is false when the status carries no lifecycle meaning.
func MapCarrierStatus(raw string) (Status, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case s == "":
		return "", false
	case strings.Contains(s, "DELIVERED"):
		return StatusDelivered, true
	case strings.Contains(s, "OUT"), strings.Contains(s, "IN TRANSIT"), strings.Contains(s, "DISPATCH"):
		return StatusShipped, true
	}
	return "", false
}
