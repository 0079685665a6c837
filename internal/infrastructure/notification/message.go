package notification

import (
	"fmt"
	"time"

	apporder "github.com/Taitilchheda/Taitil-Graphics-sub001/internal/application/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/order"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message is the rendered, channel-agnostic customer notification
type Message struct {
	EventType  string    `json:"event_type"`
	OrderID    string    `json:"order_id"`
	CustomerID string    `json:"customer_id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	OccurredAt time.Time `json:"occurred_at"`
}

var printer = message.NewPrinter(language.English)

// Render builds the customer-facing text for an order event
func Render(n apporder.Notification) Message {
	ev := n.Event
	short := ev.OrderID.String()[:8]
	amount := FormatAmount(ev.TotalCents, ev.Currency)

	var subject, body string
	switch ev.EventType() {
	case order.EventTypeOrderPlaced:
		subject = fmt.Sprintf("Order %s placed", short)
		body = printer.Sprintf("Hi %s, we received your order of %d item(s) totalling %s. Complete the payment to confirm it.",
			n.Recipient.Name, ev.ItemCount, amount)
	case order.EventTypeOrderPaid:
		subject = fmt.Sprintf("Payment received for order %s", short)
		body = printer.Sprintf("Hi %s, your payment of %s (ref %s) is confirmed. We will ship to %s.",
			n.Recipient.Name, amount, ev.PaymentID, n.Recipient.OneLine())
	case order.EventTypeOrderCancelled:
		subject = fmt.Sprintf("Order %s cancelled", short)
		body = printer.Sprintf("Hi %s, your order of %s has been cancelled.", n.Recipient.Name, amount)
	case order.EventTypeShipmentCreated:
		subject = fmt.Sprintf("Order %s is packed", short)
		body = printer.Sprintf("Hi %s, your order has been handed to the courier. Track it at %s.",
			n.Recipient.Name, ev.TrackingURL)
	case order.EventTypeOrderShipped:
		subject = fmt.Sprintf("Order %s is on its way", short)
		body = printer.Sprintf("Hi %s, waybill %s is in transit. Track it at %s.",
			n.Recipient.Name, ev.TrackingID, ev.TrackingURL)
	case order.EventTypeOrderDelivered:
		subject = fmt.Sprintf("Order %s delivered", short)
		body = printer.Sprintf("Hi %s, your order has been delivered. Thank you for shopping with us.", n.Recipient.Name)
	case order.EventTypeOrderRefunded:
		subject = fmt.Sprintf("Refund issued for order %s", short)
		body = printer.Sprintf("Hi %s, a refund of %s (ref %s) has been issued to your original payment method.",
			n.Recipient.Name, amount, ev.RefundID)
	default:
		subject = fmt.Sprintf("Update on order %s", short)
		body = printer.Sprintf("Hi %s, your order status is now %s.", n.Recipient.Name, ev.Status)
	}

	return Message{
		EventType:  ev.EventType(),
		OrderID:    ev.OrderID.String(),
		CustomerID: ev.CustomerID.String(),
		Name:       n.Recipient.Name,
		Phone:      n.Recipient.Phone,
		Subject:    subject,
		Body:       body,
		OccurredAt: ev.OccurredAt(),
	}
}

// FormatAmount renders minor units with the currency symbol, e.g. "₹ 212.40".
// Unknown currency codes fall back to "<CODE> 212.40".
func FormatAmount(cents int64, code string) string {
	major := decimal.New(cents, -2)
	unit, err := currency.ParseISO(code)
	if err != nil {
		return code + " " + major.StringFixed(2)
	}
	return printer.Sprint(currency.Symbol(unit)) + " " + major.StringFixed(2)
}
