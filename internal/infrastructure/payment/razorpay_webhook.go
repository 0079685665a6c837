package payment

import (
	"encoding/json"

	apporder "github.com/Taitilchheda/Taitil-Graphics-sub001/internal/application/order"
)

type razorpayEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
		Order *struct {
			Entity struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"order"`
		Refund *struct {
			Entity struct {
				ID        string `json:"id"`
				PaymentID string `json:"payment_id"`
			} `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

type webhookVariant func(env *razorpayEnvelope) (apporder.PaymentEvent, bool)

// webhookVariants are tried in order; the first match wins
var webhookVariants = []webhookVariant{
	paymentCaptured,
	orderPaid,
	refundProcessed,
}

// ParseRazorpayWebhook matches body against the known webhook shapes.
// Anything else, including known events with missing ids, is unrecognized.
func ParseRazorpayWebhook(body []byte) apporder.PaymentEvent {
	var env razorpayEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return apporder.PaymentEvent{Kind: apporder.PaymentEventUnrecognized}
	}
	for _, variant := range webhookVariants {
		if ev, ok := variant(&env); ok {
			ev.EventType = env.Event
			return ev
		}
	}
	return apporder.PaymentEvent{Kind: apporder.PaymentEventUnrecognized, EventType: env.Event}
}

func paymentCaptured(env *razorpayEnvelope) (apporder.PaymentEvent, bool) {
	if env.Event != "payment.captured" || env.Payload.Payment == nil {
		return apporder.PaymentEvent{}, false
	}
	p := env.Payload.Payment.Entity
	if p.ID == "" || p.OrderID == "" {
		return apporder.PaymentEvent{}, false
	}
	return apporder.PaymentEvent{Kind: apporder.PaymentEventCaptured, IntentID: p.OrderID, PaymentID: p.ID}, true
}

func orderPaid(env *razorpayEnvelope) (apporder.PaymentEvent, bool) {
	if env.Event != "order.paid" || env.Payload.Order == nil || env.Payload.Payment == nil {
		return apporder.PaymentEvent{}, false
	}
	intentID := env.Payload.Order.Entity.ID
	paymentID := env.Payload.Payment.Entity.ID
	if intentID == "" || paymentID == "" {
		return apporder.PaymentEvent{}, false
	}
	return apporder.PaymentEvent{Kind: apporder.PaymentEventCaptured, IntentID: intentID, PaymentID: paymentID}, true
}

func refundProcessed(env *razorpayEnvelope) (apporder.PaymentEvent, bool) {
	if env.Event != "refund.processed" || env.Payload.Refund == nil {
		return apporder.PaymentEvent{}, false
	}
	r := env.Payload.Refund.Entity
	if r.ID == "" || r.PaymentID == "" {
		return apporder.PaymentEvent{}, false
	}
	return apporder.PaymentEvent{Kind: apporder.PaymentEventRefunded, PaymentID: r.PaymentID, RefundID: r.ID}, true
}
