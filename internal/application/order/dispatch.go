package order

import (
	"context"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/order"
	"go.uber.org/zap"
)

// analyticsNames maps domain event types to analytics event names
var analyticsNames = map[string]string{
	order.EventTypeOrderPlaced:     "order_placed",
	order.EventTypeOrderPaid:       "payment_verified",
	order.EventTypeOrderCancelled:  "order_cancelled",
	order.EventTypeShipmentCreated: "shipment_created",
	order.EventTypeOrderShipped:    "order_shipped",
	order.EventTypeOrderDelivered:  "order_delivered",
	order.EventTypeOrderRefunded:   "order_refunded",
}

// dispatch drains the order's pending events into analytics and
// notifications. It must only be called after the owning transaction
// committed; failures are logged and never returned.
func (s *Service) dispatch(ctx context.Context, o *order.Order) {
	events := o.GetDomainEvents()
	o.ClearDomainEvents()

	for _, ev := range events {
		oe, ok := ev.(*order.OrderEvent)
		if !ok {
			continue
		}
		s.track(ctx, oe)
		s.notify(ctx, oe, o.Address)
	}
}

func (s *Service) track(ctx context.Context, ev *order.OrderEvent) {
	name, ok := analyticsNames[ev.EventType()]
	if !ok {
		return
	}
	props := map[string]any{
		"order_id":    ev.OrderID.String(),
		"customer_id": ev.CustomerID.String(),
		"status":      string(ev.Status),
		"total_cents": ev.TotalCents,
		"currency":    ev.Currency,
		"item_count":  ev.ItemCount,
	}
	if ev.PaymentID != "" {
		props["payment_id"] = ev.PaymentID
	}
	if ev.TrackingID != "" {
		props["tracking_id"] = ev.TrackingID
	}
	if err := s.analytics.Track(ctx, name, props); err != nil {
		s.logger.Warn("Failed to track analytics event",
			zap.String("event", name),
			zap.String("order_id", ev.OrderID.String()),
			zap.Error(err))
	}
}

func (s *Service) notify(ctx context.Context, ev *order.OrderEvent, recipient order.Address) {
	if err := s.notifier.Notify(ctx, Notification{Event: ev, Recipient: recipient}); err != nil {
		s.logger.Warn("Failed to send notification",
			zap.String("event_type", ev.EventType()),
			zap.String("order_id", ev.OrderID.String()),
			zap.Error(err))
	}
}
