package order

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/catalog"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/shared"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VerifyPaymentRequest carries the checkout callback values returned by the gateway widget
type VerifyPaymentRequest struct {
	OrderID   uuid.UUID
	IntentID  string
	PaymentID string
	Signature string
}

// VerifyPayment authenticates the client-side payment callback, marks the
// order PAID and decrements stock exactly once.
func (s *Service) VerifyPayment(ctx context.Context, p shared.Principal, req VerifyPaymentRequest) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "verify_payment")
	defer func() { s.observe(span, "verify_payment", err) }()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, req.OrderID,
		telemetry.SpanAttrIntentID, req.IntentID,
		telemetry.SpanAttrPaymentID, req.PaymentID)

	if !s.gateway.VerifyPaymentSignature(req.IntentID, req.PaymentID, req.Signature) {
		s.logger.Warn("Payment signature mismatch, possible forgery",
			zap.String("order_id", req.OrderID.String()),
			zap.String("intent_id", req.IntentID),
			zap.String("payment_id", req.PaymentID),
			zap.String("user_id", p.UserID.String()))
		return ErrInvalidSignature
	}

	o, err := s.orders.FindByID(ctx, req.OrderID)
	if err != nil {
		return err
	}
	if !p.Owns(o.CustomerID) {
		return shared.NewDomainError(shared.ErrForbidden.Code, "Order belongs to another customer")
	}
	if o.GatewayIntentID == "" || o.GatewayIntentID != req.IntentID {
		return ErrIntentMismatch
	}

	if o.IsPaid() {
		s.notify(ctx, order.NewOrderPaidEvent(o, s.clock()), o.Address)
		return nil
	}

	var paid *order.Order
	err = s.uow.Execute(ctx, func(repos order.TransactionalRepositories) error {
		locked, err := repos.Orders().FindByIDForUpdate(ctx, o.ID)
		if err != nil {
			return err
		}
		if locked.IsPaid() {
			paid = locked
			return nil
		}
		now := s.clock()
		if err := locked.MarkPaid(req.PaymentID, req.Signature, now); err != nil {
			return err
		}
		if locked.NeedsInventoryAdjustment() {
			if err := s.adjustStock(ctx, repos.Products(), locked.Items, func(p *catalog.Product, qty int) {
				p.DecrementStock(qty)
			}); err != nil {
				return err
			}
			if err := locked.MarkInventoryAdjusted(now); err != nil {
				return err
			}
		}
		if err := repos.Orders().Save(ctx, locked); err != nil {
			return fmt.Errorf("save order: %w", err)
		}
		paid = locked
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Payment verified",
		zap.String("order_id", paid.ID.String()),
		zap.String("payment_id", req.PaymentID))

	if len(paid.GetDomainEvents()) == 0 {
		// Paid concurrently between the read and the lock
		s.notify(ctx, order.NewOrderPaidEvent(paid, s.clock()), paid.Address)
	}
	s.dispatch(ctx, paid)

	if s.opts.AutoShip {
		if _, err := s.createShipment(ctx, paid.ID); err != nil {
			s.logger.Warn("Automatic shipment creation failed",
				zap.String("order_id", paid.ID.String()),
				zap.Error(err))
		}
	}
	return nil
}

// adjustStock locks each product row in id order and applies fn. Products
// that no longer exist are skipped.
func (s *Service) adjustStock(ctx context.Context, products catalog.ProductRepository, items []order.Item, fn func(*catalog.Product, int)) error {
	sorted := make([]order.Item, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ProductID.String() < sorted[j].ProductID.String()
	})

	for _, it := range sorted {
		p, err := products.FindByIDForUpdate(ctx, it.ProductID)
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Skipping stock adjustment for missing product",
				zap.String("product_id", it.ProductID.String()))
			continue
		}
		if err != nil {
			return fmt.Errorf("lock product %s: %w", it.ProductID, err)
		}
		if !p.TracksStock() {
			continue
		}
		fn(p, it.Quantity)
		p.UpdatedAt = s.clock()
		if err := products.UpdateStock(ctx, p); err != nil {
			return fmt.Errorf("update stock for %s: %w", it.ProductID, err)
		}
	}
	return nil
}

// HandlePaymentWebhook authenticates and applies a gateway webhook.
// Captured payments mark every order with the intent PAID without touching
// stock; processed refunds mark every order with the payment REFUNDED.
// Unrecognized events and duplicate event ids are acknowledged and ignored.
func (s *Service) HandlePaymentWebhook(ctx context.Context, body []byte, signature, eventID string) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "payment_webhook")
	defer func() { s.observe(span, "payment_webhook", err) }()

	if !s.gateway.VerifyWebhookSignature(body, signature) {
		s.logger.Warn("Payment webhook signature mismatch", zap.String("event_id", eventID))
		return ErrInvalidSignature
	}

	dedupKey := ""
	if eventID != "" && s.dedup != nil {
		dedupKey = "payment-webhook:" + eventID
		seen, err := s.dedup.IsProcessed(ctx, dedupKey)
		if err != nil {
			s.logger.Warn("Webhook dedup lookup failed", zap.String("event_id", eventID), zap.Error(err))
		} else if seen {
			s.logger.Info("Duplicate payment webhook ignored", zap.String("event_id", eventID))
			return nil
		}
	}

	ev := s.gateway.ParseWebhookEvent(body)
	telemetry.SetAttributes(span, telemetry.SpanAttrEventType, ev.EventType)
	now := s.clock()
	var rows int64
	switch ev.Kind {
	case PaymentEventCaptured:
		rows, err = s.orders.MarkPaidByIntentID(ctx, ev.IntentID, ev.PaymentID, now)
	case PaymentEventRefunded:
		rows, err = s.orders.MarkRefundedByPaymentID(ctx, ev.PaymentID, ev.RefundID, now)
	default:
		s.logger.Info("Ignoring unrecognized payment webhook", zap.String("event_type", ev.EventType))
		return nil
	}
	if err != nil {
		return fmt.Errorf("apply %s webhook: %w", ev.Kind, err)
	}
	if ev.Kind == PaymentEventCaptured && rows > 0 {
		s.flagCancelledCaptures(ctx, ev.IntentID, ev.PaymentID)
	}

	s.logger.Info("Payment webhook applied",
		zap.String("event_type", ev.EventType),
		zap.String("intent_id", ev.IntentID),
		zap.String("payment_id", ev.PaymentID),
		zap.Int64("rows", rows))

	if trackErr := s.analytics.Track(ctx, "payment_webhook", map[string]any{
		"event_type": ev.EventType,
		"intent_id":  ev.IntentID,
		"payment_id": ev.PaymentID,
		"rows":       rows,
	}); trackErr != nil {
		s.logger.Warn("Failed to track analytics event", zap.String("event", "payment_webhook"), zap.Error(trackErr))
	}

	if dedupKey != "" {
		if _, markErr := s.dedup.MarkProcessed(ctx, dedupKey, s.opts.WebhookDedupTTL); markErr != nil {
			s.logger.Warn("Failed to record webhook event id", zap.String("event_id", eventID), zap.Error(markErr))
		}
	}
	return nil
}

// flagCancelledCaptures warns about orders cancelled before their payment was
// captured. Their stock was already restored, so only a refund is owed.
func (s *Service) flagCancelledCaptures(ctx context.Context, intentID, paymentID string) {
	orders, err := s.orders.FindByIntentID(ctx, intentID)
	if err != nil {
		s.logger.Warn("Failed to load captured orders", zap.String("intent_id", intentID), zap.Error(err))
		return
	}
	for _, o := range orders {
		if o.Status != order.StatusCancelled {
			continue
		}
		s.logger.Warn("Payment captured for a cancelled order, refund required",
			zap.String("order_id", o.ID.String()),
			zap.String("intent_id", intentID),
			zap.String("payment_id", paymentID))
	}
}
