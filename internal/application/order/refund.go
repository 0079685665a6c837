package order

import (
	"context"
	"fmt"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/shared"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RefundOrder refunds the full captured amount through the gateway and
// records the refund. The order row stays locked across the gateway call so
// concurrent refunds of one order reach the gateway once. The later refund
// webhook for the same payment is a no-op.
func (s *Service) RefundOrder(ctx context.Context, p shared.Principal, orderID uuid.UUID) (result *order.Order, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "refund_order")
	defer func() { s.observe(span, "refund_order", err) }()

	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	var (
		refunded *order.Order
		refund   *Refund
	)
	err = s.uow.Execute(ctx, func(repos order.TransactionalRepositories) error {
		locked, err := repos.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		telemetry.SetAttributes(span,
			telemetry.SpanAttrOrderID, locked.ID,
			telemetry.SpanAttrOrderStatus, locked.Status)
		if locked.PaymentStatus == order.PaymentStatusRefunded {
			return ErrAlreadyRefunded
		}
		if err := locked.CheckRefundable(); err != nil {
			return err
		}

		refund, err = s.gateway.CreateRefund(ctx, locked.GatewayPaymentID, locked.ID.String(), locked.TotalCents)
		if err != nil {
			s.logger.Error("Gateway refund failed",
				zap.String("order_id", orderID.String()),
				zap.String("payment_id", locked.GatewayPaymentID),
				zap.Error(err))
			return ErrPaymentGateway
		}

		if err := locked.MarkRefunded(refund.ID, s.clock()); err != nil {
			return err
		}
		if err := repos.Orders().Save(ctx, locked); err != nil {
			return fmt.Errorf("save order: %w", err)
		}
		refunded = locked
		return nil
	})
	if err != nil {
		if refund != nil {
			s.logger.Error("Refund issued but not recorded",
				zap.String("order_id", orderID.String()),
				zap.String("refund_id", refund.ID),
				zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("Order refunded",
		zap.String("order_id", orderID.String()),
		zap.String("refund_id", refund.ID))
	s.dispatch(ctx, refunded)
	return refunded, nil
}
