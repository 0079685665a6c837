package order

import (
	"context"
	"fmt"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/catalog"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/shared"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CancelOrder cancels a customer's order inside the cancellation window
// and puts previously decremented stock back.
func (s *Service) CancelOrder(ctx context.Context, p shared.Principal, orderID uuid.UUID) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "cancel_order")
	defer func() { s.observe(span, "cancel_order", err) }()
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderID, orderID)

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if err := o.CheckCancellable(p, s.clock()); err != nil {
		return err
	}

	var cancelled *order.Order
	var restored bool
	err = s.uow.Execute(ctx, func(repos order.TransactionalRepositories) error {
		locked, err := repos.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		restore, err := locked.Cancel(p, s.clock())
		if err != nil {
			return err
		}
		if restore {
			if err := s.adjustStock(ctx, repos.Products(), locked.Items, func(p *catalog.Product, qty int) {
				p.RestoreStock(qty)
			}); err != nil {
				return err
			}
		}
		if err := repos.Orders().Save(ctx, locked); err != nil {
			return fmt.Errorf("save order: %w", err)
		}
		cancelled = locked
		restored = restore
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Order cancelled",
		zap.String("order_id", orderID.String()),
		zap.Bool("stock_restored", restored))
	s.dispatch(ctx, cancelled)
	return nil
}
