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

// CheckoutItem is a requested product and quantity
type CheckoutItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// CheckoutRequest is the input of Checkout
type CheckoutRequest struct {
	Address order.AddressInput
	Items   []CheckoutItem
}

// CheckoutResult is returned once the gateway intent exists
type CheckoutResult struct {
	OrderID         uuid.UUID
	GatewayIntentID string
	AmountCents     int64
	Currency        string
}

// Checkout prices the cart, persists a PENDING order and opens a payment
// intent for its total. If the gateway fails the order stays PENDING
// without an intent and ErrPaymentGateway is returned.
func (s *Service) Checkout(ctx context.Context, p shared.Principal, req CheckoutRequest) (result *CheckoutResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "checkout")
	defer func() { s.observe(span, "checkout", err) }()

	if len(req.Items) == 0 {
		return nil, order.ErrEmptyCart
	}
	now := s.clock()

	addr, err := order.NewAddress(p.UserID, req.Address)
	if err != nil {
		return nil, err
	}
	addr.CreatedAt = now

	var placed *order.Order
	err = s.uow.Execute(ctx, func(repos order.TransactionalRepositories) error {
		lines, err := s.resolveLines(ctx, repos.Products(), req.Items)
		if err != nil {
			return err
		}
		o, err := order.NewOrder(p.UserID, addr, lines, s.opts.TaxPercent, s.opts.Currency, now)
		if err != nil {
			return err
		}
		if err := repos.Orders().Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, placed.ID,
		telemetry.SpanAttrCustomerID, p.UserID,
		telemetry.SpanAttrAmount, placed.TotalCents)
	s.logger.Info("Order placed",
		zap.String("order_id", placed.ID.String()),
		zap.String("customer_id", p.UserID.String()),
		zap.Int64("total_cents", placed.TotalCents))
	s.dispatch(ctx, placed)

	intent, err := s.gateway.CreateIntent(ctx, placed.ID.String(), placed.TotalCents, placed.Currency)
	if err != nil {
		s.logger.Error("Failed to create payment intent",
			zap.String("order_id", placed.ID.String()),
			zap.Error(err))
		return nil, ErrPaymentGateway
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrIntentID, intent.ID)
	// The owner may cancel while the gateway call runs; AttachIntent refuses non-PENDING orders
	err = s.uow.Execute(ctx, func(repos order.TransactionalRepositories) error {
		locked, err := repos.Orders().FindByIDForUpdate(ctx, placed.ID)
		if err != nil {
			return err
		}
		if err := locked.AttachIntent(intent.ID, s.clock()); err != nil {
			return err
		}
		if err := repos.Orders().Save(ctx, locked); err != nil {
			return fmt.Errorf("store payment intent: %w", err)
		}
		placed = locked
		return nil
	})
	if err != nil {
		s.logger.Warn("Payment intent not attached",
			zap.String("order_id", placed.ID.String()),
			zap.String("intent_id", intent.ID),
			zap.Error(err))
		return nil, err
	}

	return &CheckoutResult{
		OrderID:         placed.ID,
		GatewayIntentID: intent.ID,
		AmountCents:     placed.TotalCents,
		Currency:        placed.Currency,
	}, nil
}

// resolveLines loads every requested product. A missing id fails the whole cart.
func (s *Service) resolveLines(ctx context.Context, products catalog.ProductRepository, items []CheckoutItem) ([]order.Line, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	found, err := products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	lines := make([]order.Line, 0, len(items))
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, shared.NewDomainError(ErrUnknownProduct.Code, "Product "+it.ProductID.String()+" not found")
		}
		lines = append(lines, order.Line{Product: p, Quantity: it.Quantity})
	}
	return lines, nil
}
