package order

import (
	"context"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// GetOrder returns an order visible to the principal
func (s *Service) GetOrder(ctx context.Context, p shared.Principal, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && !p.Owns(o.CustomerID) {
		// Hide other customers' orders entirely
		return nil, shared.ErrNotFound
	}
	return o, nil
}

// ListMyOrders lists the principal's own orders
func (s *Service) ListMyOrders(ctx context.Context, p shared.Principal, filter order.ListFilter) ([]*order.Order, int64, error) {
	return s.orders.FindByCustomer(ctx, p.UserID, filter)
}

// ListOrders lists every order for administrators
func (s *Service) ListOrders(ctx context.Context, p shared.Principal, filter order.ListFilter) ([]*order.Order, int64, error) {
	if err := requireAdmin(p); err != nil {
		return nil, 0, err
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, shared.NewDomainError(shared.ErrInvalidInput.Code, "Unknown order status "+string(filter.Status))
	}
	return s.orders.FindAll(ctx, filter)
}
