package order

import (
	"context"
	"testing"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Queries(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	other := shared.NewPrincipal(uuid.New(), shared.RoleCustomer)

	mine := h.checkout(t, h.customer, item(h.product(t, 1000, nil), 1))
	h.checkout(t, other, item(h.product(t, 1000, nil), 1))

	t.Run("owner sees the order", func(t *testing.T) {
		o, err := h.svc.GetOrder(ctx, h.customer, mine.OrderID)
		require.NoError(t, err)
		assert.Equal(t, mine.OrderID, o.ID)
	})

	t.Run("other customers get not found", func(t *testing.T) {
		_, err := h.svc.GetOrder(ctx, other, mine.OrderID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("admin sees any order", func(t *testing.T) {
		_, err := h.svc.GetOrder(ctx, h.admin, mine.OrderID)
		assert.NoError(t, err)
	})

	t.Run("customer listing is scoped", func(t *testing.T) {
		orders, total, err := h.svc.ListMyOrders(ctx, h.customer, order.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, mine.OrderID, orders[0].ID)
	})

	t.Run("admin listing", func(t *testing.T) {
		_, total, err := h.svc.ListOrders(ctx, h.admin, order.ListFilter{Status: order.StatusPending})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)

		_, _, err = h.svc.ListOrders(ctx, h.admin, order.ListFilter{Status: "LOST"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, _, err = h.svc.ListOrders(ctx, h.customer, order.ListFilter{})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}
