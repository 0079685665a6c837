package order

import (
	"context"
	"errors"
	"testing"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/catalog"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/shared"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/persistence/models"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Checkout(t *testing.T) {
	h := newHarness(t)
	pen := h.product(t, 25000, testutil.IntPtr(10))
	ink := testutil.SeedProduct(t, h.db, catalog.ProductTypePhysical, 1000, testutil.Int64Ptr(899), nil)

	res := h.checkout(t, h.customer, item(pen, 2), item(ink, 1))

	assert.NotEmpty(t, res.GatewayIntentID)
	assert.Equal(t, "INR", res.Currency)
	// subtotal 50899, tax floor(50899*18/100) = 9161
	assert.Equal(t, int64(60060), res.AmountCents)

	o := h.load(t, res.OrderID)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, order.PaymentStatusPending, o.PaymentStatus)
	assert.Equal(t, res.GatewayIntentID, o.GatewayIntentID)
	assert.Equal(t, int64(50899), o.SubtotalCents)
	assert.Equal(t, int64(9161), o.TaxCents)
	assert.Equal(t, o.SubtotalCents+o.TaxCents, o.TotalCents)
	assert.False(t, o.InventoryAdjusted)
	assert.Len(t, o.Items, 2)

	assert.Equal(t, 10, *testutil.ProductStock(t, h.db, pen.ID), "checkout does not reserve stock")
	assert.Equal(t, []string{order.EventTypeOrderPlaced}, h.notifier.Types())
	assert.Equal(t, []string{"order_placed"}, h.tracker.Names())
}

func TestService_Checkout_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		items    func(h *harness) []CheckoutItem
		wantCode string
	}{
		{
			name:     "empty cart",
			items:    func(h *harness) []CheckoutItem { return nil },
			wantCode: "EMPTY_CART",
		},
		{
			name: "unknown product",
			items: func(h *harness) []CheckoutItem {
				return []CheckoutItem{item(h.product(t, 100, nil), 1), {ProductID: uuid.New(), Quantity: 1}}
			},
			wantCode: "UNKNOWN_PRODUCT",
		},
		{
			name: "service product fails the whole cart",
			items: func(h *harness) []CheckoutItem {
				svc := testutil.SeedProduct(t, h.db, catalog.ProductTypeService, 5000, nil, nil)
				return []CheckoutItem{item(h.product(t, 100, nil), 1), item(svc, 1)}
			},
			wantCode: "SERVICE_NOT_ALLOWED",
		},
		{
			name: "insufficient stock",
			items: func(h *harness) []CheckoutItem {
				return []CheckoutItem{item(h.product(t, 100, testutil.IntPtr(1)), 2)}
			},
			wantCode: "INSUFFICIENT_STOCK",
		},
		{
			name: "duplicate lines are merged before the stock check",
			items: func(h *harness) []CheckoutItem {
				p := h.product(t, 100, testutil.IntPtr(3))
				return []CheckoutItem{item(p, 2), item(p, 2)}
			},
			wantCode: "INSUFFICIENT_STOCK",
		},
		{
			name: "zero quantity",
			items: func(h *harness) []CheckoutItem {
				return []CheckoutItem{item(h.product(t, 100, nil), 0)}
			},
			wantCode: "INVALID_QUANTITY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.svc.Checkout(context.Background(), h.customer, CheckoutRequest{
				Address: testAddress(),
				Items:   tt.items(h),
			})
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errorCode(err))

			var count int64
			require.NoError(t, h.db.Model(&models.OrderModel{}).Count(&count).Error)
			assert.Zero(t, count, "nothing is persisted on rejection")
			assert.Zero(t, h.gateway.intents)
		})
	}
}

func TestService_Checkout_InvalidAddress(t *testing.T) {
	h := newHarness(t)
	addr := testAddress()
	addr.City = " "

	_, err := h.svc.Checkout(context.Background(), h.customer, CheckoutRequest{
		Address: addr,
		Items:   []CheckoutItem{item(h.product(t, 100, nil), 1)},
	})
	assert.Equal(t, "INVALID_ADDRESS", errorCode(err))
}

func TestService_Checkout_GatewayFailure(t *testing.T) {
	h := newHarness(t)
	h.gateway.intentErr = errors.New("connection refused")
	p := h.product(t, 1000, testutil.IntPtr(5))

	_, err := h.svc.Checkout(context.Background(), h.customer, CheckoutRequest{
		Address: testAddress(),
		Items:   []CheckoutItem{item(p, 1)},
	})
	assert.ErrorIs(t, err, ErrPaymentGateway)

	orders, total, err := h.orders.FindByCustomer(context.Background(), h.customer.UserID, order.ListFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, order.StatusPending, orders[0].Status)
	assert.Empty(t, orders[0].GatewayIntentID)
}

func TestService_Checkout_CancelledWhileIntentCreated(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.product(t, 1000, testutil.IntPtr(5))
	h.gateway.onIntent = func(receipt string) {
		require.NoError(t, h.svc.CancelOrder(ctx, h.customer, uuid.MustParse(receipt)))
	}

	_, err := h.svc.Checkout(ctx, h.customer, CheckoutRequest{
		Address: testAddress(),
		Items:   []CheckoutItem{item(p, 1)},
	})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	orders, total, err := h.orders.FindByCustomer(ctx, h.customer.UserID, order.ListFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, order.StatusCancelled, orders[0].Status, "cancellation survives the intent")
	assert.Empty(t, orders[0].GatewayIntentID)
}
