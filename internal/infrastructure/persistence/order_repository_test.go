package persistence

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/catalog"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/shared"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var repoBaseTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestOrder(t *testing.T, db *gorm.DB, customerID uuid.UUID, at time.Time) *order.Order {
	t.Helper()

	p := testutil.SeedProduct(t, db, catalog.ProductTypePhysical, 10000, testutil.Int64Ptr(9000), testutil.IntPtr(10))
	addr, err := order.NewAddress(customerID, order.AddressInput{
		Name: "Asha", Phone: "9999999999", Line1: "1 MG Road",
		City: "Pune", State: "MH", PostalCode: "411001",
	})
	require.NoError(t, err)
	addr.ID = uuid.New()
	addr.CreatedAt = at

	o, err := order.NewOrder(customerID, addr, []order.Line{{Product: p, Quantity: 2}}, decimal.NewFromInt(18), "INR", at)
	require.NoError(t, err)
	return o
}

func TestGormOrderRepository_CreateAndFind(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := newTestOrder(t, db, uuid.New(), repoBaseTime)
	require.NoError(t, repo.Create(ctx, o))

	got, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.CustomerID, got.CustomerID)
	assert.Equal(t, int64(18000), got.SubtotalCents)
	assert.Equal(t, int64(3240), got.TaxCents)
	assert.Equal(t, int64(21240), got.TotalCents)
	assert.Equal(t, order.StatusPending, got.Status)
	assert.Equal(t, order.PaymentStatusPending, got.PaymentStatus)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, int64(9000), got.Items[0].UnitPriceCents)
	assert.Equal(t, "Pune", got.Address.City)
	assert.Equal(t, "IN", got.Address.Country)

	locked, err := repo.FindByIDForUpdate(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, locked.Items, 1)
	assert.Equal(t, "1 MG Road", locked.Address.Line1)
}

func TestGormOrderRepository_FindByID_NotFound(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormOrderRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByIDForUpdate(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_SavePersistsTrackingHistory(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := newTestOrder(t, db, uuid.New(), repoBaseTime)
	require.NoError(t, repo.Create(ctx, o))

	require.NoError(t, o.AttachIntent("order_abc", repoBaseTime))
	require.NoError(t, o.MarkPaid("pay_1", "sig", repoBaseTime.Add(time.Minute)))
	require.NoError(t, o.RecordShipment("delhivery", "WB123", "https://track/WB123", repoBaseTime.Add(time.Hour)))
	o.ApplyTrackingUpdate("In Transit", json.RawMessage(`{"Status":"In Transit"}`), repoBaseTime.Add(2*time.Hour))
	require.NoError(t, repo.Save(ctx, o))

	got, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, got.Status)
	assert.Equal(t, "WB123", got.TrackingID)
	assert.Equal(t, "pay_1", got.GatewayPaymentID)
	require.Len(t, got.TrackingHistory, 1)
	assert.Equal(t, "In Transit", got.TrackingHistory[0].Status)
	assert.JSONEq(t, `{"Status":"In Transit"}`, string(got.TrackingHistory[0].Payload))

	orders, err := repo.FindByTrackingIDForUpdate(ctx, "WB123")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, o.ID, orders[0].ID)

	none, err := repo.FindByTrackingIDForUpdate(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGormOrderRepository_Save_NotFound(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormOrderRepository(db)

	o := newTestOrder(t, db, uuid.New(), repoBaseTime)
	assert.ErrorIs(t, repo.Save(context.Background(), o), shared.ErrNotFound)
}

func TestGormOrderRepository_List(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, newTestOrder(t, db, alice, repoBaseTime.Add(time.Duration(i)*time.Hour))))
	}
	require.NoError(t, repo.Create(ctx, newTestOrder(t, db, bob, repoBaseTime)))

	t.Run("scopes by customer newest first", func(t *testing.T) {
		orders, total, err := repo.FindByCustomer(ctx, alice, order.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, orders, 3)
		assert.True(t, orders[0].CreatedAt.After(orders[1].CreatedAt))
		for _, o := range orders {
			assert.Equal(t, alice, o.CustomerID)
			assert.NotEmpty(t, o.Items)
		}
	})

	t.Run("pages", func(t *testing.T) {
		orders, total, err := repo.FindAll(ctx, order.ListFilter{Page: 2, PageSize: 3})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Len(t, orders, 1)
	})

	t.Run("filters by status", func(t *testing.T) {
		orders, total, err := repo.FindAll(ctx, order.ListFilter{Status: order.StatusPaid})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		assert.Empty(t, orders)
	})
}

func TestGormOrderRepository_MarkPaidByIntentID(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	pending := newTestOrder(t, db, uuid.New(), repoBaseTime)
	require.NoError(t, pending.AttachIntent("order_shared", repoBaseTime))
	require.NoError(t, repo.Create(ctx, pending))

	shipped := newTestOrder(t, db, uuid.New(), repoBaseTime)
	require.NoError(t, shipped.AttachIntent("order_shared", repoBaseTime))
	require.NoError(t, shipped.MarkPaid("pay_old", "sig", repoBaseTime))
	require.NoError(t, shipped.RecordShipment("delhivery", "WB1", "", repoBaseTime))
	shipped.ApplyTrackingUpdate("Dispatched", nil, repoBaseTime)
	require.NoError(t, repo.Create(ctx, shipped))

	capturedAt := repoBaseTime.Add(time.Hour)
	n, err := repo.MarkPaidByIntentID(ctx, "order_shared", "pay_new", capturedAt)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := repo.FindByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, got.Status)
	assert.Equal(t, order.PaymentStatusPaid, got.PaymentStatus)
	assert.Equal(t, "pay_new", got.GatewayPaymentID)
	require.NotNil(t, got.PaidAt)
	assert.True(t, got.PaidAt.Equal(capturedAt))
	assert.False(t, got.InventoryAdjusted)

	got, err = repo.FindByID(ctx, shipped.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, got.Status, "status never moves backwards")
	require.NotNil(t, got.PaidAt)
	assert.True(t, got.PaidAt.Equal(repoBaseTime), "original paid time is kept")

	n, err = repo.MarkPaidByIntentID(ctx, "order_missing", "pay_x", capturedAt)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGormOrderRepository_FindByIntentID(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	first := newTestOrder(t, db, uuid.New(), repoBaseTime)
	require.NoError(t, first.AttachIntent("order_lookup", repoBaseTime))
	require.NoError(t, repo.Create(ctx, first))

	second := newTestOrder(t, db, uuid.New(), repoBaseTime.Add(time.Minute))
	require.NoError(t, second.AttachIntent("order_lookup", repoBaseTime))
	require.NoError(t, repo.Create(ctx, second))

	other := newTestOrder(t, db, uuid.New(), repoBaseTime)
	require.NoError(t, other.AttachIntent("order_other", repoBaseTime))
	require.NoError(t, repo.Create(ctx, other))

	got, err := repo.FindByIntentID(ctx, "order_lookup")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)
	assert.NotEmpty(t, got[0].Items)

	got, err = repo.FindByIntentID(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGormOrderRepository_MarkRefundedByPaymentID(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := newTestOrder(t, db, uuid.New(), repoBaseTime)
	require.NoError(t, o.AttachIntent("order_r", repoBaseTime))
	require.NoError(t, o.MarkPaid("pay_r", "sig", repoBaseTime))
	require.NoError(t, repo.Create(ctx, o))

	n, err := repo.MarkRefundedByPaymentID(ctx, "pay_r", "rfnd_1", repoBaseTime.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// A replay keeps the first refund id
	_, err = repo.MarkRefundedByPaymentID(ctx, "pay_r", "rfnd_2", repoBaseTime.Add(2*time.Hour))
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusRefunded, got.PaymentStatus)
	assert.Equal(t, "rfnd_1", got.RefundID)
	require.NotNil(t, got.RefundedAt)
	assert.True(t, got.RefundedAt.Equal(repoBaseTime.Add(time.Hour)))

	// Refunded orders are not flipped back by a late capture event
	n, err = repo.MarkPaidByIntentID(ctx, "order_r", "pay_r", repoBaseTime.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGormOrderRepository_FindSettledBetween(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	paid := newTestOrder(t, db, uuid.New(), repoBaseTime)
	require.NoError(t, paid.MarkPaid("pay_a", "sig", repoBaseTime.Add(time.Hour)))
	require.NoError(t, repo.Create(ctx, paid))

	unpaid := newTestOrder(t, db, uuid.New(), repoBaseTime)
	require.NoError(t, repo.Create(ctx, unpaid))

	later := newTestOrder(t, db, uuid.New(), repoBaseTime)
	require.NoError(t, later.MarkPaid("pay_b", "sig", repoBaseTime.AddDate(0, 1, 0)))
	require.NoError(t, repo.Create(ctx, later))

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	orders, err := repo.FindSettledBetween(ctx, from, from.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, paid.ID, orders[0].ID)
}
