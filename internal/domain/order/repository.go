package order

import (
	"context"
	"time"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/catalog"
	"github.com/google/uuid"
)

// ListFilter narrows order listings
type ListFilter struct {
	Status   Status
	Page     int
	PageSize int
}

// Normalize applies paging defaults and bounds
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
	return f
}

// Offset returns the row offset for the current page
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// Repository defines persistence for the Order aggregate
type Repository interface {
	// FindByID loads an order with its items and address
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDForUpdate loads an order and holds a row lock until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByTrackingIDForUpdate locks and loads every order carrying the tracking id
	FindByTrackingIDForUpdate(ctx context.Context, trackingID string) ([]*Order, error)

	// FindByIntentID loads every order created with the gateway intent id
	FindByIntentID(ctx context.Context, intentID string) ([]*Order, error)

	// FindByCustomer lists a customer's orders, newest first
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter ListFilter) ([]*Order, int64, error)

	// FindAll lists all orders, newest first
	FindAll(ctx context.Context, filter ListFilter) ([]*Order, int64, error)

	// FindSettledBetween returns paid, shipped or delivered orders whose payment landed in [from, to)
	FindSettledBetween(ctx context.Context, from, to time.Time) ([]*Order, error)

	// Create inserts the order together with its items and address snapshot
	Create(ctx context.Context, o *Order) error

	// Save updates the order row. Items and address are immutable and are not touched.
	Save(ctx context.Context, o *Order) error

	// MarkPaidByIntentID sets every order with the intent id to PAID and returns the affected row count
	MarkPaidByIntentID(ctx context.Context, intentID, paymentID string, at time.Time) (int64, error)

	// MarkRefundedByPaymentID sets every order with the payment id to REFUNDED and returns the affected row count
	MarkRefundedByPaymentID(ctx context.Context, paymentID, refundID string, at time.Time) (int64, error)
}

// UnitOfWork runs a function inside one database transaction. Returning an
// error from fn rolls everything back.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes repositories bound to the current transaction
type TransactionalRepositories interface {
	Orders() Repository
	Products() catalog.ProductRepository
}
