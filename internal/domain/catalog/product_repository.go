package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds multiple products by their IDs. Missing ids are simply absent from the result.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindByIDForUpdate loads a product and holds a row lock until the surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)

	// UpdateStock persists the product's stock column only
	UpdateStock(ctx context.Context, product *Product) error

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error
}
