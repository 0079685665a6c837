package persistence

import (
	"context"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/catalog"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/order"
	"gorm.io/gorm"
)

// GormUnitOfWork implements order.UnitOfWork using GORM transactions.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork.
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Execute runs fn within a database transaction. The transaction is rolled
// back if fn returns an error or panics, and committed otherwise.
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(repos order.TransactionalRepositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Orders returns the order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Orders() order.Repository {
	return NewGormOrderRepository(r.tx)
}

// Products returns the product repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// Ensure GormUnitOfWork implements UnitOfWork
var _ order.UnitOfWork = (*GormUnitOfWork)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ order.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
