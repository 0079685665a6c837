// Package models contains GORM-specific persistence models that map to database tables.
// Domain types stay free of ORM tags; mappers in this package convert between
// the two and repositories only ever hand domain values to callers.
//
// Structure:
// - base.go: shared columns
// - catalog.go: products
// - order.go: orders, order items, addresses
// - schema.go: the model list used by AutoMigrate
package models
