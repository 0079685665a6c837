package models

import "gorm.io/gorm"

// All returns every persistence model, parents before children
func All() []any {
	return []any{
		&ProductModel{},
		&AddressModel{},
		&OrderModel{},
		&OrderItemModel{},
	}
}

// AutoMigrate creates or updates the tables for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
