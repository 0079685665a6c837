package models

import (
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the products table
type ProductModel struct {
	BaseModel
	SKU               string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name              string          `gorm:"type:varchar(200);not null"`
	Type              string          `gorm:"type:varchar(16);not null;default:'PHYSICAL'"`
	Stock             *int            `gorm:"column:stock"`
	MRPCents          int64           `gorm:"column:mrp_cents;not null;default:0"`
	ListingPriceCents *int64          `gorm:"column:listing_price_cents"`
	DiscountPercent   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		ID:                m.ID,
		SKU:               m.SKU,
		Name:              m.Name,
		Type:              catalog.ProductType(m.Type),
		Stock:             m.Stock,
		MRPCents:          m.MRPCents,
		ListingPriceCents: m.ListingPriceCents,
		DiscountPercent:   m.DiscountPercent,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	return &ProductModel{
		BaseModel: BaseModel{
			ID:        p.ID,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		},
		SKU:               p.SKU,
		Name:              p.Name,
		Type:              string(p.Type),
		Stock:             p.Stock,
		MRPCents:          p.MRPCents,
		ListingPriceCents: p.ListingPriceCents,
		DiscountPercent:   p.DiscountPercent,
	}
}
