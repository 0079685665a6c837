package catalog

import (
	"strings"
	"time"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductType decides whether a product flows through online checkout
type ProductType string

const (
	ProductTypePhysical ProductType = "PHYSICAL"
	ProductTypeService  ProductType = "SERVICE"
)

// IsValid checks if the product type is known
func (t ProductType) IsValid() bool {
	return t == ProductTypePhysical || t == ProductTypeService
}

var hundred = decimal.NewFromInt(100)

// Product is a catalog entry consumed by the order workflow.
// A nil Stock means the product is not stock-tracked.
type Product struct {
	ID                uuid.UUID
	SKU               string
	Name              string
	Type              ProductType
	Stock             *int
	MRPCents          int64
	ListingPriceCents *int64
	DiscountPercent   decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewProduct creates a new product with an MRP in minor units
func NewProduct(sku, name string, productType ProductType, mrpCents int64) (*Product, error) {
	sku = strings.TrimSpace(sku)
	name = strings.TrimSpace(name)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "Product SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if !productType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PRODUCT_TYPE", "Product type must be PHYSICAL or SERVICE")
	}
	if mrpCents < 0 {
		return nil, shared.NewDomainError("INVALID_PRICE", "MRP cannot be negative")
	}

	now := time.Now()
	return &Product{
		ID:              uuid.New(),
		SKU:             strings.ToUpper(sku),
		Name:            name,
		Type:            productType,
		MRPCents:        mrpCents,
		DiscountPercent: decimal.Zero,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// SetListingPrice sets or clears (nil) the listing price
func (p *Product) SetListingPrice(cents *int64) error {
	if cents != nil && *cents < 0 {
		return shared.NewDomainError("INVALID_PRICE", "Listing price cannot be negative")
	}
	p.ListingPriceCents = cents
	p.UpdatedAt = time.Now()
	return nil
}

// SetDiscountPercent sets the discount applied to the MRP when no listing price is set
func (p *Product) SetDiscountPercent(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount percent must be between 0 and 100")
	}
	p.DiscountPercent = pct
	p.UpdatedAt = time.Now()
	return nil
}

// SetStock sets the tracked stock; nil makes the product untracked
func (p *Product) SetStock(stock *int) error {
	if stock != nil && *stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	p.Stock = stock
	p.UpdatedAt = time.Now()
	return nil
}

// IsPhysical reports whether the product ships through the carrier
func (p *Product) IsPhysical() bool {
	return p.Type == ProductTypePhysical
}

// TracksStock reports whether stock is counted for this product
func (p *Product) TracksStock() bool {
	return p.Stock != nil
}

// EffectivePriceCents returns the unit price charged at checkout: the listing
// price when set and positive, otherwise MRP less the discount, floored.
func (p *Product) EffectivePriceCents() int64 {
	if p.ListingPriceCents != nil && *p.ListingPriceCents > 0 {
		return *p.ListingPriceCents
	}
	mrp := decimal.NewFromInt(p.MRPCents)
	factor := hundred.Sub(p.DiscountPercent).Div(hundred)
	return mrp.Mul(factor).Floor().IntPart()
}

// HasStockFor reports whether qty units can be sold. Untracked products always can.
func (p *Product) HasStockFor(qty int) bool {
	if p.Stock == nil {
		return true
	}
	return *p.Stock >= qty
}

// DecrementStock removes qty units, clamping at zero. No-op for untracked products.
func (p *Product) DecrementStock(qty int) {
	if p.Stock == nil {
		return
	}
	next := *p.Stock - qty
	if next < 0 {
		next = 0
	}
	p.Stock = &next
	p.UpdatedAt = time.Now()
}

// RestoreStock adds qty units back onto the current stock. No-op for untracked products.
func (p *Product) RestoreStock(qty int) {
	if p.Stock == nil {
		return
	}
	next := *p.Stock + qty
	p.Stock = &next
	p.UpdatedAt = time.Now()
}
