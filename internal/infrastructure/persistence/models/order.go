package models

import (
	"encoding/json"
	"time"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/order"
	"github.com/google/uuid"
)

// AddressModel is the persistence model for the addresses table
type AddressModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(120);not null"`
	Phone      string    `gorm:"type:varchar(32);not null"`
	Line1      string    `gorm:"type:varchar(255);not null"`
	Line2      string    `gorm:"type:varchar(255)"`
	City       string    `gorm:"type:varchar(100);not null"`
	State      string    `gorm:"type:varchar(100);not null"`
	PostalCode string    `gorm:"type:varchar(20);not null"`
	Country    string    `gorm:"type:varchar(2);not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AddressModel) TableName() string {
	return "addresses"
}

// ToDomain converts the persistence model to a domain Address
func (m *AddressModel) ToDomain() order.Address {
	return order.Address{
		ID:         m.ID,
		CustomerID: m.CustomerID,
		Name:       m.Name,
		Phone:      m.Phone,
		Line1:      m.Line1,
		Line2:      m.Line2,
		City:       m.City,
		State:      m.State,
		PostalCode: m.PostalCode,
		Country:    m.Country,
		CreatedAt:  m.CreatedAt,
	}
}

// AddressModelFromDomain creates a persistence model from a domain Address
func AddressModelFromDomain(a order.Address) *AddressModel {
	return &AddressModel{
		ID:         a.ID,
		CustomerID: a.CustomerID,
		Name:       a.Name,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		CreatedAt:  a.CreatedAt,
	}
}

// OrderModel is the persistence model for the orders table
type OrderModel struct {
	BaseModel
	CustomerID    uuid.UUID `gorm:"type:uuid;not null;index"`
	AddressID     uuid.UUID `gorm:"type:uuid;not null"`
	Currency      string    `gorm:"type:varchar(3);not null"`
	SubtotalCents int64     `gorm:"not null"`
	TaxCents      int64     `gorm:"not null"`
	TotalCents    int64     `gorm:"not null"`
	Status        string    `gorm:"type:varchar(16);not null;index"`
	PaymentStatus string    `gorm:"type:varchar(16);not null"`

	GatewayIntentID  string `gorm:"type:varchar(64);index"`
	GatewayPaymentID string `gorm:"type:varchar(64);index"`
	GatewaySignature string `gorm:"type:varchar(128)"`

	InventoryAdjusted bool `gorm:"not null;default:false"`

	ShippingProvider  string `gorm:"type:varchar(32)"`
	ShippingStatus    string `gorm:"type:varchar(64)"`
	TrackingID        string `gorm:"type:varchar(64);index"`
	TrackingURL       string `gorm:"type:varchar(255)"`
	TrackingHistory   string `gorm:"type:text"`
	ShipmentCreatedAt *time.Time
	ShippingUpdatedAt *time.Time
	ShippingError     string `gorm:"type:text"`
	ShippingErrorAt   *time.Time

	PaidAt     *time.Time `gorm:"index"`
	RefundedAt *time.Time
	RefundID   string `gorm:"type:varchar(64)"`

	Address *AddressModel    `gorm:"foreignKey:AddressID"`
	Items   []OrderItemModel `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		ID:                m.ID,
		CustomerID:        m.CustomerID,
		Currency:          m.Currency,
		SubtotalCents:     m.SubtotalCents,
		TaxCents:          m.TaxCents,
		TotalCents:        m.TotalCents,
		Status:            order.Status(m.Status),
		PaymentStatus:     order.PaymentStatus(m.PaymentStatus),
		GatewayIntentID:   m.GatewayIntentID,
		GatewayPaymentID:  m.GatewayPaymentID,
		GatewaySignature:  m.GatewaySignature,
		InventoryAdjusted: m.InventoryAdjusted,
		ShippingProvider:  m.ShippingProvider,
		ShippingStatus:    m.ShippingStatus,
		TrackingID:        m.TrackingID,
		TrackingURL:       m.TrackingURL,
		ShipmentCreatedAt: m.ShipmentCreatedAt,
		ShippingUpdatedAt: m.ShippingUpdatedAt,
		ShippingError:     m.ShippingError,
		ShippingErrorAt:   m.ShippingErrorAt,
		PaidAt:            m.PaidAt,
		RefundedAt:        m.RefundedAt,
		RefundID:          m.RefundID,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.TrackingHistory != "" {
		// A corrupt history blob must not make the order unreadable.
		_ = json.Unmarshal([]byte(m.TrackingHistory), &o.TrackingHistory)
	}
	if m.Address != nil {
		o.Address = m.Address.ToDomain()
	} else {
		o.Address.ID = m.AddressID
	}
	o.Items = make([]order.Item, len(m.Items))
	for i := range m.Items {
		o.Items[i] = m.Items[i].ToDomain()
	}
	return o
}

// OrderModelFromDomain creates a persistence model from a domain Order.
// Items and address are mapped as well so Create can insert them.
func OrderModelFromDomain(o *order.Order) (*OrderModel, error) {
	var history string
	if len(o.TrackingHistory) > 0 {
		b, err := json.Marshal(o.TrackingHistory)
		if err != nil {
			return nil, err
		}
		history = string(b)
	}

	m := &OrderModel{
		BaseModel: BaseModel{
			ID:        o.ID,
			CreatedAt: o.CreatedAt,
			UpdatedAt: o.UpdatedAt,
		},
		CustomerID:        o.CustomerID,
		AddressID:         o.Address.ID,
		Currency:          o.Currency,
		SubtotalCents:     o.SubtotalCents,
		TaxCents:          o.TaxCents,
		TotalCents:        o.TotalCents,
		Status:            string(o.Status),
		PaymentStatus:     string(o.PaymentStatus),
		GatewayIntentID:   o.GatewayIntentID,
		GatewayPaymentID:  o.GatewayPaymentID,
		GatewaySignature:  o.GatewaySignature,
		InventoryAdjusted: o.InventoryAdjusted,
		ShippingProvider:  o.ShippingProvider,
		ShippingStatus:    o.ShippingStatus,
		TrackingID:        o.TrackingID,
		TrackingURL:       o.TrackingURL,
		TrackingHistory:   history,
		ShipmentCreatedAt: o.ShipmentCreatedAt,
		ShippingUpdatedAt: o.ShippingUpdatedAt,
		ShippingError:     o.ShippingError,
		ShippingErrorAt:   o.ShippingErrorAt,
		PaidAt:            o.PaidAt,
		RefundedAt:        o.RefundedAt,
		RefundID:          o.RefundID,
		Address:           AddressModelFromDomain(o.Address),
	}
	m.Items = make([]OrderItemModel, len(o.Items))
	for i, it := range o.Items {
		m.Items[i] = *OrderItemModelFromDomain(it)
	}
	return m, nil
}

// OrderItemModel is the persistence model for the order_items table
type OrderItemModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductName    string    `gorm:"type:varchar(200);not null"`
	Quantity       int       `gorm:"not null"`
	UnitPriceCents int64     `gorm:"not null"`
	LineTotalCents int64     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Item
func (m *OrderItemModel) ToDomain() order.Item {
	return order.Item{
		ID:             m.ID,
		OrderID:        m.OrderID,
		ProductID:      m.ProductID,
		ProductName:    m.ProductName,
		Quantity:       m.Quantity,
		UnitPriceCents: m.UnitPriceCents,
		LineTotalCents: m.LineTotalCents,
	}
}

// OrderItemModelFromDomain creates a persistence model from a domain Item
func OrderItemModelFromDomain(it order.Item) *OrderItemModel {
	return &OrderItemModel{
		ID:             it.ID,
		OrderID:        it.OrderID,
		ProductID:      it.ProductID,
		ProductName:    it.ProductName,
		Quantity:       it.Quantity,
		UnitPriceCents: it.UnitPriceCents,
		LineTotalCents: it.LineTotalCents,
	}
}
