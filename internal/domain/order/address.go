package order

import (
	"strings"
	"time"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultCountry is used when an address omits the country
const DefaultCountry = "IN"

// AddressInput carries the raw fields of a delivery address
type AddressInput struct {
	Name       string
	Phone      string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Address is the delivery address captured at checkout. It is written once
// together with the order and never mutated afterwards.
type Address struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Name       string
	Phone      string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
	CreatedAt  time.Time
}

// NewAddress validates the input and creates an address snapshot
func NewAddress(customerID uuid.UUID, in AddressInput) (Address, error) {
	in = AddressInput{
		Name:       strings.TrimSpace(in.Name),
		Phone:      strings.TrimSpace(in.Phone),
		Line1:      strings.TrimSpace(in.Line1),
		Line2:      strings.TrimSpace(in.Line2),
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Country:    strings.ToUpper(strings.TrimSpace(in.Country)),
	}

	required := []struct {
		field string
		value string
	}{
		{"name", in.Name},
		{"phone", in.Phone},
		{"line1", in.Line1},
		{"city", in.City},
		{"state", in.State},
		{"postal code", in.PostalCode},
	}
	for _, r := range required {
		if r.value == "" {
			return Address{}, shared.NewDomainError("INVALID_ADDRESS", "Address "+r.field+" cannot be empty")
		}
	}
	if len(in.PostalCode) > 20 {
		return Address{}, shared.NewDomainError("INVALID_ADDRESS", "Address postal code cannot exceed 20 characters")
	}
	if in.Country == "" {
		in.Country = DefaultCountry
	}

	return Address{
		ID:         uuid.New(),
		CustomerID: customerID,
		Name:       in.Name,
		Phone:      in.Phone,
		Line1:      in.Line1,
		Line2:      in.Line2,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    in.Country,
		CreatedAt:  time.Now(),
	}, nil
}

// OneLine returns the address formatted on a single line
func (a Address) OneLine() string {
	parts := []string{a.Line1}
	if a.Line2 != "" {
		parts = append(parts, a.Line2)
	}
	parts = append(parts, a.City, a.State+" "+a.PostalCode, a.Country)
	return strings.Join(parts, ", ")
}
