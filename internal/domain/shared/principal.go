package shared

import "github.com/google/uuid"

// Role of an authenticated caller
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// Principal is the resolved identity of the caller. Workflow operations
// receive it explicitly instead of reading request-scoped globals.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// NewPrincipal builds a principal, defaulting an empty role to customer
func NewPrincipal(userID uuid.UUID, role Role) Principal {
	if role == "" {
		role = RoleCustomer
	}
	return Principal{UserID: userID, Role: role}
}

// IsAdmin reports whether the principal carries the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Owns reports whether the principal is the given owner
func (p Principal) Owns(ownerID uuid.UUID) bool {
	return p.UserID != uuid.Nil && p.UserID == ownerID
}
