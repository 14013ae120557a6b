// internal/pkg/auth/principal.go
package auth

// Role is an account role
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// Principal is the resolved identity of an authenticated request.
// It is produced once at the boundary from the bearer token; handlers
// and services consult its capability methods instead of comparing
// role strings at call sites.
type Principal struct {
	UserID uint
	Email  string
	Role   Role
}

// CanManageCatalog reports whether the principal may create or edit
// products
func (p Principal) CanManageCatalog() bool {
	return p.Role == RoleSeller || p.Role == RoleAdmin
}

// CanViewAllOrders reports whether the principal may read every
// user's orders
func (p Principal) CanViewAllOrders() bool {
	return p.Role == RoleSeller || p.Role == RoleAdmin
}

// CanManageOrders reports whether the principal may drive order status
// transitions
func (p Principal) CanManageOrders() bool {
	return p.Role == RoleAdmin
}
