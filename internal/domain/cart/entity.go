// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the server-authoritative cart. Exactly one cart exists per
// user (unique index on user_id); it is created lazily on first access
// and cleared rather than deleted. Version increases on every mutation
// so mirrors can detect divergence.
type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Version   int64      `gorm:"not null;default:0" json:"version"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem is one line of a cart. A product appears at most once per
// cart; adding an existing product increments its quantity.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_product" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (Cart) TableName() string     { return "carts" }
func (CartItem) TableName() string { return "cart_items" }

// findItem returns the index of the line for productID, or -1
func (c *Cart) findItem(productID uint) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// removeItemAt drops the line at index i
func (c *Cart) removeItemAt(i int) {
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

// LineItem is a cart line resolved against the catalog for display
type LineItem struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Image     string          `json:"image,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Snapshot is the fully resolved cart returned from every operation.
// Degraded is true when the snapshot was served from the local mirror
// because the authoritative store was unreachable; Dirty is true when
// the mirror holds mutations the server has not seen yet.
type Snapshot struct {
	UserID        uint            `json:"user_id"`
	Version       int64           `json:"version"`
	Items         []LineItem      `json:"items"`
	ItemCount     int             `json:"item_count"`
	TotalQuantity int             `json:"total_quantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Degraded      bool            `json:"degraded"`
	Dirty         bool            `json:"dirty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsEmpty reports whether the snapshot has no lines
func (s *Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}
