// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the order lifecycle state. Progression is strictly
// forward; delivered and cancelled are terminal.
type Status string

const (
	// StatusPendingCreation is the durable stub persisted before the
	// gateway call so a crash mid-checkout leaves a recoverable trail.
	StatusPendingCreation Status = "pending_creation"
	StatusPending         Status = "pending"
	StatusPaid            Status = "paid"
	StatusShipped         Status = "shipped"
	StatusDelivered       Status = "delivered"
	StatusCancelled       Status = "cancelled"
)

var validTransitions = map[Status][]Status{
	StatusPendingCreation: {StatusPending, StatusCancelled},
	StatusPending:         {StatusPaid, StatusCancelled},
	StatusPaid:            {StatusShipped, StatusCancelled},
	StatusShipped:         {StatusDelivered},
}

// CanTransitionTo reports whether moving from s to next is allowed
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// Address is the shipping address embedded in an order
type Address struct {
	Street     string `gorm:"size:255" json:"street"`
	City       string `gorm:"size:100" json:"city"`
	State      string `gorm:"size:100" json:"state"`
	Country    string `gorm:"size:100" json:"country"`
	PostalCode string `gorm:"size:20" json:"postal_code"`
}

// Order is an append-only snapshot of a cart taken at checkout.
// TotalAmount and the item prices are computed once at creation time;
// later catalog changes never touch them.
type Order struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	Status Status `gorm:"not null;default:'pending_creation';size:20" json:"status"`

	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Currency    string          `gorm:"size:3;default:'INR'" json:"currency"`

	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	PaymentMethod   string  `gorm:"not null;size:20" json:"payment_method"`

	// External payment gateway references
	Receipt          string `gorm:"uniqueIndex;not null;size:64" json:"receipt"`
	GatewayOrderID   string `gorm:"index;size:64" json:"gateway_order_id"`
	PaymentID        string `gorm:"size:64" json:"payment_id,omitempty"`
	PaymentSignature string `gorm:"size:128" json:"-"`

	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// OrderItem is one purchased line with the unit price copied from the
// catalog at purchase time
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Name      string          `gorm:"size:255" json:"name"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	LineTotal decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }
