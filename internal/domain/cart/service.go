// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/your-org/storefront-api/internal/domain/product"
)

var (
	// ErrInvalidQuantity is returned for add/update with a non-positive
	// or otherwise unusable quantity
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	// ErrItemNotFound is returned when setting a positive quantity on a
	// line that is not in the cart
	ErrItemNotFound = errors.New("item not found in cart")
	// ErrProductNotFound is returned when the referenced product does
	// not exist or is inactive
	ErrProductNotFound = errors.New("product not found or inactive")
)

// ProductSource resolves product references for cart display and
// validation. Implemented by the catalog service.
type ProductSource interface {
	Get(ctx context.Context, id uint) (*product.Product, error)
}

// Service handles cart business logic against the authoritative store.
// Every mutation persists immediately and returns the resolved
// snapshot of the new state.
type Service struct {
	repo     Repository
	products ProductSource
}

// NewService creates a new cart service
func NewService(repo Repository, products ProductSource) *Service {
	return &Service{
		repo:     repo,
		products: products,
	}
}

// GetCart returns the user's cart, creating an empty one on first access
func (s *Service) GetCart(ctx context.Context, userID uint) (*Snapshot, error) {
	cart, err := s.repo.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, cart), nil
}

// AddItem adds quantity of a product to the cart. If the product is
// already present the quantities are summed; a product never appears
// on more than one line.
func (s *Service) AddItem(ctx context.Context, userID, productID uint, quantity int) (*Snapshot, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	if _, err := s.products.Get(ctx, productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	cart, err := s.repo.Mutate(ctx, userID, func(c *Cart) error {
		if i := c.findItem(productID); i >= 0 {
			c.Items[i].Quantity += quantity
		} else {
			c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: quantity})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, cart), nil
}

// SetQuantity overwrites the quantity of an existing line. A quantity
// of zero or less removes the line (and is a no-op when the line is
// already absent). Setting a positive quantity on an absent line fails
// with ErrItemNotFound rather than creating it implicitly.
func (s *Service) SetQuantity(ctx context.Context, userID, productID uint, quantity int) (*Snapshot, error) {
	cart, err := s.repo.Mutate(ctx, userID, func(c *Cart) error {
		i := c.findItem(productID)
		if quantity <= 0 {
			if i >= 0 {
				c.removeItemAt(i)
			}
			return nil
		}
		if i < 0 {
			return ErrItemNotFound
		}
		c.Items[i].Quantity = quantity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, cart), nil
}

// RemoveItem removes a line from the cart. Removing an absent line is
// not an error.
func (s *Service) RemoveItem(ctx context.Context, userID, productID uint) (*Snapshot, error) {
	return s.SetQuantity(ctx, userID, productID, 0)
}

// Clear empties the cart. Clearing an empty cart is a no-op.
func (s *Service) Clear(ctx context.Context, userID uint) (*Snapshot, error) {
	cart, err := s.repo.Mutate(ctx, userID, func(c *Cart) error {
		c.Items = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, cart), nil
}

// ItemCount returns the total quantity across all lines
func (s *Service) ItemCount(ctx context.Context, userID uint) (int, error) {
	snap, err := s.GetCart(ctx, userID)
	if err != nil {
		return 0, err
	}
	return snap.TotalQuantity, nil
}

// resolve denormalizes the cart against the catalog and computes
// totals. Lines whose product can no longer be resolved keep their
// reference and quantity but carry no display details.
func (s *Service) resolve(ctx context.Context, c *Cart) *Snapshot {
	snap := &Snapshot{
		UserID:    c.UserID,
		Version:   c.Version,
		Items:     make([]LineItem, 0, len(c.Items)),
		Subtotal:  decimal.Zero,
		UpdatedAt: c.UpdatedAt,
	}

	for _, item := range c.Items {
		line := LineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: decimal.Zero,
			LineTotal: decimal.Zero,
		}
		if prod, err := s.products.Get(ctx, item.ProductID); err == nil {
			line.Name = prod.Name
			line.Image = prod.Image
			line.UnitPrice = prod.Price
			line.LineTotal = prod.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		snap.Items = append(snap.Items, line)
		snap.TotalQuantity += item.Quantity
		snap.Subtotal = snap.Subtotal.Add(line.LineTotal)
	}
	snap.ItemCount = len(snap.Items)

	return snap
}
