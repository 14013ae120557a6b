// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-api/internal/domain/cart"
	"github.com/your-org/storefront-api/internal/pkg/gateway"
)

var (
	// ErrNotFound covers both absent orders and orders owned by another
	// user, so cross-user lookups leak nothing
	ErrNotFound = errors.New("order not found")
	// ErrEmptyCart is returned when checkout is attempted on an empty cart
	ErrEmptyCart = errors.New("cart is empty")
	// ErrGatewayUnavailable is returned when the payment gateway call fails
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrCartUnavailable is returned when checkout cannot reach the
	// authoritative cart store
	ErrCartUnavailable = errors.New("cart store unavailable")
	// ErrInvalidTransition is returned for a disallowed status change
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrUnresolvedItem is returned when a cart line cannot be priced
	// against the catalog at checkout time
	ErrUnresolvedItem = errors.New("cart contains an unavailable product")
)

// CartSource is the slice of the cart API checkout needs
type CartSource interface {
	GetCart(ctx context.Context, userID uint) (*cart.Snapshot, error)
	Clear(ctx context.Context, userID uint) (*cart.Snapshot, error)
}

// Gateway registers payment intents with the external processor
type Gateway interface {
	CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (*gateway.Order, error)
}

// Service handles the order ledger
type Service struct {
	repo     Repository
	carts    CartSource
	gateway  Gateway
	currency string
	logger   *logrus.Logger
}

// NewService creates a new order service
func NewService(repo Repository, carts CartSource, gw Gateway, currency string, logger *logrus.Logger) *Service {
	return &Service{
		repo:     repo,
		carts:    carts,
		gateway:  gw,
		currency: currency,
		logger:   logger,
	}
}

// CreateOrderRequest represents checkout data
type CreateOrderRequest struct {
	ShippingAddress Address `json:"shipping_address" binding:"required"`
	PaymentMethod   string  `json:"payment_method" binding:"required,oneof=razorpay cod"`
}

// CreateFromCart snapshots the user's cart into a new order.
//
// The order is persisted as a pending_creation stub before the gateway
// call, so a crash between steps leaves a durable record to recover
// from. Only after the gateway accepts the intent does the order move
// to pending and the cart get cleared. A gateway failure cancels the
// stub and leaves the cart untouched for retry.
//
// Stock is intentionally not decremented here; concurrent checkouts
// can oversell. See the stock regression test.
func (s *Service) CreateFromCart(ctx context.Context, userID uint, req *CreateOrderRequest) (*Order, error) {
	snap, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	// A degraded snapshot came from the local mirror and carries prices
	// from the last sync, and clearing would hit the mirror only.
	// Orders are minted from the authoritative cart or not at all.
	if snap.Degraded {
		return nil, ErrCartUnavailable
	}
	if snap.IsEmpty() {
		return nil, ErrEmptyCart
	}

	o := &Order{
		UserID:          userID,
		Status:          StatusPendingCreation,
		Currency:        s.currency,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Receipt:         fmt.Sprintf("rcpt_%s", uuid.New().String()),
		TotalAmount:     decimal.Zero,
	}

	for _, line := range snap.Items {
		if line.Name == "" && line.UnitPrice.IsZero() {
			return nil, ErrUnresolvedItem
		}
		o.Items = append(o.Items, OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal,
		})
		o.TotalAmount = o.TotalAmount.Add(line.LineTotal)
	}

	// Durable stub first: a gateway-side intent must never exist
	// without a local record pointing at it.
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	gwOrder, err := s.gateway.CreateOrder(ctx, gateway.CreateOrderRequest{
		Amount:   minorUnits(o.TotalAmount),
		Currency: o.Currency,
		Receipt:  o.Receipt,
		Notes:    map[string]string{"order_id": fmt.Sprintf("%d", o.ID)},
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", o.ID).
			Error("gateway order creation failed, cancelling stub")
		o.Status = StatusCancelled
		if saveErr := s.repo.Save(ctx, o); saveErr != nil {
			s.logger.WithError(saveErr).WithField("order_id", o.ID).
				Error("failed to cancel order stub")
		}
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	o.GatewayOrderID = gwOrder.ID
	o.Status = StatusPending
	if err := s.repo.Save(ctx, o); err != nil {
		return nil, err
	}

	// Clear the cart only after the order is durably committed. A
	// failure here leaves a stale cart, not a lost order.
	if _, err := s.carts.Clear(ctx, userID); err != nil {
		s.logger.WithError(err).WithField("order_id", o.ID).
			Warn("failed to clear cart after order creation")
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":         o.ID,
		"user_id":          userID,
		"total_amount":     o.TotalAmount.String(),
		"gateway_order_id": o.GatewayOrderID,
	}).Info("order created")

	return o, nil
}

// Get returns one order owned by userID
func (s *Service) Get(ctx context.Context, id, userID uint) (*Order, error) {
	return s.repo.GetForUser(ctx, id, userID)
}

// ListForUser returns the user's orders, most recent first
func (s *Service) ListForUser(ctx context.Context, userID uint) ([]Order, error) {
	return s.repo.ListForUser(ctx, userID)
}

// ListAll returns every order. Access control happens at the boundary.
func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	return s.repo.ListAll(ctx)
}

// UpdateStatus applies an admin-driven status transition on any order
func (s *Service) UpdateStatus(ctx context.Context, id uint, next Status) (*Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, o, next)
}

func (s *Service) transition(ctx context.Context, o *Order, next Status) (*Order, error) {
	if !o.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}

	now := time.Now().UTC()
	switch next {
	case StatusShipped:
		o.ShippedAt = &now
	case StatusDelivered:
		o.DeliveredAt = &now
	}
	o.Status = next

	if err := s.repo.Save(ctx, o); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": o.ID,
		"status":   o.Status,
	}).Info("order status updated")

	return o, nil
}

// minorUnits converts a decimal amount to the currency's minor unit
// (10.00 -> 1000) as the gateway requires
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
