// internal/domain/payment/service.go
package payment

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-api/internal/domain/order"
)

var (
	// ErrInvalidSignature is returned when the supplied payment
	// signature does not match the expected keyed hash
	ErrInvalidSignature = errors.New("invalid payment signature")
)

// Service reconciles gateway payment confirmations against the order
// ledger
type Service struct {
	orders order.Repository
	secret string
	logger *logrus.Logger
}

// NewService creates a new payment reconciliation service
func NewService(orders order.Repository, secret string, logger *logrus.Logger) *Service {
	return &Service{
		orders: orders,
		secret: secret,
		logger: logger,
	}
}

// VerifyRequest represents a gateway payment confirmation
type VerifyRequest struct {
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// Verify checks the gateway's confirmation for an order and, on a
// valid signature, transitions it pending -> paid and records the
// payment. Re-verifying an already paid order with the same valid
// inputs is a no-op, so client retries are safe. Ownership failures
// surface as order.ErrNotFound.
func (s *Service) Verify(ctx context.Context, orderID, userID uint, req *VerifyRequest) (*order.Order, error) {
	o, err := s.orders.GetForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	if !VerifySignature(o.GatewayOrderID, req.PaymentID, req.Signature, s.secret) {
		s.logger.WithFields(logrus.Fields{
			"order_id":   o.ID,
			"payment_id": req.PaymentID,
		}).Warn("payment signature mismatch")
		return nil, ErrInvalidSignature
	}

	// Idempotent retry: same payment already applied.
	if o.Status == order.StatusPaid && o.PaymentID == req.PaymentID {
		return o, nil
	}

	if !o.Status.CanTransitionTo(order.StatusPaid) {
		return nil, order.ErrInvalidTransition
	}

	o.Status = order.StatusPaid
	o.PaymentID = req.PaymentID
	o.PaymentSignature = req.Signature
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":   o.ID,
		"payment_id": o.PaymentID,
	}).Info("payment verified")

	return o, nil
}
