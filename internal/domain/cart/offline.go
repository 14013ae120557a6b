// internal/domain/cart/offline.go
package cart

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// API is the cart surface the HTTP layer consumes. Implemented by both
// Service and FallbackService.
type API interface {
	GetCart(ctx context.Context, userID uint) (*Snapshot, error)
	AddItem(ctx context.Context, userID, productID uint, quantity int) (*Snapshot, error)
	SetQuantity(ctx context.Context, userID, productID uint, quantity int) (*Snapshot, error)
	RemoveItem(ctx context.Context, userID, productID uint) (*Snapshot, error)
	Clear(ctx context.Context, userID uint) (*Snapshot, error)
	ItemCount(ctx context.Context, userID uint) (int, error)
}

// FallbackService wraps the authoritative cart service with the local
// mirror. Successful server round trips overwrite the mirror; when the
// server is unreachable the mutation is applied to the mirror instead
// and the cart enters degraded mode until the next successful round
// trip. Mutations queued in the mirror during an outage are NOT
// replayed to the server; the mirror's dirty flag is how that
// divergence stays observable.
type FallbackService struct {
	server API
	mirror *MirrorStore
	logger *logrus.Logger
}

// NewFallbackService creates the mirror-backed cart facade
func NewFallbackService(server API, mirror *MirrorStore, logger *logrus.Logger) *FallbackService {
	return &FallbackService{
		server: server,
		mirror: mirror,
		logger: logger,
	}
}

// domainError reports whether err is a validation/lookup failure that
// must surface to the caller rather than trigger the local fallback.
func domainError(err error) bool {
	return errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrProductNotFound)
}

// GetCart fetches the server cart, falling back to the mirror when the
// server is unreachable. A successful fetch re-syncs the mirror, which
// drops any offline-only mutations (last writer wins).
func (s *FallbackService) GetCart(ctx context.Context, userID uint) (*Snapshot, error) {
	snap, err := s.server.GetCart(ctx, userID)
	if err != nil {
		return s.serveFromMirror(ctx, userID, err)
	}
	s.syncMirror(ctx, snap)
	return snap, nil
}

// AddItem adds to the server cart, or to the mirror in degraded mode
func (s *FallbackService) AddItem(ctx context.Context, userID, productID uint, quantity int) (*Snapshot, error) {
	snap, err := s.server.AddItem(ctx, userID, productID, quantity)
	if err != nil {
		if domainError(err) {
			return nil, err
		}
		return s.mutateMirror(ctx, userID, err, func(mc *MirrorCart) error {
			if quantity <= 0 {
				return ErrInvalidQuantity
			}
			if i := mc.findItem(productID); i >= 0 {
				mc.Items[i].Quantity += quantity
			} else {
				mc.Items = append(mc.Items, MirrorItem{ProductID: productID, Quantity: quantity})
			}
			return nil
		})
	}
	s.syncMirror(ctx, snap)
	return snap, nil
}

// SetQuantity updates a line on the server cart, or on the mirror in
// degraded mode
func (s *FallbackService) SetQuantity(ctx context.Context, userID, productID uint, quantity int) (*Snapshot, error) {
	snap, err := s.server.SetQuantity(ctx, userID, productID, quantity)
	if err != nil {
		if domainError(err) {
			return nil, err
		}
		return s.mutateMirror(ctx, userID, err, func(mc *MirrorCart) error {
			i := mc.findItem(productID)
			if quantity <= 0 {
				if i >= 0 {
					mc.Items = append(mc.Items[:i], mc.Items[i+1:]...)
				}
				return nil
			}
			if i < 0 {
				return ErrItemNotFound
			}
			mc.Items[i].Quantity = quantity
			return nil
		})
	}
	s.syncMirror(ctx, snap)
	return snap, nil
}

// RemoveItem removes a line, locally when the server is unreachable
func (s *FallbackService) RemoveItem(ctx context.Context, userID, productID uint) (*Snapshot, error) {
	return s.SetQuantity(ctx, userID, productID, 0)
}

// Clear empties the cart, locally when the server is unreachable
func (s *FallbackService) Clear(ctx context.Context, userID uint) (*Snapshot, error) {
	snap, err := s.server.Clear(ctx, userID)
	if err != nil {
		if domainError(err) {
			return nil, err
		}
		return s.mutateMirror(ctx, userID, err, func(mc *MirrorCart) error {
			mc.Items = []MirrorItem{}
			return nil
		})
	}
	s.syncMirror(ctx, snap)
	return snap, nil
}

// ItemCount returns the total quantity, served from the mirror in
// degraded mode
func (s *FallbackService) ItemCount(ctx context.Context, userID uint) (int, error) {
	snap, err := s.GetCart(ctx, userID)
	if err != nil {
		return 0, err
	}
	return snap.TotalQuantity, nil
}

// syncMirror overwrites the mirror after a successful server round
// trip. Mirror write failures are logged, never surfaced: the server
// answer is already authoritative.
func (s *FallbackService) syncMirror(ctx context.Context, snap *Snapshot) {
	if err := s.mirror.Save(ctx, FromSnapshot(snap)); err != nil {
		s.logger.WithError(err).WithField("user_id", snap.UserID).
			Warn("failed to sync cart mirror")
	}
}

// serveFromMirror answers a read from the mirror after a server failure
func (s *FallbackService) serveFromMirror(ctx context.Context, userID uint, cause error) (*Snapshot, error) {
	mc, err := s.mirror.Load(ctx, userID)
	if err != nil {
		// Both sides down; report the original failure.
		return nil, cause
	}
	s.logger.WithError(cause).WithField("user_id", userID).
		Warn("cart store unreachable, serving local mirror")
	return mc.ToSnapshot(), nil
}

// mutateMirror applies a mutation to the mirror after a server failure
// and marks it dirty
func (s *FallbackService) mutateMirror(ctx context.Context, userID uint, cause error, fn func(*MirrorCart) error) (*Snapshot, error) {
	mc, err := s.mirror.Load(ctx, userID)
	if err != nil {
		return nil, cause
	}
	if err := fn(mc); err != nil {
		return nil, err
	}
	mc.Dirty = true
	if err := s.mirror.Save(ctx, mc); err != nil {
		return nil, cause
	}
	s.logger.WithError(cause).WithField("user_id", userID).
		Warn("cart store unreachable, mutation applied to local mirror")
	return mc.ToSnapshot(), nil
}
