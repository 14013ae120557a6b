// internal/domain/cart/repository.go
package cart

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists carts. Mutate serializes concurrent writers on
// the same cart so two racing updates are both reflected instead of
// one clobbering the other.
type Repository interface {
	// FindOrCreate returns the user's cart, creating an empty one on
	// first access. Safe under concurrent first access.
	FindOrCreate(ctx context.Context, userID uint) (*Cart, error)
	// Mutate loads the user's cart under a row lock, applies fn to it
	// and persists the result with a bumped version. An error from fn
	// aborts the transaction with no state change.
	Mutate(ctx context.Context, userID uint, fn func(*Cart) error) (*Cart, error)
}

// GormRepository is the Postgres-backed cart repository
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new cart repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// FindOrCreate returns the existing cart for userID or creates an
// empty one. The unique index on user_id makes concurrent first access
// converge on a single cart.
func (r *GormRepository) FindOrCreate(ctx context.Context, userID uint) (*Cart, error) {
	db := r.db.WithContext(ctx)

	// Insert is a no-op when a cart already exists for the user.
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&Cart{UserID: userID}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	var cart Cart
	err = db.Where("user_id = ?", userID).First(&cart).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	if err := r.loadItems(db, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// Mutate runs fn against the cart inside a transaction holding a row
// lock on the cart record. Items are rewritten wholesale; the version
// column is incremented so mirrors can detect the change.
func (r *GormRepository) Mutate(ctx context.Context, userID uint, fn func(*Cart) error) (*Cart, error) {
	var out *Cart

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&Cart{UserID: userID}).Error
		if err != nil {
			return fmt.Errorf("failed to create cart: %w", err)
		}

		var cart Cart
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&cart).Error
		if err != nil {
			return fmt.Errorf("failed to lock cart: %w", err)
		}

		if err := r.loadItems(tx, &cart); err != nil {
			return err
		}

		if err := fn(&cart); err != nil {
			return err
		}

		// Rewrite the line items under the lock.
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart items: %w", err)
		}
		for i := range cart.Items {
			cart.Items[i].ID = 0
			cart.Items[i].CartID = cart.ID
		}
		if len(cart.Items) > 0 {
			if err := tx.Create(&cart.Items).Error; err != nil {
				return fmt.Errorf("failed to save cart items: %w", err)
			}
		}

		cart.Version++
		err = tx.Model(&Cart{}).
			Where("id = ?", cart.ID).
			Update("version", cart.Version).Error
		if err != nil {
			return fmt.Errorf("failed to bump cart version: %w", err)
		}

		out = &cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepository) loadItems(db *gorm.DB, cart *Cart) error {
	err := db.Where("cart_id = ?", cart.ID).Order("id").Find(&cart.Items).Error
	if err != nil {
		return fmt.Errorf("failed to load cart items: %w", err)
	}
	return nil
}
