// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/your-org/storefront-api/internal/domain/cart"
	"github.com/your-org/storefront-api/internal/domain/order"
	"github.com/your-org/storefront-api/internal/domain/product"
	"github.com/your-org/storefront-api/internal/domain/user"
	"github.com/your-org/storefront-api/internal/pkg/auth"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("Running database auto-migrations...")

	// Dependency order: users and products before carts and orders.
	models := []interface{}{
		&user.User{},
		&product.Product{},
		&cart.Cart{},
		&cart.CartItem{},
		&order.Order{},
		&order.OrderItem{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	log.Println("Database migrations completed")
	return nil
}

// SeedInitialData inserts a development admin, seller and a few
// products when the database is empty
func (m *Migration) SeedInitialData() error {
	var count int64
	if err := m.db.Model(&user.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	log.Println("Seeding initial data...")

	hash, err := bcrypt.GenerateFromPassword([]byte("ChangeMe123!"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	users := []user.User{
		{Email: "admin@example.com", Password: string(hash), FirstName: "Admin", Role: string(auth.RoleAdmin), IsActive: true},
		{Email: "seller@example.com", Password: string(hash), FirstName: "Seller", Role: string(auth.RoleSeller), IsActive: true},
	}
	if err := m.db.Create(&users).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	products := []product.Product{
		{
			Name:        "Classic Cotton T-Shirt",
			Description: "Soft everyday tee in plain cotton",
			Price:       decimal.NewFromFloat(499.00),
			Stock:       50,
			Category:    "clothing",
			SellerID:    users[1].ID,
			IsActive:    true,
		},
		{
			Name:        "Wireless Earbuds",
			Description: "Bluetooth 5.3 earbuds with charging case",
			Price:       decimal.NewFromFloat(1999.00),
			Stock:       25,
			Category:    "electronics",
			SellerID:    users[1].ID,
			IsActive:    true,
		},
	}
	if err := m.db.Create(&products).Error; err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	log.Println("Initial data seeded")
	return nil
}
