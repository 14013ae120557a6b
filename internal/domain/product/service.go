// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a product does not exist or is inactive
	ErrNotFound = errors.New("product not found")
)

// Source supplies catalog data. The database-backed service is the
// primary source; a sample catalog can be injected as a fallback for
// degraded operation instead of hardcoding dummy data at call sites.
type Source interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id uint) (*Product, error)
}

// Service handles catalog business logic
type Service struct {
	db       *gorm.DB
	fallback Source
	logger   *logrus.Logger
}

// NewService creates a new product service. fallback may be nil, in
// which case catalog reads fail hard when the database is unreachable.
func NewService(db *gorm.DB, fallback Source, logger *logrus.Logger) *Service {
	return &Service{
		db:       db,
		fallback: fallback,
		logger:   logger,
	}
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int             `json:"stock" binding:"min=0"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
}

// UpdateProductRequest represents product update data
type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Image       *string          `json:"image,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

// List returns all active products, falling back to the injected
// sample source when the database read fails.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	var products []Product
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		if s.fallback != nil {
			s.logger.WithError(err).Warn("catalog read failed, serving fallback data")
			return s.fallback.List(ctx)
		}
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Get returns a single active product by id
func (s *Service) Get(ctx context.Context, id uint) (*Product, error) {
	var prod Product
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&prod).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		if s.fallback != nil {
			s.logger.WithError(err).Warn("catalog read failed, serving fallback data")
			return s.fallback.Get(ctx, id)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &prod, nil
}

// Create adds a new product owned by the given seller
func (s *Service) Create(ctx context.Context, sellerID uint, req *CreateProductRequest) (*Product, error) {
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("price cannot be negative")
	}

	prod := Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Image:       req.Image,
		SellerID:    sellerID,
		IsActive:    true,
	}

	if err := s.db.WithContext(ctx).Create(&prod).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &prod, nil
}

// Update applies a partial update to an existing product
func (s *Service) Update(ctx context.Context, id uint, req *UpdateProductRequest) (*Product, error) {
	var prod Product
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&prod).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("price cannot be negative")
		}
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, fmt.Errorf("stock cannot be negative")
		}
		updates["stock"] = *req.Stock
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return &prod, nil
	}

	if err := s.db.WithContext(ctx).Model(&prod).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &prod, nil
}

// Delete soft-deletes a product
func (s *Service) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
