// internal/domain/product/sample.go
package product

import (
	"context"

	"github.com/shopspring/decimal"
)

// SampleCatalog is a static, in-memory catalog source used as a
// fallback when the database is unreachable. It is injected where
// needed so tests can swap it for any other Source.
type SampleCatalog struct {
	products []Product
}

// NewSampleCatalog returns the built-in demo catalog
func NewSampleCatalog() *SampleCatalog {
	return &SampleCatalog{
		products: []Product{
			{
				ID:          1,
				Name:        "Classic Cotton T-Shirt",
				Description: "Soft everyday tee in plain cotton",
				Price:       decimal.NewFromFloat(499.00),
				Stock:       50,
				Category:    "clothing",
				Image:       "/images/sample/tshirt.jpg",
				IsActive:    true,
			},
			{
				ID:          2,
				Name:        "Wireless Earbuds",
				Description: "Bluetooth 5.3 earbuds with charging case",
				Price:       decimal.NewFromFloat(1999.00),
				Stock:       25,
				Category:    "electronics",
				Image:       "/images/sample/earbuds.jpg",
				IsActive:    true,
			},
			{
				ID:          3,
				Name:        "Stainless Steel Water Bottle",
				Description: "750ml insulated bottle",
				Price:       decimal.NewFromFloat(799.00),
				Stock:       40,
				Category:    "home",
				Image:       "/images/sample/bottle.jpg",
				IsActive:    true,
			},
		},
	}
}

// List returns every sample product
func (c *SampleCatalog) List(_ context.Context) ([]Product, error) {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out, nil
}

// Get returns a sample product by id
func (c *SampleCatalog) Get(_ context.Context, id uint) (*Product, error) {
	for i := range c.products {
		if c.products[i].ID == id {
			p := c.products[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}
