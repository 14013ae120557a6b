// internal/domain/cart/service_test.go
package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-api/internal/domain/product"
)

// memRepo is an in-memory cart repository for tests. Setting fail makes
// every call return that error, simulating an unreachable store.
type memRepo struct {
	mu     sync.Mutex
	carts  map[uint]*Cart
	nextID uint
	fail   error
}

func newMemRepo() *memRepo {
	return &memRepo{carts: map[uint]*Cart{}, nextID: 1}
}

func (r *memRepo) FindOrCreate(_ context.Context, userID uint) (*Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	return copyCart(r.findOrCreateLocked(userID)), nil
}

func (r *memRepo) Mutate(_ context.Context, userID uint, fn func(*Cart) error) (*Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	c := copyCart(r.findOrCreateLocked(userID))
	if err := fn(c); err != nil {
		return nil, err
	}
	c.Version++
	r.carts[userID] = copyCart(c)
	return c, nil
}

func (r *memRepo) findOrCreateLocked(userID uint) *Cart {
	if c, ok := r.carts[userID]; ok {
		return c
	}
	c := &Cart{ID: r.nextID, UserID: userID}
	r.nextID++
	r.carts[userID] = c
	return c
}

func copyCart(c *Cart) *Cart {
	out := *c
	out.Items = append([]CartItem(nil), c.Items...)
	return &out
}

// memProducts is an in-memory catalog for tests
type memProducts struct {
	products map[uint]product.Product
}

func (m *memProducts) Get(_ context.Context, id uint) (*product.Product, error) {
	if p, ok := m.products[id]; ok {
		return &p, nil
	}
	return nil, product.ErrNotFound
}

func testCatalog() *memProducts {
	return &memProducts{products: map[uint]product.Product{
		1: {ID: 1, Name: "Notebook", Price: decimal.NewFromFloat(10.00), IsActive: true},
		2: {ID: 2, Name: "Desk Lamp", Price: decimal.NewFromFloat(25.00), IsActive: true},
	}}
}

func newTestService() (*Service, *memRepo, *memProducts) {
	repo := newMemRepo()
	catalog := testCatalog()
	return NewService(repo, catalog), repo, catalog
}

func TestGetCartCreatesEmptyCart(t *testing.T) {
	svc, _, _ := newTestService()

	snap, err := svc.GetCart(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, uint(7), snap.UserID)
	assert.True(t, snap.IsEmpty())
	assert.Equal(t, 0, snap.TotalQuantity)
	assert.True(t, snap.Subtotal.IsZero())
}

func TestAddItemComputesTotals(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 1, 1, 2)
	require.NoError(t, err)
	snap, err := svc.AddItem(ctx, 1, 2, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.ItemCount)
	assert.Equal(t, 3, snap.TotalQuantity)
	assert.True(t, snap.Subtotal.Equal(decimal.NewFromFloat(45.00)),
		"expected subtotal 45.00, got %s", snap.Subtotal)
}

func TestAddItemSumsExistingLine(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 1, 1, 2)
	require.NoError(t, err)
	snap, err := svc.AddItem(ctx, 1, 1, 3)
	require.NoError(t, err)

	require.Len(t, snap.Items, 1)
	assert.Equal(t, 5, snap.Items[0].Quantity)
}

func TestAddItemInvalidQuantity(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	for _, qty := range []int{0, -1, -100} {
		_, err := svc.AddItem(ctx, 1, 1, qty)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "quantity %d", qty)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.AddItem(context.Background(), 1, 999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestSetQuantityOverwrites(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 1, 1, 2)
	require.NoError(t, err)

	snap, err := svc.SetQuantity(ctx, 1, 1, 7)
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 7, snap.Items[0].Quantity)
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 1, 1, 2)
	require.NoError(t, err)

	snap, err := svc.SetQuantity(ctx, 1, 1, 0)
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())
}

func TestSetQuantityAbsentLine(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	// Positive quantity on an absent line is an error, never an
	// implicit add.
	_, err := svc.SetQuantity(ctx, 1, 1, 3)
	assert.ErrorIs(t, err, ErrItemNotFound)

	// Zero quantity on an absent line is a no-op.
	snap, err := svc.SetQuantity(ctx, 1, 1, 0)
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())
}

func TestRemoveItemIdempotent(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 1, 1, 2)
	require.NoError(t, err)

	snap, err := svc.RemoveItem(ctx, 1, 1)
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())

	// Removing again is not an error.
	snap, err = svc.RemoveItem(ctx, 1, 1)
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())
}

func TestClearEmptiesCart(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 1, 1, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 1, 2, 1)
	require.NoError(t, err)

	snap, err := svc.Clear(ctx, 1)
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())

	// Clearing an empty cart is a no-op.
	snap, err = svc.Clear(ctx, 1)
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())
}

func TestItemCountTotalsQuantities(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 1, 1, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 1, 2, 3)
	require.NoError(t, err)

	count, err := svc.ItemCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestVersionBumpsOnEveryMutation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	s1, err := svc.AddItem(ctx, 1, 1, 1)
	require.NoError(t, err)
	s2, err := svc.SetQuantity(ctx, 1, 1, 4)
	require.NoError(t, err)

	assert.Greater(t, s2.Version, s1.Version)
}

func TestUnresolvableLineKeepsReference(t *testing.T) {
	svc, _, catalog := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 1, 1, 2)
	require.NoError(t, err)

	// Product vanishes from the catalog after it was added.
	delete(catalog.products, 1)

	snap, err := svc.GetCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, uint(1), snap.Items[0].ProductID)
	assert.Equal(t, 2, snap.Items[0].Quantity)
	assert.Empty(t, snap.Items[0].Name)
	assert.True(t, snap.Items[0].UnitPrice.IsZero())
	assert.True(t, snap.Subtotal.IsZero())
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 1, 1, 2)
	require.NoError(t, err)

	snap, err := svc.GetCart(ctx, 2)
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())
}

func TestRepoErrorSurfaces(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.fail = errors.New("connection refused")

	_, err := svc.GetCart(context.Background(), 1)
	assert.Error(t, err)
}
