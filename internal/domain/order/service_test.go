// internal/domain/order/service_test.go
package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-api/internal/domain/cart"
	"github.com/your-org/storefront-api/internal/pkg/gateway"
)

// memOrderRepo is an in-memory order repository for tests
type memOrderRepo struct {
	mu     sync.Mutex
	orders map[uint]*Order
	nextID uint
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: map[uint]*Order{}, nextID: 1}
}

func (r *memOrderRepo) Create(_ context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = r.nextID
	r.nextID++
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	stored := *o
	r.orders[o.ID] = &stored
	return nil
}

func (r *memOrderRepo) Save(_ context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *o
	r.orders[o.ID] = &stored
	return nil
}

func (r *memOrderRepo) GetForUser(_ context.Context, id, userID uint) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.UserID != userID {
		return nil, ErrNotFound
	}
	out := *o
	return &out, nil
}

func (r *memOrderRepo) Get(_ context.Context, id uint) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *o
	return &out, nil
}

func (r *memOrderRepo) ListForUser(_ context.Context, userID uint) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *memOrderRepo) ListAll(_ context.Context) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Order
	for _, o := range r.orders {
		out = append(out, *o)
	}
	sortNewestFirst(out)
	return out, nil
}

// sortNewestFirst matches the repository contract of created_at DESC
func sortNewestFirst(orders []Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

// fakeCarts serves preset snapshots keyed by user and records clears
type fakeCarts struct {
	snapshots map[uint]*cart.Snapshot
	cleared   []uint
	failGet   error
}

func (f *fakeCarts) GetCart(_ context.Context, userID uint) (*cart.Snapshot, error) {
	if f.failGet != nil {
		return nil, f.failGet
	}
	if snap, ok := f.snapshots[userID]; ok {
		return snap, nil
	}
	return &cart.Snapshot{UserID: userID, Items: []cart.LineItem{}}, nil
}

func (f *fakeCarts) Clear(_ context.Context, userID uint) (*cart.Snapshot, error) {
	f.cleared = append(f.cleared, userID)
	f.snapshots[userID] = &cart.Snapshot{UserID: userID, Items: []cart.LineItem{}}
	return f.snapshots[userID], nil
}

// fakeGateway records requests and can be switched to fail
type fakeGateway struct {
	requests []gateway.CreateOrderRequest
	fail     error
}

func (f *fakeGateway) CreateOrder(_ context.Context, req gateway.CreateOrderRequest) (*gateway.Order, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.requests = append(f.requests, req)
	return &gateway.Order{ID: "order_gw123", Amount: req.Amount, Currency: req.Currency, Status: "created"}, nil
}

func line(productID uint, name string, price float64, qty int) cart.LineItem {
	p := decimal.NewFromFloat(price)
	return cart.LineItem{
		ProductID: productID,
		Name:      name,
		UnitPrice: p,
		Quantity:  qty,
		LineTotal: p.Mul(decimal.NewFromInt(int64(qty))),
	}
}

func testSnapshot(userID uint) *cart.Snapshot {
	return &cart.Snapshot{
		UserID: userID,
		Items: []cart.LineItem{
			line(1, "Notebook", 10.00, 2),
			line(2, "Desk Lamp", 25.00, 1),
		},
	}
}

func testAddress() Address {
	return Address{
		Street:     "12 MG Road",
		City:       "Bengaluru",
		State:      "Karnataka",
		Country:    "India",
		PostalCode: "560001",
	}
}

func newOrderFixture() (*Service, *memOrderRepo, *fakeCarts, *fakeGateway) {
	repo := newMemOrderRepo()
	carts := &fakeCarts{snapshots: map[uint]*cart.Snapshot{1: testSnapshot(1)}}
	gw := &fakeGateway{}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewService(repo, carts, gw, "INR", logger), repo, carts, gw
}

func TestCreateFromCart(t *testing.T) {
	svc, repo, carts, gw := newOrderFixture()
	ctx := context.Background()

	o, err := svc.CreateFromCart(ctx, 1, &CreateOrderRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   "razorpay",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromFloat(45.00)),
		"expected total 45.00, got %s", o.TotalAmount)
	assert.Equal(t, "order_gw123", o.GatewayOrderID)
	assert.True(t, strings.HasPrefix(o.Receipt, "rcpt_"))
	require.Len(t, o.Items, 2)

	// Gateway was asked for the amount in minor units.
	require.Len(t, gw.requests, 1)
	assert.Equal(t, int64(4500), gw.requests[0].Amount)
	assert.Equal(t, "INR", gw.requests[0].Currency)

	// Cart cleared after the order was committed.
	assert.Equal(t, []uint{1}, carts.cleared)

	stored, err := repo.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
}

func TestCreateFromCartEmpty(t *testing.T) {
	svc, _, _, _ := newOrderFixture()

	_, err := svc.CreateFromCart(context.Background(), 2, &CreateOrderRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   "razorpay",
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateFromCartGatewayFailure(t *testing.T) {
	svc, repo, carts, gw := newOrderFixture()
	ctx := context.Background()
	gw.fail = errors.New("gateway timeout")

	_, err := svc.CreateFromCart(ctx, 1, &CreateOrderRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   "razorpay",
	})
	require.ErrorIs(t, err, ErrGatewayUnavailable)

	// The durable stub was cancelled, not deleted.
	orders, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, StatusCancelled, orders[0].Status)

	// The cart is untouched so the user can retry.
	assert.Empty(t, carts.cleared)
	snap, err := carts.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 2)
}

func TestCreateFromCartUnresolvedItem(t *testing.T) {
	svc, repo, carts, _ := newOrderFixture()
	ctx := context.Background()

	// A line that lost its catalog entry has no name and a zero price.
	carts.snapshots[1].Items = append(carts.snapshots[1].Items, cart.LineItem{
		ProductID: 99,
		Quantity:  1,
		UnitPrice: decimal.Zero,
		LineTotal: decimal.Zero,
	})

	_, err := svc.CreateFromCart(ctx, 1, &CreateOrderRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   "razorpay",
	})
	require.ErrorIs(t, err, ErrUnresolvedItem)

	orders, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderTotalsImmuneToLaterPriceChanges(t *testing.T) {
	svc, repo, carts, _ := newOrderFixture()
	ctx := context.Background()

	o, err := svc.CreateFromCart(ctx, 1, &CreateOrderRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   "razorpay",
	})
	require.NoError(t, err)

	// Catalog price doubles after checkout; the recorded order keeps
	// the prices it snapshotted.
	carts.snapshots[1] = &cart.Snapshot{
		UserID: 1,
		Items:  []cart.LineItem{line(1, "Notebook", 20.00, 2)},
	}

	stored, err := repo.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Equal(decimal.NewFromFloat(45.00)))
	assert.True(t, stored.Items[0].UnitPrice.Equal(decimal.NewFromFloat(10.00)))
}

func TestConcurrentCheckoutsBothSucceed(t *testing.T) {
	svc, repo, carts, _ := newOrderFixture()
	ctx := context.Background()

	// Stock is not reserved or decremented at checkout, so two users
	// buying the same scarce product both get orders. Oversell is
	// resolved later in fulfilment, not here.
	carts.snapshots[1] = &cart.Snapshot{UserID: 1, Items: []cart.LineItem{line(5, "Last Unit", 99.00, 1)}}
	carts.snapshots[2] = &cart.Snapshot{UserID: 2, Items: []cart.LineItem{line(5, "Last Unit", 99.00, 1)}}

	req := &CreateOrderRequest{ShippingAddress: testAddress(), PaymentMethod: "razorpay"}
	_, err := svc.CreateFromCart(ctx, 1, req)
	require.NoError(t, err)
	_, err = svc.CreateFromCart(ctx, 2, req)
	require.NoError(t, err)

	orders, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestCreateFromCartRejectsDegradedSnapshot(t *testing.T) {
	svc, repo, carts, gw := newOrderFixture()
	ctx := context.Background()

	// The cart facade answered from its local mirror: prices date from
	// the last sync and a clear would never reach the real cart.
	carts.snapshots[1].Degraded = true
	carts.snapshots[1].Dirty = true

	_, err := svc.CreateFromCart(ctx, 1, &CreateOrderRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   "razorpay",
	})
	require.ErrorIs(t, err, ErrCartUnavailable)

	// Nothing was minted, charged, or cleared.
	orders, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, gw.requests)
	assert.Empty(t, carts.cleared)
}

func TestListForUserMostRecentFirst(t *testing.T) {
	svc, repo, _, _ := newOrderFixture()
	ctx := context.Background()

	base := time.Now().UTC()
	for i, offset := range []time.Duration{-2 * time.Hour, 0, -time.Hour} {
		o := &Order{
			UserID:    1,
			Status:    StatusPending,
			Receipt:   fmt.Sprintf("rcpt_order_%d", i),
			CreatedAt: base.Add(offset),
		}
		require.NoError(t, repo.Create(ctx, o))
	}

	orders, err := svc.ListForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.True(t, orders[0].CreatedAt.After(orders[1].CreatedAt))
	assert.True(t, orders[1].CreatedAt.After(orders[2].CreatedAt))
}

func TestGetCrossUserHidden(t *testing.T) {
	svc, _, _, _ := newOrderFixture()
	ctx := context.Background()

	o, err := svc.CreateFromCart(ctx, 1, &CreateOrderRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   "razorpay",
	})
	require.NoError(t, err)

	// Another user cannot tell this order apart from a missing one.
	_, err = svc.Get(ctx, o.ID, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusLifecycle(t *testing.T) {
	svc, _, _, _ := newOrderFixture()
	ctx := context.Background()

	o, err := svc.CreateFromCart(ctx, 1, &CreateOrderRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   "razorpay",
	})
	require.NoError(t, err)

	o, err = svc.UpdateStatus(ctx, o.ID, StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, o.Status)

	o, err = svc.UpdateStatus(ctx, o.ID, StatusShipped)
	require.NoError(t, err)
	require.NotNil(t, o.ShippedAt)

	o, err = svc.UpdateStatus(ctx, o.ID, StatusDelivered)
	require.NoError(t, err)
	require.NotNil(t, o.DeliveredAt)

	// Delivered is terminal.
	_, err = svc.UpdateStatus(ctx, o.ID, StatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatusInvalidTransition(t *testing.T) {
	svc, _, _, _ := newOrderFixture()
	ctx := context.Background()

	o, err := svc.CreateFromCart(ctx, 1, &CreateOrderRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   "razorpay",
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, o.ID, StatusDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	svc, _, _, _ := newOrderFixture()

	_, err := svc.UpdateStatus(context.Background(), 999, StatusPaid)
	assert.ErrorIs(t, err, ErrNotFound)
}
