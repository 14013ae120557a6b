// internal/domain/cart/mirror_test.go
package cart

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeKV is an in-memory KV backend. Setting fail makes every call
// return that error.
type fakeKV struct {
	data map[string]string
	fail error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	v, ok := f.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key, value string, _ time.Duration) error {
	if f.fail != nil {
		return f.fail
	}
	f.data[key] = value
	return nil
}

func (f *fakeKV) Del(_ context.Context, key string) error {
	if f.fail != nil {
		return f.fail
	}
	delete(f.data, key)
	return nil
}

func TestMirrorLoadMissingReturnsEmpty(t *testing.T) {
	store := NewMirrorStoreWithKV(newFakeKV(), time.Hour)

	mc, err := store.Load(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, uint(1), mc.UserID)
	assert.Empty(t, mc.Items)
	assert.False(t, mc.Dirty)
}

func TestMirrorLoadCorruptPayloadFailsSoft(t *testing.T) {
	kv := newFakeKV()
	kv.data["cart:mirror:1"] = "{not json"
	store := NewMirrorStoreWithKV(kv, time.Hour)

	mc, err := store.Load(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, mc.Items)
	assert.False(t, mc.Dirty)
}

func TestMirrorSaveLoadRoundTrip(t *testing.T) {
	store := NewMirrorStoreWithKV(newFakeKV(), time.Hour)
	ctx := context.Background()

	in := &MirrorCart{
		UserID:  3,
		Version: 5,
		Items: []MirrorItem{
			{ProductID: 1, Name: "Notebook", UnitPrice: decimal.NewFromFloat(10.00), Quantity: 2},
		},
		Dirty: true,
	}
	require.NoError(t, store.Save(ctx, in))

	out, err := store.Load(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), out.Version)
	assert.True(t, out.Dirty)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Notebook", out.Items[0].Name)
	assert.True(t, out.Items[0].UnitPrice.Equal(decimal.NewFromFloat(10.00)))
}

func TestMirrorSaveOverwritesWholesale(t *testing.T) {
	store := NewMirrorStoreWithKV(newFakeKV(), time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &MirrorCart{
		UserID: 1,
		Items: []MirrorItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	}))
	require.NoError(t, store.Save(ctx, &MirrorCart{
		UserID: 1,
		Items:  []MirrorItem{{ProductID: 3, Quantity: 9}},
	}))

	out, err := store.Load(ctx, 1)
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, uint(3), out.Items[0].ProductID)
}

func TestFromSnapshotProducesCleanMirror(t *testing.T) {
	snap := &Snapshot{
		UserID:  2,
		Version: 9,
		Items: []LineItem{
			{ProductID: 1, Name: "Notebook", UnitPrice: decimal.NewFromFloat(10.00), Quantity: 2},
		},
		Dirty: true, // stale flag on the inbound snapshot must not survive
	}

	mc := FromSnapshot(snap)
	assert.False(t, mc.Dirty)
	assert.Equal(t, int64(9), mc.Version)
	assert.False(t, mc.SyncedAt.IsZero())
	require.Len(t, mc.Items, 1)
	assert.Equal(t, "Notebook", mc.Items[0].Name)
}

func TestToSnapshotMarksDegradedAndComputesTotals(t *testing.T) {
	mc := &MirrorCart{
		UserID: 4,
		Items: []MirrorItem{
			{ProductID: 1, UnitPrice: decimal.NewFromFloat(10.00), Quantity: 2},
			{ProductID: 2, UnitPrice: decimal.NewFromFloat(25.00), Quantity: 1},
		},
		Dirty: true,
	}

	snap := mc.ToSnapshot()
	assert.True(t, snap.Degraded)
	assert.True(t, snap.Dirty)
	assert.Equal(t, 2, snap.ItemCount)
	assert.Equal(t, 3, snap.TotalQuantity)
	assert.True(t, snap.Subtotal.Equal(decimal.NewFromFloat(45.00)))
}

func TestMirrorDelete(t *testing.T) {
	store := NewMirrorStoreWithKV(newFakeKV(), time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &MirrorCart{
		UserID: 1,
		Items:  []MirrorItem{{ProductID: 1, Quantity: 1}},
	}))
	require.NoError(t, store.Delete(ctx, 1))

	out, err := store.Load(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
}
