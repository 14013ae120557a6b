// internal/domain/cart/mirror.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// MirrorItem is a denormalized cart line. The mirror embeds the
// product details it had at save time so it can render without the
// catalog being reachable.
type MirrorItem struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// MirrorCart is the fallback copy of a cart. Dirty marks mutations the
// authoritative store has not confirmed; Version is the last server
// version the mirror was synced from.
type MirrorCart struct {
	UserID    uint         `json:"user_id"`
	Version   int64        `json:"version"`
	Items     []MirrorItem `json:"items"`
	Dirty     bool         `json:"dirty"`
	SyncedAt  time.Time    `json:"synced_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// KV is the minimal key-value surface the mirror needs. Satisfied by
// the Redis-backed implementation below and by in-memory fakes in
// tests.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// ErrKeyNotFound is returned by KV implementations for missing keys
var ErrKeyNotFound = errors.New("key not found")

// MirrorStore reads and writes mirror carts. Save always overwrites
// wholesale; Load fails soft, returning an empty mirror when nothing
// is stored or the stored payload is corrupt.
type MirrorStore struct {
	kv  KV
	ttl time.Duration
}

// NewMirrorStore creates a Redis-backed mirror store
func NewMirrorStore(client *redis.Client, ttl time.Duration) *MirrorStore {
	return &MirrorStore{kv: &redisKV{client: client}, ttl: ttl}
}

// NewMirrorStoreWithKV creates a mirror store over any KV backend
func NewMirrorStoreWithKV(kv KV, ttl time.Duration) *MirrorStore {
	return &MirrorStore{kv: kv, ttl: ttl}
}

func mirrorKey(userID uint) string {
	return fmt.Sprintf("cart:mirror:%d", userID)
}

// Load returns the stored mirror for the user. Missing or corrupt data
// yields an empty, clean mirror rather than an error.
func (m *MirrorStore) Load(ctx context.Context, userID uint) (*MirrorCart, error) {
	data, err := m.kv.Get(ctx, mirrorKey(userID))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return emptyMirror(userID), nil
		}
		return nil, fmt.Errorf("failed to load cart mirror: %w", err)
	}

	var mirror MirrorCart
	if err := json.Unmarshal([]byte(data), &mirror); err != nil {
		// Corrupt payloads fail soft: start over with an empty mirror.
		return emptyMirror(userID), nil
	}
	mirror.UserID = userID
	if mirror.Items == nil {
		mirror.Items = []MirrorItem{}
	}
	return &mirror, nil
}

// Save overwrites the stored mirror wholesale
func (m *MirrorStore) Save(ctx context.Context, mirror *MirrorCart) error {
	mirror.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(mirror)
	if err != nil {
		return fmt.Errorf("failed to encode cart mirror: %w", err)
	}
	if err := m.kv.Set(ctx, mirrorKey(mirror.UserID), string(data), m.ttl); err != nil {
		return fmt.Errorf("failed to save cart mirror: %w", err)
	}
	return nil
}

// Delete removes the stored mirror
func (m *MirrorStore) Delete(ctx context.Context, userID uint) error {
	return m.kv.Del(ctx, mirrorKey(userID))
}

func emptyMirror(userID uint) *MirrorCart {
	return &MirrorCart{
		UserID: userID,
		Items:  []MirrorItem{},
	}
}

// FromSnapshot rebuilds a clean mirror from a server snapshot
func FromSnapshot(snap *Snapshot) *MirrorCart {
	mirror := &MirrorCart{
		UserID:   snap.UserID,
		Version:  snap.Version,
		Items:    make([]MirrorItem, 0, len(snap.Items)),
		Dirty:    false,
		SyncedAt: time.Now().UTC(),
	}
	for _, line := range snap.Items {
		mirror.Items = append(mirror.Items, MirrorItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Image:     line.Image,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	return mirror
}

// ToSnapshot renders the mirror as a cart snapshot for display
func (mc *MirrorCart) ToSnapshot() *Snapshot {
	snap := &Snapshot{
		UserID:    mc.UserID,
		Version:   mc.Version,
		Items:     make([]LineItem, 0, len(mc.Items)),
		Subtotal:  decimal.Zero,
		Degraded:  true,
		Dirty:     mc.Dirty,
		UpdatedAt: mc.UpdatedAt,
	}
	for _, item := range mc.Items {
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		snap.Items = append(snap.Items, LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: lineTotal,
		})
		snap.TotalQuantity += item.Quantity
		snap.Subtotal = snap.Subtotal.Add(lineTotal)
	}
	snap.ItemCount = len(snap.Items)
	return snap
}

// findItem returns the index of the line for productID, or -1
func (mc *MirrorCart) findItem(productID uint) int {
	for i := range mc.Items {
		if mc.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// redisKV adapts a go-redis client to the KV interface
type redisKV struct {
	client *redis.Client
}

func (r *redisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrKeyNotFound
	}
	return val, err
}

func (r *redisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisKV) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
