// Package cart owns a shopper's cart on the client side of checkout.
// The API never stores carts; a storefront client keeps one Holder per
// shopper and submits the entries as an order payload at checkout.
package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry is one product in the cart with its quantity
type Entry struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Stock     int             `json:"stock"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns price times quantity
func (e Entry) Subtotal() decimal.Decimal {
	return e.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Store persists the whole entry list under a key.
// Writes replace the previous list entirely.
type Store interface {
	Load(ctx context.Context, key string) ([]Entry, error)
	Save(ctx context.Context, key string, entries []Entry) error
}

// Holder reads, modifies and writes back one cart.
// Concurrent holders on the same key race and the last write wins.
type Holder struct {
	store Store
	key   string
}

// NewHolder creates a holder for the cart stored under key
func NewHolder(store Store, key string) *Holder {
	return &Holder{store: store, key: key}
}

// Get returns the current entries
func (h *Holder) Get(ctx context.Context) ([]Entry, error) {
	entries, err := h.store.Load(ctx, h.key)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Add increments the quantity of an existing entry or appends the product with quantity 1
func (h *Holder) Add(ctx context.Context, product Entry) ([]Entry, error) {
	return h.update(ctx, func(entries []Entry) []Entry {
		for i := range entries {
			if entries[i].ProductID == product.ProductID {
				entries[i].Quantity++
				return entries
			}
		}
		product.Quantity = 1
		return append(entries, product)
	})
}

// SetQuantity sets the quantity of an entry. A quantity below 1 leaves the cart unchanged.
func (h *Holder) SetQuantity(ctx context.Context, productID uuid.UUID, quantity int) ([]Entry, error) {
	if quantity < 1 {
		return h.Get(ctx)
	}
	return h.update(ctx, func(entries []Entry) []Entry {
		for i := range entries {
			if entries[i].ProductID == productID {
				entries[i].Quantity = quantity
			}
		}
		return entries
	})
}

// Remove drops the entry for productID
func (h *Holder) Remove(ctx context.Context, productID uuid.UUID) ([]Entry, error) {
	return h.update(ctx, func(entries []Entry) []Entry {
		kept := entries[:0]
		for _, e := range entries {
			if e.ProductID != productID {
				kept = append(kept, e)
			}
		}
		return kept
	})
}

// Clear empties the cart
func (h *Holder) Clear(ctx context.Context) ([]Entry, error) {
	empty := []Entry{}
	if err := h.store.Save(ctx, h.key, empty); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return empty, nil
}

// Total returns the sum of all entry subtotals
func (h *Holder) Total(ctx context.Context) (decimal.Decimal, error) {
	entries, err := h.Get(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Subtotal())
	}
	return total, nil
}

func (h *Holder) update(ctx context.Context, fn func([]Entry) []Entry) ([]Entry, error) {
	entries, err := h.Get(ctx)
	if err != nil {
		return nil, err
	}
	entries = fn(entries)
	if err := h.store.Save(ctx, h.key, entries); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return entries, nil
}
