package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID loads an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindAll lists orders; Filters may carry "status"
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// Save inserts a new order with its items or updates the mutable fields of an existing one
	Save(ctx context.Context, order *Order) error
	// Delete removes the order and its items
	Delete(ctx context.Context, id uuid.UUID) error
}
