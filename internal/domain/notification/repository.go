package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Repository defines the interface for notification persistence
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	// FindAll lists notifications newest first; Filters may carry "read" (bool)
	FindAll(ctx context.Context, filter shared.Filter) ([]Notification, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountUnread(ctx context.Context) (int64, error)
	Create(ctx context.Context, n *Notification) error
	// MarkRead sets the read flag on one notification
	MarkRead(ctx context.Context, id uuid.UUID) error
	// MarkAllRead sets the read flag on every unread notification and returns how many changed
	MarkAllRead(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
