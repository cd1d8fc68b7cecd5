package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/notification"
	"github.com/storefront/backend/internal/domain/shared"
)

// Service exposes the admin notification feed
type Service struct {
	repo notification.Repository
}

// NewService creates a new Service
func NewService(repo notification.Repository) *Service {
	return &Service{repo: repo}
}

// List returns one page of the feed, newest first, with the unread count
func (s *Service) List(ctx context.Context, query ListQuery) (*Page, error) {
	filter := query.ToFilter()

	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Response, len(items))
	for i := range items {
		out[i] = ToResponse(&items[i])
	}
	return &Page{
		Paginated:   shared.NewPaginated(out, total, filter.Page, filter.PageSize),
		UnreadCount: unread,
	}, nil
}

// MarkRead flags one notification as read and returns it
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) (*Response, error) {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return nil, mapNotFound(err)
	}
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	resp := ToResponse(n)
	return &resp, nil
}

// MarkAllRead flags every notification as read. Calling it again changes nothing.
func (s *Service) MarkAllRead(ctx context.Context) (int64, error) {
	return s.repo.MarkAllRead(ctx)
}

// Delete removes one notification
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return mapNotFound(s.repo.Delete(ctx, id))
}

func mapNotFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError(shared.CodeNotFound, "Notification not found")
	}
	return err
}
