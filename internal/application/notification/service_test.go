package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/notification"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of notification.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Notification), args.Error(1)
}

func (m *MockRepository) FindAll(ctx context.Context, filter shared.Filter) ([]notification.Notification, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]notification.Notification), args.Error(1)
}

func (m *MockRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) CountUnread(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) MarkAllRead(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewService(repo)

	unreadOnly := false
	n := notification.NewOrderReceived(uuid.New(), "Jane")

	filter := mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["read"] == false && f.OrderBy == "created_at" && f.OrderDir == shared.OrderDesc
	})
	repo.On("FindAll", ctx, filter).Return([]notification.Notification{*n}, nil)
	repo.On("Count", ctx, filter).Return(int64(1), nil)
	repo.On("CountUnread", ctx).Return(int64(7), nil)

	page, err := svc.List(ctx, ListQuery{Read: &unreadOnly})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "order", page.Items[0].Type)
	assert.Equal(t, int64(7), page.UnreadCount)
	assert.Equal(t, 1, page.TotalPages)
}

func TestService_MarkRead(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the updated entry", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)
		n := notification.NewOrderReceived(uuid.New(), "Jane")
		n.MarkRead()

		repo.On("MarkRead", ctx, n.ID).Return(nil)
		repo.On("FindByID", ctx, n.ID).Return(n, nil)

		resp, err := svc.MarkRead(ctx, n.ID)
		require.NoError(t, err)
		assert.True(t, resp.Read)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)
		id := uuid.New()
		repo.On("MarkRead", ctx, id).Return(shared.ErrNotFound)

		_, err := svc.MarkRead(ctx, id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, "Notification not found", err.Error())
	})
}

func TestService_DeleteAndMarkAll(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewService(repo)
	id := uuid.New()

	repo.On("Delete", ctx, id).Return(nil).Once()
	repo.On("MarkAllRead", ctx).Return(int64(3), nil).Once()
	repo.On("MarkAllRead", ctx).Return(int64(0), nil).Once()

	require.NoError(t, svc.Delete(ctx, id))

	changed, err := svc.MarkAllRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), changed)

	changed, err = svc.MarkAllRead(ctx)
	require.NoError(t, err)
	assert.Zero(t, changed)
}
