package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("saves and publishes a created event", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		publisher := new(MockEventPublisher)
		svc := NewCategoryService(repo, nil, publisher)

		repo.On("Save", ctx, mock.AnythingOfType("*catalog.Category")).Return(nil)
		publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == catalog.EventTypeCategoryCreated
		})).Return(nil)

		resp, err := svc.Create(ctx, CategoryRequest{Name: " Kitchen ", Description: "Pots"})
		require.NoError(t, err)
		assert.Equal(t, "Kitchen", resp.Name)
		assert.NotEqual(t, uuid.Nil, resp.ID)
		repo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("rejects empty name without saving", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo, nil, nil)

		_, err := svc.Create(ctx, CategoryRequest{Name: "  "})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, shared.CodeValidation, domainErr.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("does not publish when save fails", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		publisher := new(MockEventPublisher)
		svc := NewCategoryService(repo, nil, publisher)

		repo.On("Save", ctx, mock.Anything).Return(errors.New("db down"))

		_, err := svc.Create(ctx, CategoryRequest{Name: "Kitchen"})
		require.Error(t, err)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestCategoryService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCategoryRepository)
	svc := NewCategoryService(repo, nil, nil)

	c1, _ := catalog.NewCategory("Garden", "")
	c2, _ := catalog.NewCategory("Kitchen", "")

	expectedFilter := mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 2 && f.PageSize == 2 && f.Search == "en" && f.OrderBy == "name" && f.OrderDir == shared.OrderAsc
	})
	repo.On("FindAll", ctx, expectedFilter).Return([]catalog.Category{*c1, *c2}, nil)
	repo.On("Count", ctx, expectedFilter).Return(int64(5), nil)

	page, err := svc.List(ctx, ListQuery{Page: 2, PageSize: 2, Search: "en", SortBy: "name", SortOrder: "ASC"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, "Garden", page.Items[0].Name)
}

func TestCategoryService_PageSizeIsCapped(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCategoryRepository)
	svc := NewCategoryService(repo, nil, nil)

	capped := mock.MatchedBy(func(f shared.Filter) bool { return f.Page == 1 && f.PageSize == MaxPageSize })
	repo.On("FindAll", ctx, capped).Return([]catalog.Category{}, nil)
	repo.On("Count", ctx, capped).Return(int64(0), nil)

	page, err := svc.List(ctx, ListQuery{PageSize: 5000})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalPages)
}

func TestCategoryService_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCategoryRepository)
	svc := NewCategoryService(repo, nil, nil)
	id := uuid.New()

	repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)
	repo.On("Delete", ctx, id).Return(shared.ErrNotFound)

	_, err := svc.GetByID(ctx, id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Contains(t, err.Error(), "Category not found")

	_, err = svc.Update(ctx, id, CategoryRequest{Name: "x"})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	err = svc.Delete(ctx, id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCategoryService_UploadImage(t *testing.T) {
	ctx := context.Background()
	category, _ := catalog.NewCategory("Kitchen", "")

	t.Run("stores the file and sets the image url", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		images := new(MockImageStorage)
		svc := NewCategoryService(repo, images, nil)

		repo.On("FindByID", ctx, category.ID).Return(category, nil)
		images.On("Save", ctx, FolderCategories, mock.Anything).Return("/uploads/categories/a.png", nil)
		repo.On("Save", ctx, category).Return(nil)

		resp, err := svc.UploadImage(ctx, category.ID, pngUpload("a.png", 1024), DefaultUploadLimits())
		require.NoError(t, err)
		assert.Equal(t, "/uploads/categories/a.png", resp.Image)
	})

	t.Run("rejects non-image files", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		images := new(MockImageStorage)
		svc := NewCategoryService(repo, images, nil)

		upload := ImageUpload{Filename: "notes.txt", ContentType: "text/plain", Size: 10}
		_, err := svc.UploadImage(ctx, category.ID, upload, DefaultUploadLimits())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Only image files")
		images.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects files over the size limit", func(t *testing.T) {
		svc := NewCategoryService(new(MockCategoryRepository), new(MockImageStorage), nil)

		_, err := svc.UploadImage(ctx, category.ID, pngUpload("big.png", 6<<20), DefaultUploadLimits())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "5MB")
	})

	t.Run("fails when no storage is configured", func(t *testing.T) {
		svc := NewCategoryService(new(MockCategoryRepository), nil, nil)

		_, err := svc.UploadImage(ctx, category.ID, pngUpload("a.png", 1), DefaultUploadLimits())
		assert.Error(t, err)
	})
}
