package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	images       ImageStorage
	publisher    shared.EventPublisher
}

// NewCategoryService creates a new CategoryService.
// images and publisher may be nil.
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	images ImageStorage,
	publisher shared.EventPublisher,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		images:       images,
		publisher:    publisher,
	}
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, req CategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(req.Name, req.Description)
	if err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.publisher, category)

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// List returns one page of categories
func (s *CategoryService) List(ctx context.Context, query ListQuery) (shared.Paginated[CategoryResponse], error) {
	filter := query.ToFilter()

	categories, err := s.categoryRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[CategoryResponse]{}, err
	}
	total, err := s.categoryRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[CategoryResponse]{}, err
	}

	items := make([]CategoryResponse, len(categories))
	for i := range categories {
		items[i] = ToCategoryResponse(&categories[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// All returns every category sorted by name
func (s *CategoryService) All(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAllUnpaged(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]CategoryResponse, len(categories))
	for i := range categories {
		items[i] = ToCategoryResponse(&categories[i])
	}
	return items, nil
}

// Update replaces a category's name and description
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req CategoryRequest) (*CategoryResponse, error) {
	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := category.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.publisher, category)

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Delete removes a category. Subcategories and products are left untouched.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return categoryNotFound()
		}
		return err
	}
	publish(ctx, s.publisher, catalog.NewCatalogChangedEvent(catalog.EventTypeCategoryDeleted, catalog.AggregateTypeCategory, id))
	return nil
}

// UploadImage stores an image and sets it as the category image
func (s *CategoryService) UploadImage(ctx context.Context, id uuid.UUID, upload ImageUpload, limits UploadLimits) (*CategoryResponse, error) {
	if s.images == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Image uploads are not configured")
	}
	limits.MaxFiles = 1
	if err := ValidateImageUploads([]ImageUpload{upload}, limits); err != nil {
		return nil, err
	}

	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.images.Save(ctx, FolderCategories, upload)
	if err != nil {
		return nil, err
	}
	category.SetImage(url)
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	resp := ToCategoryResponse(category)
	return &resp, nil
}

func (s *CategoryService) find(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, categoryNotFound()
		}
		return nil, err
	}
	return category, nil
}

func categoryNotFound() error {
	return shared.NewDomainError(shared.CodeNotFound, "Category not found")
}
