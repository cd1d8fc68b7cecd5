package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// SubcategoryService handles subcategory-related business operations
type SubcategoryService struct {
	subcategoryRepo catalog.SubcategoryRepository
	categoryRepo    catalog.CategoryRepository
	images          ImageStorage
	publisher       shared.EventPublisher
}

// NewSubcategoryService creates a new SubcategoryService
func NewSubcategoryService(
	subcategoryRepo catalog.SubcategoryRepository,
	categoryRepo catalog.CategoryRepository,
	images ImageStorage,
	publisher shared.EventPublisher,
) *SubcategoryService {
	return &SubcategoryService{
		subcategoryRepo: subcategoryRepo,
		categoryRepo:    categoryRepo,
		images:          images,
		publisher:       publisher,
	}
}

// Create creates a subcategory under an existing category
func (s *SubcategoryService) Create(ctx context.Context, req SubcategoryRequest) (*SubcategoryResponse, error) {
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	sub, err := catalog.NewSubcategory(req.CategoryID, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.subcategoryRepo.Save(ctx, sub); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.publisher, sub)

	resp := ToSubcategoryResponse(sub)
	return &resp, nil
}

// GetByID retrieves a subcategory by ID
func (s *SubcategoryService) GetByID(ctx context.Context, id uuid.UUID) (*SubcategoryResponse, error) {
	sub, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToSubcategoryResponse(sub)
	return &resp, nil
}

// List returns one page of subcategories, optionally restricted to one category
func (s *SubcategoryService) List(ctx context.Context, query ListQuery, categoryID *uuid.UUID) (shared.Paginated[SubcategoryResponse], error) {
	filter := query.ToFilter()
	if categoryID != nil {
		filter.Filters["category_id"] = *categoryID
	}

	subs, err := s.subcategoryRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[SubcategoryResponse]{}, err
	}
	total, err := s.subcategoryRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[SubcategoryResponse]{}, err
	}

	return shared.NewPaginated(toSubcategoryResponses(subs), total, filter.Page, filter.PageSize), nil
}

// All returns every subcategory sorted by name
func (s *SubcategoryService) All(ctx context.Context) ([]SubcategoryResponse, error) {
	subs, err := s.subcategoryRepo.FindAllUnpaged(ctx)
	if err != nil {
		return nil, err
	}
	return toSubcategoryResponses(subs), nil
}

// ByCategory returns the subcategories of one category
func (s *SubcategoryService) ByCategory(ctx context.Context, categoryID uuid.UUID) ([]SubcategoryResponse, error) {
	if err := s.ensureCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	subs, err := s.subcategoryRepo.FindByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return toSubcategoryResponses(subs), nil
}

// Update replaces a subcategory's fields, possibly moving it to another category
func (s *SubcategoryService) Update(ctx context.Context, id uuid.UUID, req SubcategoryRequest) (*SubcategoryResponse, error) {
	sub, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CategoryID != sub.CategoryID {
		if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
	}

	if err := sub.Update(req.CategoryID, req.Name, req.Description); err != nil {
		return nil, err
	}
	if err := s.subcategoryRepo.Save(ctx, sub); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.publisher, sub)

	resp := ToSubcategoryResponse(sub)
	return &resp, nil
}

// Delete removes a subcategory. Products keep their reference.
func (s *SubcategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.subcategoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return subcategoryNotFound()
		}
		return err
	}
	publish(ctx, s.publisher, catalog.NewCatalogChangedEvent(catalog.EventTypeSubcategoryDeleted, catalog.AggregateTypeSubcategory, id))
	return nil
}

// UploadImage stores an image and sets it as the subcategory image
func (s *SubcategoryService) UploadImage(ctx context.Context, id uuid.UUID, upload ImageUpload, limits UploadLimits) (*SubcategoryResponse, error) {
	if s.images == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Image uploads are not configured")
	}
	limits.MaxFiles = 1
	if err := ValidateImageUploads([]ImageUpload{upload}, limits); err != nil {
		return nil, err
	}

	sub, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.images.Save(ctx, FolderSubcategories, upload)
	if err != nil {
		return nil, err
	}
	sub.SetImage(url)
	if err := s.subcategoryRepo.Save(ctx, sub); err != nil {
		return nil, err
	}

	resp := ToSubcategoryResponse(sub)
	return &resp, nil
}

func (s *SubcategoryService) ensureCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return categoryNotFound()
		}
		return err
	}
	return nil
}

func (s *SubcategoryService) find(ctx context.Context, id uuid.UUID) (*catalog.Subcategory, error) {
	sub, err := s.subcategoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, subcategoryNotFound()
		}
		return nil, err
	}
	return sub, nil
}

func toSubcategoryResponses(subs []catalog.Subcategory) []SubcategoryResponse {
	out := make([]SubcategoryResponse, len(subs))
	for i := range subs {
		out[i] = ToSubcategoryResponse(&subs[i])
	}
	return out
}

func subcategoryNotFound() error {
	return shared.NewDomainError(shared.CodeNotFound, "Subcategory not found")
}
