package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo     catalog.ProductRepository
	categoryRepo    catalog.CategoryRepository
	subcategoryRepo catalog.SubcategoryRepository
	images          ImageStorage
	publisher       shared.EventPublisher
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	subcategoryRepo catalog.SubcategoryRepository,
	images ImageStorage,
	publisher shared.EventPublisher,
) *ProductService {
	return &ProductService{
		productRepo:     productRepo,
		categoryRepo:    categoryRepo,
		subcategoryRepo: subcategoryRepo,
		images:          images,
		publisher:       publisher,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req ProductRequest) (*ProductResponse, error) {
	if err := s.ensureReferences(ctx, req); err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(req.input())
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.publisher, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// ProductFilter restricts a product list to a category or subcategory
type ProductFilter struct {
	CategoryID    *uuid.UUID
	SubcategoryID *uuid.UUID
}

// List returns one page of products. Search matches the product name.
func (s *ProductService) List(ctx context.Context, query ListQuery, pf ProductFilter) (shared.Paginated[ProductResponse], error) {
	filter := query.ToFilter()
	if pf.CategoryID != nil {
		filter.Filters["category_id"] = *pf.CategoryID
	}
	if pf.SubcategoryID != nil {
		filter.Filters["subcategory_id"] = *pf.SubcategoryID
	}

	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}

	return shared.NewPaginated(ToProductResponses(products), total, filter.Page, filter.PageSize), nil
}

// Search returns products whose name contains term, case-insensitively
func (s *ProductService) Search(ctx context.Context, term string, query ListQuery) (shared.Paginated[ProductResponse], error) {
	query.Search = term
	return s.List(ctx, query, ProductFilter{})
}

// All returns every product sorted by name
func (s *ProductService) All(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.FindAllUnpaged(ctx)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// BySubcategory returns the products of one subcategory
func (s *ProductService) BySubcategory(ctx context.Context, subcategoryID uuid.UUID) ([]ProductResponse, error) {
	if _, err := s.subcategoryRepo.FindByID(ctx, subcategoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, subcategoryNotFound()
		}
		return nil, err
	}

	products, err := s.productRepo.FindBySubcategory(ctx, subcategoryID)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// Update replaces a product's editable fields
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req ProductRequest) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureReferences(ctx, req); err != nil {
		return nil, err
	}

	if err := product.Update(req.input()); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	if req.Stock != nil {
		if err := s.productRepo.SetStock(ctx, id, *req.Stock); err != nil {
			return nil, err
		}
	}
	publishEvents(ctx, s.publisher, product)

	// read back so the response carries stock as stored, not as first read
	return s.GetByID(ctx, id)
}

// Delete removes a product. Existing orders keep their item snapshots.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return catalog.NewProductNotFoundError(id)
		}
		return err
	}
	publish(ctx, s.publisher, catalog.NewCatalogChangedEvent(catalog.EventTypeProductDeleted, catalog.AggregateTypeProduct, id))
	return nil
}

// UploadImages stores images and appends them to the product
func (s *ProductService) UploadImages(ctx context.Context, id uuid.UUID, uploads []ImageUpload, limits UploadLimits) (*ProductResponse, error) {
	if s.images == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Image uploads are not configured")
	}
	if err := ValidateImageUploads(uploads, limits); err != nil {
		return nil, err
	}

	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(product.Images)+len(uploads) > catalog.MaxProductImages {
		return nil, shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("A product cannot have more than %d images", catalog.MaxProductImages))
	}

	urls := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		url, err := s.images.Save(ctx, FolderProducts, upload)
		if err != nil {
			s.discard(ctx, urls)
			return nil, err
		}
		urls = append(urls, url)
	}

	if err := product.AddImages(urls...); err != nil {
		s.discard(ctx, urls)
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		s.discard(ctx, urls)
		return nil, err
	}

	// read back so the response carries stock as stored, not as first read
	return s.GetByID(ctx, id)
}

// discard removes already stored images after a failed upload batch
func (s *ProductService) discard(ctx context.Context, urls []string) {
	for _, url := range urls {
		_ = s.images.Delete(ctx, url)
	}
}

func (s *ProductService) ensureReferences(ctx context.Context, req ProductRequest) error {
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return categoryNotFound()
			}
			return err
		}
	}
	if req.SubcategoryID != nil {
		if _, err := s.subcategoryRepo.FindByID(ctx, *req.SubcategoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return subcategoryNotFound()
			}
			return err
		}
	}
	return nil
}

func (s *ProductService) find(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, catalog.NewProductNotFoundError(id)
		}
		return nil, err
	}
	return product, nil
}
