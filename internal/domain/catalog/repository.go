package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Category, error)
	// FindAllUnpaged returns every category sorted by name
	FindAllUnpaged(ctx context.Context) ([]Category, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, category *Category) error
	// Delete removes only the category row; subcategories and products keep their references
	Delete(ctx context.Context, id uuid.UUID) error
}

// SubcategoryRepository defines the interface for subcategory persistence
type SubcategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Subcategory, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Subcategory, error)
	FindAllUnpaged(ctx context.Context) ([]Subcategory, error)
	FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]Subcategory, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, sub *Subcategory) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	FindAllUnpaged(ctx context.Context) ([]Product, error)
	FindBySubcategory(ctx context.Context, subcategoryID uuid.UUID) ([]Product, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save inserts a new product or updates an existing one. The stock column
	// is written on insert only; an update never touches it.
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error

	// SetStock overwrites the stored stock level of one product
	SetStock(ctx context.Context, id uuid.UUID, stock int) error

	// DecrementStock atomically subtracts quantity from the product's stock
	// only if enough stock remains. Returns ErrInsufficientStock when the
	// conditional update touches no row.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
}
