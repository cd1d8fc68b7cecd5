package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

var subcategoryListQuery = listQuery{
	searchColumns: []string{"name"},
	sortFields:    CategorySortFields,
	defaultSort:   "created_at",
	filterColumns: map[string]string{"category_id": "category_id"},
}

// GormSubcategoryRepository implements SubcategoryRepository using GORM
type GormSubcategoryRepository struct {
	db *gorm.DB
}

// NewGormSubcategoryRepository creates a new GormSubcategoryRepository
func NewGormSubcategoryRepository(db *gorm.DB) *GormSubcategoryRepository {
	return &GormSubcategoryRepository{db: db}
}

// FindByID finds a subcategory by its ID
func (r *GormSubcategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Subcategory, error) {
	var sub catalog.Subcategory
	if err := r.db.WithContext(ctx).First(&sub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// FindAll finds subcategories matching the filter
func (r *GormSubcategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Subcategory, error) {
	var subs []catalog.Subcategory
	query := subcategoryListQuery.apply(r.db.WithContext(ctx).Model(&catalog.Subcategory{}), filter)
	if err := query.Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// FindAllUnpaged returns every subcategory ordered by name
func (r *GormSubcategoryRepository) FindAllUnpaged(ctx context.Context) ([]catalog.Subcategory, error) {
	var subs []catalog.Subcategory
	if err := r.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// FindByCategory returns the subcategories of one category
func (r *GormSubcategoryRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]catalog.Subcategory, error) {
	var subs []catalog.Subcategory
	if err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("name ASC").Order("id ASC").
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// Count counts subcategories matching the filter
func (r *GormSubcategoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := subcategoryListQuery.where(r.db.WithContext(ctx).Model(&catalog.Subcategory{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a subcategory
func (r *GormSubcategoryRepository) Save(ctx context.Context, sub *catalog.Subcategory) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

// Delete removes the subcategory row only
func (r *GormSubcategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Subcategory{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ catalog.SubcategoryRepository = (*GormSubcategoryRepository)(nil)
