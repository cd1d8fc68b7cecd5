package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Category is the top level of the catalog hierarchy
type Category struct {
	shared.BaseAggregateRoot
	Name        string `gorm:"type:varchar(100);not null;index"`
	Description string `gorm:"type:text"`
	Image       string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new category
func NewCategory(name, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateName("Category", name, MaxCategoryNameLength); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	category := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
	}
	category.AddDomainEvent(NewCatalogChangedEvent(EventTypeCategoryCreated, AggregateTypeCategory, category.ID))
	return category, nil
}

// Update replaces the category's name and description
func (c *Category) Update(name, description string) error {
	name = strings.TrimSpace(name)
	if err := validateName("Category", name, MaxCategoryNameLength); err != nil {
		return err
	}
	if err := validateDescription(description); err != nil {
		return err
	}

	c.Name = name
	c.Description = description
	c.Touch()
	c.AddDomainEvent(NewCatalogChangedEvent(EventTypeCategoryUpdated, AggregateTypeCategory, c.ID))
	return nil
}

// SetImage sets the category image URL
func (c *Category) SetImage(url string) {
	c.Image = url
	c.Touch()
}

// Subcategory belongs to exactly one category
type Subcategory struct {
	shared.BaseAggregateRoot
	Name        string    `gorm:"type:varchar(100);not null;index"`
	Description string    `gorm:"type:text"`
	Image       string    `gorm:"type:varchar(500)"`
	CategoryID  uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (Subcategory) TableName() string {
	return "subcategories"
}

// NewSubcategory creates a new subcategory under the given category
func NewSubcategory(categoryID uuid.UUID, name, description string) (*Subcategory, error) {
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Subcategory must belong to a category")
	}
	name = strings.TrimSpace(name)
	if err := validateName("Subcategory", name, MaxCategoryNameLength); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	sub := &Subcategory{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
		CategoryID:        categoryID,
	}
	sub.AddDomainEvent(NewCatalogChangedEvent(EventTypeSubcategoryCreated, AggregateTypeSubcategory, sub.ID))
	return sub, nil
}

// Update replaces the subcategory's fields; categoryID may move it to another category
func (s *Subcategory) Update(categoryID uuid.UUID, name, description string) error {
	if categoryID == uuid.Nil {
		return shared.NewDomainError(shared.CodeValidation, "Subcategory must belong to a category")
	}
	name = strings.TrimSpace(name)
	if err := validateName("Subcategory", name, MaxCategoryNameLength); err != nil {
		return err
	}
	if err := validateDescription(description); err != nil {
		return err
	}

	s.CategoryID = categoryID
	s.Name = name
	s.Description = description
	s.Touch()
	s.AddDomainEvent(NewCatalogChangedEvent(EventTypeSubcategoryUpdated, AggregateTypeSubcategory, s.ID))
	return nil
}

// SetImage sets the subcategory image URL
func (s *Subcategory) SetImage(url string) {
	s.Image = url
	s.Touch()
}
