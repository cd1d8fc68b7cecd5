package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// ImageList is a list of image URLs stored as a JSON array
type ImageList []string

// Value implements driver.Valuer so GORM stores the list as JSON text
func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *ImageList) Scan(value interface{}) error {
	if value == nil {
		*l = ImageList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan ImageList: unsupported type")
	}

	if len(bytes) == 0 {
		*l = ImageList{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Product is a sellable catalog item.
// Stock is never negative. It changes only through order placement or an
// explicit admin stock edit, never as a side effect of other field updates.
type Product struct {
	shared.BaseAggregateRoot
	Name          string          `gorm:"type:varchar(200);not null;index"`
	Description   string          `gorm:"type:text"`
	Price         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Stock         int             `gorm:"not null;default:0"`
	CategoryID    *uuid.UUID      `gorm:"type:uuid;index"`
	SubcategoryID *uuid.UUID      `gorm:"type:uuid;index"`
	Images        ImageList       `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// ProductInput carries the editable fields of a product
type ProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	Stock         int
	CategoryID    *uuid.UUID
	SubcategoryID *uuid.UUID
}

// NewProduct creates a new product
func NewProduct(in ProductInput) (*Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              in.Name,
		Description:       in.Description,
		Price:             in.Price.Round(2),
		Stock:             in.Stock,
		CategoryID:        in.CategoryID,
		SubcategoryID:     in.SubcategoryID,
		Images:            ImageList{},
	}
	product.AddDomainEvent(NewCatalogChangedEvent(EventTypeProductCreated, AggregateTypeProduct, product.ID))
	return product, nil
}

// Update replaces the descriptive fields of the product. Stock is left alone;
// ProductRepository.SetStock applies an explicit stock edit.
func (p *Product) Update(in ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateProductInput(in); err != nil {
		return err
	}

	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price.Round(2)
	p.CategoryID = in.CategoryID
	p.SubcategoryID = in.SubcategoryID
	p.Touch()
	p.AddDomainEvent(NewCatalogChangedEvent(EventTypeProductUpdated, AggregateTypeProduct, p.ID))
	return nil
}

// AddImages appends image URLs, keeping at most MaxProductImages
func (p *Product) AddImages(urls ...string) error {
	if len(p.Images)+len(urls) > MaxProductImages {
		return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("A product cannot have more than %d images", MaxProductImages))
	}
	p.Images = append(p.Images, urls...)
	p.Touch()
	return nil
}

// PrimaryImage returns the first image URL, or an empty string
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// HasStock reports whether quantity units can be taken from stock
func (p *Product) HasStock(quantity int) bool {
	return quantity > 0 && p.Stock >= quantity
}

// DeductStock removes quantity units from stock in memory.
// Persistence goes through ProductRepository.DecrementStock, which applies the
// same rule atomically in the database.
func (p *Product) DeductStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError(shared.CodeValidation, "Quantity must be positive")
	}
	if p.Stock < quantity {
		return NewInsufficientStockError(p.Name)
	}
	p.Stock -= quantity
	p.Touch()
	return nil
}

// NewInsufficientStockError names the product whose stock cannot cover an order
func NewInsufficientStockError(productName string) *shared.DomainError {
	return shared.NewDomainError(shared.CodeInsufficientStock, "Insufficient stock for product "+productName)
}

// NewProductNotFoundError reports an unknown product id
func NewProductNotFoundError(id uuid.UUID) *shared.DomainError {
	return shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Product %s not found", id))
}

func validateProductInput(in ProductInput) error {
	if err := validateName("Product", in.Name, MaxProductNameLength); err != nil {
		return err
	}
	if err := validateDescription(in.Description); err != nil {
		return err
	}
	if in.Price.IsNegative() {
		return shared.NewDomainError(shared.CodeValidation, "Price cannot be negative")
	}
	if in.Stock < 0 {
		return shared.NewDomainError(shared.CodeValidation, "Stock cannot be negative")
	}
	return nil
}
