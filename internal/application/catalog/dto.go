package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// MaxPageSize caps list page sizes
const MaxPageSize = 100

// ListQuery carries the common paging, search and sort parameters
type ListQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	Search    string `form:"search" binding:"max=200"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// ToFilter converts the query to a repository filter
func (q ListQuery) ToFilter() shared.Filter {
	f := shared.Filter{
		Page:     q.Page,
		PageSize: q.PageSize,
		Search:   q.Search,
		OrderBy:  q.SortBy,
		OrderDir: q.SortOrder,
	}
	return f.Normalize(MaxPageSize)
}

// CategoryRequest is the body for creating or updating a category
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=2000"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Image:       c.Image,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// SubcategoryRequest is the body for creating or updating a subcategory
type SubcategoryRequest struct {
	Name        string    `json:"name" binding:"required,min=1,max=100"`
	Description string    `json:"description" binding:"max=2000"`
	CategoryID  uuid.UUID `json:"categoryId" binding:"required"`
}

// SubcategoryResponse represents a subcategory in API responses
type SubcategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	CategoryID  uuid.UUID `json:"categoryId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToSubcategoryResponse converts a domain Subcategory to SubcategoryResponse
func ToSubcategoryResponse(s *catalog.Subcategory) SubcategoryResponse {
	return SubcategoryResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Image:       s.Image,
		CategoryID:  s.CategoryID,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ProductRequest is the body for creating or updating a product.
// Stock is optional: omitted on create it defaults to 0, omitted on update the
// stored stock is kept.
type ProductRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=200"`
	Description   string          `json:"description" binding:"max=2000"`
	Price         decimal.Decimal `json:"price"`
	Stock         *int            `json:"stock" binding:"omitempty,min=0"`
	CategoryID    *uuid.UUID      `json:"categoryId"`
	SubcategoryID *uuid.UUID      `json:"subcategoryId"`
}

func (r ProductRequest) input() catalog.ProductInput {
	var stock int
	if r.Stock != nil {
		stock = *r.Stock
	}
	return catalog.ProductInput{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		Stock:         stock,
		CategoryID:    r.CategoryID,
		SubcategoryID: r.SubcategoryID,
	}
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	CategoryID    *uuid.UUID      `json:"categoryId"`
	SubcategoryID *uuid.UUID      `json:"subcategoryId"`
	Images        []string        `json:"images"`
	Image         string          `json:"image"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	images := []string(p.Images)
	if images == nil {
		images = []string{}
	}
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Stock:         p.Stock,
		CategoryID:    p.CategoryID,
		SubcategoryID: p.SubcategoryID,
		Images:        images,
		Image:         p.PrimaryImage(),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}
