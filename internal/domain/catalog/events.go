package catalog

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Aggregate types
const (
	AggregateTypeCategory    = "Category"
	AggregateTypeSubcategory = "Subcategory"
	AggregateTypeProduct     = "Product"
)

// Event types
const (
	EventTypeCategoryCreated    = "CategoryCreated"
	EventTypeCategoryUpdated    = "CategoryUpdated"
	EventTypeCategoryDeleted    = "CategoryDeleted"
	EventTypeSubcategoryCreated = "SubcategoryCreated"
	EventTypeSubcategoryUpdated = "SubcategoryUpdated"
	EventTypeSubcategoryDeleted = "SubcategoryDeleted"
	EventTypeProductCreated     = "ProductCreated"
	EventTypeProductUpdated     = "ProductUpdated"
	EventTypeProductDeleted     = "ProductDeleted"
)

// CatalogChangedEvent is raised whenever a catalog record is created, updated or deleted
type CatalogChangedEvent struct {
	shared.BaseDomainEvent
}

// NewCatalogChangedEvent creates a catalog change event
func NewCatalogChangedEvent(eventType, aggregateType string, id uuid.UUID) *CatalogChangedEvent {
	return &CatalogChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, aggregateType, id),
	}
}
