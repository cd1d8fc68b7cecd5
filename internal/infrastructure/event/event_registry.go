package event

import (
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
)

// RegisterAllEvents registers every event type that crosses process boundaries
func RegisterAllEvents(s *EventSerializer) {
	s.Register(order.EventTypeOrderPlaced, &order.OrderPlacedEvent{})
	s.Register(order.EventTypeOrderStatusChanged, &order.OrderStatusChangedEvent{})

	for _, t := range []string{
		catalog.EventTypeCategoryCreated,
		catalog.EventTypeCategoryUpdated,
		catalog.EventTypeCategoryDeleted,
		catalog.EventTypeSubcategoryCreated,
		catalog.EventTypeSubcategoryUpdated,
		catalog.EventTypeSubcategoryDeleted,
		catalog.EventTypeProductCreated,
		catalog.EventTypeProductUpdated,
		catalog.EventTypeProductDeleted,
	} {
		s.Register(t, &catalog.CatalogChangedEvent{})
	}
}

// NewDefaultSerializer returns a serializer with every event type registered
func NewDefaultSerializer() *EventSerializer {
	s := NewEventSerializer()
	RegisterAllEvents(s)
	return s
}
