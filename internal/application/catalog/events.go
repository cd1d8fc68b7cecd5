package catalog

import (
	"context"

	"github.com/storefront/backend/internal/domain/shared"
)

// publishEvents hands the aggregate's pending events to the bus after a successful save.
// Delivery is best-effort; the bus logs handler failures itself.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, aggregate shared.AggregateRoot) {
	events := aggregate.GetDomainEvents()
	aggregate.ClearDomainEvents()
	if publisher == nil || len(events) == 0 {
		return
	}
	_ = publisher.Publish(ctx, events...)
}

func publish(ctx context.Context, publisher shared.EventPublisher, event shared.DomainEvent) {
	if publisher == nil {
		return
	}
	_ = publisher.Publish(ctx, event)
}
