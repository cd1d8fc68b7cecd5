package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (r *recorder) handle(ctx context.Context, e shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

func placedEvent() *order.OrderPlacedEvent {
	o := &order.Order{BaseAggregateRoot: shared.NewBaseAggregateRoot(), CustomerName: "Jane"}
	return order.NewOrderPlacedEvent(o)
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(nil)

	orders := &recorder{}
	all := &recorder{}
	bus.Subscribe(NewFuncHandler(orders.handle, order.EventTypeOrderPlaced))
	bus.Subscribe(NewFuncHandler(all.handle))

	catalogEvent := catalog.NewCatalogChangedEvent(catalog.EventTypeProductUpdated, "Product", uuid.New())
	require.NoError(t, bus.Publish(ctx, placedEvent(), catalogEvent))

	assert.Equal(t, []string{order.EventTypeOrderPlaced}, orders.types())
	assert.Equal(t, []string{order.EventTypeOrderPlaced, catalog.EventTypeProductUpdated}, all.types())
}

func TestInMemoryEventBus_FailingHandlersDoNotStopDelivery(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(nil)

	got := &recorder{}
	bus.Subscribe(NewFuncHandler(func(context.Context, shared.DomainEvent) error {
		return errors.New("boom")
	}, order.EventTypeOrderPlaced))
	bus.Subscribe(NewFuncHandler(func(context.Context, shared.DomainEvent) error {
		panic("handler bug")
	}, order.EventTypeOrderPlaced))
	bus.Subscribe(NewFuncHandler(got.handle, order.EventTypeOrderPlaced))

	require.NoError(t, bus.Publish(ctx, placedEvent()))
	assert.Len(t, got.types(), 1)
}

func TestInMemoryEventBus_UnsubscribeAndStop(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(nil)

	got := &recorder{}
	h := NewFuncHandler(got.handle, order.EventTypeOrderPlaced)
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(ctx, placedEvent()))
	assert.Empty(t, got.types())

	require.NoError(t, bus.Stop(ctx))
	assert.ErrorIs(t, bus.Publish(ctx, placedEvent()), ErrBusStopped)

	require.NoError(t, bus.Start(ctx))
	assert.NoError(t, bus.Publish(ctx, placedEvent()))
}

func TestEventSerializer_RoundTripsRegisteredTypes(t *testing.T) {
	s := NewDefaultSerializer()
	original := placedEvent()

	data, err := s.Marshal(original)
	require.NoError(t, err)

	decoded, err := s.Unmarshal(data)
	require.NoError(t, err)
	placed, ok := decoded.(*order.OrderPlacedEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), placed.EventID())
	assert.Equal(t, original.OrderID, placed.OrderID)
	assert.Equal(t, "Jane", placed.CustomerName)

	_, err = s.Unmarshal([]byte(`{"type":"Unknown","payload":{}}`))
	assert.ErrorContains(t, err, "unknown event type")
	assert.True(t, s.IsRegistered(catalog.EventTypeCategoryDeleted))
}
