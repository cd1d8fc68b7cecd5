package event

import (
	"context"

	"github.com/storefront/backend/internal/domain/shared"
)

// FuncHandler adapts a function to shared.EventHandler. Use a pointer so
// the registry can compare handlers on Unsubscribe.
type FuncHandler struct {
	types []string
	fn    func(ctx context.Context, e shared.DomainEvent) error
}

// NewFuncHandler wraps fn as a handler for eventTypes
func NewFuncHandler(fn func(ctx context.Context, e shared.DomainEvent) error, eventTypes ...string) *FuncHandler {
	return &FuncHandler{types: eventTypes, fn: fn}
}

// Handle implements shared.EventHandler
func (h *FuncHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	return h.fn(ctx, e)
}

// EventTypes implements shared.EventHandler
func (h *FuncHandler) EventTypes() []string {
	return h.types
}
