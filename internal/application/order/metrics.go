package order

import (
	"context"

	"github.com/storefront/backend/internal/domain/order"
)

// Metrics receives placement counters. The telemetry package provides the
// OpenTelemetry implementation.
type Metrics interface {
	OrderPlaced(ctx context.Context, o *order.Order)
	OrderRejected(ctx context.Context, reason string)
	SideEffectFailed(ctx context.Context, task string)
}

type nopMetrics struct{}

func (nopMetrics) OrderPlaced(context.Context, *order.Order) {}
func (nopMetrics) OrderRejected(context.Context, string) {}
func (nopMetrics) SideEffectFailed(context.Context, string) {}
