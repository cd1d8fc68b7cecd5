package telemetry

import (
	"context"

	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/order"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/storefront/backend/order"

// OrderMetrics records order placement counters
type OrderMetrics struct {
	placed      metric.Int64Counter
	rejected    metric.Int64Counter
	revenue     metric.Float64Counter
	items       metric.Int64Histogram
	sideEffects metric.Int64Counter
}

var _ orderapp.Metrics = (*OrderMetrics)(nil)

// NewOrderMetrics creates the instruments on provider's meter
func NewOrderMetrics(provider metric.MeterProvider) (*OrderMetrics, error) {
	m := provider.Meter(meterName)
	var (
		om  OrderMetrics
		err error
	)
	if om.placed, err = m.Int64Counter("orders.placed", metric.WithDescription("Orders committed")); err != nil {
		return nil, err
	}
	if om.rejected, err = m.Int64Counter("orders.rejected", metric.WithDescription("Orders rejected, by error code")); err != nil {
		return nil, err
	}
	if om.revenue, err = m.Float64Counter("orders.revenue", metric.WithUnit("{currency}")); err != nil {
		return nil, err
	}
	if om.items, err = m.Int64Histogram("orders.items", metric.WithDescription("Units per order")); err != nil {
		return nil, err
	}
	if om.sideEffects, err = m.Int64Counter("orders.side_effect_failures", metric.WithDescription("Failed post-order tasks")); err != nil {
		return nil, err
	}
	return &om, nil
}

// OrderPlaced implements orderapp.Metrics
func (m *OrderMetrics) OrderPlaced(ctx context.Context, o *order.Order) {
	m.placed.Add(ctx, 1)
	m.revenue.Add(ctx, o.TotalPrice.InexactFloat64())
	m.items.Record(ctx, int64(o.ItemCount()))
}

// OrderRejected implements orderapp.Metrics
func (m *OrderMetrics) OrderRejected(ctx context.Context, reason string) {
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// SideEffectFailed implements orderapp.Metrics
func (m *OrderMetrics) SideEffectFailed(ctx context.Context, task string) {
	m.sideEffects.Add(ctx, 1, metric.WithAttributes(attribute.String("task", task)))
}
