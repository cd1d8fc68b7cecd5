package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/notification"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderService handles back-office operations on existing orders
type OrderService struct {
	orderRepo     order.OrderRepository
	notifications notification.Repository
	publisher     shared.EventPublisher
	logger        *zap.Logger
}

// NewOrderService creates a new OrderService. publisher and logger may be nil.
func NewOrderService(
	orderRepo order.OrderRepository,
	notifications notification.Repository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo:     orderRepo,
		notifications: notifications,
		publisher:     publisher,
		logger:        logger,
	}
}

// GetByID retrieves an order with its items
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// List returns one page of orders, newest first by default
func (s *OrderService) List(ctx context.Context, query OrderListQuery) (shared.Paginated[OrderResponse], error) {
	filter, err := query.ToFilter()
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}

	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}

	items := make([]OrderResponse, len(orders))
	for i := range orders {
		items[i] = ToOrderResponse(&orders[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// UpdateStatus overwrites the order status. Any status may follow any other.
// A feed entry is written only when the value actually changes.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, rawStatus string) (*OrderResponse, error) {
	status, err := order.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	old, changed, err := o.ChangeStatus(status)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.orderRepo.Save(ctx, o); err != nil {
			return nil, err
		}

		entry := notification.NewOrderStatusChanged(o.ID, old.String(), status.String())
		if err := s.notifications.Create(ctx, entry); err != nil {
			s.logger.Warn("failed to record status notification",
				zap.String("order_id", o.ID.String()),
				zap.Error(err),
			)
		}
		s.publishEvents(ctx, o)
	}

	resp := ToOrderResponse(o)
	return &resp, nil
}

// MarkPaid records the payment result
func (s *OrderService) MarkPaid(ctx context.Context, id uuid.UUID, req PaymentRequest) (*OrderResponse, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	o.MarkPaid(order.PaymentResult{
		ID:           req.ID,
		Status:       req.Status,
		UpdateTime:   req.UpdateTime,
		EmailAddress: req.EmailAddress,
	})
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	resp := ToOrderResponse(o)
	return &resp, nil
}

// MarkDelivered records delivery
func (s *OrderService) MarkDelivered(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	o.MarkDelivered()
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	resp := ToOrderResponse(o)
	return &resp, nil
}

// Delete hard-deletes an order and its items. Stock is not restored.
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return orderNotFound()
		}
		return err
	}
	return nil
}

func (s *OrderService) find(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, orderNotFound()
		}
		return nil, err
	}
	return o, nil
}

func (s *OrderService) publishEvents(ctx context.Context, o *order.Order) {
	events := o.GetDomainEvents()
	o.ClearDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish order events", zap.String("order_id", o.ID.String()), zap.Error(err))
	}
}

func orderNotFound() error {
	return shared.NewDomainError(shared.CodeNotFound, "Order not found")
}
