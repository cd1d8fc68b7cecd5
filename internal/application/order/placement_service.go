package order

import (
	"context"
	"errors"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/notification"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const idempotencyKeyPrefix = "place-order:"

var tracer = otel.Tracer("github.com/storefront/backend/internal/application/order")

// PlacementService turns a checkout request into a persisted order.
// Stock checks, stock decrements and the order write share one transaction;
// emails and the feed entry run afterwards and never fail the request.
type PlacementService struct {
	scope         TransactionScope
	notifications notification.Repository
	mailer        Mailer
	dispatcher    *Dispatcher
	publisher     shared.EventPublisher
	idempotency   shared.IdempotencyStore
	idemConfig    shared.IdempotencyConfig
	metrics       Metrics
	logger        *zap.Logger
}

// PlacementOption configures a PlacementService
type PlacementOption func(*PlacementService)

// WithIdempotency enables the duplicate submission guard
func WithIdempotency(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) PlacementOption {
	return func(s *PlacementService) {
		s.idempotency = store
		s.idemConfig = cfg
	}
}

// WithDispatcher replaces the default side-effect dispatcher
func WithDispatcher(d *Dispatcher) PlacementOption {
	return func(s *PlacementService) {
		s.dispatcher = d
	}
}

// WithEventPublisher sets where OrderPlaced events go
func WithEventPublisher(p shared.EventPublisher) PlacementOption {
	return func(s *PlacementService) {
		s.publisher = p
	}
}

// WithMetrics sets the placement counters
func WithMetrics(m Metrics) PlacementOption {
	return func(s *PlacementService) {
		s.metrics = m
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) PlacementOption {
	return func(s *PlacementService) {
		s.logger = logger
	}
}

// NewPlacementService creates a PlacementService. mailer may be nil, in which
// case no emails are attempted.
func NewPlacementService(
	scope TransactionScope,
	notifications notification.Repository,
	mailer Mailer,
	opts ...PlacementOption,
) *PlacementService {
	s := &PlacementService{
		scope:         scope,
		notifications: notifications,
		mailer:        mailer,
		metrics:       nopMetrics{},
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.dispatcher == nil {
		s.dispatcher = NewDispatcher(0, s.logger)
	}
	return s
}

// PlaceOrder validates stock, decrements it, persists the order and then runs
// the post-order side effects. idempotencyKey may be empty.
func (s *PlacementService) PlaceOrder(ctx context.Context, req PlaceOrderRequest, idempotencyKey string) (result *PlaceOrderResult, err error) {
	ctx, span := tracer.Start(ctx, "PlacementService.PlaceOrder")
	defer span.End()
	span.SetAttributes(attribute.Int("order.lines", len(req.Items)))

	if idempotencyKey != "" && s.idempotency != nil && s.idemConfig.Enabled {
		claimed, claimErr := s.idempotency.Claim(ctx, idempotencyKeyPrefix+idempotencyKey, s.idemConfig.TTL)
		switch {
		case claimErr != nil:
			s.logger.Warn("idempotency store unavailable, placing order without duplicate guard", zap.Error(claimErr))
		case !claimed:
			return nil, shared.NewDomainError(shared.CodeConflict, "Order already submitted")
		default:
			defer func() {
				if err != nil {
					s.releaseKey(ctx, idempotencyKey)
				}
			}()
		}
	}

	placed, err := s.commit(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.OrderRejected(ctx, rejectionReason(err))
		return nil, err
	}
	span.SetAttributes(attribute.String("order.id", placed.ID.String()))
	s.metrics.OrderPlaced(ctx, placed)

	s.logger.Info("order placed",
		zap.String("order_id", placed.ID.String()),
		zap.String("total", placed.TotalPrice.String()),
		zap.Int("items", placed.ItemCount()),
	)

	status := s.dispatchSideEffects(ctx, placed)
	s.publishEvents(ctx, placed)

	return &PlaceOrderResult{
		Order:       ToOrderResponse(placed),
		EmailStatus: status,
	}, nil
}

// commit runs the stock checks, decrements and the order insert in one transaction
func (s *PlacementService) commit(ctx context.Context, req PlaceOrderRequest) (*order.Order, error) {
	var placed *order.Order

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		products := repos.ProductRepo()

		lines := make([]order.Line, 0, len(req.Items))
		for _, item := range req.Items {
			if item.Quantity < 1 {
				return shared.NewDomainError(shared.CodeValidation, "Quantity must be at least 1")
			}
			product, err := products.FindByID(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return catalog.NewProductNotFoundError(item.ProductID)
				}
				return err
			}
			if !product.HasStock(item.Quantity) {
				return catalog.NewInsufficientStockError(product.Name)
			}
			lines = append(lines, order.Line{Product: product, Quantity: item.Quantity})
		}

		o, err := order.NewOrder(
			order.Customer{Name: req.CustomerName, Email: req.CustomerEmail, Phone: req.CustomerPhone},
			order.ShippingAddress{
				Street:  req.ShippingAddress.Street,
				City:    req.ShippingAddress.City,
				State:   req.ShippingAddress.State,
				ZipCode: req.ShippingAddress.ZipCode,
				Country: req.ShippingAddress.Country,
			},
			req.PaymentMethod,
			lines,
		)
		if err != nil {
			return err
		}

		// The conditional decrement is the authoritative check; the read above
		// only produces a friendly error for the common case.
		for _, line := range lines {
			if err := products.DecrementStock(ctx, line.Product.ID, line.Quantity); err != nil {
				if errors.Is(err, shared.ErrInsufficientStock) {
					return catalog.NewInsufficientStockError(line.Product.Name)
				}
				return err
			}
		}

		if err := repos.OrderRepo().Save(ctx, o); err != nil {
			return err
		}
		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// dispatchSideEffects sends both emails and writes the feed entry concurrently
func (s *PlacementService) dispatchSideEffects(ctx context.Context, o *order.Order) EmailStatus {
	tasks := []Task{{
		Name: TaskNotification,
		Run: func(ctx context.Context) error {
			return s.notifications.Create(ctx, notification.NewOrderReceived(o.ID, o.CustomerName))
		},
	}}
	if s.mailer != nil {
		tasks = append(tasks,
			Task{Name: TaskConfirmationEmail, Run: func(ctx context.Context) error {
				return s.mailer.SendOrderConfirmation(ctx, o)
			}},
			Task{Name: TaskAdminEmail, Run: func(ctx context.Context) error {
				return s.mailer.SendAdminNotification(ctx, o)
			}},
		)
	}

	outcomes := s.dispatcher.Dispatch(ctx, tasks...)
	for _, out := range outcomes {
		if !out.OK() {
			s.metrics.SideEffectFailed(ctx, out.Name)
		}
	}

	status := EmailStatus{Errors: []string{}}
	if s.mailer == nil {
		return status
	}
	if out, ok := outcomes.Get(TaskConfirmationEmail); ok {
		status.ConfirmationSent = out.OK()
		if !out.OK() {
			status.Errors = append(status.Errors, "Failed to send confirmation email")
		}
	}
	if out, ok := outcomes.Get(TaskAdminEmail); ok {
		status.NotificationSent = out.OK()
		if !out.OK() {
			status.Errors = append(status.Errors, "Failed to send admin notification email")
		}
	}
	return status
}

func (s *PlacementService) publishEvents(ctx context.Context, o *order.Order) {
	events := o.GetDomainEvents()
	o.ClearDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish order events", zap.String("order_id", o.ID.String()), zap.Error(err))
	}
}

func rejectionReason(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return "INTERNAL"
}

func (s *PlacementService) releaseKey(ctx context.Context, key string) {
	if err := s.idempotency.Release(context.WithoutCancel(ctx), idempotencyKeyPrefix+key); err != nil {
		s.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}
