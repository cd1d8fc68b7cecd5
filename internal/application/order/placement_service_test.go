package order_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/notification"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeMailer records sent emails and can be told to fail
type fakeMailer struct {
	mu              sync.Mutex
	confirmations   []uuid.UUID
	adminNotices    []uuid.UUID
	confirmationErr error
	adminErr        error
}

func (m *fakeMailer) SendOrderConfirmation(_ context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.confirmationErr != nil {
		return m.confirmationErr
	}
	m.confirmations = append(m.confirmations, o.ID)
	return nil
}

func (m *fakeMailer) SendAdminNotification(_ context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.adminErr != nil {
		return m.adminErr
	}
	m.adminNotices = append(m.adminNotices, o.ID)
	return nil
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type placementFixture struct {
	db            *gorm.DB
	products      *persistence.GormProductRepository
	orders        *persistence.GormOrderRepository
	notifications *persistence.GormNotificationRepository
	mailer        *fakeMailer
	publisher     *recordingPublisher
	placement     *orderapp.PlacementService
	orderService  *orderapp.OrderService
}

func newPlacementFixture(t *testing.T, opts ...orderapp.PlacementOption) *placementFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, persistence.AutoMigrate(db))

	f := &placementFixture{
		db:            db,
		products:      persistence.NewGormProductRepository(db),
		orders:        persistence.NewGormOrderRepository(db),
		notifications: persistence.NewGormNotificationRepository(db),
		mailer:        &fakeMailer{},
		publisher:     &recordingPublisher{},
	}

	opts = append([]orderapp.PlacementOption{
		orderapp.WithEventPublisher(f.publisher),
		orderapp.WithDispatcher(orderapp.NewDispatcher(time.Second, nil)),
	}, opts...)
	f.placement = orderapp.NewPlacementService(
		persistence.NewGormOrderTransactionScope(db),
		f.notifications,
		f.mailer,
		opts...,
	)
	f.orderService = orderapp.NewOrderService(f.orders, f.notifications, f.publisher, nil)
	return f
}

func (f *placementFixture) product(t *testing.T, name string, price int64, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductInput{Name: name, Price: decimal.NewFromInt(price), Stock: stock})
	require.NoError(t, err)
	require.NoError(t, f.products.Save(context.Background(), p))
	return p
}

func (f *placementFixture) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := f.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (f *placementFixture) orderCount(t *testing.T) int64 {
	t.Helper()
	n, err := f.orders.Count(context.Background(), shared.Filter{})
	require.NoError(t, err)
	return n
}

func checkout(items ...orderapp.OrderItemRequest) orderapp.PlaceOrderRequest {
	return orderapp.PlaceOrderRequest{
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@example.com",
		CustomerPhone: "555-0100",
		ShippingAddress: orderapp.AddressRequest{
			Street: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701", Country: "US",
		},
		Items:         items,
		PaymentMethod: "cash_on_delivery",
	}
}

func line(p *catalog.Product, qty int) orderapp.OrderItemRequest {
	return orderapp.OrderItemRequest{ProductID: p.ID, Quantity: qty}
}

func TestPlaceOrder_TwoProducts(t *testing.T) {
	f := newPlacementFixture(t)
	ctx := context.Background()
	a := f.product(t, "Product A", 100, 5)
	b := f.product(t, "Product B", 50, 1)

	result, err := f.placement.PlaceOrder(ctx, checkout(line(a, 2), line(b, 1)), "")
	require.NoError(t, err)

	o := result.Order
	assert.Equal(t, "250", o.ItemsPrice.String())
	assert.Equal(t, "0", o.ShippingPrice.String())
	assert.Equal(t, "25", o.TaxPrice.String())
	assert.Equal(t, "275", o.TotalPrice.String())
	assert.Equal(t, "received", o.Status)
	assert.False(t, o.IsPaid)
	assert.False(t, o.IsDelivered)
	require.Len(t, o.Items, 2)

	assert.Equal(t, 3, f.stock(t, a.ID))
	assert.Equal(t, 0, f.stock(t, b.ID))

	assert.True(t, result.EmailStatus.ConfirmationSent)
	assert.True(t, result.EmailStatus.NotificationSent)
	assert.Empty(t, result.EmailStatus.Errors)
	assert.Equal(t, []uuid.UUID{o.ID}, f.mailer.confirmations)
	assert.Equal(t, []uuid.UUID{o.ID}, f.mailer.adminNotices)

	feed, err := f.notifications.FindAll(ctx, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, notification.TypeOrder, feed[0].Type)
	assert.Equal(t, "New Order Received", feed[0].Title)
	assert.Contains(t, feed[0].Message, o.ID.String())
	assert.Contains(t, feed[0].Message, "Jane Doe")

	assert.Equal(t, []string{order.EventTypeOrderPlaced}, f.publisher.types())

	t.Run("second order for sold out product is rejected", func(t *testing.T) {
		_, err := f.placement.PlaceOrder(ctx, checkout(line(b, 1)), "")
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, "Insufficient stock for product Product B", err.Error())
		assert.Equal(t, int64(1), f.orderCount(t))
		assert.Equal(t, 0, f.stock(t, b.ID))
	})
}

func TestPlaceOrder_RejectionLeavesNoTrace(t *testing.T) {
	f := newPlacementFixture(t)
	ctx := context.Background()
	a := f.product(t, "Product A", 100, 5)
	b := f.product(t, "Product B", 50, 1)

	t.Run("insufficient stock on a later line", func(t *testing.T) {
		_, err := f.placement.PlaceOrder(ctx, checkout(line(a, 2), line(b, 3)), "")
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, 5, f.stock(t, a.ID))
		assert.Equal(t, 1, f.stock(t, b.ID))
	})

	t.Run("same product twice beyond stock", func(t *testing.T) {
		_, err := f.placement.PlaceOrder(ctx, checkout(line(b, 1), line(b, 1)), "")
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, 1, f.stock(t, b.ID))
	})

	t.Run("unknown product", func(t *testing.T) {
		missing := uuid.New()
		_, err := f.placement.PlaceOrder(ctx, checkout(line(a, 1), orderapp.OrderItemRequest{ProductID: missing, Quantity: 1}), "")
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, "Product "+missing.String()+" not found", err.Error())
		assert.Equal(t, 5, f.stock(t, a.ID))
	})

	assert.Zero(t, f.orderCount(t))
	assert.Empty(t, f.mailer.confirmations)
	assert.Empty(t, f.publisher.types())

	unread, err := f.notifications.CountUnread(ctx)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestPlaceOrder_FailingEmailStillSucceeds(t *testing.T) {
	f := newPlacementFixture(t)
	f.mailer.confirmationErr = errors.New("smtp: connection refused")
	f.mailer.adminErr = errors.New("smtp: connection refused")
	ctx := context.Background()
	a := f.product(t, "Product A", 30, 5)

	result, err := f.placement.PlaceOrder(ctx, checkout(line(a, 1)), "")
	require.NoError(t, err)

	assert.False(t, result.EmailStatus.ConfirmationSent)
	assert.False(t, result.EmailStatus.NotificationSent)
	assert.Len(t, result.EmailStatus.Errors, 2)

	persisted, err := f.orders.FindByID(ctx, result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, "40", persisted.TotalPrice.Sub(persisted.TaxPrice).String())
	assert.Equal(t, 4, f.stock(t, a.ID))

	unread, err := f.notifications.CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestPlaceOrder_IdempotencyKey(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	f := newPlacementFixture(t, orderapp.WithIdempotency(store, shared.DefaultIdempotencyConfig()))
	ctx := context.Background()
	a := f.product(t, "Product A", 100, 5)
	b := f.product(t, "Product B", 50, 1)

	_, err := f.placement.PlaceOrder(ctx, checkout(line(a, 1)), "checkout-1")
	require.NoError(t, err)

	_, err = f.placement.PlaceOrder(ctx, checkout(line(a, 1)), "checkout-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConflict)
	assert.Equal(t, 4, f.stock(t, a.ID))
	assert.Equal(t, int64(1), f.orderCount(t))

	t.Run("failed placement releases the key", func(t *testing.T) {
		_, err := f.placement.PlaceOrder(ctx, checkout(line(b, 2)), "checkout-2")
		require.ErrorIs(t, err, shared.ErrInsufficientStock)

		_, err = f.placement.PlaceOrder(ctx, checkout(line(b, 1)), "checkout-2")
		require.NoError(t, err)
	})

	t.Run("requests without a key are never deduplicated", func(t *testing.T) {
		_, err := f.placement.PlaceOrder(ctx, checkout(line(a, 1)), "")
		require.NoError(t, err)
		_, err = f.placement.PlaceOrder(ctx, checkout(line(a, 1)), "")
		require.NoError(t, err)
	})
}

func TestPlaceOrder_ConcurrentBuyersNeverOversell(t *testing.T) {
	f := newPlacementFixture(t)
	ctx := context.Background()
	last := f.product(t, "Last Unit", 20, 3)

	const buyers = 8
	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.placement.PlaceOrder(ctx, checkout(line(last, 1)), "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 0, f.stock(t, last.ID))
	assert.Equal(t, int64(3), f.orderCount(t))
}

func TestOrderService_UpdateStatus(t *testing.T) {
	f := newPlacementFixture(t)
	ctx := context.Background()
	a := f.product(t, "Product A", 100, 5)

	result, err := f.placement.PlaceOrder(ctx, checkout(line(a, 1)), "")
	require.NoError(t, err)
	id := result.Order.ID

	statusEntries := func() []notification.Notification {
		all, err := f.notifications.FindAll(ctx, shared.Filter{})
		require.NoError(t, err)
		var out []notification.Notification
		for _, n := range all {
			if n.Title == "Order Status Updated" {
				out = append(out, n)
			}
		}
		return out
	}

	updated, err := f.orderService.UpdateStatus(ctx, id, "done")
	require.NoError(t, err)
	assert.Equal(t, "done", updated.Status)

	entries := statusEntries()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "from received to done")
	orderID, ok := entries[0].OrderID()
	require.True(t, ok)
	assert.Equal(t, id, orderID)

	t.Run("same status writes no entry", func(t *testing.T) {
		_, err := f.orderService.UpdateStatus(ctx, id, "done")
		require.NoError(t, err)
		assert.Len(t, statusEntries(), 1)
	})

	t.Run("any status may follow any other", func(t *testing.T) {
		_, err := f.orderService.UpdateStatus(ctx, id, "received")
		require.NoError(t, err)
		assert.Len(t, statusEntries(), 2)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		_, err := f.orderService.UpdateStatus(ctx, id, "teleported")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, shared.CodeInvalidStatus, domainErr.Code)
	})

	t.Run("unknown order is not found", func(t *testing.T) {
		_, err := f.orderService.UpdateStatus(ctx, uuid.New(), "done")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	persisted, err := f.orders.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, order.StatusReceived, persisted.Status)
}

func TestOrderService_PayDeliverDelete(t *testing.T) {
	f := newPlacementFixture(t)
	ctx := context.Background()
	a := f.product(t, "Product A", 100, 5)

	result, err := f.placement.PlaceOrder(ctx, checkout(line(a, 1)), "")
	require.NoError(t, err)
	id := result.Order.ID

	paid, err := f.orderService.MarkPaid(ctx, id, orderapp.PaymentRequest{ID: "pay_1", Status: "COMPLETED"})
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.NotNil(t, paid.PaidAt)
	require.NotNil(t, paid.PaymentResult)
	assert.Equal(t, "pay_1", paid.PaymentResult.ID)

	delivered, err := f.orderService.MarkDelivered(ctx, id)
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)

	page, err := f.orderService.List(ctx, orderapp.OrderListQuery{Status: "received", Search: "jane"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	require.NoError(t, f.orderService.Delete(ctx, id))
	_, err = f.orderService.GetByID(ctx, id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, 4, f.stock(t, a.ID))
}
