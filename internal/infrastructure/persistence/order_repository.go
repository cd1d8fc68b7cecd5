package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

var orderListQuery = listQuery{
	searchColumns: []string{"customer_name", "customer_email"},
	sortFields:    OrderSortFields,
	defaultSort:   "created_at",
	filterColumns: map[string]string{"status": "status"},
}

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC").Order("id ASC") }).
		First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindAll finds orders matching the filter, with items
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	var orders []order.Order
	query := orderListQuery.apply(r.db.WithContext(ctx).Model(&order.Order{}), filter)
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := orderListQuery.where(r.db.WithContext(ctx).Model(&order.Order{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts a new order with its items, or updates the mutable fields of an existing order.
// Line items are never rewritten after creation.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	db := r.db.WithContext(ctx)

	var exists int64
	if err := db.Model(&order.Order{}).Where("id = ?", o.ID).Count(&exists).Error; err != nil {
		return err
	}
	if exists == 0 {
		return db.Create(o).Error
	}

	return db.Model(&order.Order{}).
		Where("id = ?", o.ID).
		Updates(map[string]interface{}{
			"status":                o.Status,
			"is_paid":               o.IsPaid,
			"paid_at":               o.PaidAt,
			"payment_id":            o.PaymentResult.ID,
			"payment_status":        o.PaymentResult.Status,
			"payment_update_time":   o.PaymentResult.UpdateTime,
			"payment_email_address": o.PaymentResult.EmailAddress,
			"is_delivered":          o.IsDelivered,
			"delivered_at":          o.DeliveredAt,
			"updated_at":            o.UpdatedAt,
		}).Error
}

// Delete removes the order and its items
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&order.OrderItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&order.Order{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

var _ order.OrderRepository = (*GormOrderRepository)(nil)
