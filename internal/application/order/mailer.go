package order

import (
	"context"

	"github.com/storefront/backend/internal/domain/order"
)

// Mailer sends the two emails that follow a placed order
type Mailer interface {
	// SendOrderConfirmation mails the buyer a summary of the order
	SendOrderConfirmation(ctx context.Context, o *order.Order) error
	// SendAdminNotification mails the shop owner about the new order
	SendAdminNotification(ctx context.Context, o *order.Order) error
}
