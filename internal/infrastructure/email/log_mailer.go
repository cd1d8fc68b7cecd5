package email

import (
	"context"

	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/order"
	"go.uber.org/zap"
)

// LogMailer stands in for SMTP when it is disabled. It records what would
// have been sent and always succeeds.
type LogMailer struct {
	logger *zap.Logger
}

var _ orderapp.Mailer = (*LogMailer)(nil)

// NewLogMailer creates a LogMailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger.Named("email")}
}

// SendOrderConfirmation logs the confirmation instead of sending it
func (m *LogMailer) SendOrderConfirmation(ctx context.Context, o *order.Order) error {
	m.logger.Info("SMTP disabled, skipping email",
		zap.String("subject", subjectConfirmation),
		zap.String("to", o.CustomerEmail),
		zap.String("order_id", o.ID.String()),
	)
	return nil
}

// SendAdminNotification logs the admin notification instead of sending it
func (m *LogMailer) SendAdminNotification(ctx context.Context, o *order.Order) error {
	m.logger.Info("SMTP disabled, skipping email",
		zap.String("subject", subjectAdmin),
		zap.String("order_id", o.ID.String()),
	)
	return nil
}
