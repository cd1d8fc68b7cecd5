package email

import (
	"context"
	"errors"
	"fmt"
	"html/template"

	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/order"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Config holds SMTP settings for the sender
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromName    string
	FromAddress string
	// AdminEmail receives the new order notification
	AdminEmail string
}

// Dialer delivers composed messages; *gomail.Dialer satisfies it
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender sends order emails over SMTP
type SMTPSender struct {
	cfg    Config
	dialer Dialer
	logger *zap.Logger
}

var _ orderapp.Mailer = (*SMTPSender)(nil)

// NewSMTPSender creates a sender that dials cfg.Host for every message
func NewSMTPSender(cfg Config, logger *zap.Logger) *SMTPSender {
	return NewSMTPSenderWithDialer(cfg, gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), logger)
}

// NewSMTPSenderWithDialer creates a sender with a custom dialer
func NewSMTPSenderWithDialer(cfg Config, dialer Dialer, logger *zap.Logger) *SMTPSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPSender{cfg: cfg, dialer: dialer, logger: logger.Named("email")}
}

// SendOrderConfirmation mails the order summary to the buyer
func (s *SMTPSender) SendOrderConfirmation(ctx context.Context, o *order.Order) error {
	return s.send(ctx, o.CustomerEmail, subjectConfirmation, confirmationTmpl, o)
}

// SendAdminNotification mails the shop owner about a new order
func (s *SMTPSender) SendAdminNotification(ctx context.Context, o *order.Order) error {
	if s.cfg.AdminEmail == "" {
		return errors.New("admin email is not configured")
	}
	return s.send(ctx, s.cfg.AdminEmail, subjectAdmin, adminTmpl, o)
}

func (s *SMTPSender) send(ctx context.Context, to, subject string, tmpl *template.Template, o *order.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := render(tmpl, o)
	if err != nil {
		return fmt.Errorf("failed to render %q: %w", subject, err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.FromAddress, s.cfg.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	// gomail has no context support; the dial runs aside so the caller's
	// deadline still bounds the wait.
	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send %q to %s: %w", subject, to, err)
		}
		s.logger.Info("Email sent", zap.String("subject", subject), zap.String("order_id", o.ID.String()))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
