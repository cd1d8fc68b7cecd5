package notification

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Type classifies a notification
type Type string

const (
	TypeOrder  Type = "order"
	TypeSystem Type = "system"
	TypeAlert  Type = "alert"
)

// IsValid reports whether t is a known notification type
func (t Type) IsValid() bool {
	switch t {
	case TypeOrder, TypeSystem, TypeAlert:
		return true
	}
	return false
}

// Data is the free-form payload attached to a notification
type Data map[string]interface{}

// Value implements driver.Valuer for JSON storage
func (d Data) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON storage
func (d *Data) Scan(value interface{}) error {
	if value == nil {
		*d = Data{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan notification data: unsupported type")
	}

	if len(bytes) == 0 {
		*d = Data{}
		return nil
	}
	return json.Unmarshal(bytes, d)
}

// Notification is an entry in the admin feed.
// Only the Read flag changes after creation.
type Notification struct {
	shared.BaseEntity
	Title   string `gorm:"type:varchar(200);not null"`
	Message string `gorm:"type:text;not null"`
	Type    Type   `gorm:"type:varchar(20);not null;default:'system'"`
	Read    bool   `gorm:"not null;default:false;index"`
	Data    Data   `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

// New creates an unread notification; an empty type defaults to system
func New(title, message string, typ Type, data Data) (*Notification, error) {
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if title == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Notification title is required")
	}
	if message == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Notification message is required")
	}
	if typ == "" {
		typ = TypeSystem
	}
	if !typ.IsValid() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Invalid notification type: "+string(typ))
	}
	if data == nil {
		data = Data{}
	}

	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		Title:      title,
		Message:    message,
		Type:       typ,
		Data:       data,
	}, nil
}

// NewOrderReceived builds the feed entry for a freshly placed order
func NewOrderReceived(orderID uuid.UUID, customerName string) *Notification {
	n, _ := New(
		"New Order Received",
		"Order #"+orderID.String()+" has been received from "+customerName,
		TypeOrder,
		Data{"orderId": orderID.String()},
	)
	return n
}

// NewOrderStatusChanged builds the feed entry for a status transition
func NewOrderStatusChanged(orderID uuid.UUID, oldStatus, newStatus string) *Notification {
	n, _ := New(
		"Order Status Updated",
		"Order #"+orderID.String()+" status changed from "+oldStatus+" to "+newStatus,
		TypeOrder,
		Data{"orderId": orderID.String()},
	)
	return n
}

// MarkRead flips the read flag; it reports whether anything changed
func (n *Notification) MarkRead() bool {
	if n.Read {
		return false
	}
	n.Read = true
	n.Touch()
	return true
}

// OrderID returns the order id carried in the payload, if any
func (n *Notification) OrderID() (uuid.UUID, bool) {
	raw, ok := n.Data["orderId"].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
