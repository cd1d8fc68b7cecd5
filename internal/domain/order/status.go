package order

import (
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
)

// Status is the fulfilment status of an order.
// Any status may follow any other; there is no transition guard.
type Status string

const (
	StatusReceived   Status = "received"
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

// InitialStatus is assigned to every newly placed order
const InitialStatus = StatusReceived

var validStatuses = map[Status]struct{}{
	StatusReceived:   {},
	StatusPending:    {},
	StatusProcessing: {},
	StatusShipped:    {},
	StatusDelivered:  {},
	StatusDone:       {},
	StatusCancelled:  {},
}

// AllStatuses returns every accepted status value
func AllStatuses() []Status {
	return []Status{
		StatusReceived,
		StatusPending,
		StatusProcessing,
		StatusShipped,
		StatusDelivered,
		StatusDone,
		StatusCancelled,
	}
}

// IsValid reports whether s belongs to the status vocabulary
func (s Status) IsValid() bool {
	_, ok := validStatuses[s]
	return ok
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// ParseStatus normalises and validates a status value
func ParseStatus(value string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(value)))
	if !s.IsValid() {
		return "", shared.NewDomainError(shared.CodeInvalidStatus, "Invalid order status: "+value)
	}
	return s, nil
}
