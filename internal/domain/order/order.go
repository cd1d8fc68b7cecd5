package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// ShippingAddress is the buyer-supplied delivery address
type ShippingAddress struct {
	Street  string `gorm:"type:varchar(255)"`
	City    string `gorm:"type:varchar(100)"`
	State   string `gorm:"type:varchar(100)"`
	ZipCode string `gorm:"type:varchar(20)"`
	Country string `gorm:"type:varchar(100)"`
}

// PaymentResult records what the payment provider reported
type PaymentResult struct {
	ID           string `gorm:"type:varchar(100)"`
	Status       string `gorm:"type:varchar(50)"`
	UpdateTime   string `gorm:"type:varchar(50)"`
	EmailAddress string `gorm:"type:varchar(255)"`
}

// OrderItem is a snapshot of a product at the time the order was placed.
// Later edits or deletion of the product do not affect it.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Price     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity  int             `gorm:"not null"`
	Image     string          `gorm:"type:varchar(500)"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// Subtotal returns price times quantity
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is an immutable snapshot of a checkout. Only the status and the
// payment and delivery flags change after creation.
type Order struct {
	shared.BaseAggregateRoot
	CustomerName    string          `gorm:"type:varchar(100);not null"`
	CustomerEmail   string          `gorm:"type:varchar(255);not null;index"`
	CustomerPhone   string          `gorm:"type:varchar(50)"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PaymentMethod   string          `gorm:"type:varchar(50);not null"`
	PaymentResult   PaymentResult   `gorm:"embedded;embeddedPrefix:payment_"`
	ItemsPrice      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ShippingPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxPrice        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status          Status          `gorm:"type:varchar(20);not null;index"`
	IsPaid          bool            `gorm:"not null;default:false"`
	PaidAt          *time.Time
	IsDelivered     bool `gorm:"not null;default:false"`
	DeliveredAt     *time.Time
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// Customer holds the buyer contact snapshot
type Customer struct {
	Name  string
	Email string
	Phone string
}

// Line pairs a product as read at placement time with the requested quantity
type Line struct {
	Product  *catalog.Product
	Quantity int
}

// NewOrder builds an order from product snapshots and computes its totals.
// Stock is not touched here; the caller decrements it in the same transaction.
func NewOrder(customer Customer, address ShippingAddress, paymentMethod string, lines []Line) (*Order, error) {
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Email = strings.TrimSpace(customer.Email)
	if customer.Name == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Customer name is required")
	}
	if customer.Email == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Customer email is required")
	}
	if strings.TrimSpace(paymentMethod) == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Payment method is required")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Order must contain at least one item")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerName:      customer.Name,
		CustomerEmail:     customer.Email,
		CustomerPhone:     customer.Phone,
		ShippingAddress:   address,
		PaymentMethod:     paymentMethod,
		Status:            InitialStatus,
		Items:             make([]OrderItem, 0, len(lines)),
	}

	for _, line := range lines {
		if line.Product == nil {
			return nil, shared.NewDomainError(shared.CodeValidation, "Order item product is required")
		}
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError(shared.CodeValidation, "Quantity must be at least 1 for product "+line.Product.Name)
		}
		o.Items = append(o.Items, OrderItem{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			Price:     line.Product.Price,
			Quantity:  line.Quantity,
			Image:     line.Product.PrimaryImage(),
			CreatedAt: o.CreatedAt,
		})
	}

	pricing := CalculatePricing(o.Items)
	o.ItemsPrice = pricing.ItemsPrice
	o.ShippingPrice = pricing.ShippingPrice
	o.TaxPrice = pricing.TaxPrice
	o.TotalPrice = pricing.TotalPrice

	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

// ChangeStatus overwrites the status. It returns the previous value and
// whether the value actually changed.
func (o *Order) ChangeStatus(status Status) (Status, bool, error) {
	if !status.IsValid() {
		return o.Status, false, shared.NewDomainError(shared.CodeInvalidStatus, "Invalid order status: "+string(status))
	}
	old := o.Status
	if old == status {
		return old, false, nil
	}
	o.Status = status
	o.Touch()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, old))
	return old, true, nil
}

// MarkPaid records a successful payment
func (o *Order) MarkPaid(result PaymentResult) {
	now := time.Now()
	o.IsPaid = true
	o.PaidAt = &now
	o.PaymentResult = result
	o.Touch()
}

// MarkDelivered records delivery
func (o *Order) MarkDelivered() {
	now := time.Now()
	o.IsDelivered = true
	o.DeliveredAt = &now
	o.Touch()
}

// ItemCount returns the total number of units across all lines
func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}
