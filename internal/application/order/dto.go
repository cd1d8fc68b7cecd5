package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// MaxPageSize caps list page sizes
const MaxPageSize = 100

// AddressRequest is the buyer-supplied shipping address
type AddressRequest struct {
	Street  string `json:"street" binding:"required,max=255"`
	City    string `json:"city" binding:"required,max=100"`
	State   string `json:"state" binding:"max=100"`
	ZipCode string `json:"zipCode" binding:"required,max=20"`
	Country string `json:"country" binding:"required,max=100"`
}

// OrderItemRequest is one requested line
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// PlaceOrderRequest is the body of an order submission
type PlaceOrderRequest struct {
	CustomerName    string             `json:"customerName" binding:"required,max=100"`
	CustomerEmail   string             `json:"customerEmail" binding:"required,email"`
	CustomerPhone   string             `json:"customerPhone" binding:"max=50"`
	ShippingAddress AddressRequest     `json:"shippingAddress" binding:"required"`
	Items           []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod   string             `json:"paymentMethod" binding:"required,max=50"`
}

// UpdateStatusRequest carries the new status value
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PaymentRequest carries the payment provider result
type PaymentRequest struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"updateTime"`
	EmailAddress string `json:"emailAddress"`
}

// OrderListQuery carries paging, search and the optional status filter
type OrderListQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	Search    string `form:"search" binding:"max=200"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc ASC DESC"`
	Status    string `form:"status"`
}

// ToFilter converts the query to a repository filter
func (q OrderListQuery) ToFilter() (shared.Filter, error) {
	f := shared.Filter{
		Page:     q.Page,
		PageSize: q.PageSize,
		Search:   q.Search,
		OrderBy:  q.SortBy,
		OrderDir: q.SortOrder,
	}.Normalize(MaxPageSize)

	if q.Status != "" {
		status, err := order.ParseStatus(q.Status)
		if err != nil {
			return f, err
		}
		f.Filters["status"] = string(status)
	}
	return f, nil
}

// AddressResponse is the shipping address in API responses
type AddressResponse struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// OrderItemResponse is one line item snapshot
type OrderItemResponse struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

// PaymentResponse is the recorded payment result
type PaymentResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"updateTime"`
	EmailAddress string `json:"emailAddress"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	CustomerName    string              `json:"customerName"`
	CustomerEmail   string              `json:"customerEmail"`
	CustomerPhone   string              `json:"customerPhone"`
	ShippingAddress AddressResponse     `json:"shippingAddress"`
	Items           []OrderItemResponse `json:"items"`
	PaymentMethod   string              `json:"paymentMethod"`
	PaymentResult   *PaymentResponse    `json:"paymentResult,omitempty"`
	ItemsPrice      decimal.Decimal     `json:"itemsPrice"`
	ShippingPrice   decimal.Decimal     `json:"shippingPrice"`
	TaxPrice        decimal.Decimal     `json:"taxPrice"`
	TotalPrice      decimal.Decimal     `json:"totalPrice"`
	Status          string              `json:"status"`
	IsPaid          bool                `json:"isPaid"`
	PaidAt          *time.Time          `json:"paidAt,omitempty"`
	IsDelivered     bool                `json:"isDelivered"`
	DeliveredAt     *time.Time          `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Image:     item.Image,
		}
	}

	resp := OrderResponse{
		ID:            o.ID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		CustomerPhone: o.CustomerPhone,
		ShippingAddress: AddressResponse{
			Street:  o.ShippingAddress.Street,
			City:    o.ShippingAddress.City,
			State:   o.ShippingAddress.State,
			ZipCode: o.ShippingAddress.ZipCode,
			Country: o.ShippingAddress.Country,
		},
		Items:         items,
		PaymentMethod: o.PaymentMethod,
		ItemsPrice:    o.ItemsPrice,
		ShippingPrice: o.ShippingPrice,
		TaxPrice:      o.TaxPrice,
		TotalPrice:    o.TotalPrice,
		Status:        o.Status.String(),
		IsPaid:        o.IsPaid,
		PaidAt:        o.PaidAt,
		IsDelivered:   o.IsDelivered,
		DeliveredAt:   o.DeliveredAt,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.PaymentResult.ID != "" || o.PaymentResult.Status != "" {
		resp.PaymentResult = &PaymentResponse{
			ID:           o.PaymentResult.ID,
			Status:       o.PaymentResult.Status,
			UpdateTime:   o.PaymentResult.UpdateTime,
			EmailAddress: o.PaymentResult.EmailAddress,
		}
	}
	return resp
}

// EmailStatus reports the outcome of the post-order emails
type EmailStatus struct {
	ConfirmationSent bool     `json:"confirmationSent"`
	NotificationSent bool     `json:"notificationSent"`
	Errors           []string `json:"errors"`
}

// PlaceOrderResult is returned by a successful placement
type PlaceOrderResult struct {
	Order       OrderResponse `json:"order"`
	EmailStatus EmailStatus   `json:"emailStatus"`
}
