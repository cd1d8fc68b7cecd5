package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/notification"
	"github.com/storefront/backend/internal/domain/shared"
)

// MaxPageSize caps list page sizes
const MaxPageSize = 100

// ListQuery carries paging and the optional read filter
type ListQuery struct {
	Page     int   `form:"page" binding:"omitempty,min=1"`
	PageSize int   `form:"pageSize" binding:"omitempty,min=1,max=100"`
	Read     *bool `form:"read"`
}

// ToFilter converts the query to a repository filter, newest first
func (q ListQuery) ToFilter() shared.Filter {
	f := shared.Filter{
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  "created_at",
		OrderDir: shared.OrderDesc,
	}.Normalize(MaxPageSize)
	if q.Read != nil {
		f.Filters["read"] = *q.Read
	}
	return f
}

// Response represents a notification in API responses
type Response struct {
	ID        uuid.UUID              `json:"id"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Type      string                 `json:"type"`
	Read      bool                   `json:"read"`
	Data      map[string]interface{} `json:"data"`
	CreatedAt time.Time              `json:"createdAt"`
}

// ToResponse converts a domain Notification to Response
func ToResponse(n *notification.Notification) Response {
	data := map[string]interface{}(n.Data)
	if data == nil {
		data = map[string]interface{}{}
	}
	return Response{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		Read:      n.Read,
		Data:      data,
		CreatedAt: n.CreatedAt,
	}
}

// Page is one page of the feed plus the global unread count
type Page struct {
	shared.Paginated[Response]
	UnreadCount int64 `json:"unreadCount"`
}
