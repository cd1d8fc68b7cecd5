package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	notificationapp "github.com/storefront/backend/internal/application/notification"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// NotificationListResponse is the paged feed plus the unread badge count
// @Description Notification feed page
type NotificationListResponse struct {
	Success     bool                       `json:"success" example:"true"`
	Data        []notificationapp.Response `json:"data"`
	Meta        *dto.Meta                  `json:"meta"`
	UnreadCount int64                      `json:"unreadCount"`
}

// NotificationHandler handles the admin notification feed
type NotificationHandler struct {
	BaseHandler
	notifications *notificationapp.Service
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *notificationapp.Service) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List godoc
// @Summary      List notifications
// @Description  Newest first
// @Tags         notifications
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Items per page" default(20)
// @Param        read query bool false "Read filter"
// @Success      200 {object} NotificationListResponse
// @Security     BearerAuth
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	var query notificationapp.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	page, err := h.notifications.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := dto.NewPagedResponse(page.Paginated)
	c.JSON(http.StatusOK, NotificationListResponse{
		Success:     true,
		Data:        page.Items,
		Meta:        resp.Meta,
		UnreadCount: page.UnreadCount,
	})
}

// MarkRead godoc
// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Param        id path string true "Notification ID" format(uuid)
// @Success      200 {object} dto.Response{data=notificationapp.Response}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := h.ParamID(c, "notification")
	if !ok {
		return
	}

	n, err := h.notifications.MarkRead(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, n)
}

// MarkAllRead godoc
// @Summary      Mark every notification read
// @Tags         notifications
// @Produce      json
// @Success      200 {object} dto.Response{data=CountData}
// @Security     BearerAuth
// @Router       /notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	updated, err := h.notifications.MarkAllRead(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CountData{Count: updated})
}

// Delete godoc
// @Summary      Delete a notification
// @Tags         notifications
// @Produce      json
// @Param        id path string true "Notification ID" format(uuid)
// @Success      200 {object} dto.Response{data=MessageData}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "notification")
	if !ok {
		return
	}

	if err := h.notifications.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Notification removed"})
}
