package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// IdempotencyKeyHeader lets a client mark retries of the same checkout
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 200

// PlaceOrderResponse is the 201 body of a placed order. emailStatus sits
// beside data so storefronts can report mail problems without failing.
// @Description Placed order plus side effect outcome
type PlaceOrderResponse struct {
	Success     bool                   `json:"success" example:"true"`
	Data        orderapp.OrderResponse `json:"data"`
	EmailStatus orderapp.EmailStatus   `json:"emailStatus"`
}

// OrderHandler handles order endpoints
type OrderHandler struct {
	BaseHandler
	placement *orderapp.PlacementService
	orders    *orderapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(placement *orderapp.PlacementService, orders *orderapp.OrderService) *OrderHandler {
	return &OrderHandler{placement: placement, orders: orders}
}

// Create godoc
// @Summary      Place an order
// @Description  Checks and reserves stock in one transaction, then sends the confirmation emails
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client key that makes retries safe"
// @Param        request body orderapp.PlaceOrderRequest true "Order"
// @Success      201 {object} PlaceOrderResponse
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req orderapp.PlaceOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	if len(key) > maxIdempotencyKeyLength {
		h.BadRequest(c, "Idempotency-Key is too long")
		return
	}

	result, err := h.placement.PlaceOrder(c.Request.Context(), req, key)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, PlaceOrderResponse{
		Success:     true,
		Data:        result.Order,
		EmailStatus: result.EmailStatus,
	})
}

// GetByID godoc
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamID(c, "order")
	if !ok {
		return
	}

	o, err := h.orders.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// List godoc
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Items per page" default(20)
// @Param        search query string false "Customer name or email contains"
// @Param        status query string false "Status filter"
// @Param        sortBy query string false "created_at, total_price or status"
// @Param        sortOrder query string false "asc or desc"
// @Success      200 {object} dto.Response{data=[]orderapp.OrderResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var query orderapp.OrderListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	page, err := h.orders.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPagedResponse(page))
}

// UpdateStatus godoc
// @Summary      Change an order's status
// @Description  Any status may follow any other; a real change creates a notification
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderapp.UpdateStatusRequest true "New status"
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.ParamID(c, "order")
	if !ok {
		return
	}
	var req orderapp.UpdateStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// MarkPaid godoc
// @Summary      Record payment
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderapp.PaymentRequest true "Payment result"
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/pay [put]
func (h *OrderHandler) MarkPaid(c *gin.Context) {
	id, ok := h.ParamID(c, "order")
	if !ok {
		return
	}
	var req orderapp.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.orders.MarkPaid(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// MarkDelivered godoc
// @Summary      Record delivery
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/deliver [put]
func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	id, ok := h.ParamID(c, "order")
	if !ok {
		return
	}

	o, err := h.orders.MarkDelivered(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// Delete godoc
// @Summary      Delete an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=MessageData}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id} [delete]
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "order")
	if !ok {
		return
	}

	if err := h.orders.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Order removed"})
}
