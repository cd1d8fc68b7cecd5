package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	notificationapp "github.com/storefront/backend/internal/application/notification"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderBody(productID uuid.UUID, qty int) map[string]any {
	return map[string]any{
		"customerName":  "Ada Lovelace",
		"customerEmail": "ada@example.com",
		"customerPhone": "+44 20 0000 0000",
		"shippingAddress": map[string]any{
			"street":  "12 Analytical Row",
			"city":    "London",
			"zipCode": "N1 9GU",
			"country": "UK",
		},
		"items":         []map[string]any{{"productId": productID.String(), "quantity": qty}},
		"paymentMethod": "PayPal",
	}
}

func (f *fixture) placeOrder(t *testing.T, body any, idempotencyKey string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set(handler.IdempotencyKeyHeader, idempotencyKey)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func (f *fixture) product(t *testing.T, id uuid.UUID) catalogapp.ProductResponse {
	t.Helper()
	w := f.do(t, http.MethodGet, "/api/products/"+id.String(), nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var p catalogapp.ProductResponse
	envelope(t, w, &p)
	return p
}

func TestOrderHandler_Create(t *testing.T) {
	t.Run("places an order, prices it and decrements stock", func(t *testing.T) {
		f := newFixture(t)
		p := f.createProduct(t, "Lamp", "50", 5, nil)

		w := f.placeOrder(t, orderBody(p.ID, 2), "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp handler.PlaceOrderResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "received", resp.Data.Status)
		assert.True(t, resp.Data.ItemsPrice.Equal(decimal.NewFromInt(100)))
		assert.True(t, resp.Data.ShippingPrice.Equal(decimal.NewFromInt(10)))
		assert.True(t, resp.Data.TaxPrice.Equal(decimal.NewFromInt(10)))
		assert.True(t, resp.Data.TotalPrice.Equal(decimal.NewFromInt(120)))
		require.Len(t, resp.Data.Items, 1)
		assert.Equal(t, "Lamp", resp.Data.Items[0].Name)
		assert.True(t, resp.EmailStatus.ConfirmationSent)
		assert.True(t, resp.EmailStatus.NotificationSent)
		assert.Empty(t, resp.EmailStatus.Errors)

		assert.Equal(t, 3, f.product(t, p.ID).Stock)
	})

	t.Run("email failures do not fail the order", func(t *testing.T) {
		f := newFixture(t)
		f.mailer.fail = true
		p := f.createProduct(t, "Lamp", "50", 5, nil)

		w := f.placeOrder(t, orderBody(p.ID, 1), "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp handler.PlaceOrderResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.EmailStatus.ConfirmationSent)
		assert.False(t, resp.EmailStatus.NotificationSent)
		assert.Len(t, resp.EmailStatus.Errors, 2)
	})

	t.Run("insufficient stock leaves stock untouched", func(t *testing.T) {
		f := newFixture(t)
		p := f.createProduct(t, "Lamp", "50", 1, nil)

		w := f.placeOrder(t, orderBody(p.ID, 2), "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := envelope(t, w, nil)
		assert.Contains(t, resp.Error.Message, "Lamp")
		assert.Equal(t, 1, f.product(t, p.ID).Stock)
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		f := newFixture(t)
		w := f.placeOrder(t, orderBody(uuid.New(), 1), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects zero quantity and bad email", func(t *testing.T) {
		f := newFixture(t)
		p := f.createProduct(t, "Lamp", "50", 5, nil)

		body := orderBody(p.ID, 0)
		body["customerEmail"] = "not-an-email"
		w := f.placeOrder(t, body, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := envelope(t, w, nil)
		fields := map[string]bool{}
		for _, d := range resp.Error.Details {
			fields[d.Field] = true
		}
		assert.True(t, fields["customerEmail"])
		assert.True(t, fields["items[0].quantity"])
	})

	t.Run("repeated idempotency key conflicts", func(t *testing.T) {
		f := newFixture(t)
		p := f.createProduct(t, "Lamp", "50", 5, nil)

		w := f.placeOrder(t, orderBody(p.ID, 1), "checkout-1")
		require.Equal(t, http.StatusCreated, w.Code)
		w = f.placeOrder(t, orderBody(p.ID, 1), "checkout-1")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, 4, f.product(t, p.ID).Stock)
	})

	t.Run("oversized idempotency key is rejected", func(t *testing.T) {
		f := newFixture(t)
		p := f.createProduct(t, "Lamp", "50", 5, nil)
		key := string(bytes.Repeat([]byte("k"), 201))
		w := f.placeOrder(t, orderBody(p.ID, 1), key)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_Admin(t *testing.T) {
	f := newFixture(t)
	p := f.createProduct(t, "Desk", "300", 10, nil)

	w := f.placeOrder(t, orderBody(p.ID, 1), "")
	require.Equal(t, http.StatusCreated, w.Code)
	var placed handler.PlaceOrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &placed))
	id := placed.Data.ID.String()

	t.Run("reads require admin", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/orders/"+id, nil, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("get by id", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/orders/"+id, nil, true)
		require.Equal(t, http.StatusOK, w.Code)
		var got orderapp.OrderResponse
		envelope(t, w, &got)
		assert.Equal(t, "ada@example.com", got.CustomerEmail)
		assert.Equal(t, "London", got.ShippingAddress.City)
	})

	t.Run("status update records a notification", func(t *testing.T) {
		w := f.do(t, http.MethodPut, "/api/orders/"+id+"/status", map[string]any{"status": "Shipped"}, true)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got orderapp.OrderResponse
		envelope(t, w, &got)
		assert.Equal(t, "shipped", got.Status)

		w = f.do(t, http.MethodGet, "/api/notifications", nil, true)
		require.Equal(t, http.StatusOK, w.Code)
		var list handler.NotificationListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list.Data, 2)
		assert.Equal(t, int64(2), list.UnreadCount)
		titles := []string{list.Data[0].Title, list.Data[1].Title}
		assert.ElementsMatch(t, []string{"New Order Received", "Order Status Updated"}, titles)
		assert.Equal(t, "order", list.Data[0].Type)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		w := f.do(t, http.MethodPut, "/api/orders/"+id+"/status", map[string]any{"status": "teleported"}, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("filter by status", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/orders?status=shipped", nil, true)
		require.Equal(t, http.StatusOK, w.Code)
		var orders []orderapp.OrderResponse
		resp := envelope(t, w, &orders)
		assert.Len(t, orders, 1)
		assert.Equal(t, int64(1), resp.Meta.Total)

		w = f.do(t, http.MethodGet, "/api/orders?status=done", nil, true)
		require.Equal(t, http.StatusOK, w.Code)
		resp = envelope(t, w, &orders)
		assert.Equal(t, int64(0), resp.Meta.Total)
	})

	t.Run("mark paid and delivered", func(t *testing.T) {
		w := f.do(t, http.MethodPut, "/api/orders/"+id+"/pay", map[string]any{
			"id": "PAY-1", "status": "COMPLETED", "emailAddress": "ada@example.com",
		}, true)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got orderapp.OrderResponse
		envelope(t, w, &got)
		assert.True(t, got.IsPaid)
		require.NotNil(t, got.PaymentResult)
		assert.Equal(t, "PAY-1", got.PaymentResult.ID)

		w = f.do(t, http.MethodPut, "/api/orders/"+id+"/deliver", nil, true)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		envelope(t, w, &got)
		assert.True(t, got.IsDelivered)
		assert.NotNil(t, got.DeliveredAt)
	})

	t.Run("delete keeps product stock", func(t *testing.T) {
		w := f.do(t, http.MethodDelete, "/api/orders/"+id, nil, true)
		require.Equal(t, http.StatusOK, w.Code)
		w = f.do(t, http.MethodGet, "/api/orders/"+id, nil, true)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, 9, f.product(t, p.ID).Stock)
	})
}

func TestNotificationHandler(t *testing.T) {
	f := newFixture(t)
	p := f.createProduct(t, "Chair", "80", 10, nil)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusCreated, f.placeOrder(t, orderBody(p.ID, 1), "").Code)
	}

	w := f.do(t, http.MethodGet, "/api/notifications?pageSize=2", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var list handler.NotificationListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 2)
	assert.Equal(t, int64(3), list.Meta.Total)
	assert.Equal(t, int64(3), list.UnreadCount)

	t.Run("mark one read", func(t *testing.T) {
		w := f.do(t, http.MethodPut, "/api/notifications/"+list.Data[0].ID.String()+"/read", nil, true)
		require.Equal(t, http.StatusOK, w.Code)
		var n notificationapp.Response
		envelope(t, w, &n)
		assert.True(t, n.Read)
	})

	t.Run("read filter", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/notifications?read=false", nil, true)
		require.Equal(t, http.StatusOK, w.Code)
		var unread handler.NotificationListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &unread))
		assert.Len(t, unread.Data, 2)
		assert.Equal(t, int64(2), unread.UnreadCount)
	})

	t.Run("mark all read", func(t *testing.T) {
		w := f.do(t, http.MethodPut, "/api/notifications/read-all", nil, true)
		require.Equal(t, http.StatusOK, w.Code)
		var count handler.CountData
		envelope(t, w, &count)
		assert.Equal(t, int64(2), count.Count)
	})

	t.Run("delete", func(t *testing.T) {
		id := list.Data[1].ID.String()
		w := f.do(t, http.MethodDelete, "/api/notifications/"+id, nil, true)
		require.Equal(t, http.StatusOK, w.Code)
		w = f.do(t, http.MethodPut, "/api/notifications/"+id+"/read", nil, true)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("requires admin", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/notifications", nil, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
