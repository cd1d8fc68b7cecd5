package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/notification"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// SSE event names sent to admin sessions
const (
	StreamEventConnected    = "connected"
	StreamEventHeartbeat    = "heartbeat"
	StreamEventNotification = "notification"
	StreamEventOrderStatus  = "orderStatus"
	StreamEventCatalog      = "catalog"
)

const streamClientBuffer = 64

// StreamMessage is one server-sent event
type StreamMessage struct {
	Event string
	ID    string
	Data  string
}

type streamClient struct {
	id    string
	admin string
	ch    chan StreamMessage
}

// StreamHub fans domain events out to connected admin sessions over SSE.
// Delivery is best effort: a slow client loses messages instead of
// blocking the publisher.
type StreamHub struct {
	BaseHandler
	subscriber shared.EventSubscriber
	logger     *zap.Logger
	clients    sync.Map // client id -> *streamClient
	count      atomic.Int64
	seq        atomic.Uint64
	heartbeat  time.Duration
	maxClients int

	ctx     context.Context
	cancel  context.CancelFunc
	startMu sync.Mutex
	started bool
}

// StreamHubOption configures a StreamHub
type StreamHubOption func(*StreamHub)

// WithStreamLogger sets the logger
func WithStreamLogger(logger *zap.Logger) StreamHubOption {
	return func(h *StreamHub) {
		h.logger = logger
	}
}

// WithStreamHeartbeat sets the keep-alive interval
func WithStreamHeartbeat(interval time.Duration) StreamHubOption {
	return func(h *StreamHub) {
		h.heartbeat = interval
	}
}

// WithStreamMaxClients caps concurrent connections; zero means unlimited
func WithStreamMaxClients(n int) StreamHubOption {
	return func(h *StreamHub) {
		h.maxClients = n
	}
}

// NewStreamHub creates a hub that will subscribe to subscriber on Start
func NewStreamHub(subscriber shared.EventSubscriber, opts ...StreamHubOption) *StreamHub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &StreamHub{
		subscriber: subscriber,
		logger:     zap.NewNop(),
		heartbeat:  30 * time.Second,
		maxClients: 1000,
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var _ shared.EventHandler = (*StreamHub)(nil)

// EventTypes implements shared.EventHandler
func (h *StreamHub) EventTypes() []string {
	return []string{
		order.EventTypeOrderPlaced,
		order.EventTypeOrderStatusChanged,
		catalog.EventTypeCategoryCreated,
		catalog.EventTypeCategoryUpdated,
		catalog.EventTypeCategoryDeleted,
		catalog.EventTypeSubcategoryCreated,
		catalog.EventTypeSubcategoryUpdated,
		catalog.EventTypeSubcategoryDeleted,
		catalog.EventTypeProductCreated,
		catalog.EventTypeProductUpdated,
		catalog.EventTypeProductDeleted,
	}
}

// Handle implements shared.EventHandler by broadcasting the event
func (h *StreamHub) Handle(_ context.Context, e shared.DomainEvent) error {
	name, payload := streamPayload(e)
	if name == "" {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s stream payload: %w", e.EventType(), err)
	}
	h.Broadcast(StreamMessage{Event: name, Data: string(data)})
	return nil
}

func streamPayload(e shared.DomainEvent) (string, any) {
	switch ev := e.(type) {
	case *order.OrderPlacedEvent:
		n := notification.NewOrderReceived(ev.OrderID, ev.CustomerName)
		return StreamEventNotification, gin.H{
			"type":       n.Type,
			"title":      n.Title,
			"message":    n.Message,
			"data":       n.Data,
			"totalPrice": ev.TotalPrice,
			"itemCount":  ev.ItemCount,
			"createdAt":  ev.OccurredAt(),
		}
	case *order.OrderStatusChangedEvent:
		n := notification.NewOrderStatusChanged(ev.OrderID, ev.OldStatus.String(), ev.NewStatus.String())
		return StreamEventOrderStatus, gin.H{
			"orderId":   ev.OrderID,
			"oldStatus": ev.OldStatus,
			"newStatus": ev.NewStatus,
			"title":     n.Title,
			"message":   n.Message,
		}
	case *catalog.CatalogChangedEvent:
		return StreamEventCatalog, gin.H{
			"event":     ev.EventType(),
			"aggregate": ev.AggregateType(),
			"id":        ev.AggregateID(),
		}
	default:
		return "", nil
	}
}

// Start subscribes to the event bus and begins sending heartbeats
func (h *StreamHub) Start() error {
	h.startMu.Lock()
	defer h.startMu.Unlock()
	if h.started {
		return errors.New("stream hub already started")
	}

	h.subscriber.Subscribe(h)
	go h.sendHeartbeats()
	h.started = true
	h.logger.Info("Notification stream started")
	return nil
}

// Stop unsubscribes and disconnects every client
func (h *StreamHub) Stop() {
	h.startMu.Lock()
	defer h.startMu.Unlock()
	if h.started {
		h.subscriber.Unsubscribe(h)
		h.started = false
	}
	h.cancel()
	h.logger.Info("Notification stream stopped")
}

// Broadcast queues msg for every connected client
func (h *StreamHub) Broadcast(msg StreamMessage) {
	if msg.ID == "" {
		msg.ID = strconv.FormatUint(h.seq.Add(1), 10)
	}
	h.clients.Range(func(_, value any) bool {
		client := value.(*streamClient)
		select {
		case client.ch <- msg:
		default:
			h.logger.Warn("Stream client too slow, dropping event",
				zap.String("client_id", client.id),
				zap.String("event", msg.Event))
		}
		return true
	})
}

// ClientCount returns the number of connected clients
func (h *StreamHub) ClientCount() int {
	return int(h.count.Load())
}

func (h *StreamHub) sendHeartbeats() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-h.ctx.Done():
			return
		case t := <-ticker.C:
			h.Broadcast(StreamMessage{
				Event: StreamEventHeartbeat,
				Data:  fmt.Sprintf(`{"timestamp":%d}`, t.Unix()),
			})
		}
	}
}

// Stream godoc
// @Summary      Real-time admin events
// @Description  Server-sent events: notification, orderStatus, catalog and heartbeat. EventSource clients pass the token as ?token=.
// @Tags         notifications
// @Produce      text/event-stream
// @Param        token query string false "Bearer token for clients that cannot set headers"
// @Success      200 {string} string "event stream"
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /notifications/stream [get]
func (h *StreamHub) Stream(c *gin.Context) {
	if h.maxClients > 0 && h.ClientCount() >= h.maxClients {
		h.Error(c, http.StatusServiceUnavailable, "STREAM_FULL", "Too many open notification streams")
		return
	}

	client := &streamClient{
		id: uuid.NewString(),
		ch: make(chan StreamMessage, streamClientBuffer),
	}
	if claims := middleware.GetAdminClaims(c); claims != nil {
		client.admin = claims.Username
	}

	h.clients.Store(client.id, client)
	h.count.Add(1)
	defer func() {
		h.clients.Delete(client.id)
		h.count.Add(-1)
	}()

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	log := h.logger.With(zap.String("client_id", client.id), zap.String("admin", client.admin))
	log.Info("Stream client connected")

	// the server WriteTimeout would otherwise cut the stream mid-session
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Warn("Failed to clear stream write deadline", zap.Error(err))
	}

	writeStreamMessage(c.Writer, StreamMessage{
		Event: StreamEventConnected,
		Data:  fmt.Sprintf(`{"clientId":%q}`, client.id),
	})
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			log.Info("Stream client disconnected")
			return
		case <-h.ctx.Done():
			return
		case msg := <-client.ch:
			writeStreamMessage(c.Writer, msg)
			c.Writer.Flush()
		}
	}
}

func writeStreamMessage(w io.Writer, msg StreamMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}
