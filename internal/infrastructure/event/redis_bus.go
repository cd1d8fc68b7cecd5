package event

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultChannel is the pub/sub channel shared by all server instances
const DefaultChannel = "storefront:events"

// RedisEventBus fans events out through Redis pub/sub so that handlers on
// every instance see them, including the publishing one. Delivery is
// at-most-once; events published while no instance listens are lost.
type RedisEventBus struct {
	client     redis.UniversalClient
	channel    string
	serializer *EventSerializer
	registry   *HandlerRegistry
	logger     *zap.Logger

	mu     sync.Mutex
	pubsub *redis.PubSub
	done   chan struct{}
}

// NewRedisEventBus creates a bus on channel (DefaultChannel when empty)
func NewRedisEventBus(client redis.UniversalClient, channel string, serializer *EventSerializer, logger *zap.Logger) *RedisEventBus {
	if channel == "" {
		channel = DefaultChannel
	}
	if serializer == nil {
		serializer = NewDefaultSerializer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisEventBus{
		client:     client,
		channel:    channel,
		serializer: serializer,
		registry:   NewHandlerRegistry(),
		logger:     logger.Named("redis_event_bus"),
	}
}

// Publish serializes each event onto the channel
func (b *RedisEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	var errs []error
	for _, e := range events {
		data, err := b.serializer.Marshal(e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers a local handler
func (b *RedisEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
}

// Unsubscribe removes a local handler
func (b *RedisEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start subscribes to the channel and dispatches received events until Stop
func (b *RedisEventBus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pubsub != nil {
		return nil
	}

	ps := b.client.Subscribe(ctx, b.channel)
	// Wait for the subscription confirmation so publishes right after Start are seen.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return err
	}
	b.pubsub = ps
	b.done = make(chan struct{})

	go b.loop(ps.Channel(), b.done)
	b.logger.Info("Subscribed to event channel", zap.String("channel", b.channel))
	return nil
}

func (b *RedisEventBus) loop(msgs <-chan *redis.Message, done chan struct{}) {
	defer close(done)
	ctx := context.Background()
	for msg := range msgs {
		e, err := b.serializer.Unmarshal([]byte(msg.Payload))
		if err != nil {
			b.logger.Warn("Dropping undecodable event", zap.Error(err))
			continue
		}
		deliver(ctx, b.registry, b.logger, e)
	}
}

// Stop closes the subscription and waits for the dispatch loop to exit
func (b *RedisEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	ps, done := b.pubsub, b.done
	b.pubsub, b.done = nil, nil
	b.mu.Unlock()
	if ps == nil {
		return nil
	}

	err := ps.Close()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

var _ shared.EventBus = (*RedisEventBus)(nil)
