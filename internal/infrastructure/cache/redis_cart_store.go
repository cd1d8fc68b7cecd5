package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/application/cart"
)

const defaultCartPrefix = "cart:"

// RedisCartStore keeps carts as JSON strings, one key per cart.
// Writes replace the whole list; concurrent writers race and the last one wins.
//
// The server keeps no carts of its own. A Go storefront client that wants carts
// shared across devices wires it as
//
//	holder := cart.NewHolder(cache.NewRedisCartStore(client, "", 24*time.Hour), sessionID)
//
// and falls back to cart.NewMemoryStore() without Redis.
type RedisCartStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisCartStore creates a cart store. A zero ttl keeps carts forever.
func NewRedisCartStore(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisCartStore {
	if keyPrefix == "" {
		keyPrefix = defaultCartPrefix
	}
	return &RedisCartStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// Load returns the stored entries, or an empty cart when the key is absent
func (s *RedisCartStore) Load(ctx context.Context, key string) ([]cart.Entry, error) {
	raw, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []cart.Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var entries []cart.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	if entries == nil {
		entries = []cart.Entry{}
	}
	return entries, nil
}

// Save replaces the entries stored under key
func (s *RedisCartStore) Save(ctx context.Context, key string, entries []cart.Entry) error {
	if entries == nil {
		entries = []cart.Entry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

var _ cart.Store = (*RedisCartStore)(nil)
