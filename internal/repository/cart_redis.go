package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-web/internal/model"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type RedisCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisCartStore) Load(ctx context.Context, sessionKey string) model.Cart {
	cart, err := r.LoadForUpdate(ctx, sessionKey)
	if err != nil {
		log.WithError(err).WithField("session", sessionKey).Warn("redis get cart")
		return model.Cart{}
	}
	return cart
}

func (r *RedisCartStore) LoadForUpdate(ctx context.Context, sessionKey string) (model.Cart, error) {
	data, err := r.client.Get(ctx, cartKey(sessionKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	return decodeCart(sessionKey, data), nil
}

func (r *RedisCartStore) Save(ctx context.Context, sessionKey string, cart model.Cart) error {
	payload, err := encodeCart(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := r.client.Set(ctx, cartKey(sessionKey), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (r *RedisCartStore) Clear(ctx context.Context, sessionKey string) error {
	if err := r.client.Del(ctx, cartKey(sessionKey)).Err(); err != nil {
		return fmt.Errorf("redis delete cart: %w", err)
	}
	return nil
}

func cartKey(sessionKey string) string {
	return fmt.Sprintf("cart:%s", sessionKey)
}
