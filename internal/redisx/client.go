package redisx

import (
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"time"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Idempotency maps a client supplied key to the id of what it created.
type Idempotency struct {
	Client *redis.Client
}

func (i Idempotency) Lookup(ctx context.Context, userID, key string) (string, bool, error) {
	v, err := i.Client.Get(ctx, fmt.Sprintf(KeyIdemOrderCreate, userID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (i Idempotency) Remember(ctx context.Context, userID, key, id string) error {
	return i.Client.Set(ctx, fmt.Sprintf(KeyIdemOrderCreate, userID, key), id, TTLIdempotency).Err()
}

// Once marks key with SETNX and reports whether this caller was first.
type Once struct {
	Client *redis.Client
}

func (o Once) First(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return o.Client.SetNX(ctx, key, "1", ttl).Result()
}
