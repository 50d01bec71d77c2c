package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/draycott/shortcover/internal/core"
)

// ReviewSnapshot is the restart-safe state stashed when a customer
// heads into checkout, restored once if they back out to review.
type ReviewSnapshot struct {
	Quote          core.Quote `json:"quote"`
	PromoCode      string     `json:"promoCode,omitempty"`
	DiscountAmount float64    `json:"discountAmount,omitempty"`
	StartLabel     string     `json:"startLabel"`
	ExpiryLabel    string     `json:"expiryLabel"`
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

// ReviewCache stores one snapshot per quote with a TTL. Take consumes:
// a snapshot is readable exactly once.
type ReviewCache struct {
	client *redis.Client
}

func New(cfg Config) (*ReviewCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &ReviewCache{client: rdb}, nil
}

func key(quoteID string) string {
	return "review:" + quoteID
}

func (c *ReviewCache) Put(ctx context.Context, quoteID string, snap ReviewSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("review.encode: %w", err)
	}
	if err := c.client.Set(ctx, key(quoteID), data, ttl).Err(); err != nil {
		return fmt.Errorf("review.set: %w", err)
	}
	return nil
}

// Take returns and deletes the snapshot in one round trip.
func (c *ReviewCache) Take(ctx context.Context, quoteID string) (ReviewSnapshot, error) {
	data, err := c.client.GetDel(ctx, key(quoteID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ReviewSnapshot{}, core.ErrNotFound
		}
		return ReviewSnapshot{}, fmt.Errorf("review.getdel: %w", err)
	}

	var snap ReviewSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return ReviewSnapshot{}, fmt.Errorf("review.decode: %w", err)
	}
	return snap, nil
}

func (c *ReviewCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *ReviewCache) Close() error {
	return c.client.Close()
}
