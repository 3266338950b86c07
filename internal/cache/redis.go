package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/callstream/backend/internal/models"
)

const (
	plansKey         = "catalog:plans"
	plansTTL         = 30 * time.Second
	callEventChannel = "calls:events"
)

type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient creates a new Redis client
func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{
		client: client,
		ctx:    ctx,
	}, nil
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// Catalog cache

// CachePlans stores the computed catalog for a short window so landing-page
// traffic does not hit the database on every request.
func (r *RedisClient) CachePlans(plans []models.Plan) error {
	data, err := json.Marshal(plans)
	if err != nil {
		return err
	}
	return r.client.Set(r.ctx, plansKey, data, plansTTL).Err()
}

// GetCachedPlans returns the cached catalog, or nil on a miss.
func (r *RedisClient) GetCachedPlans() ([]models.Plan, error) {
	data, err := r.client.Get(r.ctx, plansKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var plans []models.Plan
	if err := json.Unmarshal([]byte(data), &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// InvalidatePlans drops the cached catalog after any video mutation.
func (r *RedisClient) InvalidatePlans() error {
	return r.client.Del(r.ctx, plansKey).Err()
}

// Call event pub/sub

// CallEvent is the envelope published for every call lifecycle change.
type CallEvent struct {
	CallID  string           `json:"call_id"`
	Message models.WSMessage `json:"message"`
}

// PublishCallEvent publishes a call lifecycle event
func (r *RedisClient) PublishCallEvent(event CallEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.client.Publish(r.ctx, callEventChannel, data).Err()
}

// SubscribeToCallEvents subscribes to call lifecycle events
func (r *RedisClient) SubscribeToCallEvents() *redis.PubSub {
	return r.client.Subscribe(r.ctx, callEventChannel)
}
