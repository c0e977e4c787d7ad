package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// DefaultQueue is the Redis list the delivery worker consumes
const DefaultQueue = "storefront:mail:outbox"

// OutboxEntry is the JSON document pushed onto the outbox list
type OutboxEntry struct {
	ID       string    `json:"id"`
	Message  Message   `json:"message"`
	QueuedAt time.Time `json:"queued_at"`
}

// RedisOutbox queues messages on a Redis list for an external delivery worker
type RedisOutbox struct {
	client *redis.Client
	queue  string
}

// NewRedisOutbox creates an outbox writing to queue (DefaultQueue when empty)
func NewRedisOutbox(client *redis.Client, queue string) *RedisOutbox {
	if queue == "" {
		queue = DefaultQueue
	}
	return &RedisOutbox{client: client, queue: queue}
}

// OpenRedis connects to the Redis server at url and verifies it responds
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// Send appends msg to the outbox list
func (o *RedisOutbox) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(OutboxEntry{
		ID:       uuid.NewString(),
		Message:  msg,
		QueuedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	if err := o.client.RPush(ctx, o.queue, payload).Err(); err != nil {
		return fmt.Errorf("failed to queue message: %w", err)
	}

	return nil
}

// Pending returns the number of messages waiting in the outbox
func (o *RedisOutbox) Pending(ctx context.Context) (int64, error) {
	n, err := o.client.LLen(ctx, o.queue).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read outbox length: %w", err)
	}
	return n, nil
}
