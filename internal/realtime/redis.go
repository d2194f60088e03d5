package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"voicebid/utils"
)

// RedisBroker is a Broker backed by Redis pub/sub, for deployments where
// several server instances must see each other's change events.
type RedisBroker struct {
	client *redis.Client
}

// NewRedisBroker connects to Redis at addr and verifies the connection
func NewRedisBroker(ctx context.Context, addr string) (*RedisBroker, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("realtime: connect redis %s: %w", addr, err)
	}
	return &RedisBroker{client: client}, nil
}

// Close releases the Redis connection
func (b *RedisBroker) Close() error {
	return b.client.Close()
}

// Publish sends the event to the topic's Redis channel
func (b *RedisBroker) Publish(ctx context.Context, topic string, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("realtime: encode event: %w", err)
	}
	if err := b.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("realtime: publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe opens a Redis subscription for the topic and decodes incoming
// messages into events until cancelled
func (b *RedisBroker) Subscribe(ctx context.Context, topic string) (<-chan Event, func(), error) {
	pubsub := b.client.Subscribe(ctx, topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("realtime: subscribe %s: %w", topic, err)
	}

	out := make(chan Event, subscriberBuffer)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				utils.Warn("realtime: dropping malformed event", map[string]any{
					"topic": topic,
					"error": err.Error(),
				})
				continue
			}
			out <- ev
		}
	}()

	cancel := func() {
		// closing the pubsub closes its channel, which ends the goroutine
		_ = pubsub.Close()
	}
	return out, cancel, nil
}
