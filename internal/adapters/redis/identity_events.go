package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/crewdeck/crewdeck/internal/ports"
)

const defaultEventsChannel = "crewdeck:identity"

// IdentityEvents is a Redis pub/sub ports.IdentityEvents. All server
// instances see every event, so a profile approved through one instance
// refreshes trackers everywhere.
type IdentityEvents struct {
	client  redis.UniversalClient
	channel string
	logger  *slog.Logger
}

// NewIdentityEvents creates an event channel on the default topic.
func NewIdentityEvents(client redis.UniversalClient, logger *slog.Logger) *IdentityEvents {
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityEvents{client: client, channel: defaultEventsChannel, logger: logger}
}

// Publish broadcasts an identity event.
func (e *IdentityEvents) Publish(ctx context.Context, ev ports.IdentityEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal identity event: %w", err)
	}
	if err := e.client.Publish(ctx, e.channel, data).Err(); err != nil {
		return fmt.Errorf("publish identity event: %w", err)
	}
	return nil
}

// Subscribe starts delivering events to onEvent from a dedicated goroutine.
// The returned subscription's Unsubscribe is idempotent; after the first
// call no further events are delivered.
func (e *IdentityEvents) Subscribe(ctx context.Context, onEvent func(ports.IdentityEvent)) (ports.Subscription, error) {
	pubsub := e.client.Subscribe(ctx, e.channel)
	// Block until the subscription is live so callers don't miss events
	// published immediately after Subscribe returns.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe identity events: %w", err)
	}

	sub := &eventSubscription{pubsub: pubsub}
	go func() {
		for msg := range pubsub.Channel() {
			var ev ports.IdentityEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				e.logger.Warn("dropping malformed identity event",
					slog.String("error", err.Error()))
				continue
			}
			onEvent(ev)
		}
	}()
	return sub, nil
}

type eventSubscription struct {
	pubsub *redis.PubSub
	once   sync.Once
}

// Unsubscribe closes the pub/sub connection, ending delivery. Safe to call
// multiple times.
func (s *eventSubscription) Unsubscribe() error {
	var err error
	s.once.Do(func() {
		err = s.pubsub.Close()
	})
	return err
}
