package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/inkwell-games/novel-engine/pkg/engine"
)

// Relay republishes engine events to Redis Pub/Sub, one channel per save,
// so external observers (overlays, companion apps, debug tooling) can
// follow a session without linking against the engine.
type Relay struct {
	client *redis.Client
	logger *slog.Logger

	unsubscribe func()
}

// NewRelay creates a relay over an existing Redis client.
func NewRelay(client *redis.Client, logger *slog.Logger) *Relay {
	return &Relay{
		client: client,
		logger: logger,
	}
}

// Attach subscribes the relay to every event the engine emits. Publish
// failures are logged and dropped; the relay never disturbs gameplay.
func (r *Relay) Attach(eng *engine.Engine) {
	r.unsubscribe = eng.Subscribe(func(ev engine.Event) {
		if err := r.publish(context.Background(), ev); err != nil {
			r.logger.Warn("Failed to relay event", "event_type", ev.Type, "error", err)
		}
	})
}

// Detach unsubscribes the relay from the engine.
func (r *Relay) Detach() {
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
}

// Channel returns the Pub/Sub channel name for a save.
func Channel(saveID uuid.UUID) string {
	return fmt.Sprintf("game-events:%s", saveID)
}

func (r *Relay) publish(ctx context.Context, ev engine.Event) error {
	if ev.SaveID == uuid.Nil {
		return nil
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := Channel(ev.SaveID)
	if err := r.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	r.logger.Debug("Event relayed",
		"channel", channel,
		"event_type", ev.Type,
	)
	return nil
}
