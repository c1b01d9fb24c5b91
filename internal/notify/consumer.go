package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/wrx861/tyres/internal/orders"
	"github.com/wrx861/tyres/internal/redisx"
)

type Consumer struct {
	Sink  Sink
	Redis *redis.Client
}

// Handle is mounted as the Kafka consumer handler. Returning nil commits the
// offset; delivery failures still commit, so each event id is attempted at
// most once and a dead chat never wedges the partition.
func (c *Consumer) Handle(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		log.Printf("bad envelope, skipping: %v", err)
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, "notifier", env.EventID)
	if exists, _ := redisx.Exists(ctx, c.Redis, dkey); exists {
		return nil
	}
	_ = c.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	recipient, text, ok, err := Render(env)
	if err != nil {
		log.Printf("render %s %s: %v", env.EventType, env.EventID, err)
		return nil
	}
	if !ok || recipient == "" {
		return nil
	}

	if !c.Sink.Deliver(ctx, recipient, text) {
		log.Printf("delivery failed: event=%s order=%s recipient=%s",
			env.EventType, env.CorrelationID, recipient)
	}
	return nil
}
