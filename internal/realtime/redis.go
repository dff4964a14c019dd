package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hwang1401/travel-planner/internal/domain"
)

// channelPrefix namespaces the per-trip Redis channels.
const channelPrefix = "schedule:"

// Channel returns the Redis channel carrying a trip's notifications.
func Channel(tripID uuid.UUID) string {
	return channelPrefix + tripID.String()
}

// RedisBroker publishes notifications to Redis and relays every
// notification seen on Redis into a local Hub. With a broker in place the
// store publishes to Redis only, so local subscribers receive each
// notification exactly once, through the relay.
type RedisBroker struct {
	rdb redis.UniversalClient
	hub *Hub
	log *slog.Logger
}

// NewRedisBroker returns a broker relaying into hub.
func NewRedisBroker(rdb redis.UniversalClient, hub *Hub, log *slog.Logger) *RedisBroker {
	if log == nil {
		log = slog.Default()
	}
	return &RedisBroker{rdb: rdb, hub: hub, log: log}
}

// Publish sends n on the trip's channel.
func (b *RedisBroker) Publish(ctx context.Context, n domain.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("realtime.RedisBroker.Publish: marshal: %w", err)
	}
	if err := b.rdb.Publish(ctx, Channel(n.TripID), data).Err(); err != nil {
		return fmt.Errorf("realtime.RedisBroker.Publish: %w", err)
	}
	return nil
}

// Run relays notifications from every trip channel into the hub until ctx
// is cancelled. It returns an error only when the subscription cannot be
// established.
func (b *RedisBroker) Run(ctx context.Context) error {
	sub := b.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	// Wait for the subscription confirmation before relaying.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("realtime.RedisBroker.Run: subscribe: %w", err)
	}
	b.log.Info("relaying schedule notifications from redis", "pattern", channelPrefix+"*")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.relay(ctx, msg)
		}
	}
}

func (b *RedisBroker) relay(ctx context.Context, msg *redis.Message) {
	var n domain.Notification
	if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
		b.log.Warn("undecodable schedule notification", "channel", msg.Channel, "error", err)
		return
	}
	if want := strings.TrimPrefix(msg.Channel, channelPrefix); want != n.TripID.String() {
		b.log.Warn("schedule notification on the wrong channel", "channel", msg.Channel, "trip_id", n.TripID.String())
		return
	}
	if err := b.hub.Publish(ctx, n); err != nil {
		b.log.Warn("relay to hub failed", "trip_id", n.TripID.String(), "error", err)
	}
}
