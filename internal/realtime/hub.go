// Package realtime fans schedule change notifications out to subscribers.
//
// A Hub keeps one room per trip and delivers every published notification
// to the room's subscribers. A RedisBroker carries notifications between
// server instances: saves are published to Redis, and every instance relays
// what it receives into its local Hub.
package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/hwang1401/travel-planner/internal/domain"
)

// sendBuffer is the per-subscriber queue length.
const sendBuffer = 16

type subscriber struct {
	trip uuid.UUID
	send chan domain.Notification
}

// Hub routes notifications to the subscribers of their trip. All room state
// is owned by the Run loop.
type Hub struct {
	rooms      map[uuid.UUID]map[*subscriber]bool
	register   chan *subscriber
	unregister chan *subscriber
	broadcast  chan domain.Notification
	done       chan struct{}
	log        *slog.Logger
}

// NewHub returns a Hub. Nothing is delivered until Run is started.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*subscriber]bool),
		register:   make(chan *subscriber),
		unregister: make(chan *subscriber),
		broadcast:  make(chan domain.Notification),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run delivers notifications until ctx is cancelled, then ends every
// subscription.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case s := <-h.register:
			room := h.rooms[s.trip]
			if room == nil {
				room = make(map[*subscriber]bool)
				h.rooms[s.trip] = room
			}
			room[s] = true

		case s := <-h.unregister:
			if room := h.rooms[s.trip]; room[s] {
				delete(room, s)
				close(s.send)
				if len(room) == 0 {
					delete(h.rooms, s.trip)
				}
			}

		case n := <-h.broadcast:
			for s := range h.rooms[n.TripID] {
				h.deliver(s, n)
			}

		case <-ctx.Done():
			for _, room := range h.rooms {
				for s := range room {
					close(s.send)
				}
			}
			h.rooms = nil
			return
		}
	}
}

// deliver queues n for s. When the queue is full the oldest pending
// notification is dropped: each one carries the full document, so only the
// newest matters.
func (h *Hub) deliver(s *subscriber, n domain.Notification) {
	select {
	case s.send <- n:
		return
	default:
	}
	select {
	case <-s.send:
	default:
	}
	select {
	case s.send <- n:
	default:
	}
	h.log.Warn("slow schedule subscriber, dropped a pending notification",
		"trip_id", n.TripID.String(), "version", n.Version)
}

// Publish hands n to the Run loop for delivery to the trip's subscribers.
func (h *Hub) Publish(ctx context.Context, n domain.Notification) error {
	select {
	case h.broadcast <- n:
		return nil
	case <-h.done:
		return fmt.Errorf("realtime.Hub.Publish: %w", domain.ErrUnavailable)
	case <-ctx.Done():
		return fmt.Errorf("realtime.Hub.Publish: %w", ctx.Err())
	}
}

// Subscribe calls fn, from a dedicated goroutine and in publish order, for
// every notification of tripID. ctx bounds the registration only; the
// subscription lasts until the returned function is called or the hub stops.
func (h *Hub) Subscribe(ctx context.Context, tripID uuid.UUID, fn func(domain.Notification)) (func(), error) {
	s := &subscriber{trip: tripID, send: make(chan domain.Notification, sendBuffer)}
	select {
	case h.register <- s:
	case <-h.done:
		return nil, fmt.Errorf("realtime.Hub.Subscribe: %w", domain.ErrUnavailable)
	case <-ctx.Done():
		return nil, fmt.Errorf("realtime.Hub.Subscribe: %w", ctx.Err())
	}

	go func() {
		for n := range s.send {
			fn(n)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			select {
			case h.unregister <- s:
			case <-h.done:
			}
		})
	}, nil
}
