package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/hwang1401/travel-planner/internal/domain"
)

// Subscribe opens the trip's notification socket and calls fn for every
// notification, from a single goroutine. The first connection must succeed;
// after that a dropped socket is redialled, and the latest snapshot is
// fetched and delivered so nothing missed while disconnected is lost. The
// returned function closes the subscription.
func (s *HTTPStore) Subscribe(ctx context.Context, tripID uuid.UUID, fn func(domain.Notification)) (func(), error) {
	conn, err := s.dial(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("client.HTTPStore.Subscribe: %w", err)
	}

	sub := &subscription{
		store:   s,
		tripID:  tripID,
		fn:      fn,
		conn:    conn,
		stop:    make(chan struct{}),
		limiter: rate.NewLimiter(rate.Every(s.reconnect), 1),
	}
	sub.limiter.Allow() // the first dial spent the burst
	go sub.run()
	return sub.close, nil
}

func (s *HTTPStore) dial(ctx context.Context, tripID uuid.UUID) (*websocket.Conn, error) {
	conn, resp, err := s.dialer.DialContext(ctx, s.subscribeURL(tripID), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: dial: %v", domain.ErrUnavailable, err)
	}
	return conn, nil
}

type subscription struct {
	store   *HTTPStore
	tripID  uuid.UUID
	fn      func(domain.Notification)
	limiter *rate.Limiter

	mu   sync.Mutex
	conn *websocket.Conn
	stop chan struct{}
	once sync.Once
}

func (sub *subscription) close() {
	sub.once.Do(func() {
		close(sub.stop)
		sub.mu.Lock()
		if sub.conn != nil {
			_ = sub.conn.Close()
		}
		sub.mu.Unlock()
	})
}

func (sub *subscription) stopped() bool {
	select {
	case <-sub.stop:
		return true
	default:
		return false
	}
}

func (sub *subscription) run() {
	log := sub.store.log.With("trip_id", sub.tripID.String())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-sub.stop
		cancel()
	}()

	for {
		sub.mu.Lock()
		conn := sub.conn
		sub.mu.Unlock()

		sub.read(conn)
		if sub.stopped() {
			return
		}
		log.Warn("schedule subscription dropped, reconnecting")

		conn, ok := sub.redial(ctx)
		if !ok {
			return
		}
		sub.mu.Lock()
		if sub.stopped() {
			sub.mu.Unlock()
			_ = conn.Close()
			return
		}
		sub.conn = conn
		sub.mu.Unlock()
		log.Info("schedule subscription restored")

		// Catch up on anything published while disconnected.
		if snap, err := sub.store.Load(ctx, sub.tripID); err == nil {
			sub.fn(domain.Notification{TripID: sub.tripID, Data: snap.Data, Version: snap.Version})
		} else {
			log.Warn("catch-up load failed", "error", err)
		}
	}
}

// read delivers notifications until the socket fails or is closed.
func (sub *subscription) read(conn *websocket.Conn) {
	for {
		var n domain.Notification
		if err := conn.ReadJSON(&n); err != nil {
			return
		}
		sub.fn(n)
	}
}

// redial retries the connection at the limiter's pace until it succeeds or
// the subscription is closed.
func (sub *subscription) redial(ctx context.Context) (*websocket.Conn, bool) {
	for {
		if err := sub.limiter.Wait(ctx); err != nil {
			return nil, false
		}
		conn, err := sub.store.dial(ctx, sub.tripID)
		if err == nil {
			return conn, true
		}
		if sub.stopped() {
			return nil, false
		}
		sub.store.log.Debug("redial failed", "trip_id", sub.tripID.String(), "error", err)
	}
}
